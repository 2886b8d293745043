package main

import "github.com/dev-mohitbeniwal/blobsas/cmd"

func main() {
	cmd.Execute()
}
