// cmd/consume.go
package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/dev-mohitbeniwal/blobsas/consumer"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
)

func consumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume [signed-uri...]",
		Short: "Exercise signed URIs with Write, List, Read and Delete",
		Long: `Exercise each signed URI with Write, List, Read and Delete and report
the outcome of every operation. Without arguments the URIs configured under
consumer.signedURIs are used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			uris := args
			if len(uris) == 0 {
				uris = cfg.Consumer.SignedURIs
			}
			if len(uris) == 0 {
				return errors.New("no signed URIs given and none configured under consumer.signedURIs")
			}

			c := consumer.New(cfg.Consumer, &http.Client{})
			for _, report := range c.ExerciseAll(cmd.Context(), uris) {
				fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
			}
			return nil
		},
	}
}
