// cmd/generate.go
package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dev-mohitbeniwal/blobsas/client"
	"github.com/dev-mohitbeniwal/blobsas/issuer"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/sas"
)

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Prepare the container and issue demonstration tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cred, err := sas.NewSharedKeyCredential(cfg.Storage.AccountName, cfg.Storage.AccountKey)
			if err != nil {
				return err
			}
			httpClient := &http.Client{Timeout: cfg.Issuer.RequestTimeout}
			iss, err := issuer.New(cfg.Storage, client.NewWithAccount(cfg.Storage.Endpoint, cred, httpClient))
			if err != nil {
				return err
			}

			tokens, err := iss.Generate(cmd.Context(), cfg.Issuer, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTokens(tokens))
			return nil
		},
	}
}
