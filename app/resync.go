package app

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Luizsilva-repros/intranet/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(resyncCmd)
}

var resyncCmd = &cobra.Command{
	Use:     "resync",
	Short:   "Copy every active directory account into the local store",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := daemon.New(cmd.Context(), &cfg)
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Auth().ResyncAllDirectoryAccounts(cmd.Context())
		if err != nil {
			return err
		}

		log.Info().Int("synced", res.Synced).Int("errors", res.Errors).Msg("resync done")

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "synced: %d, errors: %d\n", res.Synced, res.Errors)

		return err
	},
}
