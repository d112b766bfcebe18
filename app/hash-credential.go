package app

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Luizsilva-repros/intranet/internal/accounts"
)

var errNoCredential = errors.New("no credential given")

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(hashCredentialCmd)
}

var hashCredentialCmd = &cobra.Command{
	Use:   "hash-credential [credential]",
	Short: "Print the Argon2id marker of a credential",
	Long: `Print the Argon2id marker of a credential. Without an argument the
credential is read from the first line of stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var credential string

		if len(args) == 1 {
			credential = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errNoCredential
			}

			credential = strings.TrimRight(line, "\r\n")
		}

		if credential == "" {
			return errNoCredential
		}

		marker, err := accounts.HashCredential(credential)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), marker)

		return err

	},
}
