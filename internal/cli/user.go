package cli

import (
	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Register a user identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{
				"username": args[0],
				"secret":   secret,
			}

			var result User
			if err := client.Post("/api/v1/users", body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&secret, "secret", "s", "", "Credential secret for the identity")

	return cmd
}
