package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/strbounds/internal/core/auth"
	"github.com/solatis/strbounds/internal/core/config"
	"github.com/solatis/strbounds/internal/types"
)

func newAPIKeyCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage filter API keys",
	}
	cmd.AddCommand(newAPIKeyCreateCmd(opts), newAPIKeyRevokeCmd(opts))
	return cmd
}

// authenticator opens the key store with the secrets from the environment.
func (o *options) authenticator(cmd *cobra.Command) (*auth.Authenticator, func(), error) {
	secrets, err := config.HMACSecrets()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	queries, closeDB, err := o.openQueries(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return auth.NewAuthenticator(secrets, queries), closeDB, nil
}

func newAPIKeyCreateCmd(opts *options) *cobra.Command {
	var client, name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue an API key for a client",
		Long:  `Issues a key and prints it once. Only its HMAC is stored; a lost key cannot be recovered.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeDB, err := opts.authenticator(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			id, key, err := a.CreateAPIKey(cmd.Context(), types.ClientID(client), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id:  %s\nkey: %s\n", id, key)
			return nil
		},
	}

	cmd.Flags().StringVar(&client, "client", "", "client the key authenticates as")
	cmd.Flags().StringVar(&name, "name", "default", "label for the key")
	cmd.MarkFlagRequired("client")
	return cmd
}

func newAPIKeyRevokeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke ID",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeDB, err := opts.authenticator(cmd)
			if err != nil {
				return err
			}
			defer closeDB()
			return a.Revoke(cmd.Context(), args[0])
		},
	}
}
