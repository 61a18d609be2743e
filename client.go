package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage the OAuth client used to sign in",
		Long: `Show, set or clear custom OAuth client credentials.

Without custom credentials gopener signs in as its built-in client. Changing
the client does not sign you out; run 'gopener login' to get a token issued
to the new client.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective OAuth client",
		Args:  cobra.NoArgs,
		RunE:  runClientShow,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <client-id> [client-secret]",
		Short: "Use a custom OAuth client",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runClientSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Revert to the built-in OAuth client",
		Args:  cobra.NoArgs,
		RunE:  runClientClear,
	})

	return cmd
}

func runClientShow(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	sess, err := NewSession(cc)
	if err != nil {
		return err
	}

	client, err := sess.Auth.ClientConfig()
	if err != nil {
		return err
	}

	if cc.Flags.JSON {
		return printJSON(os.Stdout, client)
	}

	secret := "no"
	if client.HasClientSecret {
		secret = "yes"
	}

	fmt.Printf("Custom:    %t\n", client.UseCustom)
	fmt.Printf("Client ID: %s\n", client.ClientID)
	fmt.Printf("Secret:    %s\n", secret)

	return nil
}

func runClientSet(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	sess, err := NewSession(cc)
	if err != nil {
		return err
	}

	var secret string
	if len(args) == 2 {
		secret = args[1]
	}

	if err := sess.Auth.SaveCustomCredentials(args[0], secret); err != nil {
		return err
	}

	cc.Statusf("Custom client saved. Run 'gopener login' to sign in with it.\n")

	return nil
}

func runClientClear(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	sess, err := NewSession(cc)
	if err != nil {
		return err
	}

	sess.Auth.ClearCustomCredentials()
	cc.Statusf("Reverted to the built-in client.\n")

	return nil
}
