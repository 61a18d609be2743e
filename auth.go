package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/gopener/internal/auth"
)

var errBrowserDisabled = errors.New("browser launch disabled")

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Google Drive in the browser",
		Long: `Sign in with the OAuth authorization code flow.

A local server on the configured redirect URI receives the authorization
code. With --no-browser the consent URL is printed instead of opened.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}

	cmd.Flags().Bool("no-browser", false, "print the authorization URL instead of opening a browser")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved token",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the sign-in state",
		Long: `Show whether gopener is signed in. A token close to expiry is refreshed
first unless --offline is given.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}

	cmd.Flags().Bool("offline", false, "report from stored state without refreshing")

	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	logger := cc.Logger

	noBrowser, err := cmd.Flags().GetBool("no-browser")
	if err != nil {
		return err
	}

	sess, err := NewSession(cc)
	if err != nil {
		return err
	}

	openURL := browser.OpenURL
	if noBrowser {
		openURL = func(string) error { return errBrowserDisabled }
	}

	// Keep pkg/browser's own output off stdout so --json stays parseable.
	browser.Stdout = os.Stderr

	ctx, stop := interruptContext(cmd.Context(), logger)
	defer stop()

	logger.Info("login started")

	st, err := sess.Auth.Login(ctx, openURL)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	logger.Info("login successful", slog.Time("expires_at", st.Expiry()))

	if cc.Flags.JSON {
		return printJSON(os.Stdout, newStatusOutput(st, nil))
	}

	cc.Statusf("Signed in. Access token expires %s.\n", formatExpiry(st.Expiry(), time.Now()))

	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	sess, err := NewSession(cc)
	if err != nil {
		return err
	}

	sess.Auth.SignOut()
	cc.Statusf("Signed out.\n")

	return nil
}

// statusOutput is the JSON schema for `status --json`.
type statusOutput struct {
	State         string             `json:"state"`
	Authenticated bool               `json:"authenticated"`
	ExpiresAt     string             `json:"expires_at,omitempty"`
	Client        *auth.ClientConfig `json:"client,omitempty"`
}

func newStatusOutput(st auth.AuthState, client *auth.ClientConfig) statusOutput {
	out := statusOutput{
		State:         st.State.String(),
		Authenticated: st.IsAuthenticated,
		Client:        client,
	}

	if exp := st.Expiry(); !exp.IsZero() {
		out.ExpiresAt = exp.UTC().Format(time.RFC3339)
	}

	return out
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	offline, err := cmd.Flags().GetBool("offline")
	if err != nil {
		return err
	}

	sess, err := NewSession(cc)
	if err != nil {
		return err
	}

	var st auth.AuthState
	if offline {
		st, err = sess.Auth.Inspect()
	} else {
		st, err = sess.Auth.CheckState(cmd.Context())
	}

	if err != nil {
		return fmt.Errorf("checking sign-in state: %w", err)
	}

	client, err := sess.Auth.ClientConfig()
	if err != nil {
		return fmt.Errorf("reading client config: %w", err)
	}

	if cc.Flags.JSON {
		return printJSON(os.Stdout, newStatusOutput(st, &client))
	}

	printStatusText(st, client, time.Now())

	return nil
}

func printStatusText(st auth.AuthState, client auth.ClientConfig, now time.Time) {
	fmt.Printf("State:   %s\n", st.State)

	if st.IsAuthenticated {
		fmt.Printf("Expires: %s (%s)\n", st.Expiry().Format(time.RFC1123), formatExpiry(st.Expiry(), now))
	}

	kind := "built-in"
	if client.UseCustom {
		kind = "custom"
	}

	fmt.Printf("Client:  %s (%s)\n", client.ClientID, kind)

	switch st.State {
	case auth.StateSignedOut, auth.StateRefreshRejected:
		fmt.Println("\nRun 'gopener login' to sign in.")
	case auth.StateAwaitingCode:
		fmt.Println("\nA sign-in was started but not finished. Run 'gopener login' again.")
	case auth.StateStale:
		fmt.Println("\nThe access token is about to expire; it will be refreshed on next use.")
	}
}
