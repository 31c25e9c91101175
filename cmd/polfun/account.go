package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/muurk/polfunbox/internal/config"
	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/pairing"
	"github.com/muurk/polfunbox/internal/ui"
	"github.com/muurk/polfunbox/internal/xtream"
)

// Account command flags
var (
	pairWait    time.Duration
	serverURL   string
	username    string
	password    string
	skipConfirm bool
)

const requestTimeout = 30 * time.Second

func init() {
	pairCmd.Flags().DurationVar(&pairWait, "wait", 0, "Keep polling until the code is registered, up to this long (0 = check once)")

	for _, cmd := range []*cobra.Command{loginCmd, registerCmd} {
		cmd.Flags().StringVar(&serverURL, "server", "", "Panel URL, e.g. http://panel.example:8080")
		cmd.Flags().StringVar(&username, "user", "", "Account user name")
		cmd.Flags().StringVar(&password, "pass", "", "Account password (prompted when omitted on a terminal)")
		_ = cmd.MarkFlagRequired("server")
		_ = cmd.MarkFlagRequired("user")
	}

	logoutCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(pairCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
}

// pairCmd logs in with the device code
var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Log in with the device code",
	Long: `Show this device's pairing code and ask the pairing service whether an
account has been assigned to it. On success the account is verified
against its panel and saved, so the next start logs in by itself.`,
	Example: `  # Check once
  polfun pair

  # Wait up to ten minutes for the code to be registered
  polfun pair --wait 10m`,
	RunE: runPair,
}

func runPair(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	profile := config.NewProfile(store)
	code, err := deviceCode(profile)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("Device Pairing", "polfun pair", map[string]string{"Device code": code})

	ctx := cmd.Context()
	client := pairing.NewClient()
	if _, err := client.FetchConfig(ctx); err != nil {
		logging.Debug("Using default pairing endpoints", zap.Error(err))
	}

	var creds xtream.Credentials
	if pairWait > 0 {
		found := make(chan xtream.Credentials, 1)
		_, err = printer.Wait(ctx, "Waiting for code "+code+" to be registered", pairWait,
			func(ctx context.Context) (map[string]string, error) {
				c, err := client.WaitForDevice(ctx, code, pairing.DefaultPollInterval)
				if err != nil {
					return nil, err
				}
				found <- c
				return nil, nil
			})
		if err == nil {
			creds = <-found
		}
	} else {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		creds, err = client.CheckDevice(reqCtx, code)
		cancel()
	}

	var rejected *pairing.RejectedError
	switch {
	case errors.As(err, &rejected):
		printer.PrintWarning("Device not registered", map[string]string{
			"Code":    code,
			"Service": rejected.Message,
		})
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		printer.PrintWarning("Device not registered", map[string]string{
			"Code":   code,
			"Waited": pairWait.String(),
		})
		return nil
	case errors.Is(err, context.Canceled):
		printer.Println(ui.NoteStyle.Render("  Cancelled."))
		return nil
	case err != nil:
		printer.PrintError("Pairing failed", err, []string{
			"Check the network connection",
			"Run with --log-level debug for request details",
		})
		return err
	}

	return signIn(cmd, printer, profile, creds)
}

// loginCmd logs in with explicit credentials
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with server, user and password",
	Long: `Verify an Xtream-Codes account against its panel and save it as the
session used by the terminal UI and the other commands.`,
	Example: `  polfun login --server http://panel.example:8080 --user jan

  # Non-interactive
  polfun login --server http://panel.example:8080 --user jan --pass secret`,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	creds, err := flagCredentials()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("Login", "polfun login", map[string]string{
		"Server": logging.RedactURL(creds.ServerURL),
		"User":   creds.Username,
	})
	return signIn(cmd, printer, config.NewProfile(store), creds)
}

// signIn authenticates creds and saves them as the session.
func signIn(cmd *cobra.Command, printer *ui.Printer, profile *config.Profile, creds xtream.Credentials) error {
	client, err := xtream.NewClient(creds)
	if err != nil {
		printer.PrintError("Login failed", err, nil)
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()
	account, err := client.Authenticate(ctx)
	if err != nil {
		printer.PrintError("Login failed", err, loginTroubleshooting(err))
		return fmt.Errorf("login failed: %s", xtream.UserMessage(err))
	}

	if err := profile.SaveSession(creds); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	details := map[string]string{
		"Server": logging.RedactURL(creds.ServerURL),
		"User":   creds.Username,
	}
	if info := account.UserInfo; info != nil {
		details["Status"] = info.Status
		details["Connections"] = info.ActiveConnections.String() + " / " + info.MaxConnections.String()
		if exp := info.ExpDate.Int(); exp > 0 {
			details["Expires"] = time.Unix(exp, 0).Format("2006-01-02")
		}
	}
	printer.PrintSuccess("Logged in", details)
	return nil
}

func loginTroubleshooting(err error) []string {
	switch {
	case xtream.IsAuthError(err):
		return []string{"Check the user name and password", "The account may have been disabled by the provider"}
	case xtream.IsExpired(err):
		return []string{"The subscription has expired; contact the provider"}
	case xtream.IsNetworkError(err):
		return []string{"Check the server URL, including the port", "Check the network connection"}
	}
	return nil
}

// registerCmd submits an account for activation
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Submit an account for activation on this device",
	Long: `Send server, user and password to the pairing service for this device's
code. Once the provider activates it, 'polfun pair' logs in.`,
	Example: `  polfun register --server http://panel.example:8080 --user jan --pass secret`,
	RunE:    runRegister,
}

func runRegister(cmd *cobra.Command, args []string) error {
	creds, err := flagCredentials()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	code, err := deviceCode(config.NewProfile(store))
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	client := pairing.NewClient()
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()
	if _, err := client.FetchConfig(ctx); err != nil {
		logging.Debug("Using default pairing endpoints", zap.Error(err))
	}

	msg, err := client.Register(ctx, code, creds)
	if err != nil {
		printer.PrintError("Registration failed", err, nil)
		return err
	}
	printer.PrintSuccess("Registration sent", map[string]string{
		"Code":    code,
		"Service": msg,
	})
	return nil
}

// logoutCmd forgets the session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Long: `Remove the saved server, user and password. Favourites, watch history
and settings are kept.`,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	profile := config.NewProfile(store)
	printer := ui.NewPrinter(cmd.OutOrStdout())

	creds, ok := profile.Session()
	if !ok {
		printer.Println("Not logged in.")
		return nil
	}

	if !skipConfirm {
		warnings := []string{
			"The session for " + creds.Username + " will be removed",
			"You will have to pair or log in again",
		}
		if !printer.Confirm(cmd.InOrStdin(), "Log out?", warnings) {
			return nil
		}
	}

	if err := profile.ClearSession(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	printer.PrintSuccess("Logged out", map[string]string{"User": creds.Username})
	return nil
}

// flagCredentials reads --server, --user and --pass, prompting for the
// password on a terminal.
func flagCredentials() (xtream.Credentials, error) {
	pass := password
	if pass == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return xtream.Credentials{}, fmt.Errorf("failed to read password: %w", err)
		}
		pass = string(b)
	}
	creds := xtream.Credentials{
		ServerURL: strings.TrimSpace(serverURL),
		Username:  strings.TrimSpace(username),
		Password:  strings.TrimSpace(pass),
	}
	if !creds.Valid() {
		return creds, errors.New("--server, --user and a password are required")
	}
	return creds, nil
}
