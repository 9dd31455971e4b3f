package command

// root.go defines the root command for the elibrary CLI and the state shared
// by its subcommands.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"elibrary/cmd/cli/authentication"
	"elibrary/cmd/cli/command/client"
	"elibrary/internal/logging"
	"elibrary/internal/viewstate"

	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, please run 'elibrary auth login'")

// app is built once flags and config are known.
type app struct {
	cfg     CLIConfig
	logger  *slog.Logger
	client  *client.HTTPClient
	store   *authentication.KeyringStore
	session *viewstate.Session
}

func (a *app) init(cfg CLIConfig, stderr io.Writer) {
	a.cfg = cfg
	a.logger = logging.New(stderr, cfg.LogLevel, "text")
	a.client = client.NewHTTPClient(cfg.APIURL, cfg.Timeout)
	a.store = authentication.NewKeyringStore(cfg.APIURL)
	a.session = viewstate.NewSession(a.client, a.store)
}

// restore loads a stored session, if any, without requiring one.
func (a *app) restore(ctx context.Context) {
	if err := a.session.Load(ctx); err != nil {
		a.logger.Warn("session_restore_failed", "error", err.Error())
	}
}

func (a *app) requireLogin(ctx context.Context) error {
	if err := a.session.Load(ctx); err != nil {
		return a.fail("could not restore session", err)
	}
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

// fail turns err into what the user should read, keeping the detail in the log.
func (a *app) fail(action string, err error) error {
	a.logger.Debug("command_failed", "action", action, "error", err.Error())
	return fmt.Errorf("%s: %s", action, viewstate.ErrorMessage(err))
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var (
		apiURL  string // overrides api_url from the config file
		cfgFile string
	)
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "elibrary",
		Short: "elibrary - library catalogue command line client",
		Long: `elibrary talks to an elibrary API server. You can use it to:
- Browse and search the catalogue
- Add, edit and delete books
- Borrow and return books

Use "elibrary [command] --help" to see all available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadCLIConfig(cfgFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api") {
				cfg.APIURL = apiURL
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			a.init(cfg, cmd.ErrOrStderr())
			return nil
		},
	}

	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", DefaultAPIURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigPath(), "config file path")

	rootCmd.AddCommand(newAuthCmd(a), newBookCmd(a), newGenresCmd(a), newBrowseCmd(a))
	return rootCmd
}

// Execute runs the CLI. This is called by main.main().
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}
