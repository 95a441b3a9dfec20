package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/evalguard/internal/infrastructure/config"
	"github.com/GriffinCanCode/evalguard/internal/infrastructure/logging"
)

// Exit codes
const (
	ExitOK      = 0
	ExitBlocked = 1
	ExitError   = 2
)

// ErrBlocked is returned by check when a snippet is rejected. The verdict
// has already been printed.
var ErrBlocked = errors.New("snippet blocked")

type rootOptions struct {
	verbose bool
	cfg     *config.Config
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "evalguard",
		Short: "Security gate for browser-eval script snippets",
		Long: "Rejects script snippets that reach for network, storage, code\n" +
			"execution, credential or navigation capabilities before a browser\n" +
			"automation tool runs them in a page.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		newCheckCmd(opts),
		newRulesCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// logger is silent unless --verbose is set; verdicts go to stdout
func (o *rootOptions) logger() *logging.Logger {
	if !o.verbose {
		return logging.Nop()
	}
	return logging.NewFromSettings(o.cfg.Logging.Level, o.cfg.Logging.Development)
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	return run(NewRootCmd(), os.Args[1:])
}

func run(cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrBlocked):
		return ExitBlocked
	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return ExitError
	}
}
