// Package root builds the governed-ide cobra command tree: persistent
// flags for logging, and the classify/hash/ledger/handshake debugging
// subcommands wired straight into the governance packages.
package root

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Heban-7/governed-ai-native-ide/pkg/logging"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	debugMode   bool
	logFilePath string

	logFile io.Closer
}

// NewRootCmd builds the governed-ide command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "governed-ide",
		Short:         "Debugging CLI for the agent governance pipeline",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return flags.setupLogging()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if flags.logFile != nil {
				flags.logFile.Close()
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&flags.debugMode, "debug", false, "enable debug-level logging")
	cmd.PersistentFlags().StringVar(&flags.logFilePath, "log-file", "", "write logs to this file instead of stderr (rotated)")

	cmd.AddCommand(
		newClassifyCmd(),
		newHashCmd(),
		newLedgerCmd(),
		newHandshakeCmd(),
	)

	return cmd
}

// setupLogging wires slog through a RotatingFile sink when --log-file
// is set, or to stderr otherwise, and installs it as the process-wide
// default logger.
func (f *rootFlags) setupLogging() error {
	level := slog.LevelInfo
	if f.debugMode {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	if f.logFilePath != "" {
		rf, err := logging.NewRotatingFile(f.logFilePath)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		f.logFile = rf
		w = rf
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}
