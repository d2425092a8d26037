package root

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Heban-7/governed-ai-native-ide/pkg/cli"
	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
	"github.com/Heban-7/governed-ai-native-ide/pkg/config"
	"github.com/Heban-7/governed-ai-native-ide/pkg/permissions"
)

// newClassifyCmd runs the Command Classifier standalone against a tool
// name and a JSON payload file, prints the resulting Classification,
// and additionally reports how the configured tool-override patterns
// would have voted on the same call.
func newClassifyCmd() *cobra.Command {
	var (
		payloadPath string
		configPath  string
	)

	cmd := &cobra.Command{
		Use:   "classify <tool-name>",
		Short: "Classify a tool invocation's risk and mutation shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPayload(payloadPath)
			if err != nil {
				return err
			}

			payload, err := classifier.ParsePayload(raw)
			if err != nil {
				return fmt.Errorf("parsing payload: %w", err)
			}

			c := classifier.Classify(args[0], payload)

			printer := cli.NewPrinter(os.Stdout)
			printer.PrintClassification(args[0], c)
			if len(payload) > 0 {
				printer.PrintPayload(raw)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			checker := permissions.NewChecker(cfg.ToolOverrides.Allow, cfg.ToolOverrides.Deny)
			if !checker.IsEmpty() {
				printer.Printf("  override: %s\n", checker.CheckWithArgs(args[0], payload))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&payloadPath, "payload", "", "path to a JSON payload file (defaults to stdin, - also reads stdin)")
	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "path to the GovernanceConfig YAML file")
	return cmd
}

func readPayload(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
