package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Heban-7/governed-ai-native-ide/pkg/content"
)

// newHashCmd runs the Content Hasher standalone against a file, an
// optional line range, and an optional inserted-content hint.
func newHashCmd() *cobra.Command {
	var (
		startLine int
		endLine   int
		insert    string
		showText  bool
	)

	cmd := &cobra.Command{
		Use:   "hash <file>",
		Short: "Compute the canonical content hash of a file or line range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			var rng *content.Range
			if startLine > 0 || endLine > 0 {
				rng = &content.Range{StartLine: startLine, EndLine: endLine}
			}

			h := content.Compute(data, rng, insert)
			fmt.Printf("digest:   %s\n", h.Digest)
			fmt.Printf("strategy: %s\n", h.Strategy)
			if showText {
				fmt.Printf("canonical:\n%s\n", h.Canonical)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&startLine, "start", 0, "1-indexed start line of the range to hash")
	cmd.Flags().IntVar(&endLine, "end", 0, "1-indexed end line of the range to hash (inclusive)")
	cmd.Flags().StringVar(&insert, "insert", "", "inserted-content hint used by the fallback strategy")
	cmd.Flags().BoolVar(&showText, "show-canonical", false, "print the canonicalized text that was hashed")
	return cmd
}
