package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Heban-7/governed-ai-native-ide/pkg/handshake"
	"github.com/Heban-7/governed-ai-native-ide/pkg/intent"
)

// newHandshakeCmd renders the <intent_context> XML block an agent
// adapter would inject into the model's context after selecting an
// intent, without needing a live session.
func newHandshakeCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "handshake <intent-id>",
		Short: "Render the intent_context XML block for an intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := intent.NewStore()
			intents, err := store.Load(dir)
			if err != nil {
				return fmt.Errorf("loading intents: %w", err)
			}

			it, ok := intents[args[0]]
			if !ok {
				return fmt.Errorf("unknown intent %q in %s", args[0], dir)
			}

			fmt.Println(handshake.RenderXML(it))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "working directory containing .orchestration/active_intents.yaml")
	return cmd
}
