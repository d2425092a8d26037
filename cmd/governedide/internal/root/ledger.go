package root

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Heban-7/governed-ai-native-ide/pkg/cli"
	"github.com/Heban-7/governed-ai-native-ide/pkg/ledger"
)

// newLedgerCmd groups the read-only trace-ledger debugging commands.
func newLedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the .orchestration/agent_trace.jsonl audit ledger",
	}
	cmd.AddCommand(newLedgerTailCmd())
	return cmd
}

func newLedgerTailCmd() *cobra.Command {
	var (
		dir    string
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print trace-ledger records, optionally following new ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(dir, ".orchestration", "agent_trace.jsonl")
			printer := cli.NewPrinter(os.Stdout)
			return tailLedger(cmd.Context(), path, follow, printer)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "working directory containing .orchestration/")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep reading new records as they are appended")
	return cmd
}

// tailLedger reads complete JSONL lines from path starting at offset
// zero, printing each as it becomes available. With follow set it
// keeps polling for newly appended lines (and for the file's creation,
// if it does not exist yet) instead of stopping at EOF.
func tailLedger(ctx context.Context, path string, follow bool, printer *cli.Printer) error {
	var offset int64

	for {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if !follow {
				return fmt.Errorf("no ledger at %s yet", path)
			}
			data = nil
		}

		if int64(len(data)) > offset {
			chunk := data[offset:]
			lastNL := bytes.LastIndexByte(chunk, '\n')
			if lastNL >= 0 {
				for _, line := range bytes.Split(chunk[:lastNL], []byte("\n")) {
					if len(line) > 0 {
						printRecord(printer, line)
					}
				}
				offset += int64(lastNL) + 1
			}
		}

		if !follow {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func printRecord(printer *cli.Printer, line []byte) {
	var rec ledger.TraceRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		printer.Printf("%s\n", string(line))
		return
	}
	printer.PrintLedgerRecord(rec)
}
