package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gowasm/wasmcheck/wasm"
	"github.com/gowasm/wasmcheck/wasm/binary"
)

var summaryStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Decode and validate a single .wasm file",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	logger.Debug("reading module", zapPath(path))

	data, err := os.ReadFile(path)
	if err != nil {
		printFailure(cmd, "read error", err)
		return fmt.Errorf("read %s: %w", path, err)
	}

	m, err := binary.DecodeModule(data)
	if err != nil {
		printFailure(cmd, "parse error", err)
		return err
	}

	if err := wasm.Validate(m); err != nil {
		printFailure(cmd, "validation error", err)
		return err
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "ok: %s\n", path)
	summary := fmt.Sprintf("types     %d\nfunctions %d\ntables    %d\nmemories  %d\nglobals   %d",
		len(m.TypeSection), m.FunctionCount(), m.TableCount(), m.MemoryCount(), m.GlobalCount())
	fmt.Fprintln(cmd.OutOrStdout(), summaryStyle.Render(summary))
	return nil
}

func printFailure(cmd *cobra.Command, label string, err error) {
	color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "%s: %v\n", label, err)
}
