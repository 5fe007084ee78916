package cli

import (
	"fmt"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/typesmith/internal/logger"
	"github.com/mesh-intelligence/typesmith/internal/shell"
)

const historyFileName = "history"

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [file]",
		Short: "Start the interactive editor",
		Long:  "Start the interactive editor shell, optionally loading a document first.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runOpen,
	}
}

func runOpen(cmd *cobra.Command, args []string) (err error) {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()
	if err := a.openResources(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sh := shell.New(a.newEditor(), a.store, out, logger.L)
	if len(args) == 1 {
		if err := sh.Open(args[0]); err != nil {
			return err
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          sh.Prompt(),
		HistoryFile:     filepath.Join(a.dataDir, historyFileName),
		AutoComplete:    shell.Completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          out,
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(out, "typesmith", Version, "- type 'help' for commands")
	return sh.Run(rl)
}
