// Package cli implements the typesmith command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

var flags rootFlags

// NewRootCmd creates the top-level "typesmith" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}
	root := &cobra.Command{
		Use:   "typesmith",
		Short: "Editor for types.xml item configuration files",
		Long: "typesmith browses and edits the records of a types.xml document:\n" +
			"single-record edits with undo, and bulk multipliers, scaling and\n" +
			"entry changes over a checked selection.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory for UI state and history (default: platform data dir)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newOpenCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newShowCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		os.Exit(exitSuccess)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(exitCode(err))
}

// exitCode maps errors caused by input to exitUserError and everything else
// to exitSysError.
func exitCode(err error) int {
	for _, target := range []error{
		types.ErrParse,
		types.ErrRecordNotFound,
		types.ErrLogLevelUnknown,
		types.ErrSliderDefaultBounds,
		os.ErrNotExist,
	} {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}
