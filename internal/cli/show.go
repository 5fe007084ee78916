package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/typesmith/internal/document"
	"github.com/mesh-intelligence/typesmith/internal/fields"
)

// fieldRow is one field of "typesmith show".
type fieldRow struct {
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Value any    `json:"value"`
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file> <name>",
		Short: "Print the fields of one record",
		Args:  cobra.ExactArgs(2),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	doc, err := document.LoadFile(args[0])
	if err != nil {
		return err
	}
	rec, err := doc.FindRecord(args[1])
	if err != nil {
		return fmt.Errorf("record %q: %w", args[1], err)
	}

	layout := fields.Build(doc, rec)
	rows := make([]fieldRow, 0, layout.Len())
	for _, h := range layout.Handles() {
		rows = append(rows, fieldRow{Label: fields.Label(h), Kind: h.Kind, Value: h.Value()})
	}

	out := cmd.OutOrStdout()
	if flags.jsonMode {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%-18s %v\n", r.Label, r.Value)
	}
	return nil
}
