package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/typesmith/internal/document"
	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// recordRow is one line of "typesmith list".
type recordRow struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Nominal  string `json:"nominal,omitempty"`
	Lifetime string `json:"lifetime,omitempty"`
}

func newListCmd() *cobra.Command {
	var categories []string
	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "List the records of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args[0], categories)
		},
	}
	cmd.Flags().StringSliceVar(&categories, "category", nil, "only records in these categories")
	return cmd
}

func runList(cmd *cobra.Command, path string, categories []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	doc, err := document.LoadFile(path)
	if err != nil {
		return err
	}

	var filter map[string]bool
	if cmd.Flags().Changed("category") {
		filter = make(map[string]bool, len(categories))
		for _, c := range categories {
			filter[c] = true
		}
	}

	rows := make([]recordRow, 0, doc.Len())
	for _, rec := range doc.FilterByCategory(filter) {
		rows = append(rows, recordRow{
			Name:     rec.Name(),
			Category: childAttr(doc, rec, types.TagCategory),
			Nominal:  childText(doc, rec, types.ParamNominal),
			Lifetime: childText(doc, rec, types.ParamLifetime),
		})
	}

	out := cmd.OutOrStdout()
	if flags.jsonMode {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%-32s %-14s nominal=%-6s lifetime=%s\n", r.Name, r.Category, r.Nominal, r.Lifetime)
	}
	fmt.Fprintf(out, "%d of %d records\n", len(rows), doc.Len())
	return nil
}

func childText(doc *document.Document, rec *document.Record, tag string) string {
	if el := doc.Child(rec, tag); el != nil {
		return document.Text(el)
	}
	return ""
}

func childAttr(doc *document.Document, rec *document.Record, tag string) string {
	if el := doc.Child(rec, tag); el != nil {
		return document.AttrValue(el, types.AttrName)
	}
	return ""
}
