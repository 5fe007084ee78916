package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ec := effectiveConfig{ConfigDir: a.configDir, DataDir: a.dataDir, Config: a.cfg}
			out := cmd.OutOrStdout()
			if flags.jsonMode {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(ec)
			}
			data, err := marshalConfig(ec)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
}
