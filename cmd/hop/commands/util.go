package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func asJson(data any) string {
	bz, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(bz)
}

func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVar(format, "format", "json", "Format may be json or yaml")
}

func printData(cmd *cobra.Command, format string, data any) error {
	switch format {
	case "json":
		fmt.Fprintln(cmd.OutOrStdout(), asJson(data))
	case "yaml":
		bz, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(bz))
	default:
		return fmt.Errorf("invalid format '%s', use json or yaml", format)
	}
	return nil
}
