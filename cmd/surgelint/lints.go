package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var lintsCmd = &cobra.Command{
	Use:   "lints",
	Short: "List the known lints",
	Long:  "List every lint the built-in passes can produce, with its code, default severity and a short description.",
	Args:  cobra.NoArgs,
	RunE:  runLints,
}

func init() {
	lintsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type lintPayload struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Severity string `json:"default_severity"`
	Doc      string `json:"doc,omitempty"`
}

func runLints(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	lints := newRegistry().Lints()

	if format == "json" {
		payload := make([]lintPayload, len(lints))
		for i, l := range lints {
			payload[i] = lintPayload{
				Name:     l.Name,
				Code:     l.Code.ID(),
				Severity: strings.ToLower(l.Default.String()),
				Doc:      l.Doc,
			}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	if format != "pretty" {
		return exitWith(2, fmt.Errorf("unsupported format %q (must be pretty or json)", format))
	}

	nameColor := color.New(color.FgCyan, color.Bold)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	for _, l := range lints {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			nameColor.Sprint(l.Name), l.Code.ID(), strings.ToLower(l.Default.String()), l.Doc)
	}
	return w.Flush()
}
