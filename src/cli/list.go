package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"virt-otg/src/store"
)

func newListCmd(stdout, stderr io.Writer) *cobra.Command {
	var drive string
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backups present on the external drive",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := store.List(drive)
			if err != nil {
				return err
			}
			switch output {
			case "json":
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			case "table", "":
				return renderTable(stdout, entries)
			default:
				return fmt.Errorf("unsupported --output: %s", output)
			}
		},
	}
	cmd.Flags().StringVar(&drive, "drive", "", "Mount path of the external drive")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	cmd.MarkFlagRequired("drive")
	return cmd
}

func renderTable(w io.Writer, entries []store.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tTIMESTAMP\tFILES")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Kind, e.Timestamp, strings.Join(e.Files, ", "))
	}
	return tw.Flush()
}
