package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <cassette>",
	Short: "List the exchanges recorded in a cassette",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readInteractions(args[0])
		if err != nil {
			return err
		}

		if inspectJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(in)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tMETHOD\tURI\tSTATUS\tBODY")
		for i, req := range in.Requests {
			resp := in.Responses[i]
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%dB\n", i, req.Method, req.URI, resp.StatusCode, len(resp.Body))
		}
		return w.Flush()
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the full cassette as JSON")
	rootCmd.AddCommand(inspectCmd)
}
