package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tapedeck/vcr"
)

var (
	scrubHeaders []string
	scrubQuery   []string
	scrubForm    []string
	scrubOutput  string
)

var scrubCmd = &cobra.Command{
	Use:   "scrub <cassette>",
	Short: "Redact headers, query or form parameters from a cassette",
	Long: `Scrub rewrites an existing cassette with the named headers, query
parameters and POST body parameters removed from every recorded request,
and the named headers removed from every recorded response. The cassette
is rewritten in place unless --output is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		in, err := readInteractions(path)
		if err != nil {
			return err
		}

		for _, req := range in.Requests {
			vcr.RemoveHeaders(req, scrubHeaders)
			vcr.RemoveQueryParameters(req, scrubQuery)
			vcr.RemovePostDataParameters(req, scrubForm)
		}
		for _, resp := range in.Responses {
			vcr.RemoveResponseHeaders(resp, scrubHeaders)
		}

		out := scrubOutput
		if out == "" {
			out = path
		}
		b, err := serializerFor(out).Serialize(in)
		if err != nil {
			return fmt.Errorf("serialize cassette %s: %w", out, err)
		}
		if err := os.WriteFile(out, b, 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "scrubbed %d exchange(s) into %s\n", len(in.Requests), out)
		return nil
	},
}

func init() {
	scrubCmd.Flags().StringSliceVar(&scrubHeaders, "header", nil, "header to remove (repeatable)")
	scrubCmd.Flags().StringSliceVar(&scrubQuery, "query", nil, "query parameter to remove (repeatable)")
	scrubCmd.Flags().StringSliceVar(&scrubForm, "form", nil, "POST body parameter to remove (repeatable)")
	scrubCmd.Flags().StringVarP(&scrubOutput, "output", "o", "", "write result to this file instead of in place")
	rootCmd.AddCommand(scrubCmd)
}
