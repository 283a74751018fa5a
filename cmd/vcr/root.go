package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tapedeck/vcr"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "vcr",
	Short: "Inspect and scrub HTTP cassette files",
	Long: `vcr works with cassette files recorded by the vcr library: ordered
lists of HTTP request/response exchanges used to replay interactions
deterministically in tests.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// serializerFor picks a serializer based on the file extension.
func serializerFor(path string) vcr.Serializer {
	if strings.HasSuffix(path, ".json") {
		return vcr.JSON
	}
	return vcr.YAML
}

func readInteractions(path string) (*vcr.Interactions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	in, err := serializerFor(path).Deserialize(b)
	if err != nil {
		return nil, fmt.Errorf("read cassette %s: %w", path, err)
	}
	return in, nil
}
