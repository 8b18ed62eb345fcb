package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cosmosdump/internal/dump/adapter/output"
	"cosmosdump/internal/dump/config"
	apperrors "cosmosdump/internal/shared/errors"

	"github.com/spf13/cobra"
)

func newInspectCommand(stdout io.Writer) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:           "inspect <file>",
		Short:         "Summarize an existing dump file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				format = formatFromPath(path)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return apperrors.NewPersistenceError(fmt.Sprintf("failed to read %s", path)).WithCause(err).WithComponent("inspect")
			}

			dump, err := output.Decode(data, format)
			if err != nil {
				return err
			}

			for _, db := range dump.Databases {
				fmt.Fprintf(stdout, "%s\n", db.Name)
				for _, c := range db.Collections {
					fmt.Fprintf(stdout, "  %s\t%d documents\n", c.Name, len(c.Documents))
				}
			}
			stats := dump.Stats()
			fmt.Fprintf(stdout, "total: %d databases, %d collections, %d documents\n",
				stats.Databases, stats.Collections, stats.Documents)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "dump format: json or yaml (default from file extension)")
	return cmd
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.FormatYAML
	default:
		return config.FormatJSON
	}
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "cosmosdump %s\n", version)
		},
	}
}
