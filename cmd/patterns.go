package cmd

import (
	"fmt"
	"sort"
	"strings"

	libraryadapter "github.com/bnema/arcprompt/internal/adapters/library"
	"github.com/bnema/arcprompt/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPatternsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect and convert pattern libraries",
	}

	cmd.AddCommand(newPatternsListCmd(root), newPatternsImportCmd(root))
	return cmd
}

func newPatternsListCmd(root *rootOptions) *cobra.Command {
	var (
		genre  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the effective patterns (user libraries layered over built-ins)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := root.wireApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.logger.Sync() }()

			patterns := app.library.Patterns()
			if genre = strings.TrimSpace(genre); genre != "" {
				arcs, ok := patterns[genre]
				if !ok {
					return fmt.Errorf("genre %q has no patterns", genre)
				}
				patterns = map[string]map[string]string{genre: arcs}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), patterns)
			}

			for _, line := range patternLines(patterns) {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&genre, "genre", "", "Only list this genre")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

// patternLines renders genre/arc: pattern, genres sorted, arcs in story order.
func patternLines(patterns map[string]map[string]string) []string {
	genres := make([]string, 0, len(patterns))
	for genre := range patterns {
		genres = append(genres, genre)
	}
	sort.Strings(genres)

	var lines []string
	for _, genre := range genres {
		for _, arc := range domain.Arcs() {
			if pattern, ok := patterns[genre][string(arc)]; ok {
				lines = append(lines, fmt.Sprintf("%s/%s: %s", genre, arc, pattern))
			}
		}
	}

	return lines
}

func newPatternsImportCmd(root *rootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a pattern library into another backend",
		Long:  "import reads a library (.yaml, .toml, .db or directory) and writes it to --to. SQLite targets are upserted; file and directory targets are written in place.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := root.newLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			source, err := libraryadapter.Open(cmd.Context(), from)
			if err != nil {
				return fmt.Errorf("open source library: %w", err)
			}

			count, err := libraryadapter.Save(cmd.Context(), to, source.Patterns())
			if err != nil {
				return fmt.Errorf("write target library: %w", err)
			}

			logger.Info("imported pattern library", zap.String("from", from), zap.String("to", to), zap.Int("patterns", count))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d patterns from %s into %s\n", count, from, to)
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source library")
	cmd.Flags().StringVar(&to, "to", "", "Target library")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
