package cmd

import (
	"github.com/bnema/arcprompt/internal/domain"
	"github.com/spf13/cobra"
)

type headerOptions struct {
	tone      string
	language  string
	genre     string
	scene     string
	arc       string
	character string
	asJSON    bool
	report    bool
}

func newHeaderCmd(root *rootOptions) *cobra.Command {
	opts := &headerOptions{}

	cmd := &cobra.Command{
		Use:   "header",
		Short: "Resolve one annotated prompt header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := root.wireApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.logger.Sync() }()

			result := app.engine.BuildHeader(
				domain.Preferences{
					Tone:     domain.Tone(opts.tone),
					Language: domain.Language(opts.language),
					Genre:    opts.genre,
				},
				domain.DocumentContext{
					Scene:         opts.scene,
					Arc:           domain.Arc(opts.arc),
					CharacterName: opts.character,
				},
			)

			if err := writeHeaderOutput(cmd.OutOrStdout(), result, opts.asJSON); err != nil {
				return err
			}
			if opts.report {
				return writeDiagnosticsReport(cmd.ErrOrStderr(), app)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.tone, "tone", string(domain.DefaultTone), "Tone (friendly, formal, casual, professional, playful, dramatic)")
	cmd.Flags().StringVar(&opts.language, "language", string(domain.DefaultLanguage), "Language code (en, es, fr, de, it, pt, ja)")
	cmd.Flags().StringVar(&opts.genre, "genre", domain.DefaultGenre, "Genre label")
	cmd.Flags().StringVar(&opts.scene, "scene", "", "Scene description")
	cmd.Flags().StringVar(&opts.arc, "arc", string(domain.ArcSetup), "Story arc stage (setup, rising, climax, resolution)")
	cmd.Flags().StringVar(&opts.character, "character", "", "Character name injected into the pattern")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Output the full result as JSON")
	cmd.Flags().BoolVar(&opts.report, "report", false, "Print the fallback diagnostics report to stderr")

	return cmd
}
