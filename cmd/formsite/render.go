package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsite/internal/site"
	"github.com/goliatone/go-formsite/pkg/orchestrator"
	"github.com/goliatone/go-formsite/pkg/render"
	"github.com/goliatone/go-formsite/pkg/themes"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the survey form as HTML",
		Long:  `Renders the unbound survey form with the vanilla renderer in the configured theme, optionally applying a YAML preset of labels and help text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			preset, _ := cmd.Flags().GetString("preset")
			action, _ := cmd.Flags().GetString("action")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			themeName, variant := cfg.Theme, cfg.ThemeVariant
			if cmd.Flags().Changed("theme") {
				themeName, _ = cmd.Flags().GetString("theme")
			}
			if cmd.Flags().Changed("variant") {
				variant, _ = cmd.Flags().GetString("variant")
			}

			options := []orchestrator.Option{
				orchestrator.WithThemeSelector(themes.NewSelector(themes.Builtin(cfg.StaticURL))),
				orchestrator.WithDefaultTheme(themeName, variant),
			}
			if preset != "" {
				transformer, err := orchestrator.NewPresetTransformerFromFS(os.DirFS(filepath.Dir(preset)), filepath.Base(preset))
				if err != nil {
					return err
				}
				options = append(options, orchestrator.WithTransformer(transformer))
			}

			gen := orchestrator.New(options...)
			html, err := gen.Generate(cmd.Context(), orchestrator.Request{
				Form:          site.SurveyForm().Unbound(),
				RenderOptions: render.RenderOptions{Action: action},
			})
			if err != nil {
				return fmt.Errorf("render survey: %w", err)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(html)
				return err
			}
			if err := os.WriteFile(output, html, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Form written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (stdout if empty)")
	cmd.Flags().String("preset", "", "YAML preset with label and help text overrides")
	cmd.Flags().String("action", "/", "form action URL")
	cmd.Flags().String("theme", "", "theme name (defaults to the theme setting)")
	cmd.Flags().String("variant", "", "theme variant such as dark or stacked (defaults to the theme_variant setting)")
	return cmd
}
