package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsite/internal/site"
	"github.com/goliatone/go-formsite/pkg/orchestrator"
	"github.com/goliatone/go-formsite/pkg/render"
	"github.com/goliatone/go-formsite/pkg/renderers/tui"
)

// newPromptDriver is swapped in tests.
var newPromptDriver = func(out io.Writer) tui.PromptDriver {
	return tui.NewSurveyDriver(out)
}

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer the survey in the terminal",
		Long:  `Asks every survey question interactively, re-asking until the answers validate, then prints the cleaned answers as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			attempts, _ := cmd.Flags().GetInt("attempts")
			if attempts < 1 {
				attempts = 1
			}

			renderer, err := tui.New(tui.WithPromptDriver(newPromptDriver(cmd.ErrOrStderr())))
			if err != nil {
				return err
			}
			gen := orchestrator.New()
			form := site.SurveyForm()
			bound := form.Unbound()

			for range attempts {
				model, err := gen.Model(cmd.Context(), bound)
				if err != nil {
					return err
				}
				values, err := renderer.Collect(cmd.Context(), model, render.RenderOptions{})
				if err != nil {
					if errors.Is(err, tui.ErrAborted) {
						return errors.New("survey aborted")
					}
					return err
				}
				bound = form.Bind(values)
				if bound.IsValid() {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(bound.CleanedData())
				}
			}
			return fmt.Errorf("answers still invalid after %d attempts: %v", attempts, bound.Errors().Messages())
		},
	}
	cmd.Flags().Int("attempts", 3, "how many times to ask before giving up")
	return cmd
}
