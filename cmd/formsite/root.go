package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsite/internal/settings"
)

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "formsite",
		Short:         "formsite serves a small survey built on go-formsite forms",
		Long:          `formsite serves the survey website, checks its settings, renders the survey form and asks it interactively in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().String("env", "", "settings profile (development, production, test); defaults to $"+settings.EnvVar)
	root.PersistentFlags().String("settings", "", "local settings override file; defaults to $"+settings.LocalSettingsVar)

	root.AddCommand(
		newServeCmd(),
		newCheckCmd(),
		newRenderCmd(),
		newAskCmd(),
	)
	return root
}

func loadSettings(cmd *cobra.Command) (settings.Settings, error) {
	env, _ := cmd.Flags().GetString("env")
	local, _ := cmd.Flags().GetString("settings")
	return settings.Load(
		settings.WithEnvironment(env),
		settings.WithLocalFile(local),
	)
}
