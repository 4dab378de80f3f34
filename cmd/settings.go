package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/konst007/chgk/internal/config"
)

func newSettingsCmd() *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or reset the saved settings",
		Args:  cobra.NoArgs,
		RunE:  runSettings,
	}
	settingsCmd.Flags().Bool("reset", false, "Overwrite the settings file with defaults")
	settingsCmd.Flags().Bool("json", false, "Print the raw settings JSON")
	return settingsCmd
}

func runSettings(cmd *cobra.Command, args []string) error {
	reset, _ := cmd.Flags().GetBool("reset")
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	settings, err := config.LoadSettings()
	if err != nil {
		if !reset {
			return err
		}
		settings = config.DefaultSettings()
	}
	if reset {
		settings = config.DefaultSettings()
		if err := config.SaveSettings(settings); err != nil {
			return fmt.Errorf("reset settings: %w", err)
		}
		fmt.Fprintln(out, "Settings reset to defaults.")
	}

	if asJSON {
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Settings file: %s\n", config.GetSettingsPath())
	return printSettings(out, settings)
}

// printSettings lists every setting by category using the metadata labels.
func printSettings(w io.Writer, s *config.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	var values map[string]map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}

	meta := config.GetSettingsMetadata()
	for _, category := range config.CategoryOrder() {
		fmt.Fprintf(w, "\n[%s]\n", category)
		section := values[strings.ToLower(category)]
		for _, m := range meta[category] {
			fmt.Fprintf(w, "  %-22s %v\n", m.Label+":", section[m.Key])
		}
	}
	return nil
}
