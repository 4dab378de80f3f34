package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/konst007/chgk/internal/config"
	"github.com/konst007/chgk/internal/core"
	"github.com/konst007/chgk/internal/engine/types"
	"github.com/konst007/chgk/internal/tui"
	"github.com/konst007/chgk/internal/utils"
)

// Version information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// newRootCmd builds the command tree. Running it without a subcommand opens
// the TUI.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "chgk",
		Short:   "Random questions from the ChGK database",
		Long:    `chgk fetches a random "What? Where? When?" question and shows it in the terminal.`,
		Version: Version,
		Args:    cobra.NoArgs,

		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor || os.Getenv("NO_COLOR") != "" {
				lipgloss.SetColorProfile(termenv.Ascii)
			}
		},
		RunE: runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("url", "", "Endpoint serving a random question as XML (overrides settings)")
	pf.Duration("connect-timeout", 0, "Connect timeout, e.g. 3s (overrides settings)")
	pf.Duration("read-timeout", 0, "Read timeout, e.g. 3s (overrides settings)")
	pf.Bool("offline", false, "Pretend there is no network")
	pf.Bool("no-color", false, "Disable colors")

	rootCmd.SetVersionTemplate("chgk version {{.Version}}\n")
	rootCmd.AddCommand(newGetCmd(), newParseCmd(), newSettingsCmd())
	return rootCmd
}

func runTUI(cmd *cobra.Command, args []string) error {
	initializeGlobalState()

	settings := loadSettings()
	rt, err := resolveRuntime(cmd, settings)
	if err != nil {
		return err
	}

	ch := make(chan any, types.ProgressChannelBuffer)
	provider := networkProvider(cmd)
	listener := core.NewChannelListener(ch, provider.ActiveNetworkInfo)
	controller := core.NewController(listener, rt)
	defer func() {
		listener.Close()
		_ = controller.Shutdown()
	}()

	m := tui.InitialRootModel(controller, ch, tui.Options{
		AutoStart:   settings.General.AutoStart,
		CopyOnFetch: settings.General.CopyOnFetch,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	// Flags given on the command line keep precedence over reloaded settings
	err = config.WatchSettings(ctx, config.GetSettingsPath(), func(s *config.Settings) {
		next, err := resolveRuntime(cmd, s)
		if err != nil {
			utils.Debug("settings reload rejected: %v", err)
			return
		}
		p.Send(tui.SettingsReloadedMsg{Runtime: next, CopyOnFetch: s.General.CopyOnFetch})
	})
	if err != nil {
		utils.Debug("settings watcher unavailable: %v", err)
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// initializeGlobalState sets up directories and logging
func initializeGlobalState() {
	if err := config.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	logsDir := config.GetLogsDir()
	utils.ConfigureDebug(logsDir)

	// Clean up old logs
	retention := config.DefaultSettings().General.LogRetentionCount
	if settings, err := config.LoadSettings(); err == nil {
		retention = settings.General.LogRetentionCount
	}
	if err := utils.CleanupLogs(logsDir, retention); err != nil {
		utils.Debug("log cleanup: %v", err)
	}
}
