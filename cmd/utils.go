package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/konst007/chgk/internal/clipboard"
	"github.com/konst007/chgk/internal/config"
	"github.com/konst007/chgk/internal/engine/types"
	"github.com/konst007/chgk/internal/network"
	"github.com/konst007/chgk/internal/utils"
)

// loadSettings returns the saved settings, or defaults when they cannot be read.
func loadSettings() *config.Settings {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: using default settings: %v\n", err)
		utils.Debug("load settings: %v", err)
		return config.DefaultSettings()
	}
	return settings
}

// resolveRuntime applies command-line overrides on top of settings.
func resolveRuntime(cmd *cobra.Command, settings *config.Settings) (*types.RuntimeConfig, error) {
	rt := settings.ToRuntimeConfig()
	flags := cmd.Flags()

	if flags.Changed("url") {
		raw, _ := flags.GetString("url")
		u := clipboard.NewValidator().ExtractURL(raw)
		if u == "" {
			return nil, fmt.Errorf("invalid --url %q: need an absolute http(s) URL", raw)
		}
		rt.URL = u
	}
	if flags.Changed("connect-timeout") {
		d, _ := flags.GetDuration("connect-timeout")
		if d <= 0 {
			return nil, fmt.Errorf("--connect-timeout must be positive, got %s", d)
		}
		rt.ConnectTimeout = d
	}
	if flags.Changed("read-timeout") {
		d, _ := flags.GetDuration("read-timeout")
		if d <= 0 {
			return nil, fmt.Errorf("--read-timeout must be positive, got %s", d)
		}
		rt.ReadTimeout = d
	}
	return rt, nil
}

// newProbe is swapped in tests.
var newProbe = func() network.Provider { return network.NewProbe() }

// networkProvider honours --offline.
func networkProvider(cmd *cobra.Command) network.Provider {
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		return network.Offline
	}
	return newProbe()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
