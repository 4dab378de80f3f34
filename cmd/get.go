package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/konst007/chgk/internal/clipboard"
	"github.com/konst007/chgk/internal/core"
	"github.com/konst007/chgk/internal/engine/types"
	"github.com/konst007/chgk/internal/network"
)

func newGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch one question and print it",
		Long:  `Fetch a single random question without the TUI. The question is printed to stdout; failures go to stderr with a non-zero exit status.`,
		Args:  cobra.NoArgs,
		RunE:  runGet,
	}
	getCmd.Flags().Bool("copy", false, "Also copy the question to the clipboard")
	getCmd.Flags().BoolP("verbose", "v", false, "Print fetch stages to stderr")
	return getCmd
}

func runGet(cmd *cobra.Command, args []string) error {
	initializeGlobalState()

	settings := loadSettings()
	rt, err := resolveRuntime(cmd, settings)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	copyFlag, _ := cmd.Flags().GetBool("copy")

	var stages io.Writer
	if verbose {
		stages = cmd.ErrOrStderr()
	}

	l := newHeadlessListener(networkProvider(cmd), stages)
	controller := core.NewController(l, rt)
	defer func() { _ = controller.Shutdown() }()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	controller.Start()

	select {
	case res := <-l.done:
		if res.finished {
			return types.ErrConnectivity
		}
		if !res.outcome.IsSuccess() {
			return errors.New(res.outcome.Reason())
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.outcome.Value)
		if copyFlag || settings.General.CopyOnFetch {
			if err := clipboard.CopyText(res.outcome.Value); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: copy failed: %v\n", err)
			}
		}
		return nil

	case <-ctx.Done():
		controller.Finish()
		return errors.New("cancelled")
	}
}

type headlessResult struct {
	outcome  types.Outcome
	finished bool // ended with nothing to show
}

// headlessListener collects the terminal notification for a single fetch.
type headlessListener struct {
	network network.Provider
	stages  io.Writer
	done    chan headlessResult
}

func newHeadlessListener(p network.Provider, stages io.Writer) *headlessListener {
	return &headlessListener{
		network: p,
		stages:  stages,
		done:    make(chan headlessResult, 1),
	}
}

func (l *headlessListener) UpdateFromDownload(result string) {
	l.done <- headlessResult{outcome: types.Success(result)}
}

func (l *headlessListener) OnOutcome(out types.Outcome) {
	l.done <- headlessResult{outcome: out}
}

func (l *headlessListener) FinishDownloading() {
	l.done <- headlessResult{finished: true}
}

func (l *headlessListener) ActiveNetworkInfo() types.NetworkInfo {
	return l.network.ActiveNetworkInfo()
}

func (l *headlessListener) OnProgressUpdate(stage types.Stage, percent int) {
	if l.stages == nil {
		return
	}
	if stage.HasProgress() {
		fmt.Fprintf(l.stages, "%s %d%%\n", stage, percent)
		return
	}
	fmt.Fprintln(l.stages, stage)
}
