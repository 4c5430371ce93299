// File: cmd/run.go
package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/listdrain/internal/engine"
	"github.com/xkilldash9x/listdrain/internal/enumerate"
	"github.com/xkilldash9x/listdrain/internal/exclusion"
	"github.com/xkilldash9x/listdrain/internal/executor"
	"github.com/xkilldash9x/listdrain/internal/governor"
	"github.com/xkilldash9x/listdrain/internal/killswitch"
	"github.com/xkilldash9x/listdrain/internal/motion"
	"github.com/xkilldash9x/listdrain/internal/observability"
	"github.com/xkilldash9x/listdrain/internal/statestore"
	"github.com/xkilldash9x/listdrain/internal/surface/cdp"
	"github.com/xkilldash9x/listdrain/internal/termination"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	var seed int64

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Drain the currently open list in the attached browser",
		Long: `Attaches to a running Chrome instance over the DevTools protocol and works
through the list dialog that is already open in it. Simulate mode is on by
default; pass --simulate=false to perform real actions.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so they override config file and environment values.
			if err := viper.BindPFlag("run.simulate", cmd.Flags().Lookup("simulate")); err != nil {
				return err
			}
			if err := viper.BindPFlag("limits.max_actions_per_run", cmd.Flags().Lookup("max-actions")); err != nil {
				return err
			}
			return viper.BindPFlag("browser.remote_url", cmd.Flags().Lookup("remote-url"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Flags were bound after the root hook unmarshaled, so re-read.
			refreshed, err := refreshConfig()
			if err != nil {
				return err
			}

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			rng := rand.New(rand.NewSource(seed))
			logger.Info("Run seed", zap.Int64("seed", seed))

			surf, err := cdp.Attach(ctx, refreshed.Browser, logger)
			if err != nil {
				return fmt.Errorf("%s: %w", termination.ReasonSetupFailed, err)
			}
			defer surf.Close()

			tokens := enumerate.TokensFromConfig(refreshed.Tokens)
			exclusions := exclusion.Load(refreshed.Files.Exclusions, logger)
			enum := enumerate.New(tokens, exclusions, refreshed.Detection.BoundaryLookahead, logger)

			synth := motion.New(motion.Config{
				MinSteps:       refreshed.Motion.MinSteps,
				MaxSteps:       refreshed.Motion.MaxSteps,
				ControlJitterX: refreshed.Motion.ControlJitterX,
				ControlJitterY: refreshed.Motion.ControlJitterY,
				PointJitter:    refreshed.Motion.PointJitter,
				DriftAmplitude: refreshed.Motion.DriftAmplitude,
			}, rng)
			exec := executor.New(surf, synth, tokens,
				enumerate.NewTokenSet(refreshed.Tokens.BlockPhrases),
				executor.Config{
					Simulate:       refreshed.Run.Simulate,
					StepDelayMin:   refreshed.Motion.StepDelayMin,
					StepDelayMax:   refreshed.Motion.StepDelayMax,
					PressHoldMin:   refreshed.Motion.PressHoldMin,
					PressHoldMax:   refreshed.Motion.PressHoldMax,
					ConfirmWait:    refreshed.Delays.ConfirmWait,
					VerifyRetries:  refreshed.Delays.VerifyRetries,
					VerifyInterval: refreshed.Delays.VerifyInterval,
				}, rng, logger)

			store := statestore.Open(refreshed.Files.State, logger)
			gov := governor.New(governor.Limits{
				MaxActionsPerRun: refreshed.Limits.MaxActionsPerRun,
				DailyCap:         refreshed.Limits.DailyCap,
				PerHourCap:       refreshed.Limits.PerHourCap,
				HourWindow:       refreshed.Limits.HourWindow,
			}, store, logger)
			det := termination.New(refreshed.Detection.MaxNoProgressRounds, logger)
			sent := killswitch.NewSentinel(refreshed.Files.KillSwitch)

			eng := engine.New(refreshed, engine.Deps{
				Surface:    surf,
				Enumerator: enum,
				Executor:   exec,
				Governor:   gov,
				Store:      store,
				Detector:   det,
				Sentinel:   sent,
			}, rng, logger)

			report, runErr := eng.Run(ctx)
			printReport(cmd, report)
			return runErr
		},
	}

	runCmd.Flags().Bool("simulate", true, "log actions without performing them")
	runCmd.Flags().Int("max-actions", 50, "per-run action cap")
	runCmd.Flags().String("remote-url", "http://127.0.0.1:9222", "DevTools endpoint of the running browser")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "randomness seed (0 picks one)")

	return runCmd
}

// printReport writes the human-readable run summary to stdout; the structured
// copy goes to the log.
func printReport(cmd *cobra.Command, r *engine.Report) {
	if r == nil {
		return
	}
	mode := "live"
	if r.Simulated {
		mode = "simulate"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s finished (%s): %s\n", r.RunID, mode, r.Reason)
	if r.BlockPhrase != "" {
		fmt.Fprintf(out, "  block phrase: %q\n", r.BlockPhrase)
	}
	fmt.Fprintf(out, "  actions: %d, processed: %d, elapsed: %s\n",
		r.ActionCount, r.Processed, r.Elapsed.Round(time.Second))
	if len(r.Actioned) > 0 {
		fmt.Fprintf(out, "  actioned: %v\n", r.Actioned)
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(out, "  skipped: %v\n", r.Skipped)
	}
}
