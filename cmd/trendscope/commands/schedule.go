package commands

import (
	"context"
	"os/signal"
	"syscall"

	"TrendScope/internal/errs"
	"TrendScope/internal/logger"
	"TrendScope/internal/model"
	"TrendScope/internal/scheduler"

	"github.com/spf13/cobra"
)

var (
	runOnStart bool
	listen     bool
)

// scheduleCmd runs the pipeline repeatedly on the configured cron schedule.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the analysis on the schedule.cron expression until interrupted",
	Long: `Runs the pipeline every time schedule.cron matches. A trigger that fires
while a run is still in progress is skipped. When Telegram is configured,
every run is summarised in the chat, and with --listen the chat may send
/run and /status.

Example:
  trendscope schedule --run-on-start`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run once immediately")
	scheduleCmd.Flags().BoolVar(&listen, "listen", false, "accept /run and /status from the Telegram chat")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := scheduler.Validate(a.cfg.Schedule.Cron); err != nil {
		return errs.Configuration("schedule", "%v", err)
	}
	// Fail fast on a broken pipeline instead of at the first trigger.
	eng, plan, err := a.pipeline()
	if err != nil {
		return err
	}

	var opts []scheduler.Option
	tn := a.telegram()
	if tn != nil {
		opts = append(opts, scheduler.WithNotifier(tn, plan.Spec.Ticker))
	}
	sched := scheduler.New(ctx, func(ctx context.Context) (*model.AnalysisResult, error) {
		return a.run(ctx, eng, plan)
	}, logger.Component(a.log, "scheduler"), opts...)
	if err := sched.Register(a.cfg.Schedule.Cron); err != nil {
		return errs.Configuration("schedule", "%v", err)
	}
	sched.Start()
	defer sched.Stop()

	if listen {
		if tn == nil {
			return errs.Configuration("notify", "--listen needs notify.telegram")
		}
		go tn.StartPolling(ctx, sched.HandleCommand)
	}
	if runOnStart {
		sched.RunAsync()
	}

	a.log.Info().Str("cron", a.cfg.Schedule.Cron).Time("next", sched.Next()).
		Msgf("scheduling %s, press Ctrl+C to stop", plan.Spec.Ticker)
	<-ctx.Done()
	a.log.Info().Msg("shutdown signal received, stopping")
	return nil
}
