package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"TrendScope/internal/logger"
	"TrendScope/internal/model"
	"TrendScope/internal/notifier"

	"github.com/spf13/cobra"
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	eng, plan, err := a.pipeline()
	if err != nil {
		return err
	}
	res, err := a.run(ctx, eng, plan)
	if tn := a.telegram(); tn != nil {
		var msg string
		if err != nil {
			msg = notifier.FormatFailure(plan.Spec.Ticker, err)
		} else {
			msg = notifier.FormatRunSummary(res)
		}
		if sendErr := tn.SendWithRetry(ctx, msg, 3); sendErr != nil {
			a.log.Error().Err(sendErr).Msg("send notification")
		}
	}
	if err != nil {
		return err
	}

	buys, sells := res.Counts()
	fmt.Printf("✅ %s: %d bars, %d signals (BUY %d, SELL %d) → %s\n",
		res.Metadata[model.MetaTicker], res.Bars.Len(), len(res.Signals), buys, sells,
		res.Metadata[model.MetaOutputPath])
	return nil
}

// telegram returns the configured notifier, or nil when notifications are off.
func (a *app) telegram() *notifier.TelegramNotifier {
	tg := a.cfg.Notify.Telegram
	if tg.BotToken == "" {
		return nil
	}
	return notifier.NewTelegramNotifier(notifier.TelegramOptions{
		BotToken: tg.BotToken,
		ChatID:   tg.ChatID,
		Proxy:    a.cfg.Proxy,
		Log:      logger.Component(a.log, "notifier"),
	})
}
