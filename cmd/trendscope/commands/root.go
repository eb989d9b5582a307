package commands

import (
	"os"
	"time"

	"TrendScope/internal/config"
	"TrendScope/internal/errs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile  string
	ticker      string
	interval    string
	output      string
	noCache     bool
	metricsFile string

	// rootLog is replaced by the configured logger once config is loaded.
	rootLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
)

// rootCmd runs the analysis pipeline once.
var rootCmd = &cobra.Command{
	Use:   "trendscope",
	Short: "TrendScope - configurable technical analysis pipeline",
	Long: `TrendScope fetches price bars, computes indicators, derives trading
signals and renders the result, all driven by a YAML configuration.

Examples:
  trendscope --config config.yaml
  trendscope --ticker MSFT --interval 1wk --output results/msft.html
  trendscope schedule
  trendscope plugins`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()
		if !cmd.Flags().Changed("config") {
			if v := os.Getenv("CONFIG_PATH"); v != "" {
				configFile = v
			}
		}
		return nil
	},
	RunE: runAnalyze,
}

// Execute runs the CLI and logs any failure.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(rootLog, err)
	}
	return err
}

// reportError logs typed failures by kind and anything else in full.
func reportError(log zerolog.Logger, err error) {
	if e, ok := errs.As(err); ok {
		log.Error().Str("kind", string(e.Kind)).Str("component", e.Component).Msg(e.Error())
		return
	}
	log.Error().Err(err).Msgf("unexpected error: %+v", err)
}

func overrides() config.Overrides {
	return config.Overrides{Ticker: ticker, Interval: interval, Output: output}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "config.yaml", "config file (env CONFIG_PATH)")
	pf.StringVar(&ticker, "ticker", "", "override data_source.ticker")
	pf.StringVar(&interval, "interval", "", "override data_source.interval")
	pf.StringVar(&output, "output", "", "override visualizer.output_path")
	pf.BoolVar(&noCache, "no-cache", false, "bypass the cache and refresh fetched data")
	pf.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
}
