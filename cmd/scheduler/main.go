package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/trendscout-agent/internal/agent/analyzer"
	"github.com/trendscout-agent/internal/agent/planner"
	"github.com/trendscout-agent/internal/ai"
	"github.com/trendscout-agent/internal/config"
	"github.com/trendscout-agent/internal/platform"
	"github.com/trendscout-agent/internal/source"
	"github.com/trendscout-agent/internal/source/apify"
	"github.com/trendscout-agent/internal/source/tubelab"
	"github.com/trendscout-agent/internal/source/youtube"
	"github.com/trendscout-agent/internal/source/ytfeed"
	"github.com/trendscout-agent/internal/storage"
	"github.com/trendscout-agent/pkg/logger"
	"github.com/trendscout-agent/pkg/ratelimit"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trendscout-scheduler",
		Short: "Background scheduler for outlier analysis",
		Long: `Runs platform outlier analyses and the daily content plan on a
cron schedule. This daemon should be run as a service for autonomous
operation.`,
		RunE: runScheduler,
	}

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScheduler(cmd *cobra.Command, args []string) error {
	var err error

	// Load config
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	log.Info().Msg("Starting TrendScout Scheduler")

	store, err := storage.NewStore(cfg.Runs.Dir)
	if err != nil {
		return fmt.Errorf("failed to open runs directory: %w", err)
	}

	// Start health check server for Render
	go startHealthServer()

	// Initialize rate limiter, applying configured per-minute rates
	limiter := ratelimit.NewDefaultLimiter()
	if n := cfg.RateLimit.ApifyRequestsPerMinute; n > 0 {
		limiter.AddLimiter(ratelimit.LimiterApify, float64(n)/60, 5)
	}
	if n := cfg.RateLimit.TubeLabRequestsPerMinute; n > 0 {
		limiter.AddLimiter(ratelimit.LimiterTubeLab, float64(n)/60, 10)
	}
	if n := cfg.RateLimit.AnthropicRequestsPerMinute; n > 0 {
		limiter.AddLimiter(ratelimit.LimiterAnthropic, float64(n)/60, 2)
	}

	// Initialize source manager
	sourceManager := source.NewManager()
	if cfg.Apify.Token != "" {
		apifyClient := apify.NewClient(cfg.Apify, limiter, log)
		sourceManager.Register(apify.NewX(cfg.Apify, apifyClient, log))
		sourceManager.Register(apify.NewInstagram(cfg.Apify, apifyClient, log))
		sourceManager.Register(apify.NewTikTok(cfg.Apify, apifyClient, log))
	}
	var tubelabClient *tubelab.Client
	if cfg.TubeLab.APIKey != "" {
		tubelabClient = tubelab.NewClient(cfg.TubeLab, limiter, log)
		sourceManager.Register(tubelabClient)
	} else if cfg.YouTube.UseFeeds {
		sourceManager.Register(ytfeed.New(limiter, log))
	}

	// Create agents
	profiles := platform.Profiles(cfg.Analysis.WeightOverrides())
	analyzerAgent := analyzer.NewAgent(sourceManager, profiles, store, log)

	if cfg.Anthropic.APIKey != "" {
		aiClient := ai.NewClient(cfg.Anthropic, limiter, log)
		analyzerAgent.SetVideoAnalyzer(aiClient, cfg.Analysis.MaxVideoAnalyses)
	}
	if cfg.YouTube.APIKey != "" {
		ytClient, ytErr := youtube.NewClient(context.Background(), cfg.YouTube, limiter, log)
		if ytErr != nil {
			log.Warn().Err(ytErr).Msg("Failed to create YouTube Data API client")
		} else {
			analyzerAgent.SetChannelStats(ytClient)
		}
	} else if tubelabClient != nil {
		analyzerAgent.SetChannelStats(tubelabClient)
	}

	plannerAgent := planner.NewAgent(analyzerAgent, store, log)

	// Create cron scheduler
	c := cron.New(cron.WithLogger(cronLogger{log}))

	// Schedule platform analyses
	_, err = c.AddFunc(cfg.Scheduler.AnalyzeCron, func() {
		ctx := context.Background()
		log.Info().Msg("Running scheduled analysis")

		optsByPlatform := make(map[platform.Platform]analyzer.Options)
		for _, p := range platform.All {
			if cfg.Validate(p) != nil {
				continue
			}
			optsByPlatform[p] = analyzer.Options{
				Platform:  p,
				Accounts:  cfg.Accounts.For(p),
				Threshold: cfg.Analysis.ThresholdMultiplier,
				Days:      cfg.Analysis.Days,
				Limit:     cfg.Analysis.Limit,
			}
		}

		if len(optsByPlatform) == 0 {
			log.Warn().Msg("No platform is configured with accounts and credentials")
			return
		}

		results, errs := plannerAgent.RunAll(ctx, optsByPlatform)
		for _, e := range errs {
			log.Error().Err(e).Msg("Platform analysis failed")
		}

		outliers := 0
		for _, r := range results {
			outliers += r.Outliers
		}
		log.Info().
			Int("platforms", len(results)).
			Int("outliers", outliers).
			Int("errors", len(errs)).
			Msg("Scheduled analysis completed")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule analysis job: %w", err)
	}
	log.Info().Str("cron", cfg.Scheduler.AnalyzeCron).Msg("Analysis job scheduled")

	// Schedule content plan aggregation
	_, err = c.AddFunc(cfg.Scheduler.PlanCron, func() {
		ctx := context.Background()
		log.Info().Msg("Running scheduled content plan")

		plan, planErr := plannerAgent.Plan(ctx)
		if planErr != nil {
			log.Error().Err(planErr).Msg("Scheduled content plan failed")
			return
		}

		log.Info().
			Str("plan_id", plan.PlanID).
			Int("entries", len(plan.Entries)).
			Msg("Scheduled content plan completed")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule plan job: %w", err)
	}
	log.Info().Str("cron", cfg.Scheduler.PlanCron).Msg("Plan job scheduled")

	// Start scheduler
	c.Start()
	log.Info().Msg("Scheduler started")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down scheduler")
	c.Stop()

	return nil
}

// cronLogger adapts our logger for cron
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info().Msgf(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Msgf(msg, keysAndValues...)
}

// startHealthServer starts a simple HTTP server for health checks (used by Render)
func startHealthServer() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "10000"
	}

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("TrendScout Scheduler"))
	})

	log.Info().Str("port", port).Msg("Health check server starting")
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Error().Err(err).Msg("Health server failed")
	}
}
