package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/trendscout-agent/internal/agent/analyzer"
	"github.com/trendscout-agent/internal/agent/planner"
	"github.com/trendscout-agent/internal/ai"
	"github.com/trendscout-agent/internal/config"
	"github.com/trendscout-agent/internal/platform"
	"github.com/trendscout-agent/internal/report"
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
	store   *storage.Store
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trendscout",
		Short: "Cross-platform viral outlier analysis",
		Long: `Fetches recent posts from tracked accounts on X, Instagram, TikTok
and YouTube, flags statistical engagement outliers, and aggregates them
into a cross-platform content plan.`,
		PersistentPreRunE: initializeApp,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initializeApp(cmd *cobra.Command, args []string) error {
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

	// Initialize artifact storage
	store, err = storage.NewStore(cfg.Runs.Dir)
	if err != nil {
		return fmt.Errorf("failed to open runs directory: %w", err)
	}

	return nil
}

// newLimiter applies configured per-minute rates over the defaults
func newLimiter() *ratelimit.MultiLimiter {
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
	return limiter
}

// buildAnalyzer wires sources, profiles and optional AI support into an
// analyzer agent. Sources for platforms without credentials are simply
// not registered; Validate catches the gap before a fetch run.
func buildAnalyzer(ctx context.Context) *analyzer.Agent {
	limiter := newLimiter()

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

	profiles := platform.Profiles(cfg.Analysis.WeightOverrides())
	agent := analyzer.NewAgent(sourceManager, profiles, store, log)

	if cfg.Anthropic.APIKey != "" {
		aiClient := ai.NewClient(cfg.Anthropic, limiter, log)
		agent.SetVideoAnalyzer(aiClient, cfg.Analysis.MaxVideoAnalyses)
	}

	// Channel view baseline: the Data API when a key is configured,
	// otherwise TubeLab's own channel statistics
	if cfg.YouTube.APIKey != "" {
		ytClient, err := youtube.NewClient(ctx, cfg.YouTube, limiter, log)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to create YouTube Data API client")
		} else {
			agent.SetChannelStats(ytClient)
		}
	} else if tubelabClient != nil {
		agent.SetChannelStats(tubelabClient)
	}

	return agent
}

// runOptions fills unset per-run flags from config defaults
func runOptions(p platform.Platform, accounts []string, threshold float64, days, limit int) analyzer.Options {
	opts := analyzer.Options{
		Platform:  p,
		Accounts:  accounts,
		Threshold: threshold,
		Days:      days,
		Limit:     limit,
	}
	if len(opts.Accounts) == 0 {
		opts.Accounts = cfg.Accounts.For(p)
	}
	if opts.Threshold == 0 {
		opts.Threshold = cfg.Analysis.ThresholdMultiplier
	}
	if opts.Days == 0 {
		opts.Days = cfg.Analysis.Days
	}
	if opts.Limit == 0 {
		opts.Limit = cfg.Analysis.Limit
	}
	return opts
}

func printResult(result *analyzer.Result) {
	fmt.Printf("\n=== Analysis Results (%s) ===\n", result.Platform)
	fmt.Printf("Run ID:        %s\n", result.RunID)
	fmt.Printf("Records Found: %d\n", result.RecordsFound)
	fmt.Printf("Analyzed:      %d\n", result.Analyzed)
	fmt.Printf("Outliers:      %d\n", result.Outliers)
	if result.Degenerate {
		fmt.Printf("Note:          too few or identical engagement rates, outlier test skipped\n")
	}
	fmt.Printf("Artifact:      %s\n", result.ArtifactPath)
	fmt.Printf("Duration:      %s\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
}

// ============ ANALYZE COMMANDS ============

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Outlier analysis commands",
	}

	cmd.AddCommand(analyzeRunCmd())
	cmd.AddCommand(analyzeAllCmd())
	return cmd
}

func analyzeRunCmd() *cobra.Command {
	var (
		platformName string
		accounts     []string
		threshold    float64
		days         int
		limit        int
		input        string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run outlier analysis for one platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			p, err := platform.Parse(platformName)
			if err != nil {
				return err
			}

			opts := runOptions(p, accounts, threshold, days, limit)
			opts.Input = input
			opts.Output = output

			// An --input run reads a local collection and needs no credentials
			if input == "" {
				if err := cfg.Validate(p); err != nil {
					return err
				}
			}

			agent := buildAnalyzer(ctx)

			result, err := agent.Run(ctx, opts)
			if err != nil {
				return err
			}

			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "", "Platform: x, instagram, tiktok or youtube (required)")
	cmd.Flags().StringSliceVar(&accounts, "accounts", nil, "Override configured accounts")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Outlier threshold multiplier (default from config)")
	cmd.Flags().IntVar(&days, "days", 0, "Fetch window in days (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records per run (default from config)")
	cmd.Flags().StringVar(&input, "input", "", "Analyze a local record collection instead of fetching")
	cmd.Flags().StringVar(&output, "output", "", "Write the artifact to this path")
	cmd.MarkFlagRequired("platform")

	return cmd
}

func analyzeAllCmd() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run outlier analysis for every configured platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			optsByPlatform := make(map[platform.Platform]analyzer.Options)
			for _, p := range platform.All {
				if len(cfg.Accounts.For(p)) == 0 {
					continue
				}
				if err := cfg.Validate(p); err != nil {
					log.Warn().Err(err).Str("platform", string(p)).Msg("Skipping platform")
					continue
				}
				optsByPlatform[p] = runOptions(p, nil, threshold, 0, 0)
			}

			if len(optsByPlatform) == 0 {
				return fmt.Errorf("no platform is configured with accounts and credentials")
			}

			agent := planner.NewAgent(buildAnalyzer(ctx), store, log)

			results, errs := agent.RunAll(ctx, optsByPlatform)
			for _, result := range results {
				printResult(result)
			}

			if len(errs) > 0 {
				fmt.Printf("\nFailed platforms:\n")
				for _, e := range errs {
					fmt.Printf("  - %s\n", e)
				}
				return fmt.Errorf("%d of %d platform runs failed", len(errs), len(optsByPlatform))
			}

			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Outlier threshold multiplier (default from config)")

	return cmd
}

// ============ PLAN COMMANDS ============

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Cross-platform content plan commands",
	}

	cmd.AddCommand(planRunCmd())
	return cmd
}

func planRunCmd() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build a content plan from the latest run artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			agent := planner.NewAgent(buildAnalyzer(ctx), store, log)

			plan, err := agent.Plan(ctx)
			if err != nil {
				return err
			}

			if markdown {
				fmt.Print(report.RenderPlan(plan))
				return nil
			}

			fmt.Printf("\n=== Content Plan ===\n")
			fmt.Printf("Plan ID:   %s\n", plan.PlanID)
			fmt.Printf("Platforms: %d\n", len(plan.Platforms))
			fmt.Printf("Entries:   %d\n\n", len(plan.Entries))

			for i, e := range plan.Entries {
				fmt.Printf("[%d] %s (from %s)\n", i+1, e.Topic, e.SourcePlatform)
				fmt.Printf("    Engagement:  %.1f/10\n", e.SourceEngagement)
				fmt.Printf("    Opportunity: %.2f\n", e.Opportunity)
				if e.ExampleURL != "" {
					fmt.Printf("    Example:     %s\n", e.ExampleURL)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the plan as markdown")

	return cmd
}

// ============ RUNS COMMANDS ============

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List and inspect run artifacts",
	}

	cmd.AddCommand(runsListCmd())
	return cmd
}

func runsListCmd() *cobra.Command {
	var platformName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored run artifacts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			platforms := platform.All
			if platformName != "" {
				p, err := platform.Parse(platformName)
				if err != nil {
					return err
				}
				platforms = []platform.Platform{p}
			}

			total := 0
			for _, p := range platforms {
				paths, err := store.List(p)
				if err != nil {
					return err
				}
				if len(paths) == 0 {
					continue
				}

				fmt.Printf("\n=== %s (%d) ===\n", p, len(paths))
				for _, path := range paths {
					line := filepath.Base(path)
					if t := storage.ParseRunTime(path); !t.IsZero() {
						line = fmt.Sprintf("%s  %s", t.Format("2006-01-02 15:04"), line)
					}
					fmt.Printf("  %s\n", line)
				}
				total += len(paths)
			}

			if total == 0 {
				fmt.Printf("No run artifacts in %s\n", store.Dir())
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "", "Only list runs for this platform")

	return cmd
}

// ============ REPORT COMMANDS ============

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Markdown report commands",
	}

	cmd.AddCommand(reportGenerateCmd())
	return cmd
}

func reportGenerateCmd() *cobra.Command {
	var (
		platformName string
		input        string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a run artifact as a markdown report",
		RunE: func(cmd *cobra.Command, args []string) error {
			var artifactPath string

			switch {
			case input != "":
				artifactPath = input
			case platformName != "":
				p, err := platform.Parse(platformName)
				if err != nil {
					return err
				}
				paths, err := store.List(p)
				if err != nil {
					return err
				}
				if len(paths) == 0 {
					return fmt.Errorf("no run artifacts for %s; run 'analyze run --platform %s' first", p, p)
				}
				artifactPath = paths[0]
			default:
				return fmt.Errorf("either --platform or --input is required")
			}

			artifact, err := store.LoadArtifact(artifactPath)
			if err != nil {
				return err
			}

			md := report.RenderArtifact(artifact)

			if output == "" {
				fmt.Print(md)
				return nil
			}

			if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Printf("Report written to %s\n", output)

			return nil
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "", "Render the latest artifact for this platform")
	cmd.Flags().StringVar(&input, "input", "", "Render a specific artifact file")
	cmd.Flags().StringVar(&output, "output", "", "Write the report to this file instead of stdout")

	return cmd
}
