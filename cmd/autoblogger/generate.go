package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edvm/autoblogger/config"
	"github.com/edvm/autoblogger/internal/agent/core"
	"github.com/edvm/autoblogger/internal/agent/telemetry"
	"github.com/edvm/autoblogger/internal/archive"
	"github.com/edvm/autoblogger/internal/output"
	"github.com/edvm/autoblogger/internal/workflow"
)

func generateCMD() *cobra.Command {
	var cfgPath string
	var (
		searchDepth    string
		searchTopic    string
		timeRange      string
		days           int
		maxResults     int
		includeDomains []string
		excludeDomains []string
		includeAnswer  bool
		includeRaw     bool
		includeImages  bool
		timeoutSec     int
		outputDir      string
		renderHTML     bool
		enableEditor   bool
	)

	var generate = &cobra.Command{
		Use:   "generate [topic]",
		Short: "Generate an article for a topic",
		Long: `Generate a researched article. The topic may embed inline directives,
e.g. "[tone:casual][length:brief] Top coffee brewing methods".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, cfg, searchDepth, searchTopic, timeRange, days, maxResults,
				includeDomains, excludeDomains, includeAnswer, includeRaw, includeImages,
				timeoutSec, outputDir, renderHTML, enableEditor)

			tele := telemetry.New(cfg.Telemetry)
			defer tele.Shutdown()

			svc, err := core.NewService(cfg, tele)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			state, err := svc.Generate(ctx, args[0], svc.SearchDefaults())
			if err != nil {
				return err
			}
			rec := state.Record()

			writer := output.NewWriter(cfg.Output.Dir, cfg.Output.RenderHTML)
			artifacts, err := writer.Write(rec)
			if err != nil {
				return err
			}

			if cfg.Storage.Archive.Enabled && rec.FinalContent != "" {
				if err := indexArticle(cfg.Storage.Archive.Path, rec); err != nil {
					fmt.Printf("warning: archive indexing failed: %v\n", err)
				}
			}

			fmt.Printf("status: %s\n", rec.Status)
			if rec.ErrorMessage != "" {
				fmt.Printf("error: %s\n", rec.ErrorMessage)
			}
			if artifacts.ArticlePath != "" {
				fmt.Printf("article: %s\n", artifacts.ArticlePath)
			}
			if artifacts.HTMLPath != "" {
				fmt.Printf("html: %s\n", artifacts.HTMLPath)
			}
			fmt.Printf("log: %s\n", artifacts.LogPath)

			if rec.Status != workflow.StatusCompleted {
				return fmt.Errorf("generation failed: %s", rec.ErrorMessage)
			}
			return nil
		},
	}

	generate.Flags().StringVar(&searchDepth, "search-depth", "", "search depth: basic or advanced")
	generate.Flags().StringVar(&searchTopic, "search-topic", "", "search topic: general, news or finance")
	generate.Flags().StringVar(&timeRange, "time-range", "", "restrict results: day, week, month or year")
	generate.Flags().IntVar(&days, "days", 0, "days back for news topic searches")
	generate.Flags().IntVar(&maxResults, "max-results", 0, "maximum search results")
	generate.Flags().StringSliceVar(&includeDomains, "include-domains", nil, "only use these domains")
	generate.Flags().StringSliceVar(&excludeDomains, "exclude-domains", nil, "never use these domains")
	generate.Flags().BoolVar(&includeAnswer, "include-answer", false, "request a synthesized answer from the search engine")
	generate.Flags().BoolVar(&includeRaw, "include-raw-content", false, "request full page content from the search engine")
	generate.Flags().BoolVar(&includeImages, "include-images", false, "request image results")
	generate.Flags().IntVar(&timeoutSec, "timeout", 0, "search timeout in seconds")
	generate.Flags().StringVar(&outputDir, "output-dir", "", "artifact directory (overrides config)")
	generate.Flags().BoolVar(&renderHTML, "html", false, "also render sanitized HTML")
	generate.Flags().BoolVar(&enableEditor, "enable-editor", false, "run the editor refinement stage")
	generate.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return generate
}

// applyFlagOverrides folds explicitly set flags into the loaded config so the
// service sees one coherent configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config,
	searchDepth, searchTopic, timeRange string, days, maxResults int,
	includeDomains, excludeDomains []string, includeAnswer, includeRaw, includeImages bool,
	timeoutSec int, outputDir string, renderHTML, enableEditor bool) {

	if searchDepth != "" {
		cfg.Search.Depth = searchDepth
	}
	if searchTopic != "" {
		cfg.Search.Topic = searchTopic
	}
	if timeRange != "" {
		cfg.Search.TimeRange = timeRange
	}
	if days > 0 {
		cfg.Search.Days = days
	}
	if maxResults > 0 {
		cfg.Search.MaxResults = maxResults
	}
	if includeDomains != nil {
		cfg.Search.IncludeDomains = includeDomains
	}
	if excludeDomains != nil {
		cfg.Search.ExcludeDomains = excludeDomains
	}
	if cmd.Flags().Changed("include-answer") {
		cfg.Search.IncludeAnswer = includeAnswer
	}
	if cmd.Flags().Changed("include-raw-content") {
		cfg.Search.IncludeRaw = includeRaw
	}
	if cmd.Flags().Changed("include-images") {
		cfg.Search.IncludeImages = includeImages
	}
	if timeoutSec > 0 {
		cfg.Search.Timeout = time.Duration(timeoutSec) * time.Second
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if cmd.Flags().Changed("html") {
		cfg.Output.RenderHTML = renderHTML
	}
	if cmd.Flags().Changed("enable-editor") {
		cfg.Pipeline.EditingEnabled = enableEditor
	}
}

func indexArticle(path string, rec workflow.Record) error {
	idx, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()
	return idx.Index(rec.ID, archive.Article{
		Topic:     rec.CleanTopic,
		Content:   rec.FinalContent,
		CreatedAt: time.Now(),
	})
}
