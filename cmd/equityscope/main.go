// Command equityscope serves and scripts AI equity research.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seenimoa/equityscope/api"
	"github.com/seenimoa/equityscope/internal/analysis"
	"github.com/seenimoa/equityscope/internal/config"
	"github.com/seenimoa/equityscope/internal/logger"
	"github.com/seenimoa/equityscope/internal/report"
	"github.com/seenimoa/equityscope/internal/research"
	"github.com/seenimoa/equityscope/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "equityscope",
	Short: "equityscope: AI equity research dashboard",
	Long: `equityscope generates structured equity research for US-listed companies.
It combines company fundamentals from Financial Modeling Prep with an
eight-section analysis written by an LLM, and serves both as a dashboard,
an HTTP API, and HTML/PDF/text reports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if l, _ := cmd.Flags().GetString("log-level"); l != "" {
			level = l
		}
		logger.Init(level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(companyCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(serveCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Version needs no config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "equityscope %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  equityscope System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Market Status: %s\n", utils.MarketStatus())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Config File:   %s\n", config.ConfigFilePath())
		fmt.Fprintf(out, "    LLM Provider:  %s (model: %s)\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(out, "    Market Data:   %s\n", cfg.Market.Provider)
		fmt.Fprintf(out, "    Headlines:     %t\n", cfg.News.Enabled)
		fmt.Fprintf(out, "    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Fprintf(out, "    Testing Mode:  %t\n", cfg.TestingMode)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}

// --- Search Command ---

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search companies by name or ticker",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := research.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		results, err := svc.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No companies found.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SYMBOL\tNAME\tEXCHANGE")
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Symbol, r.Name, r.Exchange)
		}
		return tw.Flush()
	},
}

// --- Company Command ---

var companyCmd = &cobra.Command{
	Use:   "company [symbol]",
	Short: "Show the company overview and key metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := research.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		c, err := svc.Company(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		o := c.Overview
		fmt.Fprintf(out, "%s (%s) · %s · %s\n", o.Name, o.Symbol, o.Exchange, o.Sector)
		fmt.Fprintf(out, "%s  %s  (market %s)\n\n", o.Price, o.Change, c.MarketStatus)
		if o.Summary != "" {
			fmt.Fprintf(out, "%s\n\n", o.Summary)
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, m := range c.Metrics {
			fmt.Fprintf(tw, "  %s\t%s\n", m.Label, m.Value)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if len(c.Headlines) > 0 {
			fmt.Fprintf(out, "\nHeadlines (tone: %s):\n", c.Tone.Label)
			for _, h := range c.Headlines {
				fmt.Fprintf(out, "  - %s (%s)\n", h.Title, h.PublishedAt.Format("Jan 2"))
			}
		}
		fmt.Fprintf(out, "\nChart: https://www.tradingview.com/chart/?symbol=%s\n", c.Chart.Symbol)
		return nil
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [symbol]",
	Short: "Generate an LLM research report for a company",
	Long: `Prompt the configured LLM for an eight-section research report on a
company, parse the answer, and render it.

Examples:
  equityscope analyze TSLA --company "Tesla, Inc."
  equityscope analyze AAPL --with-data --format pdf --out aapl.pdf
  equityscope analyze MSFT --model anthropic/claude-sonnet-4 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		companyName, _ := cmd.Flags().GetString("company")
		model, _ := cmd.Flags().GetString("model")
		provider, _ := cmd.Flags().GetString("provider")
		formatName, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		withData, _ := cmd.Flags().GetBool("with-data")

		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}
		svc, err := research.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		req := research.Request{
			CompanyName: companyName,
			Symbol:      args[0],
			Provider:    provider,
			Model:       model,
			WithData:    withData,
		}

		var (
			a *research.Analysis
			c *research.Company
		)
		if withData {
			if c, err = svc.Company(ctx, req.Symbol); err != nil {
				return err
			}
		}
		if a, err = svc.AnalyzeCompany(ctx, req, c); err != nil {
			return err
		}
		if a.Fallback != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "note: answer read with the %s layout (%s)\n", a.Strategy, a.Fallback)
		}
		return writeReport(cmd, research.Document(a, c), format, outPath)
	},
}

func init() {
	analyzeCmd.Flags().String("company", "", "company name used in the prompt (default: the symbol)")
	analyzeCmd.Flags().String("model", "", "model override, e.g. openai/gpt-4o")
	analyzeCmd.Flags().String("provider", "", "provider override (openrouter, openai, anthropic, gemini, ollama, mock)")
	analyzeCmd.Flags().String("format", "text", "output format: text, html, pdf or json")
	analyzeCmd.Flags().String("out", "", "write the report to this file instead of stdout")
	analyzeCmd.Flags().Bool("with-data", false, "include company data in the prompt and the report")
}

// --- Parse Command ---

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse saved LLM output into a report",
	Long: `Read raw model output from a file (or stdin with "-") and render the
parsed report. Useful for re-rendering a saved answer or checking the parser.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		legacy, _ := cmd.Flags().GetBool("legacy")
		formatName, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		symbol, _ := cmd.Flags().GetString("symbol")

		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}

		var raw []byte
		if args[0] == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read analysis: %w", err)
		}

		var r *analysis.Report
		if legacy {
			r = analysis.ParseLegacy(string(raw))
		} else {
			res := analysis.NewParser().ParseResult(string(raw))
			r = res.Report
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: answer read with the %s layout (%v)\n", res.Strategy, res.Err)
			}
		}
		if len(r.Present()) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "note: no report sections found")
		}

		doc := report.Document{Symbol: symbol, Report: r}
		return writeReport(cmd, doc, format, outPath)
	},
}

func init() {
	parseCmd.Flags().Bool("legacy", false, "read the older numbered-heading layout only")
	parseCmd.Flags().String("format", "text", "output format: text, html, pdf or json")
	parseCmd.Flags().String("out", "", "write the report to this file instead of stdout")
	parseCmd.Flags().String("symbol", "", "ticker shown in the report title")
}

// writeReport renders doc to outPath, or to stdout when outPath is empty.
func writeReport(cmd *cobra.Command, doc report.Document, format report.Format, outPath string) error {
	if outPath == "" {
		return report.Render(cmd.OutOrStdout(), doc, format)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := report.Render(f, doc, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s\n", outPath)
	return nil
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		noUI, _ := cmd.Flags().GetBool("no-ui")
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}

		srv, err := api.NewServer(cfg)
		if err != nil {
			return err
		}
		srv.SetVersion(version)
		srv.SetServeUI(!noUI)

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Fprintf(cmd.OutOrStdout(), "Starting equityscope on http://%s\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().Bool("no-ui", false, "serve the API only, without the dashboard")
	serveCmd.Flags().Int("port", 0, "port override")
}
