// newsdesk aggregates financial quotes and RSS/Atom news.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/seenimoa/newsdesk/api"
	"github.com/seenimoa/newsdesk/internal/config"
	"github.com/seenimoa/newsdesk/internal/infra"
	"github.com/seenimoa/newsdesk/internal/researchers"
	"github.com/seenimoa/newsdesk/internal/shell"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

// exitCode is set by commands that report a status without failing.
var exitCode int

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var rootCmd = &cobra.Command{
	Use:   "newsdesk",
	Short: "newsdesk - financial quotes and news feeds in one console",
	Long: `newsdesk aggregates RSS/Atom news feeds, stock fundamentals and
market quotes. Without a subcommand it starts the interactive console.`,
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
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
		}
		infra.SetupLogging(level, cfg.Logging.Format)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a := newApp(cfg)
		var opts []shell.ConsoleOption
		if cfg.Console.TickerSchedule != "" {
			opts = append(opts, shell.WithTicker(a.tickerList(), cfg.Console.TickerSchedule))
		}
		console := shell.NewConsole(a.executor(), os.Stdin, os.Stdout, opts...)
		if err := console.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (trace, debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(researchersCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newsdesk %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run <selection...>",
	Short: "Show one selection and exit",
	Long: `Resolve a selection the way the console does, print the result and
exit with its status: 0 ok, 1 invalid selection, 2 fetch failure, 3 parse failure.

Examples:
  newsdesk run 1
  newsdesk run bbc
  newsdesk run STOCK AAPL
  newsdesk run cmdty`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		out := newApp(cfg).executor().Execute(ctx, strings.Join(args, " "))
		fmt.Fprint(os.Stdout, out.Text)
		exitCode = out.Status
		return nil
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			host, port, err := splitAddr(addr)
			if err != nil {
				return err
			}
			cfg.API.Host, cfg.API.Port = host, port
		}

		a := newApp(cfg)
		srv := api.NewServer(cfg, api.Deps{
			Catalog: a.catalog,
			Feeds:   a.feeds,
			Stocks:  a.stocks,
			Markets: a.markets,
			Quotes:  a.markets,
			Ticker:  a.tickerList(),
		})
		return srv.ListenAndServe(ctx, cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address override, host:port")
}

func splitAddr(addr string) (string, int, error) {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return "", 0, fmt.Errorf("invalid address %q: missing port", addr)
	}
	var port int
	if _, err := fmt.Sscanf(addr[i+1:], "%d", &port); err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid address %q: bad port", addr)
	}
	return addr[:i], port, nil
}

// --- Export Command ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the static site data files",
	Long: `Write markets.json, news.json, feeds.json and commodities.json into
the export directory. With --schedule the export repeats on the configured
cron schedule until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		if dir, _ := cmd.Flags().GetString("out"); dir != "" {
			cfg.Export.OutDir = dir
		}
		exp := newApp(cfg).exporter()

		if scheduled, _ := cmd.Flags().GetBool("schedule"); scheduled {
			spec := cfg.Export.Schedule
			if spec == "" {
				return fmt.Errorf("export.schedule is not configured")
			}
			return exp.Schedule(ctx, spec)
		}

		rep, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		log.Info().
			Int("feeds", rep.Feeds).
			Int("feed_errors", rep.FeedErrors).
			Int("headlines", rep.Headlines).
			Dur("duration", rep.Duration).
			Msg("export complete")
		for _, f := range rep.Files {
			fmt.Println(f)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().Bool("schedule", false, "keep running and export on the configured schedule")
	exportCmd.Flags().String("out", "", "output directory override")
}

// --- Researchers Command ---

var researchersCmd = &cobra.Command{
	Use:   "researchers <in.md> <out.csv>",
	Short: "Convert a researcher directory in markdown to CSV",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := researchers.Convert(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d researchers to %s\n", n, args[1])
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and credential status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  newsdesk - System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    HTTP Timeout:   %s (cache bust: %t)\n", cfg.HTTP.Timeout(), cfg.HTTP.CacheBust)
		fmt.Printf("    Quote Hosts:    %s\n", strings.Join(cfg.Yahoo.QuoteHosts, ", "))
		fmt.Printf("    Finnhub:        %s\n", cfg.Finnhub.BaseURL)
		fmt.Printf("    Console Ticker: %s\n", orNone(cfg.Console.TickerSchedule))
		fmt.Printf("    Export:         %s (schedule: %s)\n", cfg.Export.OutDir, orNone(cfg.Export.Schedule))
		fmt.Printf("    API Server:     %s\n", cfg.API.Addr())
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
