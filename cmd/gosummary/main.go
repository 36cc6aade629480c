package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/gosummary/internal/app"
	"github.com/hyperifyio/gosummary/internal/summary"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.DefaultContextLogger = &log.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("run failed")
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps failures onto process exit codes: 2 when every acquisition
// tier failed, 1 otherwise.
func exitCode(err error) int {
	if errors.Is(err, summary.ErrExhausted) {
		return 2
	}
	return 1
}

type globalFlags struct {
	configPath string
	envFiles   []string
	verbose    bool
	provider   string
	model      string
	llmBase    string
	exaBase    string
}

func newRootCmd(out io.Writer) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "gosummary",
		Short:         "Summarize web pages through a tiered content pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to a YAML or JSON config file")
	pf.StringSliceVar(&g.envFiles, "env-file", []string{".env"}, "Dotenv files to load (later files win)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Verbose logging")
	pf.StringVar(&g.provider, "llm.provider", "", "LLM provider (anthropic, openai, gemini)")
	pf.StringVar(&g.model, "llm.model", "", "Model name")
	pf.StringVar(&g.llmBase, "llm.base", "", "Override the LLM base URL")
	pf.StringVar(&g.exaBase, "exa.base", "", "Override the content provider base URL")

	root.AddCommand(generateCmd(g, out), serveCmd(g), versionCmd(out))
	return root
}

// loadConfig layers defaults, the config file, dotenv files, the
// environment and finally explicit flags.
func loadConfig(g *globalFlags) (app.Config, error) {
	cfg := app.DefaultConfig()
	if strings.TrimSpace(g.configPath) != "" {
		fc, err := app.LoadConfigFile(g.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if err := app.LoadEnvFiles(g.envFiles...); err != nil {
		return cfg, fmt.Errorf("load env files: %w", err)
	}
	if err := app.ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if g.provider != "" {
		cfg.LLMProvider = g.provider
	}
	if g.model != "" {
		cfg.LLMModel = g.model
	}
	if g.llmBase != "" {
		cfg.LLMBaseURL = g.llmBase
	}
	if g.exaBase != "" {
		cfg.ExaBaseURL = g.exaBase
	}
	if g.verbose {
		cfg.Verbose = true
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return cfg, nil
}

func generateCmd(g *globalFlags, out io.Writer) *cobra.Command {
	var (
		urls     []string
		ids      []string
		urlsFrom string
		query    string
		focus    []string
		format   string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "generate [url...]",
		Short: "Generate one summary and print or write it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			req := summary.Request{
				URLs:       append(append([]string{}, urls...), args...),
				IDs:        ids,
				Query:      query,
				FocusAreas: focus,
			}
			if urlsFrom != "" {
				found, err := app.URLsFromFile(urlsFrom)
				if err != nil {
					return fmt.Errorf("read urls: %w", err)
				}
				req.URLs = append(req.URLs, found...)
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			res, err := a.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := app.WriteResult(res, format, output, out); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			if output != "" {
				log.Info().Str("path", output).Str("tier", res.GeneratedBy).Msg("summary written")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&urls, "url", nil, "Source URL (repeatable)")
	f.StringArrayVar(&ids, "id", nil, "Content provider document id (repeatable)")
	f.StringVar(&urlsFrom, "urls-from", "", "Read URLs from a text file")
	f.StringVarP(&query, "query", "q", "", "Query context guiding the summary")
	f.StringSliceVar(&focus, "focus", nil, "Focus areas (comma separated or repeatable)")
	f.StringVarP(&format, "format", "f", app.FormatJSON, "Output format: json, markdown or pdf")
	f.StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func serveCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			return a.Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from HTTP_ADDR or :8000)")
	return cmd
}

func versionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(out, app.BuildInfo())
			return err
		},
	}
}
