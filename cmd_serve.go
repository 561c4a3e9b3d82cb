package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"seo_enricher/config"
	"seo_enricher/generator"
	"seo_enricher/server"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		mock       bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the enrichment endpoint and the upload page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ServerAddr = addr
			}

			llm, err := buildLLM(cfg, mock)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := server.NewMetrics(reg)

			enricher, err := generator.NewEnricher(llm,
				generator.WithLogger(logger.Named("generator")),
				generator.WithPayloadLogging(cfg.LogPayloads || verbose),
				generator.WithObserver(metrics.ObserveProvider))
			if err != nil {
				return err
			}
			timeout, err := cfg.Timeout()
			if err != nil {
				return err
			}
			srv, err := server.New(enricher, server.Options{
				Logger:  logger.Named("server"),
				Metrics: metrics,
				Timeout: timeout,
			})
			if err != nil {
				return err
			}
			return listen(cmd.Context(), cfg.ServerAddr, srv.Routes())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.json or config.yaml")
	cmd.Flags().StringVar(&addr, "addr", "", "http listen address (overrides config server_addr)")
	cmd.Flags().BoolVar(&mock, "mock", false, "answer with placeholder descriptions instead of calling the provider")
	return cmd
}

func buildLLM(cfg config.Config, mock bool) (generator.LLMClient, error) {
	if mock {
		logger.Warn("using mock llm; descriptions are placeholders")
		return generator.MockLLM{}, nil
	}
	switch cfg.LLM.Provider {
	case "", "openai", "deepseek":
		return generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

func listen(ctx context.Context, addr string, h http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hs := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting web server", zap.String("addr", addr))
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	}
}
