package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftline/webhook-gateway/bindings"
	"github.com/craftline/webhook-gateway/config"
	"github.com/craftline/webhook-gateway/internal/http/chi"
	"github.com/craftline/webhook-gateway/metrics"
	"github.com/craftline/webhook-gateway/webhook"
	"github.com/craftline/webhook-gateway/webhook/redis"
	"github.com/go-chi/httplog"
)

const TIMEOUT = 30 * time.Second

/* main é a porta de entrada e saída da aplicação: é aqui que as dependências
 * são iniciadas e amarradas.
 *
 * As importações seguem uma única direção: o binário importa a camada de
 * negócios (webhook), que importa a camada de armazenamento (redis).
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	logger := httplog.NewLogger("webhook-gateway", httplog.Options{
		JSON: true,
	})

	repo, err := redis.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer repo.Close(ctx)

	svc := webhook.NewService(webhook.NewRegistry(), repo, webhook.Settings{
		Timeout:          cfg.HandlerTimeout(),
		RetryMaxAttempts: cfg.RetryMaxAttempts,
		RetryDelay:       cfg.RetryDelay(),
		DrainInterval:    cfg.DrainInterval(),
	}, logger)

	if cfg.WebhookSecret == "" {
		logger.Warn().Msg("no webhook secret configured, signature validation is disabled")
	}

	loader := bindings.NewLoader()
	if err := loader.Load(cfg.BindingsFile); err != nil {
		fmt.Println(err)
		return
	}
	client := &http.Client{Timeout: cfg.HandlerTimeout()}
	for _, b := range loader.List() {
		svc.Register(b.Event, bindings.NewHandler(b, client, logger))
	}
	logger.Info().Int("handlers", len(loader.List())).Msg("event bindings registered")

	svc.Start(ctx)
	defer svc.Stop()

	collector := metrics.NewPipelineCollector(svc, repo)
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer exporter.Shutdown(context.Background())

	origins := webhook.NewOriginPolicy(cfg.AllowedOrigins())
	r := chi.WebhookHandlers(logger, svc, repo, cfg.WebhookSecret, origins, exporter.ServeHTTP())

	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	fmt.Printf("Listening on port %s\n", cfg.Port)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
		return
	}
	err = <-errShutdown
	if err != nil {
		fmt.Println(err)
		return
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	}
}
