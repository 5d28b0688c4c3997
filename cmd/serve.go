package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mstgnz/placetopay/handler"
	"github.com/mstgnz/placetopay/infra/config"
	"github.com/mstgnz/placetopay/infra/events"
	"github.com/mstgnz/placetopay/infra/logger"
	"github.com/mstgnz/placetopay/infra/middle"
	"github.com/mstgnz/placetopay/infra/opensearch"
	"github.com/mstgnz/placetopay/provider"
	"github.com/mstgnz/placetopay/provider/placetopay"
	"github.com/mstgnz/placetopay/router"
	"github.com/spf13/cobra"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook and session relay",
		Long: `Run the relay HTTP service.

Checkout notifications posted to /webhooks/placetopay are verified and, when
NATS_URL is set, republished on JetStream. /v1/sessions creates and queries
checkout sessions with the configured credentials.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to :APP_PORT)")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, addr string) error {
	cfg := config.GetAppConfig()
	if addr == "" {
		addr = ":" + cfg.Port
	}

	var osLogger *opensearch.Logger
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg)
		if err != nil {
			fmt.Printf("Warning: Failed to initialize OpenSearch client: %v\n", err)
		} else {
			osLogger = opensearch.NewLogger(osClient)
		}
	}
	logger.InitGlobalLogger(osLogger)
	sysLog := logger.GetGlobalLogger()

	handlers := router.Handlers{}
	sinks := map[string]bool{
		"checkout":   false,
		"opensearch": osLogger != nil,
		"nats":       false,
	}

	client, err := newClient(opts, sysLog, osLogger)
	if err != nil {
		sysLog.Warn("Checkout client not configured, session and webhook routes disabled", logger.LogContext{
			Fields: map[string]any{"reason": err.Error()},
		})
	} else {
		sinks["checkout"] = true
		handlers.Sessions = handler.NewSessionHandler(client.Sessions, config.App().Validator)
	}

	var publisher handler.NotificationPublisher
	if cfg.NATSURL != "" {
		pub, err := events.Connect(ctx, cfg.NATSURL, cfg.NATSStream, "placetopay-"+config.App().InstanceID)
		if err != nil {
			return err
		}
		defer pub.Close()
		publisher = pub
		sinks["nats"] = true
	}
	if client != nil {
		handlers.Webhook = handler.NewWebhookHandler(client.Webhooks, publisher)
	}
	handlers.Health = handler.NewHealthHandler(sinks)
	if osLogger != nil {
		handlers.Logs = handler.NewLogsHandler(osLogger)
	}

	rateLimiter := middle.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer rateLimiter.Stop()

	r := router.New(handlers, router.Options{
		APIKey:      cfg.APIKey,
		WebhookIPs:  cfg.WebhookIPWhitelist,
		RateLimiter: rateLimiter,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      sysLog,
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		sysLog.Info("Relay listening", logger.LogContext{Fields: map[string]any{"addr": addr}})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	sysLog.Info("Shutting down relay")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// newClient builds the SDK client from the environment and the optional --config file
func newClient(opts *rootOptions, sysLog *logger.SystemLogger, osLogger *opensearch.Logger) (*placetopay.Client, error) {
	settings, err := config.LoadClientSettings(opts.envPrefix, opts.configFile)
	if err != nil {
		return nil, err
	}

	return placetopay.FromSettings(settings, opts.envPrefix, func(c *placetopay.Config) {
		c.Logger = sysLog.SDK()
		if osLogger != nil {
			c.Recorder = osLogger
		}
		policy := provider.DefaultRetryPolicy()
		c.RetryPolicy = &policy
	})
}
