// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomripp/member-website-sub001/internal/auth"
	authpg "github.com/tomripp/member-website-sub001/internal/auth/postgres"
	"github.com/tomripp/member-website-sub001/internal/config"
	"github.com/tomripp/member-website-sub001/internal/httpapi"
	"github.com/tomripp/member-website-sub001/internal/logging"
	"github.com/tomripp/member-website-sub001/internal/mail"
	"github.com/tomripp/member-website-sub001/internal/observability"
	"github.com/tomripp/member-website-sub001/internal/store"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication server",
		Long: `Start the HTTP server exposing the /api/auth endpoints and
guarding the members area, plus a separate metrics/health listener.`,
		RunE: runServe,
	}

	cmd.Flags().String("listen-addr", "", "HTTP listen address")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", "", "log format (json or text)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("membersite", version, cfg.LogFormat)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := authpg.NewUserRepository(pool)
	sessions := authpg.NewSessionRepository(pool)
	hasher := auth.NewArgon2idHasher()

	issuer, err := auth.NewIssuer([]byte(cfg.SessionSigningKey), sessions)
	if err != nil {
		return err
	}

	smtpMailer, err := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		BaseURL:  cfg.BaseURL,
	})
	if err != nil {
		return err
	}

	var obsServer *observability.Server
	var metrics *observability.Metrics
	var obsErrCh <-chan error
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx) == nil
		})
		metrics = obsServer.Metrics()

		obsErrCh, err = obsServer.Start()
		if err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if stopErr := obsServer.Stop(stopCtx); stopErr != nil {
				logger.Error("observability server shutdown failed", "error", stopErr)
			}
		}()
	}

	var mailer auth.Mailer = smtpMailer
	if metrics != nil {
		mailer = observability.NewInstrumentedMailer(smtpMailer, metrics)
	}

	svc, err := auth.NewService(users, sessions, hasher, issuer, mailer)
	if err != nil {
		return err
	}

	router, err := httpapi.NewRouter(httpapi.RouterConfig{
		Service:          svc,
		Logger:           logger,
		Metrics:          metrics,
		ProtectedPattern: cfg.ProtectedPattern,
		SecureCookies:    cfg.Production(),
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""

	serveErrCh := make(chan error, 1)
	go func() {
		logger.Info("http server started",
			"addr", cfg.ListenAddr,
			"environment", cfg.Environment,
			"tls", useTLS)
		var serveErr error
		if useTLS {
			serveErr = httpServer.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			serveErr = httpServer.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			serveErrCh <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-serveErrCh:
		return serveErr
	case obsErr, ok := <-obsErrCh:
		if ok {
			return obsErr
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("http server stopped")
	return nil
}
