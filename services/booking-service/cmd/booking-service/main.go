package main

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/cruiserex/site/libs/config"
	"github.com/cruiserex/site/libs/httpx"
	otelx "github.com/cruiserex/site/libs/otel"
	"github.com/cruiserex/site/libs/runtime"
	"github.com/cruiserex/site/services/booking-service/internal/appointments"
	"github.com/cruiserex/site/services/booking-service/internal/guard"
	"github.com/cruiserex/site/services/booking-service/internal/handlers"
	"github.com/cruiserex/site/services/booking-service/internal/metrics"
	"github.com/cruiserex/site/services/booking-service/internal/notify"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	st, err := openStore(ctx, logger)
	if err != nil {
		logger.Error("store setup failed", "err", err)
		panic(err)
	}
	defer st.close()

	sess, err := openSessions(logger)
	if err != nil {
		logger.Error("session store setup failed", "err", err)
		panic(err)
	}
	defer sess.close()

	m := metrics.New()
	notifier := notify.NewEmailNotifier(
		notify.NewSMTPSender(notify.SMTPConfig{
			Host: config.String("SMTP_HOST", "localhost"),
			Port: config.String("SMTP_PORT", "1025"),
			User: config.String("SMTP_USER", ""),
			Pass: config.String("SMTP_PASS", ""),
		}),
		notify.Config{
			Brand: config.String("MAIL_BRAND", "Cruiserex"),
			From:  config.String("SMTP_FROM", config.String("SMTP_USER", "")),
			To:    config.String("APPOINTMENT_TARGET_EMAIL", config.String("SMTP_USER", "")),
		},
	)
	svc := appointments.NewService(st.store, notifier, m, logger)

	adminGuard := guard.New(guard.Config{
		Secret:     config.String("ADMIN_SECRET", ""),
		SecretHash: config.String("ADMIN_SECRET_BCRYPT", ""),
		Sessions:   sess.manager,
		Logger:     logger,
	})
	if config.String("ADMIN_SECRET", "") == "" && config.String("ADMIN_SECRET_BCRYPT", "") == "" {
		logger.Warn("no admin secret configured; admin endpoints will reject every request")
	}

	mux := runtime.NewBaseMuxWithReady(append(st.checks, sess.checks...)...)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/api/health", handlers.Health)
	mux.Handle("/api/create-appointment", handlers.NewIntakeHandler(svc, logger))
	mux.Handle("/api/appointment-admin", handlers.NewAdminHandler(svc, adminGuard, logger))
	mux.Handle("/api/admin/session", handlers.NewSessionHandler(adminGuard, sess.manager, logger))

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 64<<10, 1))),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 20*time.Second)),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "store", st.driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
