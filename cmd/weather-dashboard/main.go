package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"weather-dashboard/config"
	v1 "weather-dashboard/internal/controllers/http/v1"
	"weather-dashboard/internal/repositories"
	"weather-dashboard/internal/services/dashboard"
	"weather-dashboard/pkg/httpcache"
	"weather-dashboard/pkg/httpclient"
	"weather-dashboard/pkg/httpserver"
	"weather-dashboard/pkg/logger"
	"weather-dashboard/pkg/metrics"
	"weather-dashboard/pkg/observe"
)

// @title Weather Dashboard API
// @version 1.0.0
// @description Current conditions, a 5 day summary and an hourly trend for any city, built on Open-Meteo forecasts.

// @contact.name Weather Dashboard Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Dashboard
// @tag.description Dashboard data operations
func main() {
	ctx, cancel := context.WithCancel(context.Background())

	cnf, err := config.NewConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	writers := []io.Writer{os.Stdout}
	var sentryHook *observe.SentryHook
	if cnf.SentryEnabled() {
		sentryHook = observe.NewSentryHook(cnf.App.Env, cnf.App.Name, 0, cnf.Sentry.Debug, cnf.Sentry.DSN)
		writers = append(writers, sentryHook)
	}

	l := logger.New(cnf.App.Name,
		logger.WithEnv(cnf.App.Env),
		logger.WithLevel(cnf.Log.Level),
		logger.WithWriters(writers...),
	)
	if sentryHook != nil {
		sentryHook.SetLogger(l)
	}

	m := metrics.New()

	cache, err := httpcache.Open(httpcache.Config{
		Path: cnf.HTTPClient.CachePath,
		TTL:  cnf.HTTPClient.CacheTTL,
	})
	if err != nil {
		l.Fatal("cannot open response cache", map[string]any{"err": err, "path": cnf.HTTPClient.CachePath})
	}

	client := httpclient.New(httpclient.Config{
		Timeout:      cnf.HTTPClient.Timeout,
		RetryCount:   cnf.HTTPClient.RetryCount,
		RetryWait:    cnf.HTTPClient.RetryWait,
		RetryMaxWait: cnf.HTTPClient.RetryMaxWait,
		UserAgent:    cnf.HTTPClient.UserAgent,
	}, cache, m, l)

	geocoder, forecasts, err := repositories.InitRepositories(cnf, client, l)
	if err != nil {
		l.Fatal("cannot init repositories", map[string]any{"err": err})
	}

	service := dashboard.NewDashboardService(geocoder, forecasts, l,
		dashboard.WithMetrics(m),
		dashboard.WithTrendHours(cnf.Dashboard.TrendHours),
		dashboard.WithMapZoom(cnf.Dashboard.MapZoom),
	)

	app := httpserver.InitFiberServer(httpserver.Config{
		AppName:      cnf.App.Name,
		ReadTimeout:  cnf.Server.ReadTimeout,
		WriteTimeout: cnf.Server.WriteTimeout,
		IdleTimeout:  cnf.Server.IdleTimeout,
	}, m)

	v1.NewRouter(
		app,
		service,
		v1.Config{DefaultCity: cnf.Dashboard.DefaultCity},
		m,
		l,
	)

	go func() {
		if err := app.Listen(":" + cnf.Server.Port); err != nil {
			l.Error(err, map[string]any{"msg": "cannot run the server"})
			cancel()
		}
	}()

	l.Info("application started successfully", map[string]any{
		"port":     cnf.Server.Port,
		"env":      cnf.App.Env,
		"geocoder": geocoder.Name(),
		"forecast": forecasts.Name(),
	})

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		l.Warning("stopping application services")
		signal.Stop(sigCh)
		close(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = app.ShutdownWithContext(shutdownCtx)
		if err := cache.Close(); err != nil {
			l.Error(err)
		}
		if sentryHook != nil {
			sentryHook.Flush()
		}
		_ = l.Stop()
		cancel()
	}()

	select {
	case sig := <-sigCh:
		l.Info("received shutdown signal", map[string]any{"signal": sig.String()})
	case <-ctx.Done():
		l.Warning("context cancelled")
	}
}
