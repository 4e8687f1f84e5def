package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"event-reminder/core"
	"event-reminder/pkg/resources"
	"event-reminder/pkg/servers"
)

func main() {
	var err error

	name, version := "event-reminder", "1.0"

	// 1. Config (Logger base included)
	ctx := resources.Default(context.Background(), name, version)
	env := viper.GetString("APP_ENV")
	startupLogger := log.Ctx(ctx).With().Str("stage", "startup").Str("component", "main").Logger()
	shutdownLogger := log.Ctx(ctx).With().Str("stage", "shut down").Str("component", "main").Logger()

	startupLogger.Info().Msg("application starting up")
	defer shutdownLogger.Info().Msg("application stopped")

	hookFn := func(ctx context.Context) (context.Context, error) {
		log.Logger = log.Logger.Hook(resources.NewZerologHook(name, version))
		return log.Logger.WithContext(ctx), nil
	}

	// 2. Telemetry (traces/metrics/logs), zerolog bridged into OTel logs
	ctx, stopFn, err := resources.Observe(ctx, name, version, env, hookFn)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg(fmt.Sprintf("unable to setup otel telemetry: %v", err))
	}
	defer stopFn(ctx, 15*time.Second)

	// 3. Event store, picked by the DATABASE_URL scheme
	var repository core.Repository

	if resources.IsMongoURL(viper.GetString("DATABASE_URL")) {
		collection, stopFn, err := resources.CreateMongoCollection(ctx)
		if err != nil {
			shutdownLogger.Fatal().Err(err).Msg(fmt.Sprintf("unable to create mongodb client: %v", err))
		}
		defer stopFn(ctx, 15*time.Second)

		repository = core.NewMongoRepository(collection)
	} else {
		pool, stopFn, err := resources.CreateDatabaseConnectionPool(ctx)
		if err != nil {
			shutdownLogger.Fatal().Err(err).Msg(fmt.Sprintf("unable to create database connection pool: %v", err))
		}
		defer stopFn(ctx, 15*time.Second)

		repository = core.NewRepository(pool)
	}

	err = repository.EnsureSchema(ctx)
	if err != nil {
		startupLogger.Error().Err(err).Msg("unable to ensure events schema")
	}

	// 4. Wiring
	sender := resources.NewTwilioSender(ctx,
		viper.GetString("TWILIO_ACCOUNT_SID"), viper.GetString("TWILIO_AUTH_TOKEN"), viper.GetString("TWILIO_PHONE_NUMBER"))
	location := resources.LoadLocation(ctx, viper.GetString("REMINDER_TIMEZONE"))
	notifier := core.NewNotifier(sender, location)
	handlers := core.NewHandlers(repository, notifier, location)
	sweeper := core.NewSweeper(repository, notifier, viper.GetDuration("REMINDER_WINDOW"), time.Now)

	scheduler, err := resources.CreateScheduler(ctx, viper.GetString("REMINDER_SCHEDULE"), core.SweepJob(ctx, sweeper))
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg(fmt.Sprintf("unable to create reminder scheduler: %v", err))
	}

	// 5. Daemons/servers setup

	gin.SetMode(gin.ReleaseMode)

	restHandler := gin.Default()
	restHandler.Use(cors.Default())
	restHandler.Use(resources.TracerMiddleware(name))
	restHandler.Use(resources.MeterMiddleware(name))

	api := restHandler.Group("/api")
	api.GET("/events", handlers.GetEvents)
	api.POST("/events", handlers.PostEvents)
	api.GET("/events/:id", handlers.GetEvent)

	debugHandler := http.NewServeMux()
	debugHandler.HandleFunc("/debug/pprof/", pprof.Index)
	debugHandler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugHandler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugHandler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugHandler.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// 6. Daemons/servers lifecycle; stopped in reverse order

	errChan := make(chan error, 16)

	_, stopFn, err = servers.Manage(ctx, "base-server", servers.NewBaseServer("base-server", notifier), errChan)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("unable to build base server")
	}
	defer stopFn(ctx, 15*time.Second)

	_, stopFn, err = servers.Manage(ctx, "sweep-scheduler", servers.NewCronServer("sweep-scheduler", scheduler), errChan)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("unable to build sweep scheduler")
	}
	defer stopFn(ctx, 15*time.Second)

	debugServer := servers.NewServer(viper.GetString("DEBUG_HOST"), viper.GetString("DEBUG_PORT"), debugHandler)
	_, stopFn, err = servers.Manage(ctx, "debug-server", servers.NewHttpServer("debug-server", debugServer), errChan)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("unable to build debug server")
	}
	defer stopFn(ctx, 15*time.Second)

	restServer := servers.NewServer(viper.GetString("HTTP_HOST"), viper.GetString("HTTP_PORT"), restHandler)
	_, stopFn, err = servers.Manage(ctx, "rest-server", servers.NewHttpServer("rest-server", restServer), errChan)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("unable to build rest server")
	}
	defer stopFn(ctx, 15*time.Second)

	startupLogger.Info().Msg("application running")

	// 7. Wait for shutdown signal

	notifyCtx, cancelNotifyFn := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancelNotifyFn()

	select {
	case <-notifyCtx.Done():
		startupLogger.Info().Msg("application shutdown requested")
	case runErr := <-errChan:
		shutdownLogger.Error().Err(runErr).Msg("runtime error")
	}
}
