package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sangneko/Chat-AI/backend"
	"github.com/sangneko/Chat-AI/config"
	"github.com/sangneko/Chat-AI/handler"
	"github.com/sangneko/Chat-AI/logging"
	"github.com/sangneko/Chat-AI/manager"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	cli, err := config.ParseArgs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cli.Version {
		fmt.Println(Version)
		return
	}

	log := logging.GetLogger()

	cfg, err := config.LoadConfig(cli.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cli.Provider != "" {
		if err := cfg.OverrideProvider(cli.Provider); err != nil {
			log.Fatalf("Invalid -provider: %v", err)
		}
	}

	if err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if cli.Debug {
		logging.InitLogger(logrus.DebugLevel)
	}

	provider, err := backend.NewCompleter(cfg)
	if err != nil {
		log.Fatalf("Failed to create %s provider: %v", cfg.Provider, err)
	}
	logCredentialCheck(log, cfg, provider)

	tracker := manager.NewCallTracker(time.Second)
	defer tracker.Shutdown()

	chat := handler.NewChatHandler(provider, handler.ChatOptions{
		SystemPrompt:    cfg.SystemPrompt,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}, tracker)

	// Define the server
	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           handler.NewRouter(chat),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.MetricsAddress != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           handler.NewMetricsRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Infof("Serving metrics on %s", cfg.MetricsAddress)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Metrics server failed: %v", err)
			}
		}()
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("Starting server on %s (provider: %s)", cfg.ListenAddress, provider.Name())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-done
	log.Infoln("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if metricsServer != nil {
		shutdownServer(ctx, log, "Metrics server", metricsServer)
	}
	if !shutdownServer(ctx, log, "Server", server) {
		return
	}
	log.Infoln("Server stopped")
}

// shutdownServer drains srv and logs a failed shutdown.
func shutdownServer(ctx context.Context, log *logrus.Logger, name string, srv *http.Server) bool {
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("%s shutdown: %v", name, err)
		return false
	}
	return true
}

// logCredentialCheck reports a missing API key once at startup. It never
// stops the process; each request repeats the check and fails on its own.
func logCredentialCheck(log *logrus.Logger, cfg *config.Config, provider backend.Completer) {
	if !provider.RequiresKey() {
		log.Infof("%s provider needs no API key", provider.Name())
		return
	}
	if !provider.Configured() {
		log.Warnf("%s is not set; requests to /api/chat will fail until it is configured", cfg.KeyEnvName())
		return
	}
	log.Infof("%s API key loaded", provider.Name())
}
