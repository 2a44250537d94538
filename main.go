package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"chat_artifact_publisher/artifact"
	"chat_artifact_publisher/chat"
	"chat_artifact_publisher/config"
	"chat_artifact_publisher/events"
	"chat_artifact_publisher/generator"
	"chat_artifact_publisher/logging"
	"chat_artifact_publisher/publisher"
	"chat_artifact_publisher/server"
	"chat_artifact_publisher/store"
)

func main() {
	configPath := flag.String("config", "config/config.json", "path to config.json")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	mdPath := flag.String("md", "", "path to markdown file to publish")
	title := flag.String("title", "", "article title (defaults to the first heading)")
	tags := flag.String("tags", "", "comma separated tags")
	verbose := flag.Bool("v", false, "enable debug logs")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if *addr != "" {
		cfg.ServerAddr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetry, err := logging.SetupTelemetry(ctx, cfg.OTel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup(cfg)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown error", "error", err)
		}
	}()

	if *serve {
		err = runServer(ctx, cfg)
	} else {
		err = runPublish(ctx, cfg, *mdPath, *title, *tags)
	}
	if err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg config.Config) error {
	db, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	llm, err := generator.NewLLMFromConfig(generator.LLMSettings{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return err
	}
	agent, err := generator.NewAgent(llm, cfg.LLM.Model)
	if err != nil {
		return err
	}

	var notifier events.Notifier = events.Nop{}
	if cfg.NATS.Enabled() {
		nc, err := events.Connect(cfg.NATS)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				slog.Warn("nats drain failed", "error", err)
			}
		}()
		notifier = events.NewNATSNotifier(nc, cfg.NATS.SubjectPrefix)
		slog.Info("lifecycle events enabled", "url", cfg.NATS.URL, "prefix", cfg.NATS.SubjectPrefix)
	}

	chats := chat.NewService(db, db, agent)
	manager := artifact.NewManager(chats, agent, db, db, db, notifier)

	var orch *publisher.Orchestrator
	platform, err := publisher.NewPlatform(cfg.Publisher, nil)
	if err != nil {
		slog.Warn("publishing disabled", "platform", cfg.Publisher.Platform, "error", err)
	} else {
		orch = publisher.NewOrchestrator(manager, platform)
	}

	opts := server.Options{}
	if cfg.OTel.Enabled() {
		opts.OTelServiceName = cfg.OTel.ServiceName
	}
	srv, err := server.New(chats, manager, orch, opts)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting web server", "addr", cfg.ServerAddr, "llm", cfg.LLM.Provider, "platform", cfg.Publisher.Platform)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// runPublish posts a local markdown file straight to the configured platform.
func runPublish(ctx context.Context, cfg config.Config, mdPath, title, tagList string) error {
	if mdPath == "" {
		return errors.New("--md is required (or use --serve)")
	}
	md, err := os.ReadFile(mdPath)
	if err != nil {
		return err
	}
	if title == "" {
		title = generator.ParseDocument(string(md)).Title
	}
	if title == "" {
		return errors.New("--title is required when the markdown has no heading")
	}

	var tags []generator.Tag
	for _, name := range strings.Split(tagList, ",") {
		if name = strings.TrimSpace(name); name != "" {
			tags = append(tags, generator.Tag{Name: name})
		}
	}
	if len(tags) == 0 {
		return errors.New("--tags needs at least one tag")
	}

	platform, err := publisher.NewPlatform(cfg.Publisher, nil)
	if err != nil {
		return err
	}
	slog.Info("publishing", "platform", platform.Name(), "title", title, "md", mdPath)
	url, err := platform.Post(ctx, publisher.Post{
		Title:   title,
		Content: string(md),
		Tags:    tags,
		BaseDir: filepath.Dir(mdPath),
	})
	if err != nil {
		return err
	}
	slog.Info("publish done", "url", url)
	fmt.Println(url)
	return nil
}
