package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/companion/backend/internal/config"
	"github.com/zhouzirui/companion/backend/internal/handler"
	"github.com/zhouzirui/companion/backend/internal/handler/status"
	"github.com/zhouzirui/companion/backend/internal/metrics"
	"github.com/zhouzirui/companion/backend/internal/model/persona"
	"github.com/zhouzirui/companion/backend/internal/service/ai"
	"github.com/zhouzirui/companion/backend/internal/service/companion"
	emotionservice "github.com/zhouzirui/companion/backend/internal/service/emotion"
)

var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Persona-driven AI companion backend",
	Long: `Serves the companion chat API: persona-conditioned replies with
per-message sentiment hints.

Configuration is read from the environment, after an optional .env file.`,
	Version:       config.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(personasCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

// loadConfig loads .env (if any), parses the environment and sets up logging.
func loadConfig() (*config.Config, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg.Log)

	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file, continuing with system environment variables only")
	}
	return cfg, nil
}

// personaSource returns the filesystem persona definitions are loaded from.
func personaSource(cfg config.PersonaConfig) (fs.FS, string) {
	if cfg.Dir == "" {
		return persona.Presets(), "presets"
	}
	return os.DirFS(cfg.Dir), "."
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	items, err := persona.Load(personaSource(cfg.Persona))
	if err != nil {
		return fmt.Errorf("failed to load personas: %w", err)
	}
	if len(items) == 0 {
		log.Error().Msg("no personas loaded, /chat will fail until definitions are added")
	}
	personaStore := persona.NewRegistry(items, cfg.Persona.Default)

	aiService, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Warn().Err(err).Msg("generator unavailable, continuing without AI replies")
	} else {
		log.Info().Str("backend", aiService.BackendName()).Msg("generator initialized")
	}

	emotionSvc, err := emotionservice.NewService(ctx, cfg.Emotion, aiService.ChatModel())
	if err != nil {
		log.Warn().Err(err).Msg("emotion classifier unavailable, continuing without sentiment hints")
	} else {
		log.Info().Str("backend", emotionSvc.BackendName()).Msg("emotion classifier initialized")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	router := handler.NewRouter(handler.Deps{
		Personas:  personaStore,
		Companion: companion.NewService(personaStore, aiService, emotionSvc, m),
		Emotion:   emotionSvc,
		Metrics:   m,
		Gatherer:  reg,
		Environment: status.Environment{
			Version:             config.Version,
			GeminiKeyConfigured: cfg.AI.GeminiEnabled(),
		},
	})

	return startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: serverCfg.ReadHeaderTimeout,
		IdleTimeout:       serverCfg.IdleTimeout,
	}

	log.Info().Str("addr", serverCfg.Addr).Str("version", config.Version).Msg("companion backend listening")
	if err := runServer(ctx, srv, serverCfg); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func runServer(ctx context.Context, srv *http.Server, serverCfg config.ServerConfig) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
