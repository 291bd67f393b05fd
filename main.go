package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/spendlens/backend/internal/config"
	v1 "github.com/spendlens/backend/internal/controllers/v1"
	"github.com/spendlens/backend/internal/ingest"
	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/internal/parsing"
	"github.com/spendlens/backend/internal/router"
	"github.com/spendlens/backend/internal/storage"
	"github.com/spendlens/backend/internal/taxonomy"
)

func main() {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	// A .env file is optional
	_ = godotenv.Load()

	cfg := config.Load()

	err := os.MkdirAll(cfg.DataDir, os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	err = models.Connect(cfg.DBPath + "?_pragma=foreign_keys(1)")
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	err = seedCategories()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	blobs, err := storage.New(cfg.DataDir)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	extractor := parsing.NewPDFExtractor()
	oracle := parsing.NewGeminiOracle(cfg.GeminiAPIKey, cfg.GeminiModel)
	runner := ingest.NewRunner(cfg, extractor, oracle, blobs)
	queue := ingest.NewQueue(runner, cfg.ParseWorkers)
	service := ingest.NewService(cfg, extractor, blobs, queue)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)

	co := v1.NewController(cfg, service)

	r, err := router.Config()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	router.AttachRoutes(co, r.Group("/"))

	addr := ":8080"
	if port, ok := os.LookupEnv("PORT"); ok {
		addr = ":" + port
	}

	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Msg(err.Error())
		}
	}()
	log.Info().Str("address", addr).Msg("Server started")

	// Block until the context is canceled by a signal, then drain the
	// parse workers and stop accepting requests
	<-ctx.Done()
	log.Info().Msg("Shutting down")

	queue.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Msg(err.Error())
	}
}

// seedCategories creates the default categories on an empty database.
func seedCategories() error {
	var count int64
	err := models.DB.Model(&models.Category{}).Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	for _, seed := range taxonomy.Defaults() {
		category := models.Category{
			Name:      seed.Name,
			Color:     seed.Color,
			Icon:      seed.Icon,
			IsDefault: true,
		}
		if err := models.DB.Create(&category).Error; err != nil {
			return err
		}
	}

	return nil
}
