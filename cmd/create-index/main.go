package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"chess-rag/internal/chunker"
	"chess-rag/internal/config"
	"chess-rag/internal/embedding"
	"chess-rag/internal/pgn"
	"chess-rag/internal/service"
	"chess-rag/internal/store"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, dataDir string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/chess-rag/config.yaml if not provided)")
	flag.StringVar(&dataDir, "data", "", "Directory of PGN archives (overrides config data_dir)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if dataDir == "" {
		dataDir = cfg.DataDir
	}

	log := newLogger(cfg.LogLevel)

	embedder, err := embedding.FromConfig(cfg.Embedder.Type, openAIConfig(cfg), cfg.Embedder.HashDimension)
	if err != nil {
		log.Fatal().Err(err).Msg("embedder init failed")
	}

	builder := service.NewBuilder(
		pgn.NewExtractor(cfg.Extractor.MaxSkipRatio, log),
		chunker.NewWordChunker(cfg.Chunker.MaxTokensPerChunk, cfg.Chunker.ChunkSizeWords, *cfg.Chunker.OverlapWords),
		embedder,
		store.New(cfg.StoreDir),
		log,
	)

	indexID, err := builder.Build(dataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("index build failed")
	}
	fmt.Println(indexID)
}

func openAIConfig(cfg *config.AppConfig) embedding.OpenAIConfig {
	oc := cfg.Embedder.OpenAI
	if oc == nil {
		return embedding.OpenAIConfig{}
	}
	return embedding.OpenAIConfig{
		BaseURL:   oc.BaseURL,
		APIKeyEnv: oc.APIKeyEnv,
		Model:     oc.Model,
		Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
