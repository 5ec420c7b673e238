package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"chess-rag/internal/config"
	"chess-rag/internal/domain"
	"chess-rag/internal/embedding"
	"chess-rag/internal/llm"
	"chess-rag/internal/service"
	"chess-rag/internal/store"
	"chess-rag/internal/summarizer"
	"chess-rag/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, query, datasetID, mode string
	var topK int
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/chess-rag/config.yaml if not provided)")
	flag.StringVar(&query, "query", "", "Run a single search and print the result (omit for interactive mode)")
	flag.StringVar(&datasetID, "dataset", "", "Search a specific index bundle by id (default: first available)")
	flag.StringVar(&mode, "mode", "raw", "Output mode: raw, report, or chat")
	flag.IntVar(&topK, "k", 5, "Number of results")
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

	log := newLogger(cfg.LogLevel)

	// Query embedding resolves from the bundle manifest's recorded
	// model, with local config only supplying connection details.
	openAICfg := embedding.OpenAIConfig{}
	if oc := cfg.Embedder.OpenAI; oc != nil {
		openAICfg = embedding.OpenAIConfig{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
		}
	}
	factory := func(model string) (domain.Embedder, error) {
		return embedding.ForModel(model, openAICfg)
	}

	var generator domain.Generator
	client, err := llm.NewClient(llm.Config{
		BaseURL:   cfg.LLM.BaseURL,
		APIKeyEnv: cfg.LLM.APIKeyEnv,
		Model:     cfg.LLM.Model,
		Timeout:   time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Warn().Err(err).Msg("chat model unavailable, report and chat modes will degrade")
	} else {
		generator = client
	}

	svc := service.NewSearchService(
		store.New(cfg.StoreDir),
		factory,
		generator,
		summarizer.NewFrequencyDigest(),
		log,
	)

	if query != "" {
		out, err := svc.SearchGames(query, topK, datasetID, service.Mode(mode))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(out)
		return
	}

	m := tui.New(svc, datasetID, topK)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal().Err(err).Msg("tui failed")
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
