package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ExtractorConfig configures PGN archive extraction.
type ExtractorConfig struct {
	// MaxSkipRatio fails the build when the fraction of unparseable
	// games exceeds it. 1.0 disables the check.
	MaxSkipRatio float64 `yaml:"max_skip_ratio"`
}

// ChunkerConfig configures how game descriptions are split into chunks.
// OverlapWords is a pointer so an explicit 0 (no overlap) is
// distinguishable from an unset value.
type ChunkerConfig struct {
	MaxTokensPerChunk int  `yaml:"max_tokens_per_chunk"`
	ChunkSizeWords    int  `yaml:"chunk_size_words"`
	OverlapWords      *int `yaml:"overlap_words"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the embedder used for builds.
type EmbedderConfig struct {
	Type          string                `yaml:"type"`
	OpenAI        *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	HashDimension int                   `yaml:"hash_dimension,omitempty"`
}

// LLMConfig configures the optional chat model used for result
// formatting and summaries.
type LLMConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	DataDir   string          `yaml:"data_dir"`
	StoreDir  string          `yaml:"store_dir"`
	LogLevel  string          `yaml:"log_level"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	LLM       LLMConfig       `yaml:"llm"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/chess-rag/config.yaml.
// If neither exists, it writes defaults to ~/.config/chess-rag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chess-rag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		DataDir:  "data",
		StoreDir: "embeddings",
		LogLevel: "info",
		Extractor: ExtractorConfig{
			MaxSkipRatio: 1.0,
		},
		Embedder: EmbedderConfig{
			Type: "openai",
			OpenAI: &OpenAIEmbedderConfig{
				Model: "text-embedding-3-large",
			},
		},
		LLM: LLMConfig{
			Model: "gpt-3.5-turbo",
		},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.StoreDir == "" {
		cfg.StoreDir = "embeddings"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Extractor.MaxSkipRatio <= 0 || cfg.Extractor.MaxSkipRatio > 1 {
		cfg.Extractor.MaxSkipRatio = 1.0
	}
	if cfg.Chunker.MaxTokensPerChunk == 0 {
		cfg.Chunker.MaxTokensPerChunk = 6000
	}
	if cfg.Chunker.ChunkSizeWords == 0 {
		cfg.Chunker.ChunkSizeWords = 3000
	}
	if cfg.Chunker.OverlapWords == nil {
		overlap := 100
		cfg.Chunker.OverlapWords = &overlap
	}
	if cfg.Embedder.Type == "openai" || cfg.Embedder.Type == "" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-large"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-3.5-turbo"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
}
