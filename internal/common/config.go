package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Corpus      CorpusConfig    `toml:"corpus"`
	Chunking    ChunkingConfig  `toml:"chunking"`
	Indexing    IndexingConfig  `toml:"indexing"`
	Retrieval   RetrievalConfig `toml:"retrieval"`
	Logging     LoggingConfig   `toml:"logging"`
	OpenAI      OpenAIConfig    `toml:"openai"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	LLM         LLMConfig       `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
	// IndexDir holds one JSON snapshot file per embedding model. Snapshots
	// are replaced wholesale on rebuild, never patched.
	IndexDir string `toml:"index_dir"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// CorpusConfig identifies the single creator profile this instance serves.
type CorpusConfig struct {
	Profile    string `toml:"profile"`     // Creator profile name (folder name in the export)
	ExportPath string `toml:"export_path"` // Default path to the profile export (unified.json)
}

// ChunkingConfig bounds retrieval units. Values are token counts under the
// same encoding used for record token accounting.
type ChunkingConfig struct {
	MaxTokens     int `toml:"max_tokens"`     // Maximum tokens per chunk
	OverlapTokens int `toml:"overlap_tokens"` // Overlap carried between adjacent chunks
}

// IndexingConfig controls the embedding index build.
type IndexingConfig struct {
	EmbedModel      string  `toml:"embed_model"`      // Embedding model name
	BatchSize       int     `toml:"batch_size"`       // Texts per embedding request
	Concurrency     int     `toml:"concurrency"`      // Concurrent embedding requests
	RatePerSecond   float64 `toml:"rate_per_second"`  // Embedding request rate limit
	MaxRetries      int     `toml:"max_retries"`      // Per-chunk retry attempts
	FailureFraction float64 `toml:"failure_fraction"` // Build fails above this failed-chunk fraction
	Schedule        string  `toml:"schedule"`         // Optional cron schedule for background rebuilds
}

// RetrievalConfig controls the hybrid retriever.
type RetrievalConfig struct {
	DefaultTopK int     `toml:"default_top_k"` // Records returned when the request omits top_k
	BlendWeight float64 `toml:"blend_weight"`  // w in w*cosine + (1-w)*lexical
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// OpenAIConfig holds OpenAI provider settings (completions + embeddings).
type OpenAIConfig struct {
	APIKey      string  `toml:"api_key"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

// ClaudeConfig holds Anthropic provider settings.
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

// GeminiConfig holds Google Gemini provider settings.
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

// LLMConfig holds provider-independent generation settings.
type LLMConfig struct {
	DefaultModel   string `toml:"default_model"`   // Model used when the request omits one
	RequestTimeout string `toml:"request_timeout"` // Per-call timeout applied by the orchestrator
	MaxRetries     int    `toml:"max_retries"`     // Provider-level retry attempts
}

// NewDefaultConfig returns the configuration defaults. Files, environment
// variables and CLI flags override these in that order.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8750,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/voxlore/records",
				ResetOnStartup: false,
			},
			IndexDir: "./data/voxlore/index",
		},
		Corpus: CorpusConfig{
			Profile:    "default",
			ExportPath: "./data/export/unified.json",
		},
		Chunking: ChunkingConfig{
			MaxTokens:     512,
			OverlapTokens: 64,
		},
		Indexing: IndexingConfig{
			EmbedModel:      "text-embedding-3-large",
			BatchSize:       25, // Matches the embedding API batch size the corpus was first built with
			Concurrency:     4,  // Bounded to respect provider rate limits
			RatePerSecond:   5,
			MaxRetries:      3,
			FailureFraction: 0.2, // Fail the build rather than ship a badly degraded index
			Schedule:        "",  // Empty disables scheduled rebuilds
		},
		Retrieval: RetrievalConfig{
			DefaultTopK: 40,
			BlendWeight: 0.85,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		OpenAI: OpenAIConfig{
			APIKey:      "", // User must provide API key (OPENAI_API_KEY or config)
			Temperature: 0.7,
			Timeout:     "2m",
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			MaxTokens:   4096,
			Temperature: 0.7,
			Timeout:     "2m",
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key (GEMINI_API_KEY or config)
			Temperature: 0.7,
			Timeout:     "2m",
		},
		LLM: LLMConfig{
			DefaultModel:   "gpt-4.1",
			RequestTimeout: "2m",
			MaxRetries:     3,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VOXLORE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("VOXLORE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VOXLORE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if path := os.Getenv("VOXLORE_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if dir := os.Getenv("VOXLORE_INDEX_DIR"); dir != "" {
		config.Storage.IndexDir = dir
	}
	if profile := os.Getenv("VOXLORE_PROFILE"); profile != "" {
		config.Corpus.Profile = profile
	}

	if level := os.Getenv("VOXLORE_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}

	// Provider keys follow the vendors' conventional variable names, with
	// VOXLORE_-prefixed variants taking precedence.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.OpenAI.APIKey = key
	}
	if key := os.Getenv("VOXLORE_OPENAI_API_KEY"); key != "" {
		config.OpenAI.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("VOXLORE_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("VOXLORE_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}

	if model := os.Getenv("VOXLORE_EMBED_MODEL"); model != "" {
		config.Indexing.EmbedModel = model
	}
	if model := os.Getenv("VOXLORE_DEFAULT_MODEL"); model != "" {
		config.LLM.DefaultModel = model
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
