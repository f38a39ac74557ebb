// Package config resolves process configuration from the environment.
//
// Configuration is read once at startup and treated as read-only for the
// process lifetime. Every knob has a default so the server can start with no
// environment at all, pointed at a local LM Studio and a local Qdrant.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Environment variable names.
const (
	EnvQdrantAddr        = "QDRANT_ADDR"
	EnvCollectionName    = "COLLECTION_NAME"
	EnvEmbeddingModel    = "EMBEDDING_MODEL"
	EnvLMStudioURL       = "LM_STUDIO_URL"
	EnvLMStudioAPIKey    = "LM_STUDIO_API_KEY"
	EnvSourcePath        = "SOURCE_PATH"
	EnvMinRelevanceScore = "MIN_RELEVANCE_SCORE"
	EnvMaxExcerptChars   = "MAX_EXCERPT_CHARS"
	EnvOversampleFactor  = "OVERSAMPLE_FACTOR"
	EnvQueryTimeout      = "QUERY_TIMEOUT"
	EnvLogFile           = "LOG_FILE"
	EnvLogLevel          = "LOG_LEVEL"
)

// Defaults.
const (
	DefaultQdrantAddr        = "127.0.0.1:6334"
	DefaultCollectionName    = "bevy-0-14-2"
	DefaultEmbeddingModel    = "text-embedding-embeddinggemma-300m@bf16"
	DefaultLMStudioURL       = "http://127.0.0.1:1234/v1"
	DefaultLMStudioAPIKey    = "lm-studio"
	DefaultMinRelevanceScore = 0.5
	DefaultMaxExcerptChars   = 3000
	DefaultOversampleFactor  = 3
	DefaultQueryTimeout      = 60 * time.Second
	DefaultLogFile           = "mcp-debug.log"

	// MinOversampleFactor is the floor for the candidate oversampling factor.
	// The pipeline must always request more candidates than it returns so
	// post-hoc filtering losses can be absorbed.
	MinOversampleFactor = 2
)

// Config holds all resolved settings for the server process.
type Config struct {
	// QdrantAddr is the host:port of the Qdrant gRPC endpoint.
	QdrantAddr string
	// Collection is the Qdrant collection holding the indexed corpus.
	Collection string
	// EmbeddingModel is the model identifier passed to the embedding backend.
	EmbeddingModel string
	// LMStudioURL is the base URL of the OpenAI-compatible embeddings API.
	LMStudioURL string
	// LMStudioAPIKey authenticates against the embeddings API.
	LMStudioAPIKey string
	// SourcePath is the root of the source tree excerpts are read from.
	SourcePath string
	// MinRelevanceScore is the similarity floor below which candidates are
	// dropped without classification.
	MinRelevanceScore float32
	// MaxExcerptChars bounds the size of a single file excerpt.
	MaxExcerptChars int
	// OversampleFactor multiplies top_k when querying the vector store.
	OversampleFactor int
	// QueryTimeout bounds a single search end to end. Zero disables it.
	QueryTimeout time.Duration
	// LogFile receives structured logs. Stdout carries the protocol, so logs
	// must never go there.
	LogFile  string
	LogLevel string
}

// Load resolves configuration from the environment, applying defaults and
// validating invariants.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	// An explicitly empty variable is a configuration mistake we want to
	// surface in validation, not silently paper over with a default.
	v.AllowEmptyEnv(true)

	v.SetDefault(EnvQdrantAddr, DefaultQdrantAddr)
	v.SetDefault(EnvCollectionName, DefaultCollectionName)
	v.SetDefault(EnvEmbeddingModel, DefaultEmbeddingModel)
	v.SetDefault(EnvLMStudioURL, DefaultLMStudioURL)
	v.SetDefault(EnvLMStudioAPIKey, DefaultLMStudioAPIKey)
	v.SetDefault(EnvSourcePath, ".")
	v.SetDefault(EnvMinRelevanceScore, DefaultMinRelevanceScore)
	v.SetDefault(EnvMaxExcerptChars, DefaultMaxExcerptChars)
	v.SetDefault(EnvOversampleFactor, DefaultOversampleFactor)
	v.SetDefault(EnvQueryTimeout, DefaultQueryTimeout)
	v.SetDefault(EnvLogFile, DefaultLogFile)
	v.SetDefault(EnvLogLevel, "info")

	cfg := &Config{
		QdrantAddr:        v.GetString(EnvQdrantAddr),
		Collection:        v.GetString(EnvCollectionName),
		EmbeddingModel:    v.GetString(EnvEmbeddingModel),
		LMStudioURL:       v.GetString(EnvLMStudioURL),
		LMStudioAPIKey:    v.GetString(EnvLMStudioAPIKey),
		SourcePath:        v.GetString(EnvSourcePath),
		MinRelevanceScore: float32(v.GetFloat64(EnvMinRelevanceScore)),
		MaxExcerptChars:   v.GetInt(EnvMaxExcerptChars),
		OversampleFactor:  v.GetInt(EnvOversampleFactor),
		QueryTimeout:      v.GetDuration(EnvQueryTimeout),
		LogFile:           v.GetString(EnvLogFile),
		LogLevel:          v.GetString(EnvLogLevel),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Collection == "" {
		return fmt.Errorf("%s must not be empty", EnvCollectionName)
	}
	if c.MaxExcerptChars <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvMaxExcerptChars, c.MaxExcerptChars)
	}
	if c.MinRelevanceScore < 0 || c.MinRelevanceScore > 1 {
		return fmt.Errorf("%s must be within [0,1], got %v", EnvMinRelevanceScore, c.MinRelevanceScore)
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("%s must not be negative", EnvQueryTimeout)
	}
	if c.OversampleFactor < MinOversampleFactor {
		c.OversampleFactor = MinOversampleFactor
	}
	return nil
}
