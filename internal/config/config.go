// Package config loads runtime settings from the environment and an
// optional config file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ironsheep/food-label-mcp/internal/logger"
)

// EnvPrefix is prepended to every environment variable, e.g.
// FOODLABEL_OCR_ENGINE for ocr.engine.
const EnvPrefix = "FOODLABEL"

// Config holds all application configuration.
type Config struct {
	Log      LogConfig
	OCR      OCRConfig
	Layout   LayoutConfig
	Lexicon  LexiconConfig
	Enhance  EnhanceConfig
	Analysis AnalysisConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// OCRConfig selects and tunes the recognition engine.
type OCRConfig struct {
	Engine         string   `mapstructure:"engine"`
	Languages      []string `mapstructure:"language"`
	Level          string   `mapstructure:"level"`
	TessdataPrefix string   `mapstructure:"tessdata_prefix"`
	LanguageHints  []string `mapstructure:"language_hints"`
}

// LayoutConfig tunes row reconstruction.
type LayoutConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence"`
	RowThreshold  float64 `mapstructure:"row_threshold"`
	Anchor        string  `mapstructure:"anchor"`
}

// LexiconConfig tunes the plausibility check.
type LexiconConfig struct {
	MinKeywords int `mapstructure:"min_keywords"`
}

// EnhanceConfig tunes image preprocessing.
type EnhanceConfig struct {
	Contrast  float64 `mapstructure:"contrast"`
	Sharpness float64 `mapstructure:"sharpness"`
	MinWidth  int     `mapstructure:"min_width"`
}

// AnalysisConfig holds inference service settings.
type AnalysisConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Generator       string        `mapstructure:"generator"`
	BaseURL         string        `mapstructure:"base_url"`
	Token           string        `mapstructure:"token"`
	ClassifierModel string        `mapstructure:"classifier_model"`
	GeneratorModel  string        `mapstructure:"generator_model"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	OpenAIModel     string        `mapstructure:"openai_model"`
	OpenAIBaseURL   string        `mapstructure:"openai_base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	LoadingDelay    time.Duration `mapstructure:"loading_delay"`
}

// Generator backends.
const (
	GeneratorHuggingFace = "huggingface"
	GeneratorOpenAI      = "openai"
)

var keys = []string{
	"log.level", "log.format", "log.output",
	"ocr.engine", "ocr.language", "ocr.level", "ocr.tessdata_prefix", "ocr.language_hints",
	"layout.min_confidence", "layout.row_threshold", "layout.anchor",
	"lexicon.min_keywords",
	"enhance.contrast", "enhance.sharpness", "enhance.min_width",
	"analysis.enabled", "analysis.generator", "analysis.base_url", "analysis.token",
	"analysis.classifier_model", "analysis.generator_model",
	"analysis.openai_api_key", "analysis.openai_model", "analysis.openai_base_url",
	"analysis.timeout", "analysis.max_attempts", "analysis.retry_delay", "analysis.loading_delay",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("ocr.engine", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.level", "word")
	v.SetDefault("ocr.tessdata_prefix", "")
	v.SetDefault("ocr.language_hints", "en")

	v.SetDefault("layout.min_confidence", 0.5)
	v.SetDefault("layout.row_threshold", 10.0)
	v.SetDefault("layout.anchor", "last")

	v.SetDefault("lexicon.min_keywords", 4)

	v.SetDefault("enhance.contrast", 2.5)
	v.SetDefault("enhance.sharpness", 2.0)
	v.SetDefault("enhance.min_width", 1500)

	v.SetDefault("analysis.enabled", true)
	v.SetDefault("analysis.generator", GeneratorHuggingFace)
	v.SetDefault("analysis.base_url", "https://api-inference.huggingface.co")
	v.SetDefault("analysis.token", "")
	v.SetDefault("analysis.classifier_model", "facebook/bart-large-mnli")
	v.SetDefault("analysis.generator_model", "mistralai/Mixtral-8x7B-Instruct-v0.1")
	v.SetDefault("analysis.openai_api_key", "")
	v.SetDefault("analysis.openai_model", "gpt-4o-mini")
	v.SetDefault("analysis.openai_base_url", "")
	v.SetDefault("analysis.timeout", "60s")
	v.SetDefault("analysis.max_attempts", 3)
	v.SetDefault("analysis.retry_delay", "2s")
	v.SetDefault("analysis.loading_delay", "3s")
}

// Load reads configuration from FOODLABEL_* environment variables and, when
// configFile is not empty, from that file (YAML, JSON or TOML). Environment
// variables win over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for _, key := range keys {
		env := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, env)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		OCR: OCRConfig{
			Engine:         strings.ToLower(v.GetString("ocr.engine")),
			Languages:      splitList(v.GetString("ocr.language"), "+"),
			Level:          v.GetString("ocr.level"),
			TessdataPrefix: v.GetString("ocr.tessdata_prefix"),
			LanguageHints:  splitList(v.GetString("ocr.language_hints"), ","),
		},
		Layout: LayoutConfig{
			MinConfidence: v.GetFloat64("layout.min_confidence"),
			RowThreshold:  v.GetFloat64("layout.row_threshold"),
			Anchor:        v.GetString("layout.anchor"),
		},
		Lexicon: LexiconConfig{
			MinKeywords: v.GetInt("lexicon.min_keywords"),
		},
		Enhance: EnhanceConfig{
			Contrast:  v.GetFloat64("enhance.contrast"),
			Sharpness: v.GetFloat64("enhance.sharpness"),
			MinWidth:  v.GetInt("enhance.min_width"),
		},
		Analysis: AnalysisConfig{
			Enabled:         v.GetBool("analysis.enabled"),
			Generator:       strings.ToLower(v.GetString("analysis.generator")),
			BaseURL:         v.GetString("analysis.base_url"),
			Token:           v.GetString("analysis.token"),
			ClassifierModel: v.GetString("analysis.classifier_model"),
			GeneratorModel:  v.GetString("analysis.generator_model"),
			OpenAIAPIKey:    v.GetString("analysis.openai_api_key"),
			OpenAIModel:     v.GetString("analysis.openai_model"),
			OpenAIBaseURL:   v.GetString("analysis.openai_base_url"),
			Timeout:         v.GetDuration("analysis.timeout"),
			MaxAttempts:     v.GetInt("analysis.max_attempts"),
			RetryDelay:      v.GetDuration("analysis.retry_delay"),
			LoadingDelay:    v.GetDuration("analysis.loading_delay"),
		},
	}

	// The inference token is commonly exported as HF_TOKEN; use it when the
	// prefixed variable is not set.
	if cfg.Analysis.Token == "" {
		cfg.Analysis.Token = os.Getenv("HF_TOKEN")
	}
	if cfg.Analysis.OpenAIAPIKey == "" {
		cfg.Analysis.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at first use.
func (c *Config) Validate() error {
	switch c.OCR.Engine {
	case "tesseract", "vision":
	default:
		return fmt.Errorf("invalid ocr.engine %q: want tesseract or vision", c.OCR.Engine)
	}
	switch c.Analysis.Generator {
	case GeneratorHuggingFace, GeneratorOpenAI:
	default:
		return fmt.Errorf("invalid analysis.generator %q: want huggingface or openai", c.Analysis.Generator)
	}
	// Zero selects the built-in default in the layout and imaging packages,
	// so an explicit zero here would be silently replaced.
	if c.Layout.MinConfidence <= 0 || c.Layout.MinConfidence >= 1 {
		return fmt.Errorf("invalid layout.min_confidence %v: want (0,1); use a small value such as 0.01 to keep nearly every fragment", c.Layout.MinConfidence)
	}
	if c.Layout.RowThreshold <= 0 {
		return fmt.Errorf("invalid layout.row_threshold %v: must be positive", c.Layout.RowThreshold)
	}
	if c.Lexicon.MinKeywords < 1 {
		return fmt.Errorf("invalid lexicon.min_keywords %d: must be at least 1", c.Lexicon.MinKeywords)
	}
	if c.Enhance.Contrast <= 0 {
		return fmt.Errorf("invalid enhance.contrast %v: must be positive; use 1 to leave contrast unchanged", c.Enhance.Contrast)
	}
	if c.Enhance.Sharpness <= 0 {
		return fmt.Errorf("invalid enhance.sharpness %v: must be positive; use 1 to skip sharpening", c.Enhance.Sharpness)
	}
	if c.Enhance.MinWidth <= 0 {
		return fmt.Errorf("invalid enhance.min_width %d: must be positive; use 1 to skip upscaling", c.Enhance.MinWidth)
	}
	if c.Analysis.MaxAttempts < 1 {
		return fmt.Errorf("invalid analysis.max_attempts %d: must be at least 1", c.Analysis.MaxAttempts)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	lc := logger.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	lc.Output = c.Log.Output
	return lc
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
