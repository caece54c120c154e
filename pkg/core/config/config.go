// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Model defaults carried over from the original deployment.
const (
	DefaultPreprocessModel = "anthropic.claude-3-haiku-20240307-v1:0"
	DefaultChatModel       = "global.anthropic.claude-sonnet-4-5-20250929-v1:0"
	DefaultRegion          = "us-east-1"
)

// Config represents the main configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	OCR        OCRConfig        `yaml:"ocr"`
	LLM        LLMConfig        `yaml:"llm"`
	LangDetect LangDetectConfig `yaml:"langdetect"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Chat       ChatConfig       `yaml:"chat"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
}

// StorageConfig selects the object store documents are read from.
type StorageConfig struct {
	Provider    string `yaml:"provider"` // "s3" (default), "filesystem" or "memory"
	Bucket      string `yaml:"bucket"`
	Region      string `yaml:"region"`
	Prefix      string `yaml:"prefix"`
	Endpoint    string `yaml:"endpoint"` // MinIO or other S3-compatible endpoint
	BaseDir     string `yaml:"base_dir"` // filesystem provider root
	Concurrency int    `yaml:"concurrency"`
}

// Params returns the registry parameters for the store.
func (s StorageConfig) Params() map[string]string {
	return map[string]string{
		"bucket":      s.Bucket,
		"region":      s.Region,
		"prefix":      s.Prefix,
		"endpoint":    s.Endpoint,
		"base_dir":    s.BaseDir,
		"concurrency": strconv.Itoa(s.Concurrency),
	}
}

// WithFilesystem returns a store config rooted at dir on the local disk.
func (s StorageConfig) WithFilesystem(dir string) StorageConfig {
	return StorageConfig{Provider: "filesystem", BaseDir: dir, Concurrency: s.Concurrency}
}

// ExtractorConfig tunes the document extractor.
type ExtractorConfig struct {
	HTMLMinContentLength int      `yaml:"html_min_content_length"`
	XMLStreamThreshold   int64    `yaml:"xml_stream_threshold"`
	XMLMinFragmentLength int      `yaml:"xml_min_fragment_length"`
	TempDir              string   `yaml:"temp_dir"`
	Disabled             []string `yaml:"disabled"` // capability names to turn off
}

// OCRConfig selects the image recognizer. An empty provider disables OCR.
type OCRConfig struct {
	Provider  string `yaml:"provider"` // "", "textract" or "tesseract"
	Region    string `yaml:"region"`
	Languages string `yaml:"languages"` // tesseract codes, comma separated
}

// Params returns the registry parameters for the OCR engine.
func (o OCRConfig) Params() map[string]string {
	return map[string]string{"region": o.Region, "languages": o.Languages}
}

// LLMConfig selects the language model backend.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "bedrock" (default), "openai", "gemini" or "mock"
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // OpenAI-compatible base URL
	APIKey   string `yaml:"api_key"`
}

// Params returns the registry parameters for the model client.
func (l LLMConfig) Params() map[string]string {
	return map[string]string{"region": l.Region, "base_url": l.Endpoint, "api_key": l.APIKey}
}

// LangDetectConfig selects the language detector.
type LangDetectConfig struct {
	Provider string `yaml:"provider"` // "whatlang" (default) or "comprehend"
	Region   string `yaml:"region"`
}

// Params returns the registry parameters for the detector.
func (l LangDetectConfig) Params() map[string]string {
	return map[string]string{"region": l.Region}
}

// PreprocessConfig controls the translate/structure pipeline.
type PreprocessConfig struct {
	ModelID        string        `yaml:"model_id"`
	Temperature    float64       `yaml:"temperature"`
	MaxTokens      int           `yaml:"max_tokens"`
	MaxPromptChars int           `yaml:"max_prompt_chars"`
	Concurrency    int           `yaml:"concurrency"`
	Output         StorageConfig `yaml:"output"`
}

// ChatConfig controls the chat wrapper endpoints.
type ChatConfig struct {
	ModelID       string  `yaml:"model_id"`
	Temperature   float64 `yaml:"temperature"`
	MaxTokens     int     `yaml:"max_tokens"`
	DefaultPrompt string  `yaml:"default_prompt"`
}

// Load loads configuration from a YAML file. Fields missing from the file
// keep their defaults, and environment variables (including a .env file in
// the working directory) override both.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	loadDotEnv()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns default configuration with environment overrides applied.
func Default() *Config {
	cfg := defaults()
	loadDotEnv()
	applyEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			Timeout:        5 * time.Minute,
			MaxUploadBytes: 256 << 20,
		},
		Storage: StorageConfig{
			Provider: "s3",
			Region:   DefaultRegion,
		},
		Extractor: ExtractorConfig{
			HTMLMinContentLength: 100,
			XMLStreamThreshold:   100 << 20,
			XMLMinFragmentLength: 10,
		},
		LLM: LLMConfig{
			Provider: "bedrock",
			Region:   DefaultRegion,
		},
		LangDetect: LangDetectConfig{
			Provider: "whatlang",
			Region:   DefaultRegion,
		},
		Preprocess: PreprocessConfig{
			ModelID:        DefaultPreprocessModel,
			Temperature:    0.1,
			MaxTokens:      100000,
			MaxPromptChars: 400000,
			Concurrency:    4,
			Output: StorageConfig{
				Provider: "filesystem",
				BaseDir:  "processed_docs",
			},
		},
		Chat: ChatConfig{
			ModelID:       DefaultChatModel,
			Temperature:   0.1,
			MaxTokens:     10000,
			DefaultPrompt: "Hello",
		},
	}
}

// loadDotEnv reads .env when present. Variables already set win.
func loadDotEnv() {
	_ = godotenv.Load()
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Storage.Region = v
		cfg.LLM.Region = v
		cfg.LangDetect.Region = v
		cfg.OCR.Region = v
	}
	if v := os.Getenv("DOCPREP_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL_ID"); v != "" {
		cfg.Preprocess.ModelID = v
	}
	if v := os.Getenv("CHAT_MODEL_ID"); v != "" {
		cfg.Chat.ModelID = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.LLM.Provider == "openai" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_ENDPOINT"); v != "" {
		cfg.LLM.Endpoint = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.LLM.Provider == "gemini" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OCR_PROVIDER"); v != "" {
		cfg.OCR.Provider = v
	}
	if v := os.Getenv("LANGDETECT_PROVIDER"); v != "" {
		cfg.LangDetect.Provider = v
	}
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Extractor.HTMLMinContentLength < 0 || c.Extractor.XMLStreamThreshold < 0 || c.Extractor.XMLMinFragmentLength < 0 {
		errs = append(errs, errors.New("extractor thresholds must not be negative"))
	}
	if strings.TrimSpace(c.Storage.Provider) == "" {
		errs = append(errs, errors.New("storage.provider is required"))
	}
	if strings.TrimSpace(c.LLM.Provider) == "" {
		errs = append(errs, errors.New("llm.provider is required"))
	}
	for name, t := range map[string]float64{"preprocess": c.Preprocess.Temperature, "chat": c.Chat.Temperature} {
		if t < 0 || t > 1 {
			errs = append(errs, fmt.Errorf("%s.temperature %v outside [0, 1]", name, t))
		}
	}
	if c.Preprocess.MaxPromptChars <= 0 {
		errs = append(errs, errors.New("preprocess.max_prompt_chars must be positive"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
