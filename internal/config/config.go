package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "PAPER_DIGEST_CONFIG"
	logLevelEnv        = "LOG_LEVEL"
	listingURLEnv      = "ARXIV_URL"
	historyDSNEnv      = "HISTORY_DSN"
	lmStudioURLEnv     = "LM_STUDIO_API_URL"
	ollamaURLEnv       = "OLLAMA_API_URL"
	ollamaModelEnv     = "OLLAMA_MODEL"
	openAIKeyEnv       = "OPENAI_API_KEY"
	openAIModelEnv     = "OPENAI_MODEL"
	openAIBaseURLEnv   = "OPENAI_BASE_URL"
	gatewayURLEnv      = "GATEWAY_URL"
	gatewayKeyEnv      = "GATEWAY_API_KEY"
	gatewayModelEnv    = "GATEWAY_MODEL"
	senderEmailEnv     = "SENDER_EMAIL"
	senderPasswordEnv  = "SENDER_PASSWORD"
	receiverEmailEnv   = "RECEIVER_EMAIL"
	defaultListingURL  = "https://arxiv.org/list/cs.AI/new"
	defaultOutputPath  = "finalSummary.html"
	defaultDownloadDir = "documents"
)

// Backend names accepted by --llm.
const (
	BackendLocal   = "local"
	BackendGateway = "gateway"
	BackendOpenAI  = "openai"
	BackendOllama  = "ollama"
)

// ErrUnknownBackend is returned by Validate for an unsupported --llm value.
var ErrUnknownBackend = errors.New("unknown llm backend")

// ErrInvalidFolder is returned when the local folder is not an existing directory.
var ErrInvalidFolder = errors.New("local folder must be an existing directory")

// Config is built once at startup and passed to every component.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Source     SourceConfig     `yaml:"source"`
	Report     ReportConfig     `yaml:"report"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Email      EmailConfig      `yaml:"email"`
	History    HistoryConfig    `yaml:"history"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SourceConfig selects and configures the document source.
type SourceConfig struct {
	ListingURL    string `yaml:"listingUrl"`
	ArticleBase   string `yaml:"articleBase"`
	LocalFolder   string `yaml:"localFolder"`
	DownloadDir   string `yaml:"downloadDir"`
	KeepDownloads bool   `yaml:"keepDownloads"`
}

// Remote reports whether papers come from the listing page.
func (s SourceConfig) Remote() bool {
	return s.LocalFolder == ""
}

// ReportConfig holds the digest output path.
type ReportConfig struct {
	OutputPath string `yaml:"outputPath"`
}

// SummarizerConfig selects one backend and holds the settings of all of them.
type SummarizerConfig struct {
	Backend string        `yaml:"backend"`
	Timeout time.Duration `yaml:"timeout"`
	Local   LocalConfig   `yaml:"local"`
	Gateway GatewayConfig `yaml:"gateway"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Ollama  OllamaConfig  `yaml:"ollama"`
}

// LocalConfig points at an LM Studio style OpenAI-compatible server.
type LocalConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// GatewayConfig describes the internal gateway service.
type GatewayConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// OpenAIConfig defines how to contact the hosted chat-completion API.
type OpenAIConfig struct {
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
}

// OllamaConfig describes a self-hosted Ollama server.
type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// EmailConfig wires the SMTP relay and both addresses.
type EmailConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Sender    string `yaml:"sender"`
	Password  string `yaml:"password"`
	Recipient string `yaml:"recipient"`
}

// HistoryConfig enables cross-run deduplication when DSN is set.
type HistoryConfig struct {
	DSN string `yaml:"dsn"`
}

// LoadFrom reads .env and the YAML file at path (empty means
// $PAPER_DIGEST_CONFIG), then applies environment overrides.
func LoadFrom(path string) Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot load .env: %v", err)
	}

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	return LoadFile(path)
}

// LoadFile is LoadFrom without the .env step, reading YAML from path when non-empty.
func LoadFile(path string) Config {
	cfg := Default()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides(os.Getenv)
	return cfg
}

// Validate checks the settings that must be right before anything runs.
func (c Config) Validate() error {
	switch c.Summarizer.Backend {
	case BackendLocal, BackendGateway, BackendOpenAI, BackendOllama:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Summarizer.Backend)
	}

	if c.Source.LocalFolder != "" {
		info, err := os.Stat(c.Source.LocalFolder)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrInvalidFolder, c.Source.LocalFolder)
		}
	}

	return nil
}

func (c *Config) applyEnvOverrides(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&c.Logging.Level, logLevelEnv)
	set(&c.Source.ListingURL, listingURLEnv)
	set(&c.History.DSN, historyDSNEnv)
	set(&c.Summarizer.Local.BaseURL, lmStudioURLEnv)
	set(&c.Summarizer.Ollama.URL, ollamaURLEnv)
	set(&c.Summarizer.Ollama.Model, ollamaModelEnv)
	set(&c.Summarizer.OpenAI.APIKey, openAIKeyEnv)
	set(&c.Summarizer.OpenAI.Model, openAIModelEnv)
	set(&c.Summarizer.OpenAI.BaseURL, openAIBaseURLEnv)
	set(&c.Summarizer.Gateway.URL, gatewayURLEnv)
	set(&c.Summarizer.Gateway.APIKey, gatewayKeyEnv)
	set(&c.Summarizer.Gateway.Model, gatewayModelEnv)
	set(&c.Email.Sender, senderEmailEnv)
	set(&c.Email.Password, senderPasswordEnv)
	set(&c.Email.Recipient, receiverEmailEnv)
}

func mergeConfig(base, override Config) Config {
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	pick(&base.Logging.Level, override.Logging.Level)

	pick(&base.Source.ListingURL, override.Source.ListingURL)
	pick(&base.Source.ArticleBase, override.Source.ArticleBase)
	pick(&base.Source.LocalFolder, override.Source.LocalFolder)
	pick(&base.Source.DownloadDir, override.Source.DownloadDir)
	if override.Source.KeepDownloads {
		base.Source.KeepDownloads = true
	}

	pick(&base.Report.OutputPath, override.Report.OutputPath)

	pick(&base.Summarizer.Backend, override.Summarizer.Backend)
	if override.Summarizer.Timeout > 0 {
		base.Summarizer.Timeout = override.Summarizer.Timeout
	}
	pick(&base.Summarizer.Local.BaseURL, override.Summarizer.Local.BaseURL)
	pick(&base.Summarizer.Gateway.URL, override.Summarizer.Gateway.URL)
	pick(&base.Summarizer.Gateway.APIKey, override.Summarizer.Gateway.APIKey)
	pick(&base.Summarizer.Gateway.Model, override.Summarizer.Gateway.Model)
	pick(&base.Summarizer.OpenAI.BaseURL, override.Summarizer.OpenAI.BaseURL)
	pick(&base.Summarizer.OpenAI.APIKey, override.Summarizer.OpenAI.APIKey)
	pick(&base.Summarizer.OpenAI.Model, override.Summarizer.OpenAI.Model)
	pick(&base.Summarizer.Ollama.URL, override.Summarizer.Ollama.URL)
	pick(&base.Summarizer.Ollama.Model, override.Summarizer.Ollama.Model)

	pick(&base.Email.Host, override.Email.Host)
	if override.Email.Port != 0 {
		base.Email.Port = override.Email.Port
	}
	pick(&base.Email.Sender, override.Email.Sender)
	pick(&base.Email.Password, override.Email.Password)
	pick(&base.Email.Recipient, override.Email.Recipient)

	pick(&base.History.DSN, override.History.DSN)

	return base
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Source: SourceConfig{
			ListingURL:  defaultListingURL,
			ArticleBase: "https://arxiv.org",
			DownloadDir: defaultDownloadDir,
		},
		Report: ReportConfig{OutputPath: defaultOutputPath},
		Summarizer: SummarizerConfig{
			Backend: BackendLocal,
			Local:   LocalConfig{BaseURL: "http://localhost:1234/v1"},
			Gateway: GatewayConfig{URL: "http://localhost:8090", Model: "default"},
			OpenAI:  OpenAIConfig{Model: "gpt-4o-mini"},
			Ollama:  OllamaConfig{URL: "http://localhost:11434/api/chat", Model: "mistral"},
		},
		Email: EmailConfig{Host: "smtp.gmail.com", Port: 465},
	}
}
