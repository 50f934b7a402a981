package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingSecret 必需的凭据未配置
var ErrMissingSecret = errors.New("missing required secret")

// Config 项目配置结构体
type Config struct {
	Variant string        `yaml:"variant"`
	LLM     LLMConfig     `yaml:"llm"`
	Search  SearchConfig  `yaml:"search"`
	Price   PriceConfig   `yaml:"price"`
	Publish PublishConfig `yaml:"publish"`
	Report  ReportConfig  `yaml:"report"`
	Log     LogConfig     `yaml:"log"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, openai or anthropic
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	// MaxAttempts 含首次调用在内的最大尝试次数
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider   string        `yaml:"provider"`
	Tavily     TavilyConfig  `yaml:"tavily"`
	SearXNG    SearXNGConfig `yaml:"searxng"`
	MaxResults int           `yaml:"max_results"`
	// Delay 相邻两次查询之间的最小间隔
	Delay   time.Duration `yaml:"delay"`
	Timeout time.Duration `yaml:"timeout"`
	Enrich  EnrichConfig  `yaml:"enrich"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// EnrichConfig 摘要过短时抓取原文
type EnrichConfig struct {
	Enabled   bool          `yaml:"enabled"`
	MinLength int           `yaml:"min_length"`
	MaxLength int           `yaml:"max_length"`
	Timeout   time.Duration `yaml:"timeout"`
}

// PriceConfig 报价源配置
type PriceConfig struct {
	Provider  string          `yaml:"provider"` // coingecko or finnhub
	Timeout   time.Duration   `yaml:"timeout"`
	CoinGecko CoinGeckoConfig `yaml:"coingecko"`
	Finnhub   FinnhubConfig   `yaml:"finnhub"`
}

// CoinGeckoConfig CoinGecko 配置
type CoinGeckoConfig struct {
	BaseURL string            `yaml:"base_url"`
	APIKey  string            `yaml:"api_key"`
	IDs     map[string]string `yaml:"ids"`
}

// FinnhubConfig Finnhub 配置
type FinnhubConfig struct {
	APIKey  string            `yaml:"api_key"`
	Symbols map[string]string `yaml:"symbols"`
}

// PublishConfig 发布目标配置
type PublishConfig struct {
	Target   string         `yaml:"target"` // gist, file, redis or postgres
	Gist     GistConfig     `yaml:"gist"`
	File     FileConfig     `yaml:"file"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// GistConfig GitHub Gist 配置
type GistConfig struct {
	Token    string `yaml:"token"`
	ID       string `yaml:"id"`
	Filename string `yaml:"filename"`
	BaseURL  string `yaml:"base_url"`
}

// FileConfig 本地文件配置
type FileConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

// PostgresConfig PostgreSQL 配置
type PostgresConfig struct {
	DSN  string `yaml:"dsn"`
	Name string `yaml:"name"`
}

// ReportConfig 报告展示相关配置
type ReportConfig struct {
	// Timezone updated 字段使用的时区，例如 UTC 或 Asia/Shanghai
	Timezone string `yaml:"timezone"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LoadConfig 从指定路径加载配置。文件中的 ${VAR} 会用环境变量展开；
// 文件不存在时仅使用默认值与环境变量。
func LoadConfig(path string) (*Config, error) {
	// .env 可选，不存在时直接使用系统环境变量
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv 用环境变量补齐未在文件中配置的凭据
func (c *Config) applyEnv() {
	setIfEmpty(&c.LLM.APIKey, "LLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY")
	setIfEmpty(&c.Search.Tavily.APIKey, "TAVILY_API_KEY")
	setIfEmpty(&c.Search.SearXNG.BaseURL, "SEARXNG_URL")
	setIfEmpty(&c.Price.CoinGecko.APIKey, "COINGECKO_API_KEY")
	setIfEmpty(&c.Price.Finnhub.APIKey, "FINNHUB_API_KEY")
	setIfEmpty(&c.Publish.Gist.Token, "GIST_TOKEN")
	setIfEmpty(&c.Publish.Gist.ID, "GIST_ID")
	setIfEmpty(&c.Publish.Redis.URL, "REDIS_URL")
	setIfEmpty(&c.Publish.Postgres.DSN, "DATABASE_URL")
}

func (c *Config) applyDefaults() {
	setDefault(&c.Variant, "crypto")
	setDefault(&c.LLM.Provider, "gemini")
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case "gemini":
			c.LLM.Model = "gemini-2.5-flash"
		case "anthropic":
			c.LLM.Model = "claude-haiku-4-5"
		}
	}
	if c.LLM.MaxAttempts <= 0 {
		c.LLM.MaxAttempts = 3
	}
	if c.LLM.BaseDelay <= 0 {
		c.LLM.BaseDelay = 30 * time.Second
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 5 * time.Minute
	}

	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 3
	}
	if c.Search.Delay < 0 {
		c.Search.Delay = 0
	}
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = 20 * time.Second
	}
	if c.Search.Enrich.MinLength <= 0 {
		c.Search.Enrich.MinLength = 200
	}
	if c.Search.Enrich.MaxLength <= 0 {
		c.Search.Enrich.MaxLength = 2000
	}
	if c.Search.Enrich.Timeout <= 0 {
		c.Search.Enrich.Timeout = 15 * time.Second
	}

	setDefault(&c.Price.Provider, "coingecko")
	if c.Price.Timeout <= 0 {
		c.Price.Timeout = 10 * time.Second
	}
	setDefault(&c.Price.CoinGecko.BaseURL, "https://api.coingecko.com/api/v3")

	setDefault(&c.Publish.Target, "gist")
	setDefault(&c.Publish.Gist.Filename, "crypto_data.json")
	setDefault(&c.Publish.Gist.BaseURL, "https://api.github.com")
	setDefault(&c.Publish.File.Path, "output/crypto_data.json")
	setDefault(&c.Publish.Redis.Key, "market_brief:report")
	setDefault(&c.Publish.Postgres.Name, c.Publish.Gist.Filename)

	setDefault(&c.Report.Timezone, "UTC")
	setDefault(&c.Log.Level, "info")
}

// Validate 校验所选 provider 需要的凭据，缺失时返回 ErrMissingSecret
func (c *Config) Validate() error {
	return c.validate(true)
}

// ValidateDryRun 不发布时不要求发布目标的凭据
func (c *Config) ValidateDryRun() error {
	return c.validate(false)
}

func (c *Config) validate(publish bool) error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("%w: llm.api_key (LLM_API_KEY / GEMINI_API_KEY)", ErrMissingSecret)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required for provider %s", c.LLM.Provider)
	}

	if publish {
		if err := c.validatePublish(); err != nil {
			return err
		}
	}

	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		return fmt.Errorf("invalid report.timezone %q: %w", c.Report.Timezone, err)
	}
	return nil
}

func (c *Config) validatePublish() error {
	switch c.Publish.Target {
	case "gist":
		if c.Publish.Gist.Token == "" {
			return fmt.Errorf("%w: publish.gist.token (GIST_TOKEN)", ErrMissingSecret)
		}
		if c.Publish.Gist.ID == "" {
			return fmt.Errorf("%w: publish.gist.id (GIST_ID)", ErrMissingSecret)
		}
	case "redis":
		if c.Publish.Redis.URL == "" {
			return fmt.Errorf("%w: publish.redis.url (REDIS_URL)", ErrMissingSecret)
		}
	case "postgres":
		if c.Publish.Postgres.DSN == "" {
			return fmt.Errorf("%w: publish.postgres.dsn (DATABASE_URL)", ErrMissingSecret)
		}
	case "file":
	default:
		return fmt.Errorf("unknown publish target: %s", c.Publish.Target)
	}
	return nil
}

// Location 报告时区
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setIfEmpty(dst *string, keys ...string) {
	if *dst != "" {
		return
	}
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			*dst = v
			return
		}
	}
}

func setDefault(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
