package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "config.yaml"

	DefaultAPIBase = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	DefaultTemperature = 0.7
)

// Cfg 全局配置，仅供启动装配代码使用
var Cfg *Config

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	MySQL  MySQLConfig  `yaml:"mysql"`
	JWT    JWTConfig    `yaml:"jwt"`
	LLM    LLMConfig    `yaml:"llm"`
	Chat   ChatConfig   `yaml:"chat"`
	Report ReportConfig `yaml:"report"`
	MCP    MCPConfig    `yaml:"mcp"`
}

type ServerConfig struct {
	Port         string   `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MySQLConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

type JWTConfig struct {
	SecretKey string        `yaml:"secret_key"`
	TTL       time.Duration `yaml:"ttl"`
}

// LLMConfig 对应 LLM_* 环境变量
type LLMConfig struct {
	// openai 或 compatible
	Provider        string        `yaml:"provider"`
	APIKey          string        `yaml:"api_key"`
	APIBase         string        `yaml:"api_base"`
	Model           string        `yaml:"model"`
	MaxTokens       int           `yaml:"max_tokens"`
	Temperature     *float64      `yaml:"temperature"`
	Verbosity       string        `yaml:"verbosity"`
	ReasoningEffort string        `yaml:"reasoning_effort"`
	Timeout         time.Duration `yaml:"timeout"`
}

// TemperatureValue 未配置时返回默认值，0 是合法取值
func (c LLMConfig) TemperatureValue() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// Configured 是否配置了真实的 LLM 凭证
func (c LLMConfig) Configured() bool {
	return c.APIKey != ""
}

type ChatConfig struct {
	MaxIterations     int           `yaml:"max_iterations"`
	HistoryLimit      int           `yaml:"history_limit"`
	MaxTokens         int           `yaml:"max_tokens"`
	KeepRecent        int           `yaml:"keep_recent"`
	MinMessages       int           `yaml:"min_messages"`
	TokenDivisor      int           `yaml:"token_divisor"`
	MaxContentLength  int           `yaml:"max_content_length"`
	PersistTimeout    time.Duration `yaml:"persist_timeout"`
	SerializeSessions bool          `yaml:"serialize_sessions"`
}

type ReportConfig struct {
	CaptureEndpoint string        `yaml:"capture_endpoint"`
	Timeout         time.Duration `yaml:"timeout"`
	Attempts        uint          `yaml:"attempts"`
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
	WaitTime        time.Duration `yaml:"wait_time"`
}

type MCPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Init 读取 .env 与 YAML 配置文件并初始化 Cfg
func Init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "err", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := Load(path)
	if err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

// Load 读取指定路径的配置；文件不存在时仅使用默认值与环境变量
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		slog.Info("Config file not found, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.APIBase, "LLM_API_BASE")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Verbosity, "LLM_VERBOSITY")
	setString(&c.LLM.ReasoningEffort, "LLM_REASONING_EFFORT")
	setInt(&c.LLM.MaxTokens, "LLM_MAX_TOKENS")
	setFloat(&c.LLM.Temperature, "LLM_TEMPERATURE")

	setString(&c.MySQL.Host, "DB_HOST")
	setString(&c.MySQL.Port, "DB_PORT")
	setString(&c.MySQL.User, "DB_USER")
	setString(&c.MySQL.Password, "DB_PASSWORD")
	setString(&c.MySQL.Database, "DB_NAME")

	setString(&c.JWT.SecretKey, "JWT_SECRET")
	setString(&c.Server.Port, "PORT")
	setString(&c.Report.CaptureEndpoint, "REPORT_CAPTURE_ENDPOINT")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.MySQL.Host == "" {
		c.MySQL.Host = "localhost"
	}
	if c.MySQL.Port == "" {
		c.MySQL.Port = "3306"
	}
	if c.MySQL.User == "" {
		c.MySQL.User = "root"
	}
	if c.MySQL.Database == "" {
		c.MySQL.Database = "intranet_db"
	}
	if c.MySQL.MaxOpenConns == 0 {
		c.MySQL.MaxOpenConns = 20
	}
	if c.MySQL.MaxIdleConns == 0 {
		c.MySQL.MaxIdleConns = 5
	}
	if c.MySQL.ConnMaxLifetime == 0 {
		c.MySQL.ConnMaxLifetime = time.Hour
	}

	if c.JWT.TTL == 0 {
		c.JWT.TTL = 24 * time.Hour
	}

	c.LLM = c.LLM.WithDefaults()
	c.Chat = c.Chat.WithDefaults()
	c.Report = c.Report.WithDefaults()

	if c.MCP.Path == "" {
		c.MCP.Path = "/mcp"
	}
}

func (c LLMConfig) WithDefaults() LLMConfig {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.APIBase == "" {
		c.APIBase = DefaultAPIBase
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2000
	}
	if c.Temperature == nil {
		t := DefaultTemperature
		c.Temperature = &t
	}
	if c.Verbosity == "" {
		c.Verbosity = "medium"
	}
	if c.ReasoningEffort == "" {
		c.ReasoningEffort = "medium"
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}

func (c ChatConfig) WithDefaults() ChatConfig {
	if c.MaxIterations <= 0 {
		c.MaxIterations = 5
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 100
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 12000
	}
	if c.KeepRecent <= 0 {
		c.KeepRecent = 20
	}
	if c.MinMessages <= 0 {
		c.MinMessages = 3
	}
	if c.TokenDivisor <= 0 {
		c.TokenDivisor = 4
	}
	if c.MaxContentLength <= 0 {
		c.MaxContentLength = 60000
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = 5 * time.Second
	}
	return c
}

func (c ReportConfig) WithDefaults() ReportConfig {
	if c.Timeout == 0 {
		c.Timeout = 90 * time.Second
	}
	if c.Attempts == 0 {
		c.Attempts = 3
	}
	if c.Width == 0 {
		c.Width = 1920
	}
	if c.Height == 0 {
		c.Height = 1080
	}
	if c.WaitTime == 0 {
		c.WaitTime = 8 * time.Second
	}
	return c
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Invalid integer in environment", "key", key, "value", v)
		return
	}
	*dst = n
}

func setFloat(dst **float64, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("Invalid float in environment", "key", key, "value", v)
		return
	}
	*dst = &f
}
