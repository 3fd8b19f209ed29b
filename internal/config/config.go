package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/netip"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

const (
	DefaultServerAddr    = ":8080"
	DefaultBaseURL       = "http://localhost:8080"
	DefaultFilePath      = "storage.json"
	DefaultAuditFilePath = "audit_storage.json"
	DefaultPprofAddr     = "localhost:6060"
	DefaultLogLevel      = "info"
	DefaultSlugLength    = 6
	DefaultHashLength    = 8
	DefaultSlugAttempts  = 100
	DefaultCacheSize     = 10000
	DefaultBloomCapacity = 1_000_000
)

// Config содержит конфигурацию приложения
type Config struct {
	ServerAddr string `json:"server_address" env:"SERVER_ADDRESS"`
	BaseURL    string `json:"base_url" env:"BASE_URL"`
	FilePath   string `json:"file_storage_path" env:"FILE_STORAGE_PATH"`
	DBurl      string `json:"database_dsn" env:"DATABASE_DSN"`
	AuditFile  string `json:"audit_file" env:"AUDIT_FILE"`
	AuditURL   string `json:"audit_url" env:"AUDIT_URL"`
	PprofAddr  string `json:"pprof_address" env:"PPROF_ADDRESS"`
	LogLevel   string `json:"log_level" env:"LOG_LEVEL"`
	// CIDR, из которого доступен /metrics
	TrustedSubnet string `json:"trusted_subnet" env:"TRUSTED_SUBNET"`
	// Ключ подписи cookie владельца. Пустой: случайный на время жизни процесса
	CookieSecret string `json:"cookie_secret" env:"COOKIE_SECRET"`

	// Собственные домены сервиса помимо хоста из BaseURL
	SelfHosts []string `json:"self_hosts" env:"SELF_HOSTS" envSeparator:","`
	// Дополнительные домены-сокращатели
	BlockedDomains []string `json:"blocked_domains" env:"BLOCKED_DOMAINS" envSeparator:","`

	SlugLength    int  `json:"slug_length" env:"SLUG_LENGTH"`
	HashLength    int  `json:"hash_length" env:"HASH_LENGTH"`
	SlugAttempts  int  `json:"slug_attempts" env:"SLUG_ATTEMPTS"`
	UseBloom      bool `json:"use_bloom" env:"USE_BLOOM"`
	BloomCapacity int  `json:"bloom_capacity" env:"BLOOM_CAPACITY"`
	CacheSize     int  `json:"cache_size" env:"CACHE_SIZE"`
}

// NewConfig собирает конфигурацию из аргументов процесса и завершает
// процесс при ошибке.
func NewConfig() *Config {
	c, err := Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	return c
}

// Load применяет источники по возрастанию приоритета: значения по умолчанию,
// JSON-файл (-c или CONFIG), .env, переменные окружения, флаги.
func Load(args []string) (*Config, error) {
	c := &Config{
		ServerAddr:    DefaultServerAddr,
		BaseURL:       DefaultBaseURL,
		FilePath:      DefaultFilePath,
		PprofAddr:     DefaultPprofAddr,
		AuditFile:     DefaultAuditFilePath,
		LogLevel:      DefaultLogLevel,
		SlugLength:    DefaultSlugLength,
		HashLength:    DefaultHashLength,
		SlugAttempts:  DefaultSlugAttempts,
		CacheSize:     DefaultCacheSize,
		BloomCapacity: DefaultBloomCapacity,
	}

	// .env не перекрывает уже заданные переменные окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := c.loadFromFile(getConfigPath(args)); err != nil {
		return nil, err
	}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	c.SelfHosts = splitList(strings.Join(c.SelfHosts, ","))
	c.BlockedDomains = splitList(strings.Join(c.BlockedDomains, ","))
	if err := c.getArgsFromCli(args); err != nil {
		return nil, err
	}
	return c, c.validate()
}

func getConfigPath(args []string) string {
	for i, arg := range args {
		if (arg == "-c" || arg == "-config") && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, "-c="); ok {
			return v
		}
	}
	return os.Getenv("CONFIG")
}

// loadFromFile: отсутствующий файл не ошибка, битый JSON даёт ошибку
func (c *Config) loadFromFile(filename string) error {
	if filename == "" {
		return nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", filename, err)
	}
	return nil
}

func (c *Config) getArgsFromCli(args []string) error {
	fset := flag.NewFlagSet("shortener", flag.ContinueOnError)
	fset.StringVar(&c.ServerAddr, "a", c.ServerAddr, "server host")
	fset.StringVar(&c.BaseURL, "b", c.BaseURL, "base url for short links")
	fset.StringVar(&c.FilePath, "f", c.FilePath, "file storage path")
	fset.StringVar(&c.DBurl, "d", c.DBurl, "database DSN")
	fset.StringVar(&c.AuditFile, "audit-file", c.AuditFile, "audit file path")
	fset.StringVar(&c.AuditURL, "audit-url", c.AuditURL, "audit server URL")
	fset.StringVar(&c.PprofAddr, "pprof", c.PprofAddr, "pprof server address")
	fset.StringVar(&c.LogLevel, "l", c.LogLevel, "log level")
	fset.StringVar(&c.CookieSecret, "cookie-secret", c.CookieSecret, "owner cookie signing key")
	fset.StringVar(&c.TrustedSubnet, "t", c.TrustedSubnet, "trusted subnet CIDR for /metrics")
	fset.Func("self-hosts", "comma-separated hosts of this service", listFlag(&c.SelfHosts))
	fset.Func("blocked-domains", "comma-separated extra shortener domains", listFlag(&c.BlockedDomains))
	fset.IntVar(&c.SlugLength, "slug-length", c.SlugLength, "random slug length")
	fset.IntVar(&c.HashLength, "hash-length", c.HashLength, "hash slug length")
	fset.IntVar(&c.SlugAttempts, "slug-attempts", c.SlugAttempts, "max slug generation attempts")
	fset.BoolVar(&c.UseBloom, "bloom", c.UseBloom, "check free slugs through a bloom filter")
	fset.IntVar(&c.BloomCapacity, "bloom-capacity", c.BloomCapacity, "expected number of slugs")
	fset.IntVar(&c.CacheSize, "cache-size", c.CacheSize, "resolve cache entries")
	fset.String("c", "", "config file path")
	fset.String("config", "", "config file path")
	return fset.Parse(args)
}

func listFlag(dst *[]string) func(string) error {
	return func(v string) error {
		*dst = splitList(v)
		return nil
	}
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) validate() error {
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}
	if c.TrustedSubnet != "" {
		if _, err := netip.ParsePrefix(c.TrustedSubnet); err != nil {
			return fmt.Errorf("invalid trusted subnet %q: %w", c.TrustedSubnet, err)
		}
	}
	if c.SlugAttempts <= 0 {
		return fmt.Errorf("slug attempts must be positive, got %d", c.SlugAttempts)
	}
	if c.BloomCapacity <= 0 {
		return fmt.Errorf("bloom capacity must be positive, got %d", c.BloomCapacity)
	}
	return nil
}

// AllSelfHosts возвращает хосты, ссылки на которые считаются ссылками на сам сервис
func (c Config) AllSelfHosts() []string {
	hosts := append([]string(nil), c.SelfHosts...)
	if u, err := url.Parse(c.BaseURL); err == nil && u.Host != "" {
		hosts = append(hosts, u.Host)
	}
	return hosts
}

func (c Config) GetAddress() string {
	return c.ServerAddr
}

func (c Config) GetBaseURL() string {
	return c.BaseURL
}

func (c Config) GetFilePath() string {
	return c.FilePath
}

func (c Config) GetAuditFile() string {
	return c.AuditFile
}

func (c Config) GetAuditURL() string {
	return c.AuditURL
}
