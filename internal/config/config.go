// config предоставляет структуру конфигурации digest-сервиса
// и функции загрузки из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string        `yaml:"env"    env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Feeds    FeedsConfig   `yaml:"feeds"`
	Enrich   EnrichConfig  `yaml:"enrich"`
	LLM      LLMConfig     `yaml:"llm"`
	Rates    RatesConfig   `yaml:"rates"`
	Cache    CacheConfig   `yaml:"cache"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	// Request — общий дедлайн на обработку одного HTTP-запроса.
	Request time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"90s"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// FeedsConfig — параметры опроса RSS-выдачи по категориям.
type FeedsConfig struct {
	// Endpoint — базовый URL поисковой RSS-выдачи.
	Endpoint string `yaml:"endpoint" env:"FEEDS_ENDPOINT" env-default:"https://news.google.com/rss/search"`
	// Lang/Country — локаль выдачи (параметры hl/gl/ceid).
	Lang    string `yaml:"lang"    env:"FEEDS_LANG"    env-default:"pl"`
	Country string `yaml:"country" env:"FEEDS_COUNTRY" env-default:"PL"`
	// Запросы по категориям. Локальность запроса подставляется внутрь.
	CreditQuery string `yaml:"credit_query" env:"FEEDS_CREDIT_QUERY" env-default:"kredyty hipoteczne Polska %s stopy procentowe banki"`
	MarketQuery string `yaml:"market_query" env:"FEEDS_MARKET_QUERY" env-default:"rynek nieruchomości Polska %s ceny mieszkania sprzedaż"`
	LegalQuery  string `yaml:"legal_query"  env:"FEEDS_LEGAL_QUERY"  env-default:"ustawa nieruchomości Polska %s deweloper uokik regulacje"`
	// Timeout — wall-clock лимит на один запрос к ленте.
	Timeout time.Duration `yaml:"timeout" env:"FEEDS_TIMEOUT" env-default:"12s"`
	// PerSourceLimit — сколько элементов берём из одной ленты до слияния.
	PerSourceLimit int `yaml:"per_source_limit" env:"FEEDS_PER_SOURCE_LIMIT" env-default:"8"`
	// BatchLimit — верхняя граница размера батча после дедупликации.
	BatchLimit int `yaml:"batch_limit" env:"FEEDS_BATCH_LIMIT" env-default:"18"`
}

// EnrichConfig — параметры обогащения элементов метаданными страниц.
type EnrichConfig struct {
	// Timeout — независимый лимит на каждый исходящий вызов обогащения.
	Timeout time.Duration `yaml:"timeout" env:"ENRICH_TIMEOUT" env-default:"10s"`
	// Concurrency — ширина фан-аута по элементам батча.
	Concurrency int `yaml:"concurrency" env:"ENRICH_CONCURRENCY" env-default:"6"`
}

// LLMConfig — внешний генератор резюме и топ-подборки.
// Пустой APIKey отключает генератор: конвейер работает на детерминированном
// фолбэке без сетевых вызовов.
type LLMConfig struct {
	BaseURL string `yaml:"base_url" env:"LLM_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model   string `yaml:"model"    env:"LLM_MODEL"    env-default:"gpt-4.1-mini"`
	APIKey  string `yaml:"-"        env:"OPENAI_API_KEY"`
	Timeout time.Duration `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"30s"`
	// MaxPayloadBytes — жёсткий потолок размера входного JSON.
	MaxPayloadBytes int `yaml:"max_payload_bytes" env:"LLM_MAX_PAYLOAD_BYTES" env-default:"24000"`
	// TopInput — сколько элементов отправляем на отбор тройки.
	TopInput int `yaml:"top_input" env:"LLM_TOP_INPUT" env-default:"14"`
}

// RatesConfig — страница базовых ставок и якоря для извлечения.
type RatesConfig struct {
	URL     string        `yaml:"url" env:"RATES_URL" env-default:"https://nbp.pl/polityka-pieniezna/decyzje-rpp/podstawowe-stopy-procentowe-nbp/"`
	Timeout time.Duration `yaml:"timeout" env:"RATES_TIMEOUT" env-default:"12s"`
	// Текстовые якоря, рядом с которыми ищем значение и дату.
	ReferenceLabel string `yaml:"reference_label" env:"RATES_REFERENCE_LABEL" env-default:"Stopa referencyjna"`
	LombardLabel   string `yaml:"lombard_label"   env:"RATES_LOMBARD_LABEL"   env-default:"Stopa lombardowa"`
	DepositLabel   string `yaml:"deposit_label"   env:"RATES_DEPOSIT_LABEL"   env-default:"Stopa depozytowa"`
}

// CacheConfig — кэш последнего удачного дайджеста.
type CacheConfig struct {
	// TTL — возраст, после которого запись считается просроченной.
	TTL time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"10m"`
	// RedisURL — непустое значение переключает кэш с памяти на Redis.
	RedisURL string `yaml:"redis_url" env:"CACHE_REDIS_URL"`
	// Prefix — префикс ключей в Redis.
	Prefix string `yaml:"prefix" env:"CACHE_PREFIX" env-default:"digest:"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		c, err := tryRead(path)
		if err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		c, err := tryRead(envPath)
		if err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.Feeds.Endpoint == "" {
		return fmt.Errorf("feeds.endpoint is required")
	}
	if c.Feeds.CreditQuery == "" || c.Feeds.MarketQuery == "" || c.Feeds.LegalQuery == "" {
		return fmt.Errorf("feeds: all three category queries are required")
	}
	if c.Feeds.PerSourceLimit <= 0 {
		return fmt.Errorf("feeds.per_source_limit must be > 0")
	}
	if c.Feeds.BatchLimit <= 0 {
		return fmt.Errorf("feeds.batch_limit must be > 0")
	}
	if c.Enrich.Concurrency <= 0 {
		return fmt.Errorf("enrich.concurrency must be > 0")
	}
	if c.Cache.TTL < time.Minute {
		return fmt.Errorf("cache.ttl must be at least 1m")
	}
	if c.LLM.MaxPayloadBytes <= 0 {
		return fmt.Errorf("llm.max_payload_bytes must be > 0")
	}
	if c.LLM.TopInput <= 0 {
		return fmt.Errorf("llm.top_input must be > 0")
	}
	return nil
}
