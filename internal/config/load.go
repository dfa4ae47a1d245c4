package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/lessonplan-backend/internal/platform/envutil"
)

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	s := strings.TrimSpace(node.Value)
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		d.Duration = time.Duration(n * float64(time.Second))
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration must be like \"5s\" or a number of seconds: %w", err)
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ShutdownTimeout: Duration{15 * time.Second},
			MaxUploadBytes:  32 << 20,
		},
		LLM: LLMConfig{
			Provider:         "ollama",
			Host:             "http://localhost:11434",
			Model:            "qwen3:1.7b",
			PreflightTimeout: Duration{5 * time.Second},
			GenerateTimeout:  Duration{180 * time.Second},
			MaxRetries:       3,
			RetryBaseDelay:   Duration{time.Second},
			RetryMaxDelay:    Duration{10 * time.Second},
			SyllabusExcerpt:  800,
		},
		Storage: StorageConfig{
			UploadDir: filepath.Join("web", "uploads"),
			OutputDir: "lesson_plans",
			CacheDir:  "cache",
			DBDriver:  "sqlite",
			Minio:     MinioConfig{Bucket: "lesson-plans"},
		},
		Realtime: RealtimeConfig{RedisChannel: "lessonplan:progress"},
		Worker:   WorkerConfig{Concurrency: 2},
	}
}

// Load resolves configuration from defaults, an optional YAML file and the
// environment, in that order.
func Load() (*Config, error) {
	cfg := defaultConfig()

	cfgPath := strings.TrimSpace(os.Getenv("LESSONPLAN_CONFIG"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)

	cfg.HTTP.Host = envutil.String("WEB_HOST", cfg.HTTP.Host)
	cfg.HTTP.Port = envutil.Int("WEB_PORT", cfg.HTTP.Port)

	cfg.LLM.Provider = strings.ToLower(envutil.String("LLM_PROVIDER", cfg.LLM.Provider))
	cfg.LLM.Host = envutil.String("OLLAMA_HOST", cfg.LLM.Host)
	cfg.LLM.Model = envutil.String("OLLAMA_MODEL", cfg.LLM.Model)
	if cfg.LLM.Provider == "openai" {
		cfg.LLM.Host = envutil.String("OPENAI_BASE_URL", cfg.LLM.Host)
		cfg.LLM.Model = envutil.String("OPENAI_MODEL", cfg.LLM.Model)
	}
	cfg.LLM.APIKey = envutil.String("OPENAI_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.PreflightTimeout.Duration = envutil.Seconds("OLLAMA_TIMEOUT", cfg.LLM.PreflightTimeout.Duration)
	cfg.LLM.GenerateTimeout.Duration = envutil.Seconds("OLLAMA_GENERATE_TIMEOUT", cfg.LLM.GenerateTimeout.Duration)
	cfg.LLM.MaxRetries = envutil.Int("OLLAMA_MAX_RETRIES", cfg.LLM.MaxRetries)
	cfg.LLM.SyllabusExcerpt = envutil.Int("SYLLABUS_EXCERPT_CHARS", cfg.LLM.SyllabusExcerpt)

	cfg.Storage.UploadDir = envutil.String("UPLOAD_DIR", cfg.Storage.UploadDir)
	cfg.Storage.OutputDir = envutil.String("OUTPUT_DIR", cfg.Storage.OutputDir)
	cfg.Storage.CacheDir = envutil.String("CACHE_DIR", cfg.Storage.CacheDir)
	cfg.Storage.TemplatePath = envutil.String("TEMPLATE_PATH", cfg.Storage.TemplatePath)
	cfg.Storage.DBDriver = strings.ToLower(envutil.String("DB_DRIVER", cfg.Storage.DBDriver))
	cfg.Storage.DBDSN = envutil.String("DB_DSN", cfg.Storage.DBDSN)
	cfg.Storage.Minio.Endpoint = envutil.String("MINIO_ENDPOINT", cfg.Storage.Minio.Endpoint)
	cfg.Storage.Minio.AccessKey = envutil.String("MINIO_ACCESS_KEY", cfg.Storage.Minio.AccessKey)
	cfg.Storage.Minio.SecretKey = envutil.String("MINIO_SECRET_KEY", cfg.Storage.Minio.SecretKey)
	cfg.Storage.Minio.Bucket = envutil.String("MINIO_BUCKET", cfg.Storage.Minio.Bucket)
	cfg.Storage.Minio.UseSSL = envutil.Bool("MINIO_USE_SSL", cfg.Storage.Minio.UseSSL)

	cfg.Realtime.RedisAddr = envutil.String("REDIS_ADDR", cfg.Realtime.RedisAddr)
	cfg.Realtime.RedisChannel = envutil.String("REDIS_CHANNEL", cfg.Realtime.RedisChannel)

	cfg.Worker.Concurrency = envutil.Int("WORKER_CONCURRENCY", cfg.Worker.Concurrency)
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	c.LLM.Host = strings.TrimRight(strings.TrimSpace(c.LLM.Host), "/")
	if c.LLM.Host == "" {
		return errors.New("llm.host is required")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model is required")
	}
	switch c.LLM.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("invalid llm.provider=%q", c.LLM.Provider)
	}
	if c.LLM.PreflightTimeout.Duration <= 0 || c.LLM.GenerateTimeout.Duration <= 0 {
		return errors.New("llm timeouts must be positive")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("invalid llm.max_retries=%d", c.LLM.MaxRetries)
	}
	switch c.Storage.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid storage.db_driver=%q", c.Storage.DBDriver)
	}
	if c.Storage.DBDriver == "postgres" && strings.TrimSpace(c.Storage.DBDSN) == "" {
		return errors.New("storage.db_dsn is required for postgres")
	}
	if c.Storage.DBDSN == "" {
		c.Storage.DBDSN = filepath.Join(c.Storage.CacheDir, "lessonplan.db")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http.port=%d", c.HTTP.Port)
	}
	if c.Worker.Concurrency < 1 {
		c.Worker.Concurrency = 1
	}
	return nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(strings.TrimSpace(host), strconv.Itoa(port))
}
