package config

import "time"

// Duration accepts "5s"-style strings or a bare number of seconds in YAML.
type Duration struct {
	time.Duration
}

type Config struct {
	Env  string     `yaml:"env"`
	HTTP HTTPConfig `yaml:"http"`
	LLM  LLMConfig  `yaml:"llm"`

	Storage  StorageConfig  `yaml:"storage"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64    `yaml:"max_upload_bytes"`
}

// Addr is the listen address built from Host and Port.
func (h HTTPConfig) Addr() string {
	return joinHostPort(h.Host, h.Port)
}

type LLMConfig struct {
	// Provider is "ollama" (native /api endpoints) or "openai" (any OpenAI-compatible server).
	Provider         string   `yaml:"provider"`
	Host             string   `yaml:"host"`
	Model            string   `yaml:"model"`
	APIKey           string   `yaml:"api_key"`
	PreflightTimeout Duration `yaml:"preflight_timeout"`
	GenerateTimeout  Duration `yaml:"generate_timeout"`
	MaxRetries       int      `yaml:"max_retries"`
	RetryBaseDelay   Duration `yaml:"retry_base_delay"`
	RetryMaxDelay    Duration `yaml:"retry_max_delay"`
	SyllabusExcerpt  int      `yaml:"syllabus_excerpt_chars"`
}

type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
	OutputDir string `yaml:"output_dir"`
	CacheDir  string `yaml:"cache_dir"`
	// TemplatePath is the default .docx template. Empty uses the built-in one.
	TemplatePath string `yaml:"template_path"`

	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`

	Minio MinioConfig `yaml:"minio"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled reports whether generated documents should go to object storage.
func (m MinioConfig) Enabled() bool {
	return m.Endpoint != "" && m.Bucket != ""
}

type RealtimeConfig struct {
	RedisAddr    string `yaml:"redis_addr"`
	RedisChannel string `yaml:"redis_channel"`
}

type WorkerConfig struct {
	Concurrency int `yaml:"concurrency"`
}
