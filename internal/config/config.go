package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Pipeline names, also used in object keys, locks and the ledger.
const (
	PipelineCategories = "categories"
	PipelineTrending   = "trending"
)

// Config holds all configuration for the snapshot jobs
type Config struct {
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Storage  StorageConfig  `yaml:"storage"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Lock     LockConfig     `yaml:"lock"`
	Notify   NotifyConfig   `yaml:"notify"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// YouTubeConfig holds the video-platform API settings
type YouTubeConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxResults     int    `yaml:"max_results"`
	MaxPages       int    `yaml:"max_pages"`   // safety cap per country
	MaxRetries     int    `yaml:"max_retries"` // 5xx/network only; 0 disables
}

// Timeout returns the configured timeout as a duration
func (c YouTubeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig holds the snapshot destination. The static key pair is only
// required by the trending pipeline; categories use the default credential chain.
type StorageConfig struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	AWSProfile      string `yaml:"aws_profile"` // Empty string uses default credential chain
	Endpoint        string `yaml:"endpoint"`    // S3-compatible endpoint override
	KeyTemplate     string `yaml:"key_template"`
	CategoryPrefix  string `yaml:"category_prefix"`
	CategoryName    string `yaml:"category_name"`
	TrendingPrefix  string `yaml:"trending_prefix"`
	TrendingName    string `yaml:"trending_name"`
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	// On ECS/Lambda, don't use a profile - use IAM role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// HasStaticCredentials reports whether an explicit key pair is configured
func (c StorageConfig) HasStaticCredentials() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// CatalogConfig selects where country codes come from
type CatalogConfig struct {
	Type        string `yaml:"type"` // "file" or "postgres"
	Path        string `yaml:"path"`
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
}

// PipelineConfig holds run behavior shared by both pipelines
type PipelineConfig struct {
	ScratchDir      string `yaml:"scratch_dir"`
	RateLimitPolicy string `yaml:"rate_limit_policy"` // "skip" or "abort"
}

// LedgerConfig selects where run records are kept
type LedgerConfig struct {
	Type          string `yaml:"type"` // "none", "dynamodb" or "sqlite"
	DynamoDBTable string `yaml:"dynamodb_table"`
	SQLitePath    string `yaml:"sqlite_path"`
	TTLDays       int    `yaml:"ttl_days"`
}

// LockConfig holds the redis run lock settings
type LockConfig struct {
	Enabled    bool   `yaml:"enabled"`
	RedisAddr  string `yaml:"redis_addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// TTL returns the lock TTL as a duration
func (c LockConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// NotifyConfig holds the SQS queue that receives snapshot notifications
type NotifyConfig struct {
	SQSQueueURL string `yaml:"sqs_queue_url"`
}

// MetricsConfig holds the optional Pushgateway target
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// ServerConfig holds the HTTP trigger server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS for dashboards reading /runs; empty disables
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
	// DisableRedaction logs secret-looking fields in clear. Local debugging only.
	DisableRedaction bool `yaml:"disable_redaction"`
}

// Load reads and parses the configuration file. An empty path yields the
// defaults alone, which is how the scheduled job runs from environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.YouTube.BaseURL == "" {
		cfg.YouTube.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if cfg.YouTube.TimeoutSeconds == 0 {
		cfg.YouTube.TimeoutSeconds = 30
	}
	if cfg.YouTube.MaxResults == 0 {
		cfg.YouTube.MaxResults = 50
	}
	if cfg.YouTube.MaxPages == 0 {
		cfg.YouTube.MaxPages = 20
	}
	if cfg.Storage.KeyTemplate == "" {
		cfg.Storage.KeyTemplate = "{{ prefix }}/{{ name }}_{{ date }}.{{ ext }}"
	}
	if cfg.Storage.CategoryPrefix == "" {
		cfg.Storage.CategoryPrefix = "category"
	}
	if cfg.Storage.CategoryName == "" {
		cfg.Storage.CategoryName = "daily_category_scrap"
	}
	if cfg.Storage.TrendingPrefix == "" {
		cfg.Storage.TrendingPrefix = "trending"
	}
	if cfg.Storage.TrendingName == "" {
		cfg.Storage.TrendingName = "daily_trending_scrap"
	}
	if cfg.Catalog.Type == "" {
		cfg.Catalog.Type = "file"
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "country_codes.txt"
	}
	if cfg.Catalog.Table == "" {
		cfg.Catalog.Table = "country_codes"
	}
	if cfg.Pipeline.ScratchDir == "" {
		cfg.Pipeline.ScratchDir = os.TempDir()
	}
	if cfg.Pipeline.RateLimitPolicy == "" {
		cfg.Pipeline.RateLimitPolicy = "skip"
	}
	if cfg.Ledger.Type == "" {
		cfg.Ledger.Type = "none"
	}
	if cfg.Ledger.SQLitePath == "" {
		cfg.Ledger.SQLitePath = "ytetl_runs.db"
	}
	if cfg.Ledger.TTLDays == 0 {
		cfg.Ledger.TTLDays = 90
	}
	if cfg.Lock.TTLSeconds == 0 {
		cfg.Lock.TTLSeconds = 900
	}
	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = "ytetl"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so secrets can
// live in .env locally and in real env vars when scheduled. The lowercase
// names (api_key, bucket, AK, secret, region) are the variables the job has
// always been deployed with and are honoured as fallbacks.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	setFromEnv(&cfg.YouTube.APIKey, "YOUTUBE_API_KEY", "api_key")
	setFromEnv(&cfg.YouTube.BaseURL, "YOUTUBE_BASE_URL")
	setFromEnv(&cfg.Storage.Bucket, "SNAPSHOT_BUCKET", "bucket")
	setFromEnv(&cfg.Storage.AccessKeyID, "SNAPSHOT_AWS_ACCESS_KEY_ID", "AK")
	setFromEnv(&cfg.Storage.SecretAccessKey, "SNAPSHOT_AWS_SECRET_ACCESS_KEY", "secret")
	setFromEnv(&cfg.Storage.Region, "SNAPSHOT_AWS_REGION", "region")
	setFromEnv(&cfg.Storage.Endpoint, "SNAPSHOT_S3_ENDPOINT")
	setFromEnv(&cfg.Catalog.Path, "COUNTRY_CODES_PATH")
	if v := os.Getenv("CATALOG_DATABASE_URL"); v != "" {
		cfg.Catalog.DatabaseURL = v
		cfg.Catalog.Type = "postgres"
	}
	setFromEnv(&cfg.Ledger.Type, "LEDGER_TYPE")
	setFromEnv(&cfg.Ledger.DynamoDBTable, "LEDGER_DYNAMODB_TABLE")
	setFromEnv(&cfg.Ledger.SQLitePath, "LEDGER_SQLITE_PATH")
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Lock.RedisAddr = v
		cfg.Lock.Enabled = true
	}
	setFromEnv(&cfg.Notify.SQSQueueURL, "SNAPSHOT_QUEUE_URL")
	setFromEnv(&cfg.Metrics.PushgatewayURL, "PUSHGATEWAY_URL")
	setFromEnv(&cfg.Pipeline.ScratchDir, "SCRATCH_DIR")
	setFromEnv(&cfg.Pipeline.RateLimitPolicy, "RATE_LIMIT_POLICY")
	setFromEnv(&cfg.Log.Level, "LOG_LEVEL")

	return cfg, nil
}

// setFromEnv assigns the first non-empty variable among names.
func setFromEnv(dst *string, names ...string) {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			*dst = v
			return
		}
	}
}

// Validate returns the dotted names of required settings that are missing
// for the given pipeline. An empty result means the pipeline can run.
func (c *Config) Validate(pipeline string) []string {
	var missing []string
	if c.YouTube.APIKey == "" {
		missing = append(missing, "youtube.api_key")
	}
	if c.Storage.Bucket == "" {
		missing = append(missing, "storage.bucket")
	}
	if pipeline == PipelineTrending {
		if c.Storage.AccessKeyID == "" {
			missing = append(missing, "storage.access_key_id")
		}
		if c.Storage.SecretAccessKey == "" {
			missing = append(missing, "storage.secret_access_key")
		}
		if c.Storage.Region == "" {
			missing = append(missing, "storage.region")
		}
	}
	switch c.Catalog.Type {
	case "postgres":
		if c.Catalog.DatabaseURL == "" {
			missing = append(missing, "catalog.database_url")
		}
	default:
		if c.Catalog.Path == "" {
			missing = append(missing, "catalog.path")
		}
	}
	if c.Ledger.Type == "dynamodb" && c.Ledger.DynamoDBTable == "" {
		missing = append(missing, "ledger.dynamodb_table")
	}
	if c.Lock.Enabled && c.Lock.RedisAddr == "" {
		missing = append(missing, "lock.redis_addr")
	}
	return missing
}
