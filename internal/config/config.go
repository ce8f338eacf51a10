package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/secrets"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Mongo     MongoConfig
	ApiKey    ApiKeyConfig
	Storage   StorageConfig
	Activity  ActivityConfig
	Tasks     TasksConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// MongoConfig holds the document store connection settings. URI wins when
// set; otherwise an SRV URI is built from User, Password and Host.
type MongoConfig struct {
	URI                    string
	User                   string
	Password               string
	Host                   string
	Database               string
	MinPoolSize            uint64
	MaxPoolSize            uint64
	ConnectTimeout         int // seconds
	ServerSelectionTimeout int // seconds
	QueryTimeout           int // seconds
}

// ApiKeyConfig holds the key sent as x-api-key to the activity and task services
type ApiKeyConfig struct {
	SecretName string
	Value      string // Loaded from secrets or environment
}

type StorageConfig struct {
	// Mode selects the backend: "local", "azure" or "s3"
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	S3                    S3Config
	MaxUploadSizeMB       int64
}

// S3Config holds AWS S3 settings. Empty credentials fall back to the default
// AWS credential chain.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the AWS endpoint, e.g. for MinIO or LocalStack
	Endpoint     string
	UsePathStyle bool
	// PresignTTL is how long presigned upload URLs stay valid (seconds)
	PresignTTL int
}

// ActivityConfig configures delivery of lead timeline activities
type ActivityConfig struct {
	// Transport is "http", "amqp" or "disabled"
	Transport  string
	URL        string
	AMQPURL    string
	Exchange   string
	RoutingKey string
	// QueueSize bounds the number of activities waiting for delivery
	QueueSize int
	Workers   int
	Timeout   int // seconds
}

// TasksConfig configures the task service client
type TasksConfig struct {
	URL     string
	Timeout int // seconds
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
	EnableMetrics  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins []string
	// AllowedMethods is a list of allowed HTTP methods
	AllowedMethods []string
	// AllowedHeaders is a list of allowed request headers
	AllowedHeaders []string
	// ExposedHeaders is a list of headers exposed to the client
	ExposedHeaders []string
	// AllowCredentials indicates whether credentials are allowed
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	// EnableHSTS enables HTTP Strict Transport Security header
	EnableHSTS bool
	// HSTSMaxAge is the max age for HSTS in seconds (default: 31536000 = 1 year)
	HSTSMaxAge int
	// HSTSIncludeSubdomains includes subdomains in HSTS
	HSTSIncludeSubdomains bool
	// HSTSPreload enables HSTS preload
	HSTSPreload bool
	// ContentSecurityPolicy sets the Content-Security-Policy header
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions string
	// ContentTypeNosniff enables X-Content-Type-Options: nosniff
	ContentTypeNosniff bool
	// XSSProtection sets the X-XSS-Protection header
	XSSProtection string
	// ReferrerPolicy sets the Referrer-Policy header
	ReferrerPolicy string
	// PermissionsPolicy sets the Permissions-Policy header
	PermissionsPolicy string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Enabled enables rate limiting
	Enabled bool
	// RequestsPerMinute is the rate limit per client IP
	RequestsPerMinute int
	// WhitelistIPs is a list of IPs that bypass rate limiting
	WhitelistIPs []string
	// WhitelistPaths is a list of paths that bypass rate limiting (e.g., /health)
	WhitelistPaths []string
}

// JobsConfig holds background job settings
type JobsConfig struct {
	LeadStatsEnabled bool
	LeadStatsCron    string
	LeadStatsTimeout int // seconds
}

// ConnectionURI returns the MongoDB connection URI
func (m *MongoConfig) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(m.User, m.Password),
		Host:     m.Host,
		Path:     "/" + m.Database,
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

// ConnectTimeoutDuration returns connect timeout as duration
func (m *MongoConfig) ConnectTimeoutDuration() time.Duration {
	return time.Duration(m.ConnectTimeout) * time.Second
}

// ServerSelectionTimeoutDuration returns server selection timeout as duration
func (m *MongoConfig) ServerSelectionTimeoutDuration() time.Duration {
	return time.Duration(m.ServerSelectionTimeout) * time.Second
}

// QueryTimeoutDuration returns query timeout as duration
func (m *MongoConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(m.QueryTimeout) * time.Second
}

// PresignTTLDuration returns the presigned URL lifetime as duration
func (s *S3Config) PresignTTLDuration() time.Duration {
	return time.Duration(s.PresignTTL) * time.Second
}

// MaxUploadBytes returns the upload size limit in bytes
func (s *StorageConfig) MaxUploadBytes() int64 {
	return s.MaxUploadSizeMB << 20
}

// TimeoutDuration returns the activity delivery timeout as duration
func (a *ActivityConfig) TimeoutDuration() time.Duration {
	return time.Duration(a.Timeout) * time.Second
}

// TimeoutDuration returns the task client timeout as duration
func (t *TasksConfig) TimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// LeadStatsTimeoutDuration returns the lead stats job timeout as duration
func (j *JobsConfig) LeadStatsTimeoutDuration() time.Duration {
	return time.Duration(j.LeadStatsTimeout) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvAliases(v, &cfg)

	return &cfg, nil
}

// applyEnvAliases fills settings that are conventionally supplied under
// flat environment names rather than the nested viper keys.
func applyEnvAliases(v *viper.Viper, cfg *Config) {
	if port := v.GetInt("PORT"); port != 0 {
		cfg.App.Port = port
	}
	if env := v.GetString("NODE_ENV"); env != "" && os.Getenv("APP_ENVIRONMENT") == "" {
		cfg.App.Environment = env
	}

	if cfg.Mongo.User == "" {
		cfg.Mongo.User = v.GetString("MONGO_USER")
	}
	if cfg.Mongo.Password == "" {
		cfg.Mongo.Password = v.GetString("MONGO_PASSWORD")
	}
	if db := v.GetString("MONGO_DATABASE"); db != "" {
		cfg.Mongo.Database = db
	}

	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("X_API_KEY")
	}
	if cfg.Tasks.URL == "" {
		cfg.Tasks.URL = v.GetString("TASK_CLIENT_URL")
	}
	if cfg.Activity.URL == "" {
		cfg.Activity.URL = v.GetString("ACTIVITY_CLIENT_URL")
	}

	if cfg.Storage.S3.Bucket == "" {
		cfg.Storage.S3.Bucket = v.GetString("AWS_S3_BUCKET")
	}
	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = v.GetString("AWS_REGION")
	}
	if cfg.Storage.S3.AccessKeyID == "" {
		cfg.Storage.S3.AccessKeyID = v.GetString("AWS_ACCESS_KEY_ID")
	}
	if cfg.Storage.S3.SecretAccessKey == "" {
		cfg.Storage.S3.SecretAccessKey = v.GetString("AWS_SECRET_ACCESS_KEY")
	}

	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source
// In development (or when secrets.source = "environment"), secrets come from env vars
// In staging/production (or when secrets.source = "vault"), secrets come from Azure Key Vault
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
			zap.Bool("use_key_vault", useKeyVault),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	if !provider.IsVaultEnabled() {
		return nil, fmt.Errorf("vault provider not enabled despite USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Loading secrets from Azure Key Vault")
	ApplySecrets(ctx, cfg, provider)
	logger.Info("Secrets loaded from vault successfully")

	return cfg, nil
}

// SecretSource resolves a secret by vault name, falling back to an
// environment variable.
type SecretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envVar string) (string, error)
}

// ApplySecrets overwrites credentials with values from the secret source.
// Missing secrets keep the value already loaded from the environment.
func ApplySecrets(ctx context.Context, cfg *Config, src SecretSource) {
	set := func(dst *string, secretName, envVar string) {
		if value, err := src.GetSecretOrEnv(ctx, secretName, envVar); err == nil && value != "" {
			*dst = value
		}
	}

	// Mongo credentials; the database name stays environment specific
	set(&cfg.Mongo.URI, "MONGO-URI", "MONGO_URI")
	set(&cfg.Mongo.Host, "MONGO-HOST", "MONGO_HOST")
	set(&cfg.Mongo.User, "MONGO-USER", "MONGO_USER")
	set(&cfg.Mongo.Password, "MONGO-PASSWORD", "MONGO_PASSWORD")

	secretName := cfg.ApiKey.SecretName
	if secretName == "" {
		secretName = "x-api-key"
	}
	set(&cfg.ApiKey.Value, secretName, "X_API_KEY")

	set(&cfg.Storage.CloudConnectionString, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING")
	set(&cfg.Storage.S3.AccessKeyID, "aws-access-key-id", "AWS_ACCESS_KEY_ID")
	set(&cfg.Storage.S3.SecretAccessKey, "aws-secret-access-key", "AWS_SECRET_ACCESS_KEY")
	set(&cfg.Activity.AMQPURL, "activity-amqp-url", "ACTIVITY_AMQPURL")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "CRM Lead Service")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 3004)

	// Mongo defaults
	v.SetDefault("mongo.host", "localhost")
	v.SetDefault("mongo.database", "crm")
	v.SetDefault("mongo.minPoolSize", 0)
	v.SetDefault("mongo.maxPoolSize", 100)
	v.SetDefault("mongo.connectTimeout", 10)
	v.SetDefault("mongo.serverSelectionTimeout", 10)
	v.SetDefault("mongo.queryTimeout", 30)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "crm-leads")
	v.SetDefault("storage.maxUploadSizeMB", 5)
	v.SetDefault("storage.s3.region", "ap-south-1")
	v.SetDefault("storage.s3.presignTTL", 300)

	// Activity defaults
	v.SetDefault("activity.transport", "http")
	v.SetDefault("activity.exchange", "crm.activities")
	v.SetDefault("activity.routingKey", "lead.activity")
	v.SetDefault("activity.queueSize", 1024)
	v.SetDefault("activity.workers", 4)
	v.SetDefault("activity.timeout", 10)

	// Task client defaults
	v.SetDefault("tasks.timeout", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)
	v.SetDefault("server.enableMetrics", true)

	// CORS defaults - restrictive by default
	// In development, you may want to override with specific origins
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID", "User-Id"})
	v.SetDefault("cors.exposedHeaders", []string{"Content-Disposition", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300) // 5 minutes

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)    // Disabled by default, enable in production with HTTPS
	v.SetDefault("security.hstsMaxAge", 31536000) // 1 year
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready", "/metrics"})

	// Job defaults
	v.SetDefault("jobs.leadStatsEnabled", true)
	v.SetDefault("jobs.leadStatsCron", "0 */5 * * * *") // every 5 minutes, seconds field first
	v.SetDefault("jobs.leadStatsTimeout", 30)
}
