package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"

	StorageLocal = "local"
	StorageMinIO = "minio"
	StorageAzure = "azure"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `toml:"host"`
	Port               string `toml:"port"`
	User               string `toml:"user"`
	Password           string `toml:"password"`
	PasswordSecretARN  string `toml:"password_secret_arn"`
	Name               string `toml:"name"`
	SSLMode            string `toml:"sslmode"`
	MaxOpenConns       int    `toml:"max_open_conns"`
	MaxIdleConns       int    `toml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `toml:"conn_max_lifetime_sec"`
	Migrate            bool   `toml:"migrate"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI          string `toml:"uri"`
	URISecretARN string `toml:"uri_secret_arn"`
	Database     string `toml:"database"`
	Collection   string `toml:"collection"`
}

// StorageConfig selects the blob store and how stored blobs are exposed.
type StorageConfig struct {
	Driver    string `toml:"driver"`
	UploadDir string `toml:"upload_dir"`
	URLPrefix string `toml:"url_prefix"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// AzureConfig holds Azure Blob Storage settings.
type AzureConfig struct {
	ConnectionString string `toml:"connection_string"`
	Container        string `toml:"container"`
}

// AppConfig is the centralized configuration struct for the application.
// Values come from defaults, then an optional TOML file, then environment variables.
// Credentials never have a default.
type AppConfig struct {
	AppHost     string         `toml:"app_host"`
	Port        string         `toml:"port"`
	LogLevel    string         `toml:"log_level"`
	CORSOrigins string         `toml:"cors_allow_origins"`
	AWSRegion   string         `toml:"aws_region"`
	DBDriver    string         `toml:"db_driver"`
	Database    DatabaseConfig `toml:"database"`
	Mongo       MongoConfig    `toml:"mongo"`
	Storage     StorageConfig  `toml:"storage"`
	MinIO       MinIOConfig    `toml:"minio"`
	Azure       AzureConfig    `toml:"azure"`
}

// Load reads configuration. A .env file can be auto-loaded by importing:
// _ "github.com/joho/godotenv/autoload"
// The TOML file named by CONFIG_FILE (default config.toml) is optional.
func Load() (*AppConfig, error) {
	cfg := defaultConfig()

	path := getEnv("CONFIG_FILE", "config.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	overrideByEnv(cfg)
	cfg.normalize()
	return cfg, nil
}

// normalize canonicalises values that may come from either the file or the environment.
func (c *AppConfig) normalize() {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Storage.URLPrefix = strings.TrimRight(strings.TrimSpace(c.Storage.URLPrefix), "/")
}

// Validate reports settings missing for the selected drivers.
// Secret ARNs count as a value since they are resolved later.
func (c *AppConfig) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("postgres requires DB_HOST, DB_USER and DB_NAME"))
		}
	case DriverMongo:
		if c.Mongo.URI == "" && c.Mongo.URISecretARN == "" {
			errs = append(errs, errors.New("mongo requires MONGO_URI or MONGO_URI_SECRET_ARN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}

	switch c.Storage.Driver {
	case StorageLocal:
		if c.Storage.UploadDir == "" {
			errs = append(errs, errors.New("local storage requires UPLOAD_DIR"))
		}
	case StorageMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			errs = append(errs, errors.New("minio storage requires MINIO_ENDPOINT and MINIO_BUCKET"))
		}
	case StorageAzure:
		if c.Azure.ConnectionString == "" || c.Azure.Container == "" {
			errs = append(errs, errors.New("azure storage requires AZURE_STORAGE_CONNECTION_STRING and AZURE_STORAGE_CONTAINER"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}

	switch {
	case c.Storage.URLPrefix == "" || c.Storage.URLPrefix == "/":
		errs = append(errs, errors.New("UPLOAD_URL_PREFIX must name a path below /, such as /uploads"))
	case !strings.HasPrefix(c.Storage.URLPrefix, "/"):
		errs = append(errs, fmt.Errorf("UPLOAD_URL_PREFIX must start with /, got %q", c.Storage.URLPrefix))
	}

	return errors.Join(errs...)
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		AppHost:     "localhost:3000",
		Port:        "3000",
		LogLevel:    "info",
		CORSOrigins: "*",
		AWSRegion:   "us-east-1",
		DBDriver:    DriverPostgres,
		Database: DatabaseConfig{
			Port:               "5432",
			SSLMode:            "disable",
			MaxOpenConns:       10,
			MaxIdleConns:       5,
			ConnMaxLifetimeSec: 300,
			Migrate:            true,
		},
		Mongo: MongoConfig{
			Database:   "docsDB",
			Collection: "documents",
		},
		Storage: StorageConfig{
			Driver:    StorageLocal,
			UploadDir: "uploads",
			URLPrefix: "/uploads",
		},
	}
}

func overrideByEnv(cfg *AppConfig) {
	cfg.AppHost = getEnv("APP_HOST", cfg.AppHost)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.CORSOrigins = getEnv("CORS_ALLOW_ORIGINS", cfg.CORSOrigins)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.PasswordSecretARN = getEnv("DB_PASSWORD_SECRET_ARN", cfg.Database.PasswordSecretARN)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetimeSec = getEnvInt("DB_CONN_MAX_LIFETIME_SEC", cfg.Database.ConnMaxLifetimeSec)
	cfg.Database.Migrate = getEnvBool("DB_MIGRATE", cfg.Database.Migrate)

	cfg.Mongo.URI = getEnv("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.URISecretARN = getEnv("MONGO_URI_SECRET_ARN", cfg.Mongo.URISecretARN)
	cfg.Mongo.Database = getEnv("MONGO_DATABASE", cfg.Mongo.Database)
	cfg.Mongo.Collection = getEnv("MONGO_COLLECTION", cfg.Mongo.Collection)

	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.UploadDir = getEnv("UPLOAD_DIR", cfg.Storage.UploadDir)
	cfg.Storage.URLPrefix = getEnv("UPLOAD_URL_PREFIX", cfg.Storage.URLPrefix)

	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIO.AccessKey)
	cfg.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIO.SecretKey)
	cfg.MinIO.Bucket = getEnv("MINIO_BUCKET", cfg.MinIO.Bucket)
	cfg.MinIO.UseSSL = getEnvBool("MINIO_USE_SSL", cfg.MinIO.UseSSL)

	cfg.Azure.ConnectionString = getEnv("AZURE_STORAGE_CONNECTION_STRING", cfg.Azure.ConnectionString)
	cfg.Azure.Container = getEnv("AZURE_STORAGE_CONTAINER", cfg.Azure.Container)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
