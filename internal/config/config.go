package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CatalogPostgres = "postgres"
	CatalogMongo    = "mongo"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	NATS      NATSConfig      `yaml:"nats"`
	MinIO     MinIOConfig     `yaml:"minio"`
	FaceIndex FaceIndexConfig `yaml:"faceindex"`
	Vision    VisionConfig    `yaml:"vision"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	APIKey      string `yaml:"api_key"`
	JWTSecret   string `yaml:"jwt_secret"`
	JWTAudience string `yaml:"jwt_audience"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// CatalogConfig selects the document store holding events.
type CatalogConfig struct {
	Driver string `yaml:"driver"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	// PublicURL is the base used when handing out object URLs, e.g. a CDN in front of the bucket.
	PublicURL    string        `yaml:"public_url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

type FaceIndexConfig struct {
	IndexID       string        `yaml:"index_id"`
	MaxResults    int           `yaml:"max_results"`
	MinSimilarity float64       `yaml:"min_similarity"` // percent
	QueryTimeout  time.Duration `yaml:"query_timeout"`
}

type VisionConfig struct {
	ModelsDir          string  `yaml:"models_dir"`
	ONNXLibrary        string  `yaml:"onnx_library"`
	DetectionThreshold float64 `yaml:"detection_threshold"`
	WorkerCount        int     `yaml:"worker_count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML bytes, then applies env overrides and defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Catalog.Driver {
	case CatalogPostgres:
	case CatalogMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("catalog driver %q requires mongo.uri", c.Catalog.Driver)
		}
	default:
		return fmt.Errorf("unknown catalog driver %q", c.Catalog.Driver)
	}
	if c.FaceIndex.MinSimilarity < 0 || c.FaceIndex.MinSimilarity > 100 {
		return fmt.Errorf("faceindex.min_similarity must be within [0, 100], got %v", c.FaceIndex.MinSimilarity)
	}
	if c.FaceIndex.MaxResults <= 0 {
		return fmt.Errorf("faceindex.max_results must be positive, got %d", c.FaceIndex.MaxResults)
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Catalog.Driver == "" {
		cfg.Catalog.Driver = CatalogPostgres
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "eventface"
	}
	if cfg.MinIO.FetchTimeout == 0 {
		cfg.MinIO.FetchTimeout = 15 * time.Second
	}
	if cfg.FaceIndex.IndexID == "" {
		cfg.FaceIndex.IndexID = "event-photos"
	}
	if cfg.FaceIndex.MaxResults == 0 {
		cfg.FaceIndex.MaxResults = 4096
	}
	if cfg.FaceIndex.MinSimilarity == 0 {
		cfg.FaceIndex.MinSimilarity = 80
	}
	if cfg.FaceIndex.QueryTimeout == 0 {
		cfg.FaceIndex.QueryTimeout = 20 * time.Second
	}
	if cfg.Vision.DetectionThreshold == 0 {
		cfg.Vision.DetectionThreshold = 0.5
	}
	if cfg.Vision.WorkerCount == 0 {
		cfg.Vision.WorkerCount = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EF_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("EF_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("EF_JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv("EF_JWT_AUDIENCE"); v != "" {
		cfg.Server.JWTAudience = v
	}
	if v := os.Getenv("EF_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("EF_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("EF_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("EF_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("EF_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("EF_CATALOG_DRIVER"); v != "" {
		cfg.Catalog.Driver = v
	}
	if v := os.Getenv("EF_MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("EF_MONGO_DATABASE"); v != "" {
		cfg.Mongo.Database = v
	}
	if v := os.Getenv("EF_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("EF_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("EF_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("EF_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("EF_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("EF_MINIO_PUBLIC_URL"); v != "" {
		cfg.MinIO.PublicURL = v
	}
	if v := os.Getenv("EF_FACE_INDEX_ID"); v != "" {
		cfg.FaceIndex.IndexID = v
	}
	if v := os.Getenv("EF_FACE_MIN_SIMILARITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FaceIndex.MinSimilarity = f
		}
	}
	if v := os.Getenv("EF_MODELS_DIR"); v != "" {
		cfg.Vision.ModelsDir = v
	}
	if v := os.Getenv("EF_ONNX_LIBRARY"); v != "" {
		cfg.Vision.ONNXLibrary = v
	}
	if v := os.Getenv("EF_VISION_WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Vision.WorkerCount = n
		}
	}
	if v := os.Getenv("EF_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
