package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"catalog-service/catalog"
	awspkg "catalog-service/pkg/aws"
	"catalog-service/services"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds all environment variables for the catalog-service.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	StoreBackend       string // mongo or dynamodb
	MongoURI           string
	MongoDB            string
	DDBProductsTable   string
	DDBCategoriesTable string

	RedisURL string

	AWS               awspkg.Options
	S3Bucket          string
	S3Prefix          string
	CloudFrontDomain  string
	SNSTopicArn       string
	CloudWatchEnabled bool

	Catalog services.CatalogConfig

	CORSAllowedOrigins string
	RateLimitPerMinute int
	RequestTimeout     time.Duration
}

// LoadConfig loads environment variables into Config and validates them. A
// .env file is read first when present. If AWS_USE_SECRETS=true, JWT_SECRET
// and MONGO_URI are read from Secrets Manager, falling back to the
// environment on failure. Secret names carry AWS_SECRETS_PREFIX (default
// "catalog/").
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "8082"),
		Env:       getEnv("APP_ENV", "development"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", "mongo")),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getEnv("MONGO_DB", "catalog"),
		DDBProductsTable:   getEnv("DDB_TABLE_PRODUCTS", "Products"),
		DDBCategoriesTable: getEnv("DDB_TABLE_CATEGORIES", "Categories"),

		RedisURL: os.Getenv("REDIS_URL"),

		AWS: awspkg.Options{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Endpoint:        os.Getenv("AWS_ENDPOINT"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		S3Bucket:          os.Getenv("AWS_S3_BUCKET"),
		S3Prefix:          getEnv("AWS_S3_PREFIX", "products/"),
		CloudFrontDomain:  os.Getenv("AWS_CLOUDFRONT_DOMAIN"),
		SNSTopicArn:       os.Getenv("CATALOG_SNS_TOPIC_ARN"),
		CloudWatchEnabled: getEnvBool("CLOUDWATCH_ENABLED", false),

		Catalog: services.CatalogConfig{
			FilterMode:        catalog.ParseMode(getEnv("CATALOG_FILTER_MODE", "any")),
			MaxCombinations:   getEnvInt("CATALOG_MAX_COMBINATIONS", services.DefaultMaxCombinations),
			StrictVariantAxes: getEnvBool("CATALOG_STRICT_VARIANT_AXES", false),
		},

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 600),
		RequestTimeout:     30 * time.Second,
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		loadSecrets(cfg)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.StoreBackend != "mongo" && cfg.StoreBackend != "dynamodb" {
		return nil, fmt.Errorf("STORE_BACKEND must be mongo or dynamodb, got %q", cfg.StoreBackend)
	}
	if cfg.Catalog.MaxCombinations < 0 {
		return nil, fmt.Errorf("CATALOG_MAX_COMBINATIONS must not be negative")
	}

	return cfg, nil
}

// SecretSource reads a named secret.
type SecretSource interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

func loadSecrets(cfg *Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awspkg.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		zap.L().Warn("Secrets Manager unavailable, using environment", zap.Error(err))
		return
	}
	applySecrets(ctx, cfg, awspkg.NewSecretsClient(awsCfg, getEnv("AWS_SECRETS_PREFIX", "catalog/")))
}

// applySecrets overrides JWT_SECRET and MONGO_URI with the stored values. A
// missing or empty secret keeps the environment value.
func applySecrets(ctx context.Context, cfg *Config, src SecretSource) {
	overrides := []struct {
		name   string
		target *string
	}{
		{"JWT_SECRET", &cfg.JWTSecret},
		{"MONGO_URI", &cfg.MongoURI},
	}
	for _, o := range overrides {
		v, err := src.GetSecret(ctx, o.name)
		if err != nil {
			zap.L().Warn("Failed to read secret, using environment", zap.String("secret", o.name), zap.Error(err))
			continue
		}
		if v != "" {
			*o.target = v
		}
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
