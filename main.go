package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-service/common/auth"
	apperrors "catalog-service/common/errors"
	"catalog-service/common/logger"
	"catalog-service/common/middleware"
	"catalog-service/controllers"
	"catalog-service/database"
	awspkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/routes"
	"catalog-service/services"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const serviceName = "catalog-service"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		logger.Initialize(os.Getenv("APP_ENV"))
		logger.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// --- 1. AWS, logging and metrics ---

	awsCfg, err := awspkg.LoadAWSConfig(context.Background(), cfg.AWS)
	awsReady := err == nil
	if !awsReady {
		logger.Initialize(cfg.Env)
		logger.Log.Warn("AWS config unavailable, AWS-backed features disabled", zap.Error(err))
	} else if cfg.CloudWatchEnabled {
		cwWriter, cwErr := awspkg.NewCloudWatchLogsClient(context.Background(), awsCfg, "", serviceName)
		if cwErr != nil {
			logger.Initialize(cfg.Env)
			logger.Log.Warn("CloudWatch Logs unavailable, logging to stdout only", zap.Error(cwErr))
		} else {
			logger.InitializeWithWriter(cfg.Env, cwWriter)
		}
	} else {
		logger.Initialize(cfg.Env)
	}
	defer logger.Log.Sync()
	zap.ReplaceGlobals(logger.Log)

	var metrics *awspkg.MetricsClient
	if awsReady {
		metrics = awspkg.NewMetricsClient(awsCfg, "", cfg.CloudWatchEnabled)
	}

	// --- 2. Stores ---

	productRepo, categoryRepo := openStores(cfg, awsCfg, awsReady)

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := productRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Log.Warn("Failed to ensure product indexes", zap.Error(err))
	}
	if err := categoryRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Log.Warn("Failed to ensure category indexes", zap.Error(err))
	}
	cancelIndexes()

	// --- 3. Optional collaborators ---

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Log.Warn("Failed to parse REDIS_URL, cache disabled", zap.Error(err))
		} else {
			redisClient = redis.NewClient(redisOpts)
		}
	}

	var events *services.EventPublisher
	if awsReady && cfg.SNSTopicArn != "" {
		events = services.NewEventPublisher(awspkg.NewSNSClient(awsCfg), cfg.SNSTopicArn)
	}

	var images services.ImagePresigner
	if awsReady && cfg.S3Bucket != "" {
		images = awspkg.NewImagePresigner(awsCfg, cfg.S3Bucket, cfg.S3Prefix, cfg.AWS.Endpoint, cfg.CloudFrontDomain)
	}

	// --- 4. Services and controllers ---

	catalogService := services.NewCatalogService(categoryRepo, productRepo, cfg.Catalog, metrics)
	categoryService := services.NewCategoryService(categoryRepo)
	productService := services.NewProductService(productRepo, catalogService, cfg.Catalog, events, images, metrics)

	cache := controllers.NewCacheManager(redisClient, controllers.DefaultCacheTTL, metrics)
	validator := controllers.NewRequestValidator()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	var jobs controllers.BulkJobQueue
	if queue := services.NewBulkImportQueue(redisClient, productService, func(ctx context.Context) {
		cache.InvalidateAfterWrite(ctx, "bulk import job")
	}); queue != nil {
		queue.Start(workerCtx)
		jobs = queue
	}

	handlers := routes.Handlers{
		Categories: controllers.NewCategoryController(categoryService, catalogService, cache, validator),
		Products:   controllers.NewProductController(productService, catalogService, cache, validator),
		Presign:    controllers.NewPresignedURLHandler(productService, validator),
		BulkImport: controllers.NewBulkImportHandler(productService, jobs, cache, validator),
	}

	// --- 5. HTTP server ---

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(logger.Log))
	r.Use(apperrors.ErrorMiddleware())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middleware.MetricsMiddleware(metrics, serviceName))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	verifier := auth.NewTokenVerifier(cfg.JWTSecret)
	routes.RegisterRoutes(r, handlers,
		middleware.RateLimitMiddleware(cfg.RateLimitPerMinute),
		middleware.RequireAdmin(verifier),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Catalog Service starting",
			zap.String("port", cfg.Port),
			zap.String("store", cfg.StoreBackend),
			zap.String("filter_mode", string(cfg.Catalog.FilterMode)),
			zap.Bool("cache", redisClient != nil),
			zap.Bool("events", events != nil),
			zap.Bool("images", images != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// --- 6. Graceful shutdown ---

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down Catalog Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopWorker()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Log.Error("Failed to close Redis", zap.Error(err))
		}
	}
	if err := database.Close(); err != nil {
		logger.Log.Error("Failed to close MongoDB", zap.Error(err))
	}

	logger.Log.Info("Catalog Service stopped gracefully")
}

// openStores builds the product and category stores for the configured
// backend.
func openStores(cfg *Config, awsCfg sdkaws.Config, awsReady bool) (repository.ProductRepo, repository.CategoryRepo) {
	if cfg.StoreBackend == "dynamodb" {
		if !awsReady {
			logger.Log.Fatal("STORE_BACKEND=dynamodb requires AWS configuration")
		}
		ddbClient := dynamodb.NewFromConfig(awsCfg)
		logger.Log.Info("Using DynamoDB store",
			zap.String("products_table", cfg.DDBProductsTable),
			zap.String("categories_table", cfg.DDBCategoriesTable),
		)
		return repository.NewDynamoAdapter(ddbClient, cfg.DDBProductsTable),
			repository.NewDynamoCategoryAdapter(ddbClient, cfg.DDBCategoriesTable)
	}

	if err := database.ConnectWithConfig(cfg.MongoURI, cfg.MongoDB); err != nil {
		logger.Log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	return repository.NewProductRepository(database.DB), repository.NewCategoryRepository(database.DB)
}
