package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobsearch-backend/internal/analyses"
	googleauth "jobsearch-backend/internal/auth"
	"jobsearch-backend/internal/documents"
	"jobsearch-backend/internal/listings"
	"jobsearch-backend/internal/llm"
	"jobsearch-backend/internal/llm/gemini"
	"jobsearch-backend/internal/llm/openai"
	"jobsearch-backend/internal/pipeline"
	"jobsearch-backend/internal/services/health"
	"jobsearch-backend/internal/shared/config"
	"jobsearch-backend/internal/shared/metrics"
	"jobsearch-backend/internal/shared/server/middleware"
	"jobsearch-backend/internal/shared/server/respond"
	"jobsearch-backend/internal/shared/storage/db"
	"jobsearch-backend/internal/shared/telemetry"
	"jobsearch-backend/internal/shared/storage/object"
	localstore "jobsearch-backend/internal/shared/storage/object/local"
	s3store "jobsearch-backend/internal/shared/storage/object/s3"
	"jobsearch-backend/internal/users"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
// A missing or unreachable database degrades to in-memory repos so local
// development works without Postgres.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth([]byte(cfg.JWTSecret)),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"ANALYZE": {Rate: 0.5, Burst: 3},
				"UPLOAD":  {Rate: 1, Burst: 5},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method != http.MethodPost {
					return ""
				}
				path := c.Request.URL.Path
				switch {
				case len(path) > 8 && path[len(path)-8:] == "/analyze":
					return "ANALYZE"
				case path == "/api/v1/documents":
					return "UPLOAD"
				}
				return ""
			},
		}),
	)

	sqlDB := connectDB(cfg)
	store := buildObjectStore(cfg)

	var docRepo documents.DocumentsRepo
	var analysisRepo analyses.Repo
	var userRepo users.Repo
	if sqlDB != nil {
		docRepo = &documents.PGRepo{DB: sqlDB}
		analysisRepo = &analyses.PGRepo{DB: sqlDB}
		userRepo = &users.PGRepo{DB: sqlDB}
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	analyzer := buildAnalyzer(cfg)

	docSvc := &documents.Service{Store: store, Repo: docRepo, Analyses: analysisRepo}
	analysisSvc := &analyses.Service{Docs: docSvc, Repo: analysisRepo, Analyzer: analyzer}
	docHandler := documents.NewHandler(docSvc, analysisSvc)
	analysisHandler := analyses.NewHandler(analysisSvc)

	userSvc := &users.Service{Repo: userRepo}
	userHandler := users.NewHandler(userSvc, []byte(cfg.JWTSecret))
	googleAuthSvc := googleauth.NewGoogleService(
		cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL,
		[]byte(cfg.JWTSecret), userSvc,
	)

	var etlSource, curatedSource listings.Source
	if sqlDB != nil {
		etlSource = listings.NewETLSource(sqlDB)
		curatedSource = listings.NewCuratedSource(sqlDB)
	} else {
		etlSource = listings.NewMemorySource()
		curatedSource = listings.NewMemorySource()
	}
	listingsHandler := listings.NewHandler(etlSource, curatedSource)

	runner := pipeline.NewRunner(buildInvoker(cfg))
	pipelineHandler := pipeline.NewHandler(runner)

	healthSvc := health.NewService(sqlDB, analyzer.IsConfigured())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status(c.Request.Context()))
	})
	r.GET("/metrics", metrics.Handler())

	userHandler.RegisterRoutes(api)
	googleAuthSvc.RegisterRoutes(api)
	docHandler.RegisterRoutes(api)
	analysisHandler.RegisterRoutes(api)
	listingsHandler.RegisterRoutes(api)
	pipelineHandler.RegisterRoutes(api)

	return r
}

func connectDB(cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	conn, err := db.Connect(context.Background(), cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Warn("database connect failed, falling back to memory", map[string]any{"error": err.Error()})
		return nil
	}
	if err := db.RunMigrations(context.Background(), conn); err != nil {
		telemetry.Warn("migrations failed, falling back to memory", map[string]any{"error": err.Error()})
		conn.Close()
		return nil
	}
	return conn
}

func buildObjectStore(cfg config.Config) object.ObjectStore {
	if cfg.ObjectStoreType == "s3" {
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err == nil {
			return store
		}
		telemetry.Warn("s3 store unavailable, falling back to local", map[string]any{"error": err.Error()})
	}
	return localstore.New(cfg.LocalStoreDir)
}

func buildAnalyzer(cfg config.Config) *llm.Analyzer {
	analyzer := &llm.Analyzer{
		CallTimeout: time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
	}
	if cfg.LLMAPIKey == "" {
		telemetry.Warn("no LLM API key configured, analysis endpoints will return 503", nil)
		return analyzer
	}

	switch cfg.LLMProvider {
	case "gemini":
		client, err := gemini.NewClient(context.Background(), cfg.LLMAPIKey, cfg.LLMModel)
		if err != nil {
			telemetry.Error("failed to build gemini client", map[string]any{"error": err.Error()})
			return analyzer
		}
		analyzer.Client = client
	default:
		model := cfg.LLMModel
		if model == "" {
			model = "gpt-4o-mini"
		}
		client, err := openai.NewClient(cfg.LLMAPIKey, model, analyzer.CallTimeout*2)
		if err != nil {
			telemetry.Error("failed to build openai client", map[string]any{"error": err.Error()})
			return analyzer
		}
		analyzer.Client = client
	}
	return analyzer
}

func buildInvoker(cfg config.Config) pipeline.Invoker {
	if cfg.PipelineQueueURL != "" {
		invoker, err := pipeline.NewSQSInvoker(context.Background(), cfg.AWSRegion, cfg.PipelineQueueURL)
		if err == nil {
			return invoker
		}
		telemetry.Warn("sqs invoker unavailable, falling back to exec", map[string]any{"error": err.Error()})
	}
	return &pipeline.ExecInvoker{Command: cfg.PipelineCmd}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
