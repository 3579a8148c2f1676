package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"career-backend/internal/assistant"
	"career-backend/internal/imports"
	"career-backend/internal/interview"
	"career-backend/internal/llm"
	"career-backend/internal/prep"
	"career-backend/internal/profile"
	"career-backend/internal/records"
	"career-backend/internal/services/health"
	sharedauth "career-backend/internal/shared/auth"
	"career-backend/internal/shared/config"
	"career-backend/internal/shared/server"
	"career-backend/internal/shared/storage/db"
	"career-backend/internal/shared/storage/kv"
	"career-backend/internal/shared/storage/object"
	localstore "career-backend/internal/shared/storage/object/local"
	s3store "career-backend/internal/shared/storage/object/s3"
	"career-backend/internal/shared/telemetry"
	"career-backend/internal/suggestions"
	"career-backend/internal/tailoring"
)

const (
	workspacePrefix   = "workspace"
	uploadsOwner      = "workspace"
	interviewSweepGap = 5 * time.Minute
)

// App holds the wired dependencies of one process.
type App struct {
	Config config.Config
	Router *gin.Engine

	DB      *sql.DB
	Redis   *redis.Client
	KV      kv.Store
	Store   object.ObjectStore
	LLM     llm.Client
	Backend string

	Assistant  *assistant.Service
	Records    map[records.Kind]*records.Service
	Imports    *imports.Service
	Tailoring  *tailoring.Service
	Prep       *prep.Service
	Interviews *interview.Service
	Profile    *profile.Service
	Health     *health.Service
}

// Overrides replaces parts of the wiring, mostly for tests and tools.
type Overrides struct {
	LLM   llm.Client
	KV    kv.Store
	Store object.ObjectStore
}

// Build wires the application from configuration.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(context.Background(), cfg, Overrides{})
}

// BuildWith wires the application, preferring any non-nil overrides.
func BuildWith(ctx context.Context, cfg config.Config, o Overrides) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	telemetry.Configure(cfg.Env)
	sharedauth.Configure(cfg.JWTSecret, cfg.TokenLifespan)

	app := &App{Config: cfg, Backend: cfg.KVBackend}

	store := o.Store
	if store == nil {
		var err error
		store, err = buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	app.Store = store

	if o.KV != nil {
		app.KV = o.KV
		app.Backend = "override"
	} else if err := app.buildKV(ctx); err != nil {
		return nil, err
	}

	client := o.LLM
	if client == nil {
		client = BuildLLM(ctx, cfg)
	}
	app.LLM = client

	app.buildServices()
	return app, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func (a *App) buildKV(ctx context.Context) error {
	cfg := a.Config
	switch cfg.KVBackend {
	case "file", "s3":
		if cfg.KVBackend == "s3" && cfg.ObjectStoreType != "s3" {
			return errors.New("KV_BACKEND=s3 requires OBJECT_STORE=s3")
		}
		a.KV = kv.NewObjectBackedStore(a.Store, workspacePrefix)
	case "redis":
		client, err := kv.NewRedisClient(ctx, kv.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		a.Redis = client
		a.KV = kv.NewRedisStore(client, cfg.KVPrefix)
	case "postgres":
		sqlDB, err := connectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := db.RunMigrations(ctx, sqlDB, db.DialectPostgres); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		a.DB = sqlDB
		a.KV = kv.NewSQLStore(sqlDB, db.DialectPostgres)
	case "sqlite":
		sqlDB, err := db.ConnectSQLite(ctx, cfg.SQLitePath, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return err
		}
		if err := db.RunMigrations(ctx, sqlDB, db.DialectSQLite); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		a.DB = sqlDB
		a.KV = kv.NewSQLStore(sqlDB, db.DialectSQLite)
	default:
		a.Backend = "memory"
		a.KV = kv.NewMemoryStore()
	}
	telemetry.Info("bootstrap.kv", map[string]any{"backend": a.Backend})
	return nil
}

func connectPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if db.IsLambdaRuntime() {
		return db.GetSingleton(ctx, databaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	}
	return db.Connect(ctx, databaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
}

func (a *App) buildServices() {
	cfg := a.Config
	a.Assistant = assistant.NewService(a.LLM)

	repo := records.NewKVRepo(a.KV)
	a.Records = make(map[records.Kind]*records.Service, 2)
	for _, kind := range records.Kinds() {
		a.Records[kind] = records.NewService(kind, repo)
	}
	resumes := a.Records[records.KindResume]
	jobDescriptions := a.Records[records.KindJobDescription]

	a.Imports = &imports.Service{
		Store:    a.Store,
		AI:       a.Assistant,
		MaxBytes: cfg.MaxUploadBytes,
		Owner:    uploadsOwner,
	}
	a.Tailoring = &tailoring.Service{
		Resumes:         resumes,
		JobDescriptions: jobDescriptions,
		Assistant:       a.Assistant,
	}
	a.Prep = &prep.Service{JobDescriptions: jobDescriptions, Assistant: a.Assistant}
	a.Interviews = interview.NewService(a.Assistant, jobDescriptions, cfg.InterviewSessionTTL)
	a.Profile = &profile.Service{Store: a.KV}
	a.Health = a.buildHealth()

	deps := server.RouterDeps{
		Config:     cfg,
		Imports:    imports.NewHandler(a.Imports),
		Tailoring:  tailoring.NewHandler(a.Tailoring),
		Prep:       prep.NewHandler(a.Prep),
		Interviews: interview.NewHandler(a.Interviews),
		Profile:    profile.NewHandler(a.Profile),
		GoogleAuth: profile.NewGoogleSignIn(
			a.Profile,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.UIRedirectURL,
		),
		Health: a.Health.Status,
	}
	for _, kind := range records.Kinds() {
		svc := a.Records[kind]
		deps.Records = append(deps.Records, records.NewHandler(svc))
		deps.Suggestions = append(deps.Suggestions, suggestions.NewHandler(&suggestions.Service{
			Kind:      kind,
			Assistant: a.Assistant,
			Records:   svc,
		}))
	}
	a.Router = server.NewRouter(deps)
}

const healthProbeKey = "health-probe"

func (a *App) buildHealth() *health.Service {
	svc := health.NewService(2 * time.Second)
	_, unconfigured := a.LLM.(llm.Unconfigured)
	svc.Info["storage"] = a.Backend
	svc.Info["ai"] = !unconfigured

	svc.Register("kv", func(ctx context.Context) error {
		_, err := a.KV.Get(ctx, healthProbeKey)
		if errors.Is(err, kv.ErrNotFound) {
			return nil
		}
		return err
	})
	if a.DB != nil {
		svc.Register("db", a.DB.PingContext)
	}
	if a.Redis != nil {
		svc.Register("redis", func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		})
	}
	return svc
}

// Start launches background work tied to ctx.
func (a *App) Start(ctx context.Context) {
	go a.Interviews.Run(ctx, interviewSweepGap)
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}
