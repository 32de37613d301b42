package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"resumehub/internal/growhire"
	"resumehub/internal/resumes"
	"resumehub/internal/settings"
	"resumehub/internal/shared/config"
	"resumehub/internal/shared/server"
	"resumehub/internal/shared/storage/db"
	"resumehub/internal/shared/storage/object"
	localstore "resumehub/internal/shared/storage/object/local"
	s3store "resumehub/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Settings        *settings.Store
	ResumesRepo     resumes.Repo
	ResumesService  *resumes.Service
	ResumesHandler  *resumes.Handler
	SettingsHandler *settings.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	settingsStore := settings.NewStore(cfg.SettingsFile)
	if err := settingsStore.Load(); err != nil {
		return nil, err
	}
	seedSettings(settingsStore, cfg)

	var repo resumes.Repo
	if sqlDB != nil {
		repo = &resumes.PGRepo{DB: sqlDB}
	} else {
		repo = resumes.NewMemoryRepo()
	}

	svc := &resumes.Service{
		Repo:      repo,
		Store:     store,
		Forwarder: growhire.NewClient(),
		Settings:  settingsStore,
	}

	app := &App{
		Config:          cfg,
		DB:              sqlDB,
		Store:           store,
		Settings:        settingsStore,
		ResumesRepo:     repo,
		ResumesService:  svc,
		ResumesHandler:  resumes.NewHandler(svc),
		SettingsHandler: settings.NewHandler(settingsStore),
	}

	localFilesDir := ""
	if cfg.ObjectStoreType != "s3" {
		localFilesDir = cfg.LocalStoreDir
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		ResumeHandler:   app.ResumesHandler,
		SettingsHandler: app.SettingsHandler,
		LocalFilesDir:   localFilesDir,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID, cfg.S3PublicBaseURL)
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicFileBaseURL), nil
	}
}

// seedSettings fills forwarding defaults from the environment without
// overwriting values an operator already saved.
func seedSettings(store *settings.Store, cfg config.Config) {
	if err := store.SetDefault(settings.KeyCookie, cfg.GrowHireCookie); err != nil {
		log.Printf("bootstrap: seed settings: %v", err)
	}
	if err := store.SetDefault(settings.KeyJobID, cfg.GrowHireJobID); err != nil {
		log.Printf("bootstrap: seed settings: %v", err)
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
