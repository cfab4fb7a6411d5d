package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"instructor-backend/internal/aiverify"
	"instructor-backend/internal/applications"
	"instructor-backend/internal/documents"
	"instructor-backend/internal/instructors"
	"instructor-backend/internal/notifications"
	"instructor-backend/internal/queue"
	"instructor-backend/internal/reviews"
	"instructor-backend/internal/shared/config"
	"instructor-backend/internal/shared/server"
	"instructor-backend/internal/shared/storage/db"
	"instructor-backend/internal/users"
)

// App holds shared dependencies for the api and worker binaries.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Queue  queue.Client

	UsersRepo        users.Repo
	ApplicationsRepo applications.Repo
	DocumentsRepo    documents.Repo
	ReviewsRepo      reviews.Repo
	InterviewsRepo   reviews.InterviewsRepo
	InstructorsRepo  instructors.Repo
	VerifyRepo       aiverify.Repo

	Notifier notifications.Notifier

	UsersSvc       *users.Service
	AppsSvc        *applications.Service
	DecisionsSvc   *applications.DecisionService
	DocumentsSvc   *documents.Service
	ReviewsSvc     *reviews.Service
	InstructorsSvc *instructors.Service
	VerifySvc      *aiverify.Service
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}

	if cfg.QueueURL != "" {
		queueClient, err := queue.NewSQSClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("build queue client: %w", err)
		}
		app.Queue = queueClient
	}

	if cfg.NATSURL != "" {
		notifier, err := notifications.NewNATSNotifier(cfg.NATSURL)
		if err != nil {
			if !isDevLike(cfg.Env) {
				return nil, fmt.Errorf("build notifier: %w", err)
			}
			log.Printf("bootstrap: NATS unavailable, recording notifications in memory: %v", err)
			app.Notifier = notifications.NewMemoryNotifier()
		} else {
			app.Notifier = notifier
		}
	} else {
		app.Notifier = notifications.NewMemoryNotifier()
	}

	buildRepos(app)
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:              cfg,
		UsersHandler:        users.NewHandler(app.UsersSvc),
		ApplicationsHandler: applications.NewHandler(app.AppsSvc, app.DecisionsSvc),
		AdminHandler:        applications.NewAdminHandler(app.AppsSvc, app.DecisionsSvc),
		DocumentsHandler:    documents.NewHandler(app.DocumentsSvc),
		ReviewsHandler:      reviews.NewHandler(app.ReviewsSvc),
		VerifyHandler:       aiverify.NewHandler(app.VerifySvc),
		InstructorsHandler:  instructors.NewHandler(app.InstructorsSvc),
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildRepos(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ApplicationsRepo = &applications.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.ReviewsRepo = &reviews.PGRepo{DB: app.DB}
		app.InterviewsRepo = &reviews.PGInterviewsRepo{DB: app.DB}
		app.InstructorsRepo = &instructors.PGRepo{DB: app.DB}
		app.VerifyRepo = &aiverify.PGRepo{DB: app.DB}
		return
	}
	app.UsersRepo = users.NewMemoryRepo()
	app.ApplicationsRepo = applications.NewMemoryRepo()
	app.DocumentsRepo = documents.NewMemoryRepo()
	app.ReviewsRepo = reviews.NewMemoryRepo()
	app.InterviewsRepo = reviews.NewMemoryInterviewsRepo()
	app.InstructorsRepo = instructors.NewMemoryRepo()
	app.VerifyRepo = aiverify.NewMemoryRepo()
}

func buildServices(app *App) {
	app.UsersSvc = users.NewService(app.UsersRepo)

	// Applications and documents reference each other through small
	// interfaces; construct first, connect after.
	app.AppsSvc = applications.NewService(app.ApplicationsRepo, app.UsersSvc, nil)
	app.DocumentsSvc = documents.NewService(app.DocumentsRepo, appGuard{app.AppsSvc}, app.AppsSvc)
	app.AppsSvc.Documents = app.DocumentsSvc

	var store applications.DecisionStore
	if app.DB != nil {
		store = &applications.PGDecisionStore{DB: app.DB}
	} else {
		store = &applications.MemoryDecisionStore{
			Apps:        app.ApplicationsRepo.(*applications.MemoryRepo),
			Reviews:     app.ReviewsRepo,
			Users:       app.UsersRepo,
			Instructors: app.InstructorsRepo,
		}
	}
	app.DecisionsSvc = applications.NewDecisionService(app.AppsSvc, store, app.ReviewsRepo, app.Notifier)

	app.ReviewsSvc = &reviews.Service{Repo: app.ReviewsRepo, Interviews: app.InterviewsRepo, Apps: appChecker{app.AppsSvc}}
	app.InstructorsSvc = instructors.NewService(app.InstructorsRepo)

	var scorer aiverify.Scorer = aiverify.HeuristicScorer{}
	if app.Config.ScorerProvider == "http" && app.Config.ScorerBaseURL != "" {
		scorer = aiverify.NewHTTPScorer(app.Config.ScorerBaseURL)
	}
	app.VerifySvc = aiverify.NewService(app.VerifyRepo, app.AppsSvc, app.DocumentsSvc, scorer, app.Queue)
}

// appGuard adapts the applications service to the documents package's
// ownership interface, translating its sentinel errors.
type appGuard struct {
	apps *applications.Service
}

func (g appGuard) OwnerOf(ctx context.Context, applicationID string) (string, string, error) {
	owner, status, err := g.apps.OwnerOf(ctx, applicationID)
	if errors.Is(err, applications.ErrNotFound) {
		return "", "", documents.ErrNotFound
	}
	return owner, status, err
}

// appChecker adapts the applications service to the reviews package's
// existence check.
type appChecker struct {
	apps *applications.Service
}

func (g appChecker) Exists(ctx context.Context, applicationID string) (bool, error) {
	_, _, err := g.apps.OwnerOf(ctx, applicationID)
	if errors.Is(err, applications.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func isDevLike(env string) bool {
	return env == "dev" || env == "local"
}
