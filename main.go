package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/amichai1/task-manager-app/config"
	activitymod "github.com/amichai1/task-manager-app/modules/activity"
	apimod "github.com/amichai1/task-manager-app/modules/api"
	authmod "github.com/amichai1/task-manager-app/modules/auth"
	cachemod "github.com/amichai1/task-manager-app/modules/cache"
	ratelimitmod "github.com/amichai1/task-manager-app/modules/ratelimit"
	storagemod "github.com/amichai1/task-manager-app/modules/storage"
	taskmod "github.com/amichai1/task-manager-app/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log.Println("=== Task Manager API ===")
	log.Printf("Environment: %s", cfg.Env)
	log.Printf("HTTP Port: %d", cfg.Port)
	log.Printf("Database: %s", cfg.Database.Driver)
	if cfg.Redis.Enabled() {
		log.Printf("Redis: %s (cache TTL %s)", cfg.Redis.Addr, cfg.Redis.CacheTTL)
	} else {
		log.Println("Redis: disabled (no stats cache, no rate limiting)")
	}

	ctx := context.Background()
	db, err := storagemod.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel(cfg.LogLevel)),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	storageModule := storagemod.NewModule(db, cfg.Database.Driver)
	checkers := []apimod.HealthChecker{storageModule}

	var taskOpts []taskmod.Option
	var cacheModule *cachemod.Module
	if cfg.Redis.Enabled() {
		cacheModule = cachemod.NewModule(cfg.Redis)
		taskOpts = append(taskOpts, taskmod.WithStatsCache(cacheModule.Cache()))
		checkers = append(checkers, cacheModule)
	}

	taskModule := taskmod.NewModule(db, taskOpts...)
	authModule := authmod.NewModule(db, authmod.JWTConfig{
		SecretKey: cfg.JWT.Secret,
		Expire:    cfg.JWT.Expire,
		Issuer:    cfg.JWT.Issuer,
	})
	activityModule := activitymod.NewModule(activitymod.NewMetrics(prometheus.DefaultRegisterer), app.Logger())
	checkers = append(checkers, authModule, taskModule, activityModule)

	var apiOpts []apimod.Option
	var rateLimitModule *ratelimitmod.Module
	if cfg.Redis.Enabled() {
		rateLimitModule = ratelimitmod.NewModule(cfg.Redis, cfg.RateLimit, app.Logger())
		apiOpts = append(apiOpts, apimod.WithRateLimits(rateLimitModule.General(), rateLimitModule.Auth()))
		checkers = append(checkers, rateLimitModule)
	}
	apiOpts = append(apiOpts, apimod.WithHealthChecks(checkers...))
	apiModule := apimod.NewModule(cfg, app.Logger(), apiOpts...)

	modules := []mono.Module{storageModule}
	if cacheModule != nil {
		modules = append(modules, cacheModule)
	}
	modules = append(modules, taskModule, authModule, activityModule)
	if rateLimitModule != nil {
		modules = append(modules, rateLimitModule)
	}
	modules = append(modules, apiModule)

	for _, m := range modules {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register %s module: %v", m.Name(), err)
		}
	}

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	log.Println("=== Application Started ===")
	log.Printf("API available at http://localhost:%d/api", cfg.Port)
	log.Println("Endpoints:")
	log.Println("  POST   /api/users/register     - Register")
	log.Println("  POST   /api/users/login        - Login")
	log.Println("  GET    /api/users/profile      - Current user")
	log.Println("  GET    /api/users/activity     - Recent activity")
	log.Println("  GET    /api/tasks              - List tasks (page, limit, completed, priority, search)")
	log.Println("  POST   /api/tasks              - Create task")
	log.Println("  GET    /api/tasks/stats        - Task statistics")
	log.Println("  GET    /api/tasks/:id          - Get task")
	log.Println("  PUT    /api/tasks/:id          - Update task")
	log.Println("  PATCH  /api/tasks/:id/toggle   - Toggle completion")
	log.Println("  DELETE /api/tasks/:id          - Delete task")
	log.Println("  GET    /api/health             - Health check")
	log.Println("  GET    /metrics                - Prometheus metrics")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func logLevel(level string) mono.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return mono.LogLevelDebug
	case "warn", "warning":
		return mono.LogLevelWarn
	case "error":
		return mono.LogLevelError
	default:
		return mono.LogLevelInfo
	}
}
