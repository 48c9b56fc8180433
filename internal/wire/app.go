package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	memcache "github.com/omarsel/bidworks/internal/adapter/memory"
	pgdb "github.com/omarsel/bidworks/internal/adapter/postgres"
	pgbid "github.com/omarsel/bidworks/internal/adapter/postgres/bid"
	pgeventbus "github.com/omarsel/bidworks/internal/adapter/postgres/eventbus"
	pgledger "github.com/omarsel/bidworks/internal/adapter/postgres/ledger"
	pglocker "github.com/omarsel/bidworks/internal/adapter/postgres/locker"
	pgtask "github.com/omarsel/bidworks/internal/adapter/postgres/task"
	rediscache "github.com/omarsel/bidworks/internal/adapter/redis"
	"github.com/omarsel/bidworks/internal/auth"
	portcache "github.com/omarsel/bidworks/internal/port/cache"
	assignsvc "github.com/omarsel/bidworks/internal/service/assignment"
	biddingsvc "github.com/omarsel/bidworks/internal/service/bidding"
	taskssvc "github.com/omarsel/bidworks/internal/service/tasks"
	"github.com/omarsel/bidworks/internal/transport"
	providerhandler "github.com/omarsel/bidworks/internal/transport/provider"
	taskhandler "github.com/omarsel/bidworks/internal/transport/task"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Pool      *pgxpool.Pool
	Server    *http.Server
	TaskSvc   *taskssvc.Service
	AssignSvc *assignsvc.Service
}

// Build is the composition root: the only place concrete types are wired to
// their interface dependencies.
func Build(ctx context.Context) (*App, error) {
	// ── Database ─────────────────────────────────────────────────────────────
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	pool, err := pgdb.Connect(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// ── Adapters ─────────────────────────────────────────────────────────────
	taskRepo := pgtask.New(pool)
	bidRepo := pgbid.New(pool)
	coins := pgledger.New(pool)
	eventBus := pgeventbus.New(pool)
	locker := pglocker.New(pool)

	// Redis keeps cached task reads coherent across processes; without it the
	// per-process memory cache is enough for a single instance.
	var taskCache portcache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		taskCache, err = rediscache.NewCache(ctx, addr)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
	} else {
		taskCache = memcache.NewCache()
	}

	// ── Auth ─────────────────────────────────────────────────────────────────
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		pool.Close()
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	authMgr := auth.NewManager(secret, "bidworks", envDuration("TOKEN_TTL_SECONDS", 24*time.Hour))

	// ── Services ─────────────────────────────────────────────────────────────
	taskSvc := taskssvc.NewService(taskRepo, eventBus, taskCache)
	biddingSvc := biddingsvc.NewService(bidRepo, coins, eventBus)
	assignSvc := assignsvc.NewService(taskRepo, bidRepo, eventBus, locker, taskCache)

	// ── Transport ─────────────────────────────────────────────────────────────
	router := transport.NewRouter(ctx, authMgr, eventBus,
		func(api *gin.RouterGroup, authn gin.HandlerFunc) {
			taskhandler.Register(api.Group("/tasks"), taskSvc, biddingSvc, assignSvc, authn)
		},
		func(api *gin.RouterGroup, authn gin.HandlerFunc) {
			providerhandler.Register(api.Group("/providers"), biddingSvc, authn)
		},
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	slog.Info("application wired", "port", port)

	app := &App{
		Pool:      pool,
		Server:    server,
		TaskSvc:   taskSvc,
		AssignSvc: assignSvc,
	}

	// ── Deadline Timers + Periodic Sweep ─────────────────────────────────────
	startSweeper(ctx, app, taskRepo, eventBus)

	return app, nil
}
