// Package app assembles the server from its parts and drives the CLI
// entry points.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emergent-labs/emergent-server/internal/activity"
	"github.com/emergent-labs/emergent-server/internal/config"
	"github.com/emergent-labs/emergent-server/internal/db"
	"github.com/emergent-labs/emergent-server/internal/http/api"
	"github.com/emergent-labs/emergent-server/internal/ledger"
	"github.com/emergent-labs/emergent-server/internal/seed"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Options configures the server entry points.
type Options struct {
	ConfigPath string
	Port       int
}

// RunServer opens the database, migrates, seeds, and serves the API until
// interrupted.
func RunServer(ctx context.Context, opts Options) error {
	conn, jwtCfg, errSetup := setup(ctx, opts)
	if errSetup != nil {
		return errSetup
	}

	if errSeed := seed.All(ctx, conn); errSeed != nil {
		return fmt.Errorf("seed defaults: %w", errSeed)
	}

	recorder := activity.NewRecorder(conn)
	defer recorder.Close()

	led := ledger.New(conn)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	api.RegisterRoutes(engine, conn, jwtCfg, led, recorder)

	addr := fmt.Sprintf(":%d", opts.Port)
	server := &http.Server{Addr: addr, Handler: engine}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server listening")
		if errServe := server.ListenAndServe(); errServe != nil && errServe != http.ErrServerClosed {
			errCh <- errServe
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case errServe := <-errCh:
		return fmt.Errorf("serve: %w", errServe)
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("shutdown: %w", errShutdown)
	}
	return nil
}

// RunMigrate opens the database and applies the schema.
func RunMigrate(ctx context.Context, opts Options) error {
	conn, errOpen := openDatabase(opts)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	log.Info("migrations applied")
	return nil
}

// RunSeed opens the database, applies the schema, and installs defaults.
func RunSeed(ctx context.Context, opts Options) error {
	conn, errOpen := openDatabase(opts)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errSeed := seed.All(ctx, conn); errSeed != nil {
		return fmt.Errorf("seed defaults: %w", errSeed)
	}
	log.Info("defaults seeded")
	return nil
}

// setup resolves configuration, opens the database, and applies the schema.
func setup(ctx context.Context, opts Options) (*gorm.DB, config.JWTConfig, error) {
	jwtCfg, errJWT := config.LoadJWTConfig(opts.ConfigPath)
	if errJWT != nil {
		return nil, config.JWTConfig{}, errJWT
	}
	conn, errOpen := openDatabase(opts)
	if errOpen != nil {
		return nil, config.JWTConfig{}, errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return nil, config.JWTConfig{}, errMigrate
	}
	return conn, jwtCfg, nil
}

// openDatabase resolves the DSN and connects.
func openDatabase(opts Options) (*gorm.DB, error) {
	dsn, errDSN := config.LoadDatabaseDSN(opts.ConfigPath)
	if errDSN != nil {
		return nil, errDSN
	}
	return db.Open(dsn)
}

// requestLogger emits one structured line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}
