package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"auvlab.xyz/triton-com-server/pkg/auv"
	"auvlab.xyz/triton-com-server/pkg/common"
	"auvlab.xyz/triton-com-server/pkg/db"
	triHttp "auvlab.xyz/triton-com-server/pkg/http"
)

func main() {
	var err error

	if err = godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	var dbInstance *db.DB
	if databaseURL := strings.TrimSpace(os.Getenv(common.EnvKeyDatabaseURL)); databaseURL != "" {
		dbInstance = db.GetInstance(db.UsePostgresDialector(databaseURL))
	} else {
		switch os.Getenv(common.EnvKeyTritonDBType) {
		case "file":
			dbInstance = db.GetInstance(db.UseSqliteDialector())
		case "memory":
			dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
		default:
			log.Fatal("Set DATABASE_URL, or TRITON_DB_TYPE to file|memory for development")
		}
	}
	dbInstance.SetPoolSize(common.EnvInt(common.EnvKeyDBPoolSize, 20))

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyTritonHttpHostPort))
	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	var defaultRate float64
	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyTritonDefaultRate), 64); err != nil {
		defaultRate = 10
	}
	defaultBurst := common.EnvInt(common.EnvKeyTritonDefaultBurst, 20)

	logger := common.GetLogger()

	auvCore := auv.AUV{
		Db:  *dbInstance,
		Cfg: auv.ConfigFromEnv(),
	}
	auvCore.WithAllServices()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := auv.NewSweeper(&auvCore, auvCore.Cfg.SweepPeriod)
	go sweeper.Run(ctx)

	rs := &triHttp.RestfulServer{
		Server:            gin.Default(),
		Auv:               &auvCore,
		RateLimiterStore:  auv.NewRateLimiterStore(rate.Limit(defaultRate), defaultBurst),
		AdminResetEnabled: common.EnvBool(common.EnvKeyAdminResetEnabled, false),
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.Float64("default_rate", defaultRate),
		zap.Int("default_burst", defaultBurst),
		zap.Duration("command_ttl", auvCore.Cfg.CommandTTL),
		zap.Duration("sweep_period", auvCore.Cfg.SweepPeriod))

	srv := &http.Server{Addr: httpHostPort, Handler: rs.Server}
	go func() {
		logger.Info("Starting HTTP server on: " + httpHostPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed to serve: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}
