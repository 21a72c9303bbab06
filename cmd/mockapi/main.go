// Command mockapi runs a local stand-in for the slotlist backend: Steam login,
// account endpoints and the community API, signing real session tokens.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/slotlist/slotlist/frontend/go-client/handlers"
	"github.com/slotlist/slotlist/frontend/go-client/internal/communities"
	"github.com/slotlist/slotlist/frontend/go-client/internal/communities/repository"
	"github.com/slotlist/slotlist/frontend/go-client/internal/config"
	"github.com/slotlist/slotlist/frontend/go-client/internal/database"
	"github.com/slotlist/slotlist/frontend/go-client/internal/users"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/logger"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	seed := flag.Bool("seed", true, "create a demo community with missions")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	if cfg.Mock.JWTSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Fatalf("generate jwt secret: %v", err)
		}
		cfg.Mock.JWTSecret = hex.EncodeToString(buf)
		logger.Warn("JWT_SECRET not set, using a random secret; tokens do not survive restarts")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if addr := cfg.Redis.RedisAddress(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis %s unreachable, using in-memory rate limiter: %v", addr, err)
			_ = rdb.Close()
			rdb = nil
		} else {
			logger.Infof("connected to redis at %s", addr)
			defer rdb.Close()
		}
	}

	usersSvc := users.NewService(users.NewMemoryUserRepository())
	if cfg.MongoDB.URI != "" {
		if client, err := connectMongo(ctx, cfg); err != nil {
			logger.Warnf("could not connect to MongoDB, keeping users in memory: %v", err)
		} else {
			defer func() { _ = client.Disconnect(context.Background()) }()
			usersSvc = users.NewService(users.NewMongoUserRepository(client.Database(cfg.MongoDB.Database).Collection("users")))
			logger.Infof("users stored in MongoDB database %s", cfg.MongoDB.Database)
		}
	}

	repo := repository.NewMemoryRepo()
	if *seed {
		if err := seedDemo(repo); err != nil {
			logger.Warnf("seed demo data: %v", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterServerCollectors(reg)

	gin.SetMode(gin.ReleaseMode)
	r := handlers.NewRouter(handlers.Deps{Config: cfg, Users: usersSvc, Communities: repo, Redis: rdb, Gatherer: reg})

	srv := &http.Server{Addr: cfg.Mock.Address(), Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("mock API listening on %s (redis=%v mongo=%v)", srv.Addr, rdb != nil, cfg.MongoDB.URI != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// connectMongo retries with backoff to tolerate containers starting together.
func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	const maxAttempts = 5
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func seedDemo(repo *repository.MemoryRepo) error {
	leader := communities.Member{UID: "00000000-0000-0000-0000-000000000001", Nickname: "Slotlist Staff"}
	if _, err := repo.Create(&communities.Community{
		Slug:    "slotlist",
		Name:    "Slotlist Community",
		Tag:     "SL",
		Website: "https://slotlist.info",
	}, leader); err != nil {
		return err
	}
	start := time.Now().UTC().Truncate(time.Hour).Add(48 * time.Hour)
	for i, title := range []string{"Operation Kingfisher", "Operation Long Night", "Training: Helicopter Basics"} {
		err := repo.AddMission("slotlist", communities.Mission{
			Slug:      fmt.Sprintf("demo-mission-%d", i+1),
			Title:     title,
			StartTime: start.Add(time.Duration(i) * 7 * 24 * time.Hour),
			Creator:   leader,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
