package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"vrp-search-service/internal/adapters/cache"
	"vrp-search-service/internal/adapters/distance"
	"vrp-search-service/internal/adapters/repositories"
	"vrp-search-service/internal/api"
	"vrp-search-service/internal/config"
	"vrp-search-service/internal/platform/db"
	"vrp-search-service/internal/platform/metrics"
	"vrp-search-service/internal/ports"
	"vrp-search-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (files or Postgres, memory/Postgres/Redis
// stores, Euclidean or ORS matrices) behind ports and starts the HTTP server.
func main() {
	config.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}

	searchCfg, err := config.LoadSearchConfig(cfg.SearchConfigPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	metrics.RegisterDefault()

	var matrices ports.MatrixProvider = distance.NewEuclideanProvider()
	if cfg.ORSAPIKey != "" {
		// Instances without matrices are resolved over the road network.
		matrices, err = distance.NewORSMatrixProvider(cfg.ORSAPIKey)
		if err != nil {
			log.Fatal(err)
		}
	}

	var conn *sql.DB
	if cfg.DatabaseURL != "" {
		conn, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		if err := repositories.InitSchema(ctx, conn); err != nil {
			log.Fatal(err)
		}
	}

	var problems ports.ProblemRepository
	if conn != nil {
		problems = repositories.NewSQLInstanceRepository(conn, matrices)
	} else {
		problems = repositories.NewFileInstanceRepository(cfg.InstanceDir, matrices)
	}

	var store ports.SolutionStore
	switch cfg.SolutionStore {
	case config.StorePostgres:
		store = cache.NewSQLSolutionStore(conn)
	case config.StoreRedis:
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		defer rdb.Close()
		store = cache.NewRedisSolutionStore(rdb, cfg.SolutionTTL)
	default:
		store = cache.NewMemorySolutionStore()
	}

	router := api.NewRouter(api.Deps{
		Problems: problems,
		Store:    store,
		Solver:   services.NewSolver(problems, store),
		Defaults: searchCfg,
	})

	// Long write timeout: multi-start searches on large instances take a while.
	log.Printf("Server listening addr=:%s store=%s", cfg.Port, cfg.SolutionStore)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
