// Package infra opens the connections shared by the api, consumers and
// showctl binaries and builds the service layer on top of them.
package infra

import (
	"fmt"
	"log/slog"

	"showpro/internal/cache"
	"showpro/internal/config"
	"showpro/internal/csvio"
	"showpro/internal/database"
	"showpro/internal/messaging"
	"showpro/internal/render"
	"showpro/internal/repository"
	"showpro/internal/search"
	"showpro/internal/service"
)

// Infra - подключения к внешним системам. NATS, Redis и Elasticsearch могут быть nil.
type Infra struct {
	DB    *database.DB
	NATS  *messaging.NATSClient
	Redis *cache.RedisClient
	ES    *search.ElasticsearchClient
	Repos *repository.Repositories
}

// Connect поднимает БД с миграциями и NATS; без них сервис не стартует.
// Redis и Elasticsearch подключаются по возможности.
func Connect(cfg *config.Config) (*Infra, error) {
	conns, err := ConnectDB(cfg)
	if err != nil {
		return nil, err
	}

	if err := conns.DB.RunMigrations(); err != nil {
		conns.Close()
		return nil, err
	}

	conns.NATS, err = messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		conns.Close()
		return nil, err
	}

	conns.ConnectCache(cfg)
	conns.ConnectSearch()
	return conns, nil
}

// ConnectDB - только база и репозитории
func ConnectDB(cfg *config.Config) (*Infra, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &Infra{DB: db, Repos: repository.NewRepositories(db)}, nil
}

// ConnectCache подключает Redis; при ошибке работаем без кеша
func (i *Infra) ConnectCache(cfg *config.Config) {
	if cfg.Redis.Addr == "" {
		return
	}
	rc, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, running without cache", "error", err)
		return
	}
	i.Redis = rc
}

// ConnectSearch подключает Elasticsearch, если он включен
func (i *Infra) ConnectSearch() {
	esCfg := config.LoadElasticsearchConfig()
	if !esCfg.Enabled {
		return
	}
	es, err := search.NewElasticsearchClient(esCfg)
	if err != nil {
		slog.Warn("Elasticsearch unavailable, search falls back to the database", "error", err)
		return
	}
	i.ES = es
}

// Services собирает сервисный слой поверх подключений
func (i *Infra) Services(cfg *config.Config) (*service.Services, error) {
	schema, err := loadSchema(cfg.Import.SchemaFile)
	if err != nil {
		return nil, err
	}

	deps := service.Deps{
		Repos:   i.Repos,
		Tx:      i.DB,
		Schema:  schema,
		Config:  cfg,
		Printer: render.NewPDFPrinter(cfg.Render.ChromeTimeout),
	}
	// интерфейсы заполняются только живыми клиентами, без typed nil
	if i.NATS != nil {
		deps.Publisher = i.NATS
	}
	if i.Redis != nil {
		deps.Roles = i.Redis
		deps.Dashboard = i.Redis
	}
	if i.ES != nil {
		deps.Search = i.ES
	}

	return service.NewServices(deps), nil
}

func loadSchema(path string) (*csvio.Schema, error) {
	if path == "" {
		return csvio.DefaultSchema()
	}
	schema, err := csvio.LoadSchema(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load import schema %s: %w", path, err)
	}
	slog.Info("Loaded import schema", "path", path, "tables", len(schema.Names()))
	return schema, nil
}

// Close закрывает все подключения
func (i *Infra) Close() error {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			slog.Error("Error closing Redis connection", "error", err)
		}
	}
	if i.NATS != nil {
		if err := i.NATS.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}
	return nil
}
