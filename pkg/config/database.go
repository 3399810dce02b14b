package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Databases bundles the open database handles.
type Databases struct {
	Postgres *gorm.DB
	PgPool   *pgxpool.Pool
	Mongo    *mongo.Database

	mongoClient *mongo.Client
}

// InitDatabases opens PostgreSQL (through GORM plus a pgx pool for
// LISTEN/NOTIFY) and MongoDB. TranslateError is on so unique violations
// surface as gorm.ErrDuplicatedKey.
func InitDatabases(cfg *Config) (*Databases, error) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	log.Println("Connected to PostgreSQL")

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	log.Println("Connected to MongoDB")

	return &Databases{
		Postgres:    db,
		PgPool:      pool,
		Mongo:       client.Database(cfg.MongoDBName),
		mongoClient: client,
	}, nil
}

// Close releases all database handles.
func (d *Databases) Close() {
	d.PgPool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.mongoClient.Disconnect(ctx); err != nil {
		log.Printf("Failed to disconnect MongoDB: %v", err)
	}

	if sqlDB, err := d.Postgres.DB(); err == nil {
		sqlDB.Close()
	}
}
