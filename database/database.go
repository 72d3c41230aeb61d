// Package database opens the configured store and the Redis cache.
package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	config "github.com/anjiri1684/tutor_hunt/configs"
	"github.com/anjiri1684/tutor_hunt/cache"
	"github.com/anjiri1684/tutor_hunt/models"
	"github.com/anjiri1684/tutor_hunt/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

func ConnectPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:              false,
		SkipDefaultTransaction:   true,
		DisableNestedTransaction: true,
		TranslateError:           true,
		Logger:                   logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("✅ Database connected successfully")
	return db, nil
}

func MigratePostgres(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Tutor{}, &models.Booking{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("✅ Database migration successful")
	return nil
}

// ConnectMongo decodes nested documents as bson.M so booking details come
// back as plain maps.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Println("✅ Pinged your deployment. You successfully connected to MongoDB!")
	return client, nil
}

// OpenStore connects the backend named by settings.StoreDriver.
func OpenStore(ctx context.Context, settings *config.Settings) (repository.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*settings.DBTimeout)
	defer cancel()

	switch settings.StoreDriver {
	case DriverPostgres:
		db, err := ConnectPostgres(settings.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := MigratePostgres(db.WithContext(ctx)); err != nil {
			return nil, err
		}
		return repository.NewGormStore(db), nil

	case DriverMongo:
		client, err := ConnectMongo(ctx, settings.MongoURI)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureMongoIndexes(ctx, client, settings.MongoDatabase); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return repository.NewMongoStore(client, settings.MongoDatabase), nil

	case DriverMemory:
		log.Println("⚠️ Using the in-memory store; data is lost on restart.")
		return repository.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", settings.StoreDriver)
	}
}

// ConnectRedis returns a fail-safe cache even when Redis is down; an empty
// address disables caching.
func ConnectRedis(ctx context.Context, settings *config.Settings) *cache.Client {
	if settings.RedisAddr == "" {
		log.Println("⚠️ REDIS_ADDR not set, stats caching disabled.")
		return nil
	}

	client := cache.New(settings.RedisAddr, settings.RedisPassword, settings.RedisDB)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		log.Printf("⚠️ Redis unreachable at %s, stats are computed on every request until it returns: %v", settings.RedisAddr, err)
	} else {
		log.Println("✅ Redis connected successfully")
	}
	return client
}
