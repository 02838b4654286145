package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the connection of the configured store driver. Exactly one of
// Mongo and Postgres is set.
type DB struct {
	Mongo    *mongo.Client
	Database *mongo.Database
	Postgres *gorm.DB
	log      logrus.FieldLogger
}

// InitDB connects to the store selected by STORE_DRIVER.
func InitDB(ctx context.Context, cfg *Config, log logrus.FieldLogger) (*DB, error) {
	db := &DB{log: log}
	switch cfg.StoreDriver {
	case StorePostgres:
		pg, err := initPostgres(cfg.PostgresUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		db.Postgres = pg
		log.Info("Successfully connected to PostgreSQL")
	default:
		client, err := initMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		db.Mongo = client
		db.Database = client.Database(cfg.MongoDatabase)
		log.WithField("database", cfg.MongoDatabase).Info("Successfully connected to MongoDB")
	}
	return db, nil
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Ping checks the active store, used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	if db.Mongo != nil {
		return db.Mongo.Ping(ctx, readpref.Primary())
	}
	return fmt.Errorf("no store configured")
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			db.log.WithError(err).Error("Error getting SQL DB from GORM")
		} else if err := sqlDB.Close(); err != nil {
			db.log.WithError(err).Error("Error closing PostgreSQL connection")
		} else {
			db.log.Info("PostgreSQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			db.log.WithError(err).Error("Error closing MongoDB connection")
		} else {
			db.log.Info("MongoDB connection closed")
		}
	}
}
