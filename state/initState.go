package state

import (
	"context"
	"crypto/rsa"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/config"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

type JwtSecret struct {
	SigningKey []byte
	Public     *rsa.PublicKey
}

type AppState struct {
	Ctx       context.Context
	Cancel    context.CancelFunc
	DB        *gorm.DB
	Redis     *redis.Client
	Mongo     *mongo.Client
	JwtSecret *JwtSecret
}

func InitAppState(ctx context.Context, cancel context.CancelFunc, cfg *config.AppConfig) (*AppState, error) {
	st := &AppState{Ctx: ctx, Cancel: cancel}

	dsn := cfg.DATABASE.Postgres.DSN
	if cfg.DATABASE.Driver == DriverSqlite {
		dsn = cfg.DATABASE.Sqlite.Path
	}

	db, _, err := InitDatabase(cfg.DATABASE.Driver, dsn, cfg.DATABASE.AutoMigrate)
	if err != nil {
		return nil, err
	}
	st.DB = db

	rdb, err := InitRedis(ctx, cfg.DATABASE.Redis.Addr, cfg.DATABASE.Redis.Password, cfg.DATABASE.Redis.DB)
	if err != nil {
		st.Close()
		return nil, err
	}
	st.Redis = rdb

	mongoClient, err := InitMongo(ctx, cfg.DATABASE.Mongo.Url)
	if err != nil {
		st.Close()
		return nil, err
	}
	st.Mongo = mongoClient

	jwtSecret, err := InitSecret(cfg.JWT.SigningKey, cfg.JWT.PublicKeyPath)
	if err != nil {
		st.Close()
		return nil, err
	}
	st.JwtSecret = jwtSecret

	return st, nil
}

func (a *AppState) Close() {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			log.Info().Msg("Closing database connection...")
			sqlDB.Close()
		}
	}

	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("Closing MongoDB client...")
		if err := a.Mongo.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect MongoDB client")
		}
	}

	if a.Redis != nil {
		log.Info().Msg("Closing Redis client...")
		if err := a.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis client")
		}
	}
}
