package db

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/platedrop/ordercore/pkg/config"
	"github.com/platedrop/ordercore/pkg/db/models"
	"github.com/platedrop/ordercore/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client wraps the local sqlite connection that backs cart persistence.
// The file is the device-scoped storage the cart survives restarts in;
// nothing in it is ever synced to the backend.
type Client struct {
	conn *gorm.DB
}

// New opens (or creates) the cart storage file and migrates its schema.
func New(ctx context.Context, cfg config.CartDBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("cart database path is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	gormCfg := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	}

	conn, err := gorm.Open(sqlite.Open(cfg.Path), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("opening cart db: %w", err)
	}

	if err := conn.AutoMigrate(&models.CartRecord{}, &models.CartLine{}); err != nil {
		return nil, fmt.Errorf("migrating cart schema: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "cart storage opened")
	}

	return &Client{conn: conn}, nil
}

// DB returns the underlying GORM connection.
func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close shuts down the pooled connections.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx executes fn inside a transaction, rolling back on error/panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := c.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
