package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	model "todo-service.com/todo-service/internal/models"
)

// Gateway owns the store connection and hands out one unit of work per
// operation.
type Gateway struct {
	db *gorm.DB
}

type Options struct {
	DSN          string
	MaxOpenConns int
	LogLevel     gormlogger.LogLevel
}

func Open(opts Options) (*Gateway, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = gormlogger.Silent
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(opts.DSN)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("db open failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle failed: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	return &Gateway{db: db}, nil
}

// sqliteDSN makes every transaction take the write lock at BEGIN so that
// concurrent sessions queue on the busy timeout instead of failing on a
// read-to-write lock upgrade.
func sqliteDSN(dsn string) string {
	params := []string{}
	if !strings.Contains(dsn, "_txlock=") {
		params = append(params, "_txlock=immediate")
	}
	if !strings.Contains(dsn, "_timeout=") {
		params = append(params, "_busy_timeout=5000")
	}
	if len(params) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// Migrate creates the todo table when absent. Safe to run on every start.
func (g *Gateway) Migrate(ctx context.Context) error {
	if err := g.db.WithContext(ctx).AutoMigrate(&model.Task{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Session runs fn inside a transaction bound to ctx. The transaction is
// committed when fn returns nil and rolled back on error or panic.
func (g *Gateway) Session(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func (g *Gateway) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (g *Gateway) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
