package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	migration "github.com/Popolzen/linkguard/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DBConfig содержит конфигурацию для подключения к БД
type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// NewDBConfig создает конфигурацию БД со значениями пула по умолчанию
func NewDBConfig(dsn string) DBConfig {
	return DBConfig{
		DSN:             dsn,
		MaxOpenConns:    20,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// DataBase представляет подключение к базе данных
type DataBase struct {
	*sql.DB
	config DBConfig
}

// NewDataBase открывает пул соединений через драйвер pgx и проверяет связь
func NewDataBase(ctx context.Context, cfg DBConfig) (*DataBase, error) {
	conn, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть подключение: %w", err)
	}
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ошибка при подключении к БД: %w", err)
	}

	return &DataBase{DB: conn, config: cfg}, nil
}

// Migrate применяет миграции и возвращает версию схемы
func (d *DataBase) Migrate() (uint, error) {
	return migration.Up(d.DB)
}
