package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/chofys/petshop/internal/config"
	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

// NewConnection opens the shop database pool. The first ping is retried
// with a growing pause, up to cfg.ConnectAttempts times, so the API can
// start alongside its database.
func NewConnection(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	for i := 1; ; i++ {
		err = ping(db)
		if err == nil {
			return db, nil
		}
		if i >= attempts {
			break
		}
		log.Printf("Database not ready (attempt %d/%d): %v", i, attempts, err)
		time.Sleep(time.Duration(i) * time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("ping database after %d attempts: %w", attempts, err)
}

func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return db.PingContext(ctx)
}
