// Package db stores generated bios. PostgreSQL is used when a database URL is
// configured; otherwise generations are kept in memory.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/bio-generator/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// Store records generations and reports totals.
type Store interface {
	RecordGeneration(ctx context.Context, gen types.Generation) error
	// CountBios returns the number of bios generated so far.
	CountBios(ctx context.Context) (int64, error)
	// RecentGenerations returns up to limit generations, newest first.
	RecentGenerations(ctx context.Context, limit int) ([]types.Generation, error)
	Close()
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and ensures the schema exists.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// RecordGeneration inserts a generation
func (db *DB) RecordGeneration(ctx context.Context, gen types.Generation) error {
	biosJSON, err := json.Marshal(gen.Bios)
	if err != nil {
		return fmt.Errorf("failed to marshal bios: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO generations (id, prompt, vibe, location, bios, bio_count, degraded, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		gen.ID, gen.Prompt, string(gen.Vibe), gen.Location, biosJSON, len(gen.Bios), gen.Degraded, gen.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// CountBios returns the total number of bios generated
func (db *DB) CountBios(ctx context.Context) (int64, error) {
	var total int64
	err := db.pool.QueryRow(ctx, `SELECT COALESCE(SUM(bio_count), 0) FROM generations`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count bios: %w", err)
	}
	return total, nil
}

// RecentGenerations lists the newest generations
func (db *DB) RecentGenerations(ctx context.Context, limit int) ([]types.Generation, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, prompt, vibe, location, bios, degraded, created_at
		 FROM generations ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	var gens []types.Generation
	for rows.Next() {
		var gen types.Generation
		var vibe string
		var biosJSON []byte
		if err := rows.Scan(&gen.ID, &gen.Prompt, &vibe, &gen.Location, &biosJSON, &gen.Degraded, &gen.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		gen.Vibe = types.Vibe(vibe)
		if err := json.Unmarshal(biosJSON, &gen.Bios); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bios: %w", err)
		}
		gens = append(gens, gen)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generations: %w", err)
	}
	return gens, nil
}
