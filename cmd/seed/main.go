// Package main provides a CLI tool that creates the database schema and
// optionally seeds a demo business with one branch, one emission point and
// a bootstrapped invoice sequence.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"

	"facturador/internal/domain/auth"
	"facturador/internal/domain/block"
	"facturador/internal/domain/catalogs/branch"
	"facturador/internal/domain/catalogs/business"
	"facturador/internal/domain/catalogs/point"
	"facturador/internal/domain/sequence"
	"facturador/internal/infrastructure/storage/postgres"
	"facturador/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS businesses (
		id UUID PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		trade_name TEXT,
		email TEXT,
		phone TEXT,
		head_office_address TEXT,
		environment TEXT NOT NULL DEFAULT 'TEST',
		onboarding_status TEXT NOT NULL DEFAULT 'DRAFT',
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS user_business (
		user_id UUID NOT NULL REFERENCES users(id),
		business_id UUID NOT NULL REFERENCES businesses(id),
		role TEXT NOT NULL DEFAULT 'ADMIN',
		PRIMARY KEY (user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS branches (
		id UUID PRIMARY KEY,
		business_id UUID NOT NULL REFERENCES businesses(id),
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT,
		city TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (business_id, code)
	)`,

	`CREATE TABLE IF NOT EXISTS emission_points (
		id UUID PRIMARY KEY,
		business_id UUID NOT NULL REFERENCES businesses(id),
		branch_id UUID NOT NULL REFERENCES branches(id),
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (branch_id, code)
	)`,

	`CREATE TABLE IF NOT EXISTS sequences (
		id UUID PRIMARY KEY,
		business_id UUID NOT NULL REFERENCES businesses(id),
		branch_id UUID NOT NULL REFERENCES branches(id),
		point_id UUID NOT NULL REFERENCES emission_points(id),
		doc_type TEXT NOT NULL,
		series TEXT NOT NULL,
		current_number BIGINT NOT NULL DEFAULT 0,
		padding INTEGER NOT NULL DEFAULT 9,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (business_id, point_id, doc_type)
	)`,

	`CREATE TABLE IF NOT EXISTS sequence_blocks (
		id UUID PRIMARY KEY,
		business_id UUID NOT NULL REFERENCES businesses(id),
		sequence_id UUID NOT NULL REFERENCES sequences(id),
		point_id UUID NOT NULL REFERENCES emission_points(id),
		start_number BIGINT NOT NULL,
		end_number BIGINT NOT NULL,
		next_number BIGINT NOT NULL,
		status TEXT NOT NULL DEFAULT 'AVAILABLE',
		device_id TEXT NOT NULL DEFAULT 'SYSTEM',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (start_number <= end_number),
		CHECK (next_number >= start_number),
		CHECK (next_number <= end_number + 1)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sequence_blocks_lookup
		ON sequence_blocks (business_id, sequence_id, status)`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		id UUID PRIMARY KEY,
		business_id UUID NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id UUID NOT NULL,
		action TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		payload JSONB,
		payload_compressed BYTEA,
		compression_algo TEXT NOT NULL DEFAULT 'none',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalw("failed to apply schema", "error", err)
		}
	}
	log.Info("schema applied")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemo(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedDemo creates a demo user, business, branch, emission point, invoice
// sequence and a bootstrap block. Safe to re-run.
func seedDemo(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	email := getEnv("DEMO_EMAIL", "demo@facturador.ec")
	password := getEnv("DEMO_PASSWORD", "Demo1234!")

	var userID string
	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		user, err := auth.NewUser(email, password)
		if err != nil {
			return err
		}
		_, err = pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, is_active, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			user.ID, user.Email, user.PasswordHash, user.IsActive, user.CreatedAt)
		if err != nil {
			return err
		}
		userID = user.ID.String()
		log.Infow("demo user created", "email", email)
	} else if err != nil {
		return err
	} else {
		log.Infow("demo user exists", "email", email)
		return nil
	}

	b := business.NewBusiness("0992877878001", "Demo Comercial S.A.")
	_, err = pool.Exec(ctx,
		`INSERT INTO businesses (id, code, name, environment, onboarding_status, deletion_mark, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.Code, b.Name, b.Environment, b.OnboardingStatus, b.DeletionMark, b.Version, b.CreatedAt)
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO user_business (user_id, business_id, role) VALUES ($1, $2, $3)`,
		userID, b.ID, business.RoleAdmin); err != nil {
		return err
	}

	br := branch.NewBranch(b.ID, "001", "Matriz")
	_, err = pool.Exec(ctx,
		`INSERT INTO branches (id, business_id, code, name, is_active, deletion_mark, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		br.ID, br.BusinessID, br.Code, br.Name, br.IsActive, br.DeletionMark, br.Version, br.CreatedAt)
	if err != nil {
		return err
	}

	pt := point.NewEmissionPoint(b.ID, br.ID, "001", "Caja principal")
	_, err = pool.Exec(ctx,
		`INSERT INTO emission_points (id, business_id, branch_id, code, name, is_active, deletion_mark, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pt.ID, pt.BusinessID, pt.BranchID, pt.Code, pt.Name, pt.IsActive, pt.DeletionMark, pt.Version, pt.CreatedAt)
	if err != nil {
		return err
	}

	seq := sequence.NewSequence(b.ID, br.ID, pt.ID, sequence.DocTypeInvoice,
		sequence.Series(br.Code, pt.Code))
	seq.CurrentNumber = block.BootstrapSize
	_, err = pool.Exec(ctx,
		`INSERT INTO sequences (id, business_id, branch_id, point_id, doc_type, series, current_number, padding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		seq.ID, seq.BusinessID, seq.BranchID, seq.PointID, seq.DocType,
		seq.Series, seq.CurrentNumber, seq.Padding, seq.CreatedAt)
	if err != nil {
		return err
	}

	blk := block.NewBlock(b.ID, seq.ID, pt.ID, 1, block.BootstrapSize, block.SystemDevice)
	_, err = pool.Exec(ctx,
		`INSERT INTO sequence_blocks (id, business_id, sequence_id, point_id, start_number, end_number, next_number, status, device_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		blk.ID, blk.BusinessID, blk.SequenceID, blk.PointID,
		blk.StartNumber, blk.EndNumber, blk.NextNumber,
		blk.Status, blk.DeviceID, blk.CreatedAt)
	if err != nil {
		return err
	}

	log.Infow("demo business seeded",
		"business_id", b.ID.String(),
		"series", seq.Series,
		"block_range", fmt.Sprintf("[%d,%d]", blk.StartNumber, blk.EndNumber))

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
