package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`DROP TABLE IF EXISTS votes`,
		`DROP TABLE IF EXISTS vote_options`,
		`DROP TABLE IF EXISTS blacklisted_tokens`,
		`DROP TABLE IF EXISTS users`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}

	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL DEFAULT 'user',
			password_hash TEXT NOT NULL,
			vote_status BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS vote_options (
			id BIGSERIAL PRIMARY KEY,
			option_id TEXT NOT NULL UNIQUE,
			text TEXT NOT NULL,
			detail_text TEXT NOT NULL DEFAULT '',
			is_main BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		// Serializes idempotent seeding: at most one main option per
		// case-insensitive text. Free-text options are not constrained.
		`CREATE UNIQUE INDEX IF NOT EXISTS vote_options_main_text_key
			ON vote_options ((lower(text))) WHERE is_main`,

		// One ballot per user; submissions replace in place via upsert
		`CREATE TABLE IF NOT EXISTS votes (
			id BIGSERIAL PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE REFERENCES users(id),
			answer TEXT NOT NULL REFERENCES vote_options(option_id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE INDEX IF NOT EXISTS votes_answer_idx ON votes (answer)`,

		`CREATE TABLE IF NOT EXISTS blacklisted_tokens (
			token_hash TEXT PRIMARY KEY,
			expires_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec failed: %w", err)
		}
	}

	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	// Main options; the same idempotent insert the application runs at
	// startup
	mainOptions := []struct {
		text   string
		detail string
	}{
		{"Main option 1", "Its the first main option"},
		{"Main option 2", "Its the second main option"},
	}

	for _, opt := range mainOptions {
		_, err := conn.Exec(ctx, `
			INSERT INTO vote_options (option_id, text, detail_text, is_main)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT ((lower(text))) WHERE is_main DO NOTHING
		`, uuid.NewString(), opt.text, opt.detail)
		if err != nil {
			return fmt.Errorf("seed main option %q: %w", opt.text, err)
		}
	}

	// Bootstrap admin account
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = conn.Exec(ctx, `
		INSERT INTO users (id, name, email, role, password_hash)
		VALUES ($1, 'Admin', 'admin@example.com', 'admin', $2)
		ON CONFLICT (email) DO NOTHING
	`, uuid.NewString(), string(hash))
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	return nil
}
