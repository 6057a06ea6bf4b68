package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS books (
			id VARCHAR(50) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			author VARCHAR(255) NOT NULL,
			condition VARCHAR(50) NOT NULL DEFAULT 'good',
			price DECIMAL(10, 2) NOT NULL,
			daily_rate DECIMAL(10, 2) NOT NULL DEFAULT 0,
			weekly_rate DECIMAL(10, 2) NOT NULL DEFAULT 0,
			seller_id VARCHAR(50) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			status VARCHAR(20) NOT NULL,
			payment_method VARCHAR(20) NOT NULL,
			promo_code VARCHAR(50),
			delivery_address TEXT NOT NULL DEFAULT '',
			subtotal DECIMAL(10, 2) NOT NULL,
			discount DECIMAL(10, 2) NOT NULL DEFAULT 0,
			tax DECIMAL(10, 2) NOT NULL DEFAULT 0,
			shipping DECIMAL(10, 2) NOT NULL DEFAULT 0,
			total_amount DECIMAL(10, 2) NOT NULL,
			order_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS order_lines (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			book_id VARCHAR(50) NOT NULL,
			line_type VARCHAR(20) NOT NULL,
			title VARCHAR(255) NOT NULL,
			unit_amount DECIMAL(10, 2) NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			duration_days INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS rentals (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			book_id VARCHAR(50) NOT NULL,
			title VARCHAR(255) NOT NULL,
			weekly_rate DECIMAL(10, 2) NOT NULL,
			duration_weeks INTEGER NOT NULL,
			start_date TIMESTAMP NOT NULL,
			due_date TIMESTAMP NOT NULL,
			status VARCHAR(20) NOT NULL,
			seller_id VARCHAR(50) NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_order_lines_order_id ON order_lines(order_id);
		CREATE INDEX IF NOT EXISTS idx_rentals_order_id ON rentals(order_id);
		CREATE INDEX IF NOT EXISTS idx_rentals_status ON rentals(status);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedBooks inserts test catalogue data into the database.
func SeedBooks(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	books := []struct {
		id         string
		title      string
		author     string
		price      float64
		dailyRate  float64
		weeklyRate float64
	}{
		{"B001", "Dune", "Frank Herbert", 12.99, 1.99, 5.99},
		{"B002", "Middlemarch", "George Eliot", 21.99, 0, 4.99},
		{"B003", "The Dispossessed", "Ursula K. Le Guin", 15.99, 1.49, 6.49},
		{"B004", "Beloved", "Toni Morrison", 18.50, 2.49, 9.99},
		{"B005", "Kindred", "Octavia Butler", 14.25, 1.25, 4.75},
	}

	for _, b := range books {
		_, err := pool.Exec(ctx,
			`INSERT INTO books (id, title, author, condition, price, daily_rate, weekly_rate, seller_id)
			 VALUES ($1, $2, $3, 'good', $4, $5, $6, 'S001')`,
			b.id, b.title, b.author, b.price, b.dailyRate, b.weeklyRate,
		)
		if err != nil {
			t.Fatalf("failed to seed book %s: %v", b.id, err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"rentals", "order_lines", "orders", "books"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
