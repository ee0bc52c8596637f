package test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PostgresSetup struct {
	ConnStr string
	cleanup func()
}

func (p *PostgresSetup) Cleanup() {
	p.cleanup()
}

func SetupPostgres(ctx context.Context, t *testing.T) *PostgresSetup {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("fumarket"),
		postgres.WithUsername("fumarket"),
		postgres.WithPassword("fumarket"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := runMigrations(connStr); err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	}

	return &PostgresSetup{ConnStr: connStr, cleanup: cleanup}
}

func runMigrations(connStr string) error {
	migrationsPath := getMigrationsPath()

	m, err := migrate.New(migrationsPath, connStr)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func getMigrationsPath() string {
	_, filename, _, _ := runtime.Caller(0)
	testDir := filepath.Dir(filename)
	projectRoot := filepath.Dir(testDir)
	migrationsDir := filepath.Join(projectRoot, "migrations")
	return "file://" + migrationsDir
}

func SetupKafka(ctx context.Context, t *testing.T) ([]string, func()) {
	t.Helper()

	container, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.8.0",
		kafka.WithClusterID("test-cluster"),
	)
	if err != nil {
		t.Fatalf("failed to start kafka container: %v", err)
	}

	brokers, err := container.Brokers(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get kafka brokers: %v", err)
	}

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers, cleanup
}

func OpenDB(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	return db, nil
}

// Fixtures seeds the handful of rows the integration suite needs and
// returns the generated ids.
type Fixtures struct {
	BuyerID    int64
	OwnerID    int64
	ShopID     int64
	BannedShop int64
	ItemIDs    []int64
}

func SeedMarketplace(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{}

	mustScan := func(query string, args []any, dest ...any) {
		t.Helper()
		if err := db.QueryRow(query, args...).Scan(dest...); err != nil {
			t.Fatalf("failed to seed fixture: %v", err)
		}
	}

	mustScan(`INSERT INTO users (full_name, email) VALUES ('Buyer One', 'buyer@example.com') RETURNING id`, nil, &f.BuyerID)
	mustScan(`INSERT INTO users (full_name, email, phone) VALUES ('Shop Owner', 'owner@example.com', '555-0101') RETURNING id`, nil, &f.OwnerID)
	mustScan(`INSERT INTO shops (owner_id, name, description, address, status) VALUES ($1, 'Good Food', 'home cooking', 'Alpha Dorm', 'published') RETURNING id`,
		[]any{f.OwnerID}, &f.ShopID)
	mustScan(`INSERT INTO shops (owner_id, name, banned, status) VALUES ($1, 'Shady Shop', TRUE, 'published') RETURNING id`,
		[]any{f.OwnerID}, &f.BannedShop)

	items := []struct {
		name   string
		price  int64
		status string
	}{
		{"Banh mi", 1500, "for_sell"},
		{"Pho bo", 4000, "for_sell"},
		{"Sold out special", 9900, "not_for_sale"},
	}
	for _, item := range items {
		var id int64
		mustScan(`INSERT INTO items (shop_id, name, description, price, status) VALUES ($1, $2, '', $3, $4) RETURNING id`,
			[]any{f.ShopID, item.name, item.price, item.status}, &id)
		f.ItemIDs = append(f.ItemIDs, id)
	}

	return f
}
