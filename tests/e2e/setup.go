//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"rental-ledger/cmd/bootstrap"
	"rental-ledger/cmd/bootstrap/components"
	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/pkg/clock"
	"rental-ledger/internal/pkg/config"
	"rental-ledger/internal/usecase/commands"
	"rental-ledger/internal/worker"
	"rental-ledger/tests/common/dbtest"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

const (
	pgUser     = "ledger"
	pgPassword = "ledgerpass"
)

var (
	pgOnce      sync.Once
	pgContainer testcontainers.Container

	redisOnce      sync.Once
	redisContainer testcontainers.Container
)

type endpoint struct {
	Host string
	Port nat.Port
}

func (e endpoint) addr() string {
	return e.Host + ":" + e.Port.Port()
}

// environment is everything one suite needs: its own database, the shared
// Redis, and an fx graph wired like the API server plus the sweeper.
type environment struct {
	pool   *pgxpool.Pool
	router *gin.Engine
	runner *worker.Runner
	cfg    config.Config
}

func setupEnvironment(t *testing.T, proc *FakeProcessor, clk *clock.MockClock) environment {
	gin.SetMode(gin.TestMode)

	pg := containerEndpoint(t, startPostgres(t), "5432/tcp")
	rd := containerEndpoint(t, startRedis(t), "6379/tcp")

	cfg := config.NewTestConfig()
	cfg.DB = createDatabase(t, pg)
	cfg.Redis.Addr = rd.addr()
	// Lease owner recorded on payment rows during sweeps.
	cfg.Scheduler.WorkerID = "e2e-" + uuid.NewString()[:8]

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connectCancel()
	pool, err := db.Connect(connectCtx, cfg.DB)
	require.NoError(t, err, "failed to connect to the suite database")
	t.Cleanup(pool.Close)
	require.NoError(t, applyMigrations(t, pool), "failed to apply migrations")

	env := environment{pool: pool, cfg: cfg}
	app := fx.New(
		fx.Supply(cfg, pool),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		// Stripe is replaced by an in-process fake and time is driven by the test.
		fx.Provide(fx.Annotate(
			func() *FakeProcessor { return proc },
			fx.As(new(commands.PaymentProcessor)),
		)),
		fx.Decorate(func(clock.Clock) clock.Clock { return clk }),
		bootstrap.LoggerModule,
		bootstrap.JWTModule,
		bootstrap.RedisModule,
		components.PersistenceModule,
		components.UseCaseModule,
		components.HandlerModule,
		components.WorkerModule,
		fx.Populate(&env.router, &env.runner),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "failed to start the fx app")

	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := app.Stop(stopCtx); err != nil {
			slog.Warn("failed to stop the fx app", "error", err.Error())
		}
	})

	return env
}

// ------------------------------------------------------------
// データベース
// ------------------------------------------------------------

// createDatabase gives every suite its own database on the shared container.
func createDatabase(t *testing.T, pg endpoint) config.DBConfig {
	t.Helper()
	dbName := "ledger_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	adminDSN := fmt.Sprintf("postgres://%s:%s@%s/postgres?sslmode=disable", pgUser, pgPassword, pg.addr())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	admin, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err, "failed to open the admin connection")
	defer admin.Close()

	// CREATE DATABASE fails while another suite is copying template1.
	var createErr error
	for attempt := range 5 {
		if attempt > 0 {
			time.Sleep(min(time.Duration(attempt)*500*time.Millisecond, 3*time.Second))
		}
		if _, createErr = admin.Exec(ctx, "CREATE DATABASE "+dbName); createErr == nil {
			break
		}
		slog.Warn("retrying CREATE DATABASE", "attempt", attempt+1, "error", createErr.Error())
	}
	require.NoError(t, createErr, "failed to create the suite database")

	t.Cleanup(func() {
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dropCancel()
		dropPool, err := pgxpool.New(dropCtx, adminDSN)
		if err != nil {
			slog.Warn("failed to connect for cleanup", "database", dbName, "error", err.Error())
			return
		}
		defer dropPool.Close()
		if _, err := dropPool.Exec(dropCtx, "DROP DATABASE IF EXISTS "+dbName+" WITH (FORCE)"); err != nil {
			slog.Warn("failed to drop the suite database", "database", dbName, "error", err.Error())
		}
	})

	return config.DBConfig{
		Host:     pg.Host,
		Port:     pg.Port.Port(),
		User:     pgUser,
		Password: pgPassword,
		DBName:   dbName,
		SSLMode:  "disable",
		TimeZone: "UTC",
	}
}

// applyMigrations runs the schema files in order. go test starts in the
// package directory, so the repo root is searched upwards.
func applyMigrations(t *testing.T, pool *pgxpool.Pool) error {
	t.Helper()
	files, err := migrationFiles()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, file := range files {
		sqlContent, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if _, err := pool.Exec(ctx, string(sqlContent)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}
	return nil
}

func migrationFiles() ([]string, error) {
	dir := "migrations"
	for range 4 {
		matches, err := filepath.Glob(filepath.Join(dir, "*.sql"))
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			return matches, nil
		}
		dir = filepath.Join("..", dir)
	}
	return nil, fmt.Errorf("migrations directory not found")
}

// ------------------------------------------------------------
// コンテナ
// ------------------------------------------------------------

func startPostgres(t *testing.T) testcontainers.Container {
	pgOnce.Do(func() {
		var err error
		pgContainer, err = startContainer(testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=512m"},
			// Durability is irrelevant for throwaway databases.
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "full_page_writes=off",
				"-c", "synchronous_commit=off",
				"-c", "max_connections=200",
				"-c", "log_statement=none",
			},
			WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable", pgUser, pgPassword, host, port.Port())
			}).WithStartupTimeout(60 * time.Second),
			Labels: map[string]string{"purpose": "rental-ledger-e2e"},
		})
		require.NoError(t, err, "failed to start postgres")
	})
	require.NotNil(t, pgContainer, "postgres container is not running")
	return pgContainer
}

func startRedis(t *testing.T) testcontainers.Container {
	redisOnce.Do(func() {
		var err error
		redisContainer, err = startContainer(testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			Labels:       map[string]string{"purpose": "rental-ledger-e2e"},
		})
		require.NoError(t, err, "failed to start redis")
	})
	require.NotNil(t, redisContainer, "redis container is not running")
	return redisContainer
}

// Containers are reaped by ryuk when the test binary exits.
func startContainer(req testcontainers.ContainerRequest) (testcontainers.Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	return testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
}

func containerEndpoint(t *testing.T, c testcontainers.Container, port string) endpoint {
	t.Helper()
	ctx := context.Background()
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	host, err := c.Host(ctx)
	require.NoError(t, err)
	return endpoint{Host: host, Port: mapped}
}

// ------------------------------------------------------------
// 共通スイート
// ------------------------------------------------------------

type SharedSuite struct {
	suite.Suite
	Router    *gin.Engine
	DB        *pgxpool.Pool
	Config    config.Config
	Runner    *worker.Runner
	Processor *FakeProcessor
	Clock     *clock.MockClock
}

func (s *SharedSuite) SetupSuite() {
	s.Processor = NewFakeProcessor()
	s.Clock = clock.NewMockClock(time.Now().UTC())
	env := setupEnvironment(s.T(), s.Processor, s.Clock)
	s.DB = env.pool
	s.Router = env.router
	s.Runner = env.runner
	s.Config = env.cfg
	require.NotNil(s.T(), s.Router, "router was not built")
	require.NotNil(s.T(), s.Runner, "sweep runner was not built")
}

// SetupSubTest gives every subtest empty tables, a fresh fake and the current time.
func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "failed to reset the database")
	s.Processor.Reset()
	s.Clock.Set(time.Now().UTC())
}
