package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amichai1/task-manager-app/config"
	"gorm.io/gorm"
)

func testConfig() config.Database {
	return config.Database{
		Driver:     config.DriverSQLite,
		Path:       ":memory:",
		Retries:    2,
		RetryDelay: 5 * time.Second,
	}
}

func TestConnect_RetriesWithFixedDelay(t *testing.T) {
	calls := 0
	var delays []time.Duration
	c := connector{
		cfg: testConfig(),
		open: func(cfg config.Database) (*gorm.DB, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("connection refused")
			}
			return Open(cfg)
		},
		sleep: func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}

	db, err := c.connect(context.Background())
	if err != nil {
		t.Fatalf("connect() error = %v", err)
	}
	defer closeDB(db)

	if calls != 3 {
		t.Errorf("open called %d times, want 3", calls)
	}
	if len(delays) != 2 {
		t.Fatalf("slept %d times, want 2", len(delays))
	}
	for i, d := range delays {
		if d != 5*time.Second {
			t.Errorf("delay[%d] = %v, want 5s", i, d)
		}
	}
}

func TestConnect_GivesUp(t *testing.T) {
	calls := 0
	c := connector{
		cfg: testConfig(),
		open: func(config.Database) (*gorm.DB, error) {
			calls++
			return nil, errors.New("connection refused")
		},
		sleep: func(context.Context, time.Duration) error { return nil },
	}

	db, err := c.connect(context.Background())
	if err == nil {
		t.Fatal("connect() error = nil, want error")
	}
	if db != nil {
		t.Error("connect() returned a handle despite failing")
	}
	if calls != 3 {
		t.Errorf("open called %d times, want 3", calls)
	}
}

func TestConnect_AbortsOnCancel(t *testing.T) {
	c := connector{
		cfg: testConfig(),
		open: func(config.Database) (*gorm.DB, error) {
			return nil, errors.New("connection refused")
		},
		sleep: sleepContext,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.connect(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("connect() error = %v, want context.Canceled", err)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(config.Database{Driver: "oracle"}); err == nil {
		t.Error("Open() error = nil, want unsupported driver error")
	}
	if _, err := Open(config.Database{Driver: config.DriverPostgres}); err == nil {
		t.Error("Open() error = nil, want missing DATABASE_URL error")
	}
}

func TestModule_Lifecycle(t *testing.T) {
	ctx := context.Background()

	empty := NewModule(nil, config.DriverSQLite)
	if err := empty.Start(ctx); err == nil {
		t.Error("Start() without a handle should fail")
	}
	if status := empty.Health(ctx); status.Healthy {
		t.Error("Health() without a handle should be unhealthy")
	}

	db, err := Connect(ctx, testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	m := NewModule(db, config.DriverSQLite)
	if m.Name() != "storage" {
		t.Errorf("Name() = %q, want %q", m.Name(), "storage")
	}
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	status := m.Health(ctx)
	if !status.Healthy {
		t.Errorf("Health() = %+v, want healthy", status)
	}
	if status.Details["driver"] != config.DriverSQLite {
		t.Errorf("Details[driver] = %v, want %q", status.Details["driver"], config.DriverSQLite)
	}

	if err := m.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if status := m.Health(ctx); status.Healthy {
		t.Error("Health() after Stop should be unhealthy")
	}
}
