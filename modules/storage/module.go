// Package storage owns the database connection shared by the auth and task modules.
package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"gorm.io/gorm"
)

// Module closes the shared database on shutdown and reports its health.
type Module struct {
	db     *gorm.DB
	driver string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule wraps a handle obtained from Connect.
func NewModule(db *gorm.DB, driver string) *Module {
	return &Module{
		db:     db,
		driver: driver,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "storage"
}

// Start verifies that a database handle was provided.
func (m *Module) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}
	log.Printf("[storage] Module started (driver: %s)", m.driver)
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		closeDB(m.db)
	}
	log.Println("[storage] Module stopped")
	return nil
}

// DB returns the shared handle.
func (m *Module) DB() *gorm.DB {
	return m.db
}

// Health pings the database.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver":      m.driver,
			"connections": sqlDB.Stats().OpenConnections,
		},
	}
}
