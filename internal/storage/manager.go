// Package storage wires storage backends behind the StorageManager
// interface.
package storage

import (
	"fmt"

	"github.com/quantfold/vantage/internal/common"
	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/storage/badger"
)

// Manager owns the storage backends and hands out typed accessors.
type Manager struct {
	store   *badger.Store
	reports interfaces.ReportStorage
}

// NewManager opens the storage backends under the configured data path.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report store: %w", err)
	}

	return &Manager{
		store:   store,
		reports: badger.NewReportStorage(store, logger),
	}, nil
}

// ReportStorage returns the report document store.
func (m *Manager) ReportStorage() interfaces.ReportStorage {
	return m.reports
}

// Close closes all storage backends.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
