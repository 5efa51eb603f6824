package storage

import (
	"github.com/simfolio/simfolio/internal/common"
	"github.com/simfolio/simfolio/internal/interfaces"
)

// Manager exposes the typed storage areas backed by a single FileStore.
type Manager struct {
	fs *FileStore
}

// NewManager opens the file store at the configured path.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	fs, err := NewFileStore(logger, config.Storage.Path)
	if err != nil {
		return nil, err
	}
	return &Manager{fs: fs}, nil
}

// PortfolioStore returns the portfolio storage area.
func (m *Manager) PortfolioStore() interfaces.PortfolioStore {
	return m.fs
}

// JournalStore returns the trade journal storage area.
func (m *Manager) JournalStore() interfaces.JournalStore {
	return m.fs
}

// ReportStore returns the report storage area.
func (m *Manager) ReportStore() interfaces.ReportStore {
	return m.fs
}

// Close releases storage resources.
func (m *Manager) Close() error {
	return m.fs.Close()
}
