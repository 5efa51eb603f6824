// Package storage provides file-based JSON persistence for Simfolio.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/simfolio/simfolio/internal/common"
	"github.com/simfolio/simfolio/internal/models"
)

// FileStore provides file-based JSON storage under a base path.
type FileStore struct {
	basePath string
	logger   *common.Logger
}

// subdirectories defines the directory layout under basePath.
var subdirectories = []string{
	"portfolios", "journal", "reports", "charts",
}

// NewFileStore creates a new FileStore and ensures all subdirectories exist.
func NewFileStore(logger *common.Logger, basePath string) (*FileStore, error) {
	fs := &FileStore{
		basePath: basePath,
		logger:   logger,
	}

	for _, sub := range subdirectories {
		dir := filepath.Join(fs.basePath, sub)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	logger.Debug().Str("path", basePath).Msg("FileStore opened")
	return fs, nil
}

// sanitizeKey makes a key safe for use as a filename. Replaces /, \, : with _
// and collapses ".." to "_" to prevent path traversal.
func (fs *FileStore) sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func (fs *FileStore) filePath(sub, key, ext string) string {
	return filepath.Join(fs.basePath, sub, fs.sanitizeKey(key)+ext)
}

// readJSON reads and unmarshals a JSON file.
func (fs *FileStore) readJSON(sub, key string, dest interface{}) error {
	path := fs.filePath(sub, key, ".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' not found", key)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("'%s' is empty", key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON marshals data to indented JSON and writes it atomically: temp
// file in the same directory, then rename.
func (fs *FileStore) writeJSON(sub, key string, data interface{}) error {
	target := fs.filePath(sub, key, ".json")

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	return fs.writeAtomic(target, jsonData)
}

func (fs *FileStore) writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// --- PortfolioStore ---

const portfolioKey = "portfolio"

// GetPortfolio loads the persisted portfolio document.
func (fs *FileStore) GetPortfolio(ctx context.Context) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := fs.readJSON("portfolios", portfolioKey, &p); err != nil {
		return nil, err
	}
	if p.Positions == nil {
		p.Positions = make(map[string]*models.Position)
	}
	return &p, nil
}

// SavePortfolio persists the portfolio document.
func (fs *FileStore) SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error {
	return fs.writeJSON("portfolios", portfolioKey, portfolio)
}

// --- JournalStore ---

const (
	tradesKey    = "trades"
	snapshotsKey = "daily_snapshots"
)

type tradesDoc struct {
	Trades []*models.Trade `json:"trades"`
}

type snapshotsDoc struct {
	Snapshots map[string]*models.DailySnapshot `json:"snapshots"`
}

// AppendTrade appends one settled trade to the journal document.
func (fs *FileStore) AppendTrade(ctx context.Context, trade *models.Trade) error {
	var doc tradesDoc
	if err := fs.readJSON("journal", tradesKey, &doc); err != nil {
		doc = tradesDoc{}
	}
	doc.Trades = append(doc.Trades, trade)
	return fs.writeJSON("journal", tradesKey, &doc)
}

// ListTrades returns the most recent n trades, oldest first.
func (fs *FileStore) ListTrades(ctx context.Context, n int) ([]*models.Trade, error) {
	var doc tradesDoc
	if err := fs.readJSON("journal", tradesKey, &doc); err != nil {
		return nil, nil // empty journal
	}
	trades := doc.Trades
	if n > 0 && len(trades) > n {
		trades = trades[len(trades)-n:]
	}
	return trades, nil
}

// SaveDailySnapshot upserts the snapshot for its date.
func (fs *FileStore) SaveDailySnapshot(ctx context.Context, snapshot *models.DailySnapshot) error {
	var doc snapshotsDoc
	if err := fs.readJSON("journal", snapshotsKey, &doc); err != nil || doc.Snapshots == nil {
		doc.Snapshots = make(map[string]*models.DailySnapshot)
	}
	doc.Snapshots[snapshot.Date] = snapshot
	return fs.writeJSON("journal", snapshotsKey, &doc)
}

// ListDailySnapshots returns snapshots ordered by date ascending.
func (fs *FileStore) ListDailySnapshots(ctx context.Context) ([]*models.DailySnapshot, error) {
	var doc snapshotsDoc
	if err := fs.readJSON("journal", snapshotsKey, &doc); err != nil {
		return nil, nil
	}
	dates := make([]string, 0, len(doc.Snapshots))
	for d := range doc.Snapshots {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]*models.DailySnapshot, 0, len(dates))
	for _, d := range dates {
		out = append(out, doc.Snapshots[d])
	}
	return out, nil
}

// --- ReportStore ---

// SaveReport persists a daily report keyed by date.
func (fs *FileStore) SaveReport(ctx context.Context, report *models.DailyReport) error {
	return fs.writeJSON("reports", report.Date, report)
}

// GetReport loads the report for a date key.
func (fs *FileStore) GetReport(ctx context.Context, date string) (*models.DailyReport, error) {
	var r models.DailyReport
	if err := fs.readJSON("reports", date, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveChart writes raw PNG bytes and returns the storage key.
func (fs *FileStore) SaveChart(ctx context.Context, date string, png []byte) (string, error) {
	key := fs.sanitizeKey(date) + ".png"
	target := filepath.Join(fs.basePath, "charts", key)
	if err := fs.writeAtomic(target, png); err != nil {
		return "", err
	}
	return filepath.Join("charts", key), nil
}

// Close releases storage resources. File storage has nothing to release.
func (fs *FileStore) Close() error {
	return nil
}
