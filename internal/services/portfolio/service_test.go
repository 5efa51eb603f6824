package portfolio

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simfolio/simfolio/internal/common"
	"github.com/simfolio/simfolio/internal/engine"
	"github.com/simfolio/simfolio/internal/interfaces"
	"github.com/simfolio/simfolio/internal/models"
)

// memStorage is an in-memory StorageManager for service tests.
type memStorage struct {
	portfolio *models.Portfolio
	trades    []*models.Trade
	snapshots map[string]*models.DailySnapshot
}

func newMemStorage() *memStorage {
	return &memStorage{snapshots: make(map[string]*models.DailySnapshot)}
}

func (m *memStorage) PortfolioStore() interfaces.PortfolioStore { return m }
func (m *memStorage) JournalStore() interfaces.JournalStore     { return m }
func (m *memStorage) ReportStore() interfaces.ReportStore       { return nil }
func (m *memStorage) Close() error                              { return nil }

func (m *memStorage) GetPortfolio(ctx context.Context) (*models.Portfolio, error) {
	if m.portfolio == nil {
		return nil, fmt.Errorf("portfolio not found")
	}
	return m.portfolio, nil
}

func (m *memStorage) SavePortfolio(ctx context.Context, p *models.Portfolio) error {
	m.portfolio = p
	return nil
}

func (m *memStorage) AppendTrade(ctx context.Context, trade *models.Trade) error {
	m.trades = append(m.trades, trade)
	return nil
}

func (m *memStorage) ListTrades(ctx context.Context, n int) ([]*models.Trade, error) {
	if n <= 0 || n >= len(m.trades) {
		return m.trades, nil
	}
	return m.trades[len(m.trades)-n:], nil
}

func (m *memStorage) SaveDailySnapshot(ctx context.Context, snap *models.DailySnapshot) error {
	m.snapshots[snap.Date] = snap
	return nil
}

func (m *memStorage) ListDailySnapshots(ctx context.Context) ([]*models.DailySnapshot, error) {
	var out []*models.DailySnapshot
	for _, s := range m.snapshots {
		out = append(out, s)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Date < out[i].Date {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func newTestService() (*Service, *memStorage) {
	storage := newMemStorage()
	return NewService(storage, common.NewDefaultConfig(), common.NewSilentLogger()), storage
}

func TestGetPortfolioCreatesDefault(t *testing.T) {
	svc, storage := newTestService()

	p, err := svc.GetPortfolio(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100000.0, p.InitialCapital)
	assert.Equal(t, 100000.0, p.AvailableCash)
	assert.Equal(t, 8.0, p.StopLossPct)
	assert.Empty(t, p.Positions)
	assert.NotNil(t, storage.portfolio, "new portfolio should be persisted")
}

func TestRecordTradeBuy(t *testing.T) {
	svc, storage := newTestService()

	trade, err := svc.RecordTrade(context.Background(), interfaces.TradeRequest{
		Action: models.TradeActionBuy,
		Code:   "600519",
		Name:   "Kweichow Moutai",
		Shares: 100,
		Price:  100.0,
		Reason: "initial entry",
	})
	require.NoError(t, err)

	// gross 10000, commission floored at 5, no stamp duty on buys
	assert.Equal(t, 10000.0, trade.Gross)
	assert.Equal(t, 5.0, trade.Commission)
	assert.Equal(t, 0.0, trade.StampDuty)
	assert.Equal(t, 10005.0, trade.Net)
	assert.NotEmpty(t, trade.ID)

	p := storage.portfolio
	assert.Equal(t, 100000.0-10005.0, p.AvailableCash)
	pos := p.Positions["600519"]
	require.NotNil(t, pos)
	assert.Equal(t, int64(100), pos.Shares)
	assert.Equal(t, 100.0, pos.CostPrice)
	assert.NotEmpty(t, pos.BuyDate)
	assert.Len(t, storage.trades, 1)
}

func TestRecordTradeAddAveragesCost(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.RecordTrade(ctx, interfaces.TradeRequest{
		Action: models.TradeActionBuy, Code: "600519", Name: "Kweichow Moutai", Shares: 100, Price: 100.0,
	})
	require.NoError(t, err)

	_, err = svc.RecordTrade(ctx, interfaces.TradeRequest{
		Action: models.TradeActionAdd, Code: "600519", Shares: 100, Price: 120.0,
	})
	require.NoError(t, err)

	p, err := svc.GetPortfolio(ctx)
	require.NoError(t, err)
	pos := p.Positions["600519"]
	require.NotNil(t, pos)
	assert.Equal(t, int64(200), pos.Shares)
	assert.InDelta(t, 110.0, pos.CostPrice, 1e-9)
}

func TestRecordTradeBuyInsufficientCash(t *testing.T) {
	svc, storage := newTestService()

	_, err := svc.RecordTrade(context.Background(), interfaces.TradeRequest{
		Action: models.TradeActionBuy, Code: "600519", Shares: 2000, Price: 100.0,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrSettlementViolation)

	// Failed settlement leaves the portfolio untouched.
	assert.Equal(t, 100000.0, storage.portfolio.AvailableCash)
	assert.Empty(t, storage.portfolio.Positions)
	assert.Empty(t, storage.trades)
}

func TestRecordTradeSell(t *testing.T) {
	svc, storage := newTestService()
	ctx := context.Background()

	_, err := svc.RecordTrade(ctx, interfaces.TradeRequest{
		Action: models.TradeActionBuy, Code: "600519", Name: "Kweichow Moutai", Shares: 200, Price: 100.0,
	})
	require.NoError(t, err)
	cashAfterBuy := storage.portfolio.AvailableCash

	trade, err := svc.RecordTrade(ctx, interfaces.TradeRequest{
		Action: models.TradeActionReduce, Code: "600519", Shares: 100, Price: 110.0,
	})
	require.NoError(t, err)

	// gross 11000, commission floored at 5, stamp duty 11
	assert.Equal(t, 11000.0, trade.Gross)
	assert.Equal(t, 5.0, trade.Commission)
	assert.Equal(t, 11.0, trade.StampDuty)
	assert.Equal(t, 10984.0, trade.Net)
	assert.Equal(t, "Kweichow Moutai", trade.Name, "name carried from the held position")

	p := storage.portfolio
	pos := p.Positions["600519"]
	require.NotNil(t, pos)
	assert.Equal(t, int64(100), pos.Shares)
	assert.Equal(t, 100.0, pos.CostPrice, "partial sell keeps the cost basis")
	assert.Equal(t, cashAfterBuy+10984.0, p.AvailableCash)
}

func TestRecordTradeSellClosesPosition(t *testing.T) {
	svc, storage := newTestService()
	ctx := context.Background()

	_, err := svc.RecordTrade(ctx, interfaces.TradeRequest{
		Action: models.TradeActionBuy, Code: "600519", Shares: 100, Price: 100.0,
	})
	require.NoError(t, err)

	_, err = svc.RecordTrade(ctx, interfaces.TradeRequest{
		Action: models.TradeActionSell, Code: "600519", Shares: 100, Price: 105.0,
	})
	require.NoError(t, err)

	assert.NotContains(t, storage.portfolio.Positions, "600519")
	assert.Len(t, storage.trades, 2)
}

func TestRecordTradeOversell(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.RecordTrade(ctx, interfaces.TradeRequest{
		Action: models.TradeActionBuy, Code: "600519", Shares: 100, Price: 100.0,
	})
	require.NoError(t, err)

	_, err = svc.RecordTrade(ctx, interfaces.TradeRequest{
		Action: models.TradeActionSell, Code: "600519", Shares: 200, Price: 100.0,
	})
	assert.ErrorIs(t, err, engine.ErrInvalidInput)

	_, err = svc.RecordTrade(ctx, interfaces.TradeRequest{
		Action: models.TradeActionSell, Code: "000001", Shares: 100, Price: 100.0,
	})
	assert.ErrorIs(t, err, engine.ErrInvalidInput, "selling an unheld code is rejected")
}

func TestRecordTradeSellNegativeProceedsRejected(t *testing.T) {
	svc, storage := newTestService()
	ctx := context.Background()

	// Seed a portfolio where the commission floor swallows the proceeds:
	// gross 0.50 minus commission 5.00 and stamp duty leaves net -4.50,
	// which cash of 1.00 cannot absorb.
	_, err := svc.GetPortfolio(ctx)
	require.NoError(t, err)
	storage.portfolio.AvailableCash = 1.0
	storage.portfolio.Positions["600519"] = &models.Position{
		Code: "600519", Name: "Kweichow Moutai", Shares: 1, CostPrice: 100.0,
	}

	_, err = svc.RecordTrade(ctx, interfaces.TradeRequest{
		Action: models.TradeActionSell, Code: "600519", Shares: 1, Price: 0.50,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrSettlementViolation)

	// Rejected settlement leaves the position and cash untouched.
	assert.Equal(t, 1.0, storage.portfolio.AvailableCash)
	assert.Equal(t, int64(1), storage.portfolio.Positions["600519"].Shares)
	assert.Empty(t, storage.trades)
}

func TestRecordTradeDisabledPortfolio(t *testing.T) {
	storage := newMemStorage()
	config := common.NewDefaultConfig()
	config.Portfolio.Enabled = false
	svc := NewService(storage, config, common.NewSilentLogger())

	_, err := svc.RecordTrade(context.Background(), interfaces.TradeRequest{
		Action: models.TradeActionBuy, Code: "600519", Shares: 100, Price: 100.0,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
	assert.Nil(t, storage.portfolio, "disabled tracking records nothing")
}

func TestUpdatePrices(t *testing.T) {
	svc, storage := newTestService()
	ctx := context.Background()

	_, err := svc.RecordTrade(ctx, interfaces.TradeRequest{
		Action: models.TradeActionBuy, Code: "600519", Shares: 100, Price: 100.0,
	})
	require.NoError(t, err)

	err = svc.UpdatePrices(ctx, map[string]float64{
		"600519": 108.5,
		"000001": 12.0, // not held, ignored
		"600519x": -1,
	})
	require.NoError(t, err)

	assert.Equal(t, 108.5, storage.portfolio.Positions["600519"].CurrentPrice)
	assert.Len(t, storage.portfolio.Positions, 1)
}

func TestEvaluateDoesNotMutate(t *testing.T) {
	svc, storage := newTestService()
	ctx := context.Background()

	_, err := svc.RecordTrade(ctx, interfaces.TradeRequest{
		Action: models.TradeActionBuy, Code: "600519", Shares: 100, Price: 100.0,
	})
	require.NoError(t, err)

	snapshot, err := svc.Evaluate(ctx, map[string]float64{"600519": 110.0})
	require.NoError(t, err)

	val := snapshot.Valuation("600519")
	require.NotNil(t, val)
	require.NotNil(t, val.MarketValue)
	assert.Equal(t, 11000.0, *val.MarketValue)

	// Override prices are for the run only, never written back.
	assert.Equal(t, 0.0, storage.portfolio.Positions["600519"].CurrentPrice)
}

func TestTakeSnapshotDailyPnL(t *testing.T) {
	svc, storage := newTestService()
	ctx := context.Background()

	storage.snapshots["2026-08-31"] = &models.DailySnapshot{
		Date:        "2026-08-31",
		TotalAssets: 99000.0,
	}

	snap, err := svc.TakeSnapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, 100000.0, snap.TotalAssets)
	assert.InDelta(t, 1000.0, snap.DailyPnL, 1e-9)
	assert.InDelta(t, 1000.0/99000.0*100, snap.DailyReturnPct, 1e-9)
	assert.Contains(t, storage.snapshots, snap.Date)
}

func TestTakeSnapshotFirstDay(t *testing.T) {
	svc, _ := newTestService()

	snap, err := svc.TakeSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100000.0, snap.TotalAssets)
	assert.Equal(t, 0.0, snap.DailyPnL)
	assert.Equal(t, 0.0, snap.DailyReturnPct)
}

func TestListTrades(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.RecordTrade(ctx, interfaces.TradeRequest{
			Action: models.TradeActionBuy, Code: "600519", Shares: 100, Price: 10.0,
		})
		require.NoError(t, err)
	}

	trades, err := svc.ListTrades(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, trades, 2)
}
