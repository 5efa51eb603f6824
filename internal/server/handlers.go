package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/simfolio/simfolio/internal/common"
	"github.com/simfolio/simfolio/internal/engine"
	"github.com/simfolio/simfolio/internal/interfaces"
	"github.com/simfolio/simfolio/internal/models"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(s.app.StartupTime).String(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// dashboardResponse is the payload for the portfolio dashboard view.
type dashboardResponse struct {
	Portfolio    *models.Portfolio          `json:"portfolio"`
	Evaluation   *models.EvaluationSnapshot `json:"evaluation"`
	RecentTrades []*models.Trade            `json:"recent_trades"`
}

// handlePortfolio handles GET /api/portfolio: the persisted portfolio plus a
// fresh evaluation at stored prices and the recent journal tail.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	p, err := s.app.PortfolioService.GetPortfolio(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	evaluation, err := s.app.PortfolioService.Evaluate(r.Context(), nil)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	trades, err := s.app.PortfolioService.ListTrades(r.Context(), 10)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Dashboard trade listing failed")
		trades = nil
	}
	if trades == nil {
		trades = []*models.Trade{}
	}

	WriteJSON(w, http.StatusOK, dashboardResponse{
		Portfolio:    p,
		Evaluation:   evaluation,
		RecentTrades: trades,
	})
}

// evaluateRequest carries optional price overrides for an evaluation run.
type evaluateRequest struct {
	Prices map[string]float64 `json:"prices,omitempty"`
}

// handleEvaluate handles POST /api/portfolio/evaluate.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req evaluateRequest
	if r.ContentLength != 0 && !DecodeJSON(w, r, &req) {
		return
	}

	snapshot, err := s.app.PortfolioService.Evaluate(r.Context(), req.Prices)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// handleSnapshot handles POST /api/portfolio/snapshot.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	snap, err := s.app.PortfolioService.TakeSnapshot(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, snap)
}

// handleTrades handles POST /api/trades (settle a trade) and
// GET /api/trades?limit=n (journal listing).
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleTradeCreate(w, r)
	case http.MethodGet:
		s.handleTradeList(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleTradeCreate(w http.ResponseWriter, r *http.Request) {
	var req interfaces.TradeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	trade, err := s.app.PortfolioService.RecordTrade(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrSettlementViolation):
			WriteError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, engine.ErrInvalidInput):
			WriteError(w, http.StatusBadRequest, err.Error())
		default:
			WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	WriteJSON(w, http.StatusCreated, trade)
}

func (s *Server) handleTradeList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = n
	}

	trades, err := s.app.PortfolioService.ListTrades(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if trades == nil {
		trades = []*models.Trade{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
	})
}

// pricesRequest carries a batch price update.
type pricesRequest struct {
	Prices map[string]float64 `json:"prices"`
}

// handlePrices handles POST /api/prices.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req pricesRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Prices) == 0 {
		WriteError(w, http.StatusBadRequest, "No prices supplied")
		return
	}

	if err := s.app.PortfolioService.UpdatePrices(r.Context(), req.Prices); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// reportRequest configures a report generation run.
type reportRequest struct {
	Prices   map[string]float64               `json:"prices,omitempty"`
	Analyses map[string]*models.StockAnalysis `json:"analyses,omitempty"`
	Advice   *bool                            `json:"advice,omitempty"`
	Chart    *bool                            `json:"chart,omitempty"`
}

// handleReportGenerate handles POST /api/reports. Advice and chart default
// to the configured report settings.
func (s *Server) handleReportGenerate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req reportRequest
	if r.ContentLength != 0 && !DecodeJSON(w, r, &req) {
		return
	}

	options := interfaces.ReportOptions{
		Prices:   req.Prices,
		Analyses: req.Analyses,
		Advice:   s.app.Config.Advice.Enabled,
		Chart:    s.app.Config.Report.IncludeChart,
	}
	if req.Advice != nil {
		options.Advice = *req.Advice
	}
	if req.Chart != nil {
		options.Chart = *req.Chart
	}

	report, err := s.app.ReportService.GenerateDaily(r.Context(), options)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrMissingAnalysis):
			WriteError(w, http.StatusBadRequest, err.Error())
		default:
			WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	WriteJSON(w, http.StatusCreated, report)
}

// handleReportGet handles GET /api/reports/{date}.
func (s *Server) handleReportGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	date := PathParam(r, "/api/reports/")
	if date == "" {
		WriteError(w, http.StatusBadRequest, "Report date is required")
		return
	}

	report, err := s.app.Storage.ReportStore().GetReport(r.Context(), date)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Report not found: "+date)
		return
	}

	WriteJSON(w, http.StatusOK, report)
}
