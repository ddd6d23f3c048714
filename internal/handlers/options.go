package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Bessima/botform-intake/internal/handlers/schemas"
	"github.com/Bessima/botform-intake/internal/middlewares/logger"
	"go.uber.org/zap"
)

// Варианты, которые показывает форма. Сервер их не проверяет: любые строки
// в списках принимаются как есть.
var formOptions = schemas.OptionsResponse{
	EquityIndices: []schemas.Option{
		{Value: "DJIA", Label: "Dow Jones (DJIA)"},
		{Value: "NASDAQ", Label: "Nasdaq 100"},
		{Value: "SP500", Label: "S&P 500"},
		{Value: "TSLA", Label: "Tesla (TSLA)"},
		{Value: "NVDA", Label: "Nvidia (NVDA)"},
		{Value: "AAPL", Label: "Apple (AAPL)"},
		{Value: "AMZN", Label: "Amazon (AMZN)"},
		{Value: "GOOG", Label: "Google (GOOG)"},
		{Value: "META", Label: "Meta (META)"},
	},
	Forex: []schemas.Option{
		{Value: "EURUSD", Label: "EUR/USD"},
		{Value: "GBPUSD", Label: "GBP/USD"},
		{Value: "USDJPY", Label: "USD/JPY"},
		{Value: "AUDUSD", Label: "AUD/USD"},
		{Value: "USDCAD", Label: "USD/CAD"},
	},
	Commodities: []schemas.Option{
		{Value: "XAUUSD", Label: "Gold (XAU/USD)"},
		{Value: "CRUDEOIL", Label: "Crude Oil (WTI)"},
		{Value: "XAGUSD", Label: "Silver (XAG/USD)"},
	},
	PremiumAccess: []schemas.Option{
		{Value: "telegramGroup", Label: "Telegram group"},
		{Value: "fbGroup", Label: "Facebook group"},
		{Value: "personalSelection", Label: "Personal selection"},
		{Value: "other", Label: "Other"},
	},
}

func Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, formOptions)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.Log.Warn("database is not available", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "fail"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
