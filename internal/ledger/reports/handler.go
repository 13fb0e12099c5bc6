package reports

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/moneyd/moneyd/internal/ledger/accounts"
	"github.com/moneyd/moneyd/internal/ledger/shared"
	"github.com/moneyd/moneyd/internal/platform/httpx"
)

// Handler serves the report API. Identical concurrent report requests are
// coalesced through a singleflight group so one computation feeds them all.
type Handler struct {
	service *Service
	logger  *slog.Logger
	group   singleflight.Group
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger}
}

// Accounts lists tracked accounts.
func (h *Handler) Accounts(w http.ResponseWriter, r *http.Request) {
	statsOnly := r.URL.Query().Get("stats_only") == "true"
	accts, err := h.service.ListAccounts(r.Context(), accounts.ListFilter{StatsOnly: statsOnly})
	if err != nil {
		h.respondError(w, r, "list accounts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, accts)
}

// IdealBalance serves the transaction-only balance series.
func (h *Handler) IdealBalance(w http.ResponseWriter, r *http.Request) {
	query, err := parseSeriesQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	result, err, _ := h.coalesce(r.Context(), query.cacheKeyOf("ideal"), func(ctx context.Context) (interface{}, error) {
		points, err := h.service.IdealBalance(ctx, query.Accounts, query.Start, query.End)
		if err != nil {
			return nil, err
		}
		accts, err := h.service.Accounts(ctx, query.Accounts)
		if err != nil {
			return nil, err
		}
		return IdealSeriesView(points, accts), nil
	})
	if err != nil {
		h.respondError(w, r, "ideal balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// RealBalance serves the reconciled balance series.
func (h *Handler) RealBalance(w http.ResponseWriter, r *http.Request) {
	query, err := parseSeriesQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	result, err, _ := h.coalesce(r.Context(), query.cacheKeyOf("real"), func(ctx context.Context) (interface{}, error) {
		points, err := h.service.RealBalance(ctx, query.Accounts, query.Start, query.End)
		if err != nil {
			return nil, err
		}
		accts, err := h.service.Accounts(ctx, query.Accounts)
		if err != nil {
			return nil, err
		}
		return RealSeriesView(points, accts), nil
	})
	if err != nil {
		h.respondError(w, r, "real balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// Expenses serves expense breakdowns per category or tag.
func (h *Handler) Expenses(w http.ResponseWriter, r *http.Request) {
	query, err := parseExpenseQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	totals, err := h.service.ExpenseBreakdown(r.Context(), query.Accounts, query.Start, query.End, query.Group, query.Monthly)
	if err != nil {
		h.respondError(w, r, "expense breakdown", err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

// MonthSummary serves per-account current and upcoming expense stats.
func (h *Handler) MonthSummary(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.URL.Query().Get("accounts"))
	if err != nil || len(ids) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "accounts parameter required")
		return
	}
	stats, err := h.service.MonthSummary(r.Context(), ids, time.Now().UTC())
	if err != nil {
		h.respondError(w, r, "month summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) coalesce(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error, bool) {
	resultChan := h.group.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidWindow):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Window", err.Error())
	case errors.Is(err, shared.ErrInvalidPeriod):
		h.logger.Error(op, slog.Any("error", err), slog.String("path", r.URL.Path))
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Recurrence", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err), slog.String("path", r.URL.Path))
		httpx.RespondError(w, err)
	}
}
