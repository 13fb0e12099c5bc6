package reports

import "github.com/go-chi/chi/v5"

// Routes mounts the report API.
func Routes(r chi.Router, h *Handler) {
	r.Get("/accounts", h.Accounts)
	r.Route("/reports", func(r chi.Router) {
		r.Get("/balance/ideal", h.IdealBalance)
		r.Get("/balance/real", h.RealBalance)
		r.Get("/expenses", h.Expenses)
		r.Get("/month-summary", h.MonthSummary)
	})
}
