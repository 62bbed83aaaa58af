package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/zilix-space/adapix-backend/internal/api/handlers"
	"github.com/zilix-space/adapix-backend/internal/api/httpx"
	"github.com/zilix-space/adapix-backend/internal/api/validate"
	"github.com/zilix-space/adapix-backend/internal/config"
	"github.com/zilix-space/adapix-backend/internal/exchange"
	"github.com/zilix-space/adapix-backend/internal/metrics"
	"github.com/zilix-space/adapix-backend/internal/middleware"
	"github.com/zilix-space/adapix-backend/internal/providers"
)

func NewRouter(cfg config.Config, authH *handlers.AuthHandler, authMW *middleware.AuthMiddleware, svc *exchange.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(100), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			r.Post("/exchange/estimate", func(w http.ResponseWriter, r *http.Request) {
				var req struct {
					Direction string  `json:"direction"`
					Amount    float64 `json:"amount"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
					return
				}
				if ef := validate.OneOf("direction", req.Direction, "buy", "sell"); ef != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", validate.Errs{*ef}.Error(), validate.Errs{*ef})
					return
				}
				est, err := svc.Estimate(r.Context(), providers.Direction(req.Direction), req.Amount)
				if err != nil {
					writeExchangeError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, est)
			})

			r.Post("/transactions", func(w http.ResponseWriter, r *http.Request) {
				uid, _ := middleware.UserID(r.Context())
				var req struct {
					Direction string  `json:"direction"`
					Amount    float64 `json:"amount"`
					Address   string  `json:"address"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
					return
				}
				var errs validate.Errs
				if ef := validate.OneOf("direction", req.Direction, "buy", "sell"); ef != nil {
					errs = append(errs, *ef)
				}
				if ef := validate.Required("address", req.Address); ef != nil {
					errs = append(errs, *ef)
				}
				if len(errs) > 0 {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", errs.Error(), errs)
					return
				}
				tx, err := svc.Create(r.Context(), uid, providers.Direction(req.Direction), req.Amount, req.Address)
				if err != nil {
					writeExchangeError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusCreated, tx)
			})

			// reconciles on read: the returned record carries the freshest
			// converged status; stale=true flags a gateway query failure
			r.Get("/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
				uid, _ := middleware.UserID(r.Context())
				tx, err := svc.Reconcile(r.Context(), chi.URLParam(r, "id"))
				if err != nil && !errors.Is(err, exchange.ErrReconcileQuery) {
					writeExchangeError(w, err)
					return
				}
				if tx.UserID != uid {
					httpx.WriteError(w, http.StatusNotFound, "not_found", "transaction not found", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]any{
					"transaction": tx,
					"stale":       err != nil,
				})
			})

			r.Get("/transactions", func(w http.ResponseWriter, r *http.Request) {
				uid, _ := middleware.UserID(r.Context())
				limit, offset := 50, 0
				if v := r.URL.Query().Get("limit"); v != "" {
					if n, err := strconv.Atoi(v); err == nil && n > 0 {
						limit = n
					}
				}
				if v := r.URL.Query().Get("offset"); v != "" {
					if n, err := strconv.Atoi(v); err == nil && n >= 0 {
						offset = n
					}
				}
				txs, err := svc.ListByUser(r.Context(), uid, limit, offset)
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", err.Error(), nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, txs)
			})
		})
	})

	return r
}

func writeExchangeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exchange.ErrAmountTooLow):
		httpx.WriteError(w, http.StatusBadRequest, "amount_too_low", err.Error(), nil)
	case errors.Is(err, exchange.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "transaction not found", nil)
	case errors.Is(err, exchange.ErrQuoteUnavailable):
		httpx.WriteError(w, http.StatusBadGateway, "quote_unavailable", err.Error(), nil)
	case errors.Is(err, exchange.ErrGatewayOpenFailed):
		httpx.WriteError(w, http.StatusBadGateway, "gateway_open_failed", err.Error(), nil)
	default:
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
	}
}
