package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/godeposit/internal/adapter/http/handler"
	"github.com/iho/godeposit/internal/adapter/http/middleware"
	"github.com/iho/godeposit/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	TransactionHandler *handler.TransactionHandler
	InterestHandler    *handler.InterestHandler
	ChargeHandler      *handler.ChargeHandler
	TransferHandler    *handler.TransferHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	RateLimiter        *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts and their lifecycle
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Open)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Post("/{id}/approve", cfg.AccountHandler.Approve)
			r.Post("/{id}/reject", cfg.AccountHandler.Reject)
			r.Post("/{id}/withdraw-application", cfg.AccountHandler.WithdrawApplication)
			r.Post("/{id}/activate", cfg.AccountHandler.Activate)
			r.Post("/{id}/close", cfg.AccountHandler.Close)
			r.Post("/{id}/close-prematurely", cfg.AccountHandler.ClosePrematurely)
			r.Post("/{id}/undo-approval", cfg.AccountHandler.UndoApproval)
			r.Post("/{id}/undo-activation", cfg.AccountHandler.UndoActivation)
			r.Get("/{id}/closure-preview", cfg.AccountHandler.PreviewClosure)

			// Transactions
			r.Post("/{id}/deposits", cfg.TransactionHandler.Deposit)
			r.Post("/{id}/withdrawals", cfg.TransactionHandler.Withdraw)
			r.Get("/{id}/transactions", cfg.TransactionHandler.ListByAccount)
			r.Get("/{id}/transactions/{txId}", cfg.TransactionHandler.Get)
			r.Post("/{id}/transactions/{txId}/undo", cfg.TransactionHandler.Undo)
			r.Post("/{id}/transactions/{txId}/adjust", cfg.TransactionHandler.Adjust)

			// Interest
			r.Get("/{id}/interest", cfg.InterestHandler.Calculate)
			r.Post("/{id}/interest/post", cfg.InterestHandler.Post)

			// Charges
			r.Post("/{id}/charges", cfg.ChargeHandler.Add)
			r.Get("/{id}/charges", cfg.ChargeHandler.ListByAccount)
			r.Post("/{id}/charges/{chargeId}/pay", cfg.ChargeHandler.Pay)
			r.Post("/{id}/charges/{chargeId}/waive", cfg.ChargeHandler.Waive)

			r.Get("/{id}/transfers", cfg.TransferHandler.ListByAccount)
		})

		// Transfers
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Initiate)
			r.Get("/{id}", cfg.TransferHandler.Get)
			r.Post("/{id}/accept", cfg.TransferHandler.Accept)
			r.Post("/{id}/reject", cfg.TransferHandler.Reject)
			r.Post("/{id}/withdraw", cfg.TransferHandler.Withdraw)
		})

		// Batch jobs
		r.Route("/batch", func(r chi.Router) {
			r.Post("/post-interest", cfg.InterestHandler.PostBatch)
			r.Post("/apply-charges", cfg.ChargeHandler.ApplyDue)
			r.Post("/update-matured", cfg.InterestHandler.UpdateMatured)
		})
	})

	return r
}
