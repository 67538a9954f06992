// Package app assembles the HTTP router from its dependencies. The same
// wiring serves cmd/api and the integration tests.
package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slotarena/platform/internal/auth"
	"github.com/slotarena/platform/internal/booking"
	"github.com/slotarena/platform/internal/guard"
	"github.com/slotarena/platform/internal/handler"
	adminhandler "github.com/slotarena/platform/internal/handler/admin"
	"github.com/slotarena/platform/internal/ledger"
	"github.com/slotarena/platform/internal/repository"
	"github.com/slotarena/platform/internal/service"
	"github.com/slotarena/platform/internal/settlement"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool         *pgxpool.Pool
	JWTMgr       *auth.JWTManager
	Logger       *slog.Logger
	LedgerLimits ledger.Limits
	// Booking attempts allowed per identity per minute.
	BookingRateLimit int
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	tournamentRepo := repository.NewTournamentRepository()
	participantRepo := repository.NewParticipantRepository()
	winnerRepo := repository.NewWinnerRepository()
	userRepo := repository.NewUserRepository()
	walletRepo := repository.NewWalletRepository()
	txRepo := repository.NewTransactionRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Ledger engine
	ledgerEngine := ledger.NewEngine(walletRepo, txRepo, outboxRepo, deps.LedgerLimits)

	// Services
	authSvc := service.NewAuthService(pool, userRepo, walletRepo, jwtMgr)
	walletSvc := service.NewWalletService(pool, walletRepo, txRepo, ledgerEngine, logger)
	bookingSvc := booking.NewService(pool, tournamentRepo, participantRepo, userRepo, walletRepo, outboxRepo, ledgerEngine, logger)
	settlementSvc := settlement.NewService(pool, tournamentRepo, participantRepo, winnerRepo, txRepo, outboxRepo, ledgerEngine, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	walletHandler := handler.NewWalletHandler(walletSvc)
	tournamentHandler := handler.NewTournamentHandler(bookingSvc)

	// Admin handlers
	tournamentAdmin := adminhandler.NewTournamentAdminHandler(pool, tournamentRepo, outboxRepo)
	settlementAdmin := adminhandler.NewSettlementHandler(settlementSvc)
	ledgerAdmin := adminhandler.NewLedgerAdminHandler(walletSvc)

	bookingLimiter := guard.NewRateLimiter(deps.BookingRateLimit, time.Minute)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Auth routes (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Player-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticatePlayer(jwtMgr))

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.List)
			r.Get("/{id}", tournamentHandler.Detail)
			r.Get("/{id}/slots", tournamentHandler.Slots)

			r.Group(func(r chi.Router) {
				r.Use(bookingLimiter.Middleware)
				r.Post("/{id}/book", tournamentHandler.Book)
				r.Post("/{id}/confirm", tournamentHandler.Confirm)
			})
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", walletHandler.GetBalance)
			r.Get("/history", walletHandler.History)
			r.Post("/topup", walletHandler.Topup)
			r.Post("/withdraw", walletHandler.Withdraw)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentAdmin.ListAll)
			r.Post("/", tournamentAdmin.Create)
			r.Patch("/{id}/status", tournamentAdmin.Transition)

			r.Post("/{id}/winners", settlementAdmin.SelectWinners)
			r.Post("/{id}/distribute", settlementAdmin.DistributePrizes)
			r.Post("/{id}/refunds", settlementAdmin.RefundCancelled)
		})

		r.Get("/wallets/{userId}/replay", ledgerAdmin.Replay)
	})

	return r
}
