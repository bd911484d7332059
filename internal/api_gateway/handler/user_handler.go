package handler

import (
	"log/slog"
	"net/http"

	"github.com/flight-booking-engine/internal/api_gateway/middleware"
	"github.com/flight-booking-engine/internal/api_gateway/service"
	bookingsvc "github.com/flight-booking-engine/internal/booking_engine/service"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// UserHandler handles HTTP requests for users and their wallets
type UserHandler struct {
	userService    service.UserService
	bookingService bookingsvc.BookingService
	logger         *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *slog.Logger, userService service.UserService, bookingService bookingsvc.BookingService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		bookingService: bookingService,
		logger:         logger,
	}
}

// CreateOrGet registers a user with the initial wallet balance, or returns the existing one
func (h *UserHandler) CreateOrGet(c *gin.Context) {
	logger := middleware.RequestLogger(c, h.logger)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, created, err := h.userService.CreateOrGetUser(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		respondError(c, logger, "Failed to create user", err)
		return
	}

	if created {
		RespondCreated(c, mapUserToResponse(u))
		return
	}
	RespondOK(c, mapUserToResponse(u))
}

// Wallet returns the current balance
func (h *UserHandler) Wallet(c *gin.Context) {
	u, err := h.userService.GetUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, middleware.RequestLogger(c, h.logger), "Failed to get wallet", err)
		return
	}

	RespondOK(c, WalletResponse{WalletBalance: u.WalletBalance})
}

// Transactions returns the wallet ledger newest first
func (h *UserHandler) Transactions(c *gin.Context) {
	txs, err := h.userService.ListTransactions(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, middleware.RequestLogger(c, h.logger), "Failed to list wallet transactions", err)
		return
	}

	RespondOK(c, mapTransactionsToResponse(txs))
}

// AddFunds credits the wallet
func (h *UserHandler) AddFunds(c *gin.Context) {
	logger := middleware.RequestLogger(c, h.logger)

	var req AddFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if !shared.ValidAmount(req.Amount) {
		RespondBadRequest(c, "Amount must be greater than 0 with at most 2 decimal places")
		return
	}

	res, err := h.bookingService.AddFunds(c.Request.Context(), &bookingsvc.AddFundsRequest{
		UserEmail:     c.Param("email"),
		Amount:        req.Amount,
		Description:   req.Description,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		respondError(c, logger, "Failed to add funds", err)
		return
	}

	RespondOK(c, AddFundsResponse{
		Message:    "Money added successfully",
		NewBalance: res.User.WalletBalance,
	})
}

// Statement retrieves paginated wallet history from the ledger projection
func (h *UserHandler) Statement(c *gin.Context) {
	logger := middleware.RequestLogger(c, h.logger)

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		logger.Warn("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	entries, total, err := h.userService.GetStatement(c.Request.Context(), c.Param("email"), pagination.Page, pagination.PerPage)
	if err != nil {
		respondError(c, logger, "Failed to get statement", err)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, mapLedgerEntriesToResponse(entries), pagination.Page, pagination.PerPage, int(total))
}
