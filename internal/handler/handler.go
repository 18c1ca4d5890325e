package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nathanyu/account-transfer/internal/domain"
	"github.com/nathanyu/account-transfer/internal/engine"
	"github.com/nathanyu/account-transfer/internal/store"
	"github.com/nathanyu/account-transfer/internal/telemetry"
	"github.com/shopspring/decimal"
)

// Handler contains all HTTP handlers
type Handler struct {
	accounts *store.AccountStore
	engine   *engine.TransferEngine
}

// NewHandler creates a new handler
func NewHandler(accounts *store.AccountStore, transferEngine *engine.TransferEngine) *Handler {
	return &Handler{
		accounts: accounts,
		engine:   transferEngine,
	}
}

// CreateAccountRequest is the request body for account creation
type CreateAccountRequest struct {
	AccountID string          `json:"account_id" binding:"required"`
	Balance   decimal.Decimal `json:"balance"`
}

// CreateAccount handles POST /v1/accounts
func (h *Handler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.AccountsCreatedTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	acc := domain.Account{ID: req.AccountID, Balance: req.Balance}
	if err := h.accounts.Create(acc); err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			telemetry.AccountsCreatedTotal.WithLabelValues("duplicate").Inc()
		} else {
			telemetry.AccountsCreatedTotal.WithLabelValues("invalid").Inc()
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	telemetry.AccountsCreatedTotal.WithLabelValues("created").Inc()
	slog.InfoContext(c.Request.Context(), "account created",
		slog.String("account_id", acc.ID),
		slog.String("balance", acc.Balance.String()))
	c.JSON(http.StatusCreated, acc)
}

// GetAccount handles GET /v1/accounts/:account_id
func (h *Handler) GetAccount(c *gin.Context) {
	accountID := c.Param("account_id")

	acc, err := h.accounts.Get(accountID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, acc)
}

// AllAccountsResponse is the response for the account list endpoint
type AllAccountsResponse struct {
	Accounts     []domain.Account `json:"accounts"`
	TotalBalance decimal.Decimal  `json:"total_balance"`
	AccountCount int              `json:"account_count"`
}

// ListAccounts handles GET /v1/accounts
func (h *Handler) ListAccounts(c *gin.Context) {
	accounts := h.accounts.All()

	c.JSON(http.StatusOK, AllAccountsResponse{
		Accounts:     accounts,
		TotalBalance: h.accounts.TotalBalance(),
		AccountCount: len(accounts),
	})
}

// ClearAccounts handles DELETE /v1/accounts. Test isolation only.
func (h *Handler) ClearAccounts(c *gin.Context) {
	h.accounts.Clear()
	c.Status(http.StatusNoContent)
}

// TransferRequest is the request body for transfer endpoint
type TransferRequest struct {
	FromAccount string          `json:"from_account" binding:"required"`
	ToAccount   string          `json:"to_account" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

// TransferResponse is the response body for transfer endpoint
type TransferResponse struct {
	TransferID string `json:"transfer_id"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
}

// Transfer handles POST /v1/accounts/transfer
func (h *Handler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	// Structural amount validation belongs to the boundary; the engine
	// re-checks it regardless.
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": domain.ErrInvalidAmount.Error(),
		})
		return
	}

	transfer := domain.Transfer{
		TransferID:  uuid.Must(uuid.NewV7()).String(),
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Amount:      req.Amount,
	}

	if err := h.engine.Transfer(c.Request.Context(), transfer); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrAccountNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, TransferResponse{
			TransferID: transfer.TransferID,
			Success:    false,
			Message:    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, TransferResponse{
		TransferID: transfer.TransferID,
		Success:    true,
		Message:    "transfer completed",
	})
}

// HealthResponse is the response for health check endpoint
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *Handler) {
	// Health check
	r.GET("/health", h.Health)

	// API v1
	v1 := r.Group("/v1/accounts")
	{
		v1.POST("", h.CreateAccount)
		v1.GET("", h.ListAccounts)
		v1.DELETE("", h.ClearAccounts) // For testing
		v1.POST("/transfer", h.Transfer)
		v1.GET("/:account_id", h.GetAccount)
	}
}
