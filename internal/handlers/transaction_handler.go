package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "moneytracker/internal/errors"
	"moneytracker/internal/models"
	"moneytracker/internal/pagination"
	"moneytracker/internal/services"
)

// TransactionHandler handles ledger requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for recording
// a ledger entry. Amounts are exact decimal strings, never floats.
type CreateTransactionRequest struct {
	WalletID        string                 `json:"wallet_id" binding:"required,uuid"`
	Type            models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount          decimal.Decimal        `json:"amount" binding:"required"`
	CategoryID      *string                `json:"category_id" binding:"omitempty,uuid"`
	Description     string                 `json:"description" binding:"max=500"`
	TransactionDate *string                `json:"transaction_date"`
	TargetWalletID  *string                `json:"target_wallet_id" binding:"omitempty,uuid"`
}

// TransactionResponse represents a ledger entry in responses.
type TransactionResponse struct {
	ID              string                 `json:"id"`
	WalletID        string                 `json:"wallet_id"`
	UserID          string                 `json:"user_id"`
	Type            models.TransactionType `json:"type"`
	Amount          decimal.Decimal        `json:"amount"`
	Currency        string                 `json:"currency"`
	CategoryID      *string                `json:"category_id,omitempty"`
	Category        *models.Category       `json:"category,omitempty"`
	Description     string                 `json:"description,omitempty"`
	RelatedWalletID *string                `json:"related_wallet_id,omitempty"`
	TransactionDate string                 `json:"transaction_date"`
	CreatedAt       time.Time              `json:"created_at"`
}

func toTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		WalletID:        t.WalletID,
		UserID:          t.UserID,
		Type:            t.Type,
		Amount:          t.Amount,
		Currency:        t.Currency,
		CategoryID:      t.CategoryID,
		Category:        t.Category,
		Description:     t.Description,
		RelatedWalletID: t.RelatedWalletID,
		TransactionDate: t.TransactionDate.Format(dateLayout),
		CreatedAt:       t.CreatedAt,
	}
}

func toTransactionPage(page *pagination.PageResponse[models.Transaction]) pagination.PageResponse[TransactionResponse] {
	responses := make([]TransactionResponse, 0, len(page.Data))
	for i := range page.Data {
		responses = append(responses, toTransactionResponse(&page.Data[i]))
	}
	return pagination.PageResponse[TransactionResponse]{
		Data:       responses,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
}

// CreateTransaction records a ledger entry, creating both legs when the
// entry is a transfer with a target wallet.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.CreateTransactionInput{
		WalletID:       req.WalletID,
		Type:           req.Type,
		Amount:         req.Amount,
		CategoryID:     req.CategoryID,
		Description:    req.Description,
		TargetWalletID: req.TargetWalletID,
	}
	if req.TransactionDate != nil && *req.TransactionDate != "" {
		parsed, err := parseDate(*req.TransactionDate)
		if err != nil {
			respondWithError(c, err)
			return
		}
		input.TransactionDate = &parsed
	}

	transaction, err := h.transactionService.CreateTransaction(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransaction returns one ledger entry by ID.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction removes one ledger entry.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTransactions lists entries across every wallet the user can read.
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionPage(result))
}

// GetWalletTransactions lists one wallet's ledger, optionally limited to
// an inclusive date window via from/to query parameters.
func (h *TransactionHandler) GetWalletTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if from != "" || to != "" {
		if from == "" || to == "" {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "both from and to are required for a date range"))
			return
		}
		start, err := parseDate(from)
		if err != nil {
			respondWithError(c, err)
			return
		}
		end, err := parseDate(to)
		if err != nil {
			respondWithError(c, err)
			return
		}

		result, err := h.transactionService.GetWalletTransactionsByDateRange(userID, walletID, start, end, page)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, toTransactionPage(result))
		return
	}

	result, err := h.transactionService.GetWalletTransactions(userID, walletID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionPage(result))
}

// GetWalletBalance returns a wallet's recomputed balance.
func (h *TransactionHandler) GetWalletBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.transactionService.GetWalletBalance(userID, walletID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet_id": walletID, "balance": balance})
}
