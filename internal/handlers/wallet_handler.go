package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "moneytracker/internal/errors"
	"moneytracker/internal/models"
	"moneytracker/internal/services"
)

// WalletHandler handles wallet lifecycle requests.
type WalletHandler struct {
	walletService services.WalletServicer
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService services.WalletServicer) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// CreateWalletRequest represents the request payload for creating a wallet.
type CreateWalletRequest struct {
	Name        string            `json:"name" binding:"required,max=100"`
	Type        models.WalletType `json:"type" binding:"required,wallet_type"`
	Currency    string            `json:"currency" binding:"omitempty,iso4217"`
	Description string            `json:"description" binding:"max=500"`
	Icon        string            `json:"icon" binding:"max=50"`
	Color       string            `json:"color" binding:"omitempty,hex_color"`
}

// UpdateWalletRequest is a partial patch: absent fields are untouched.
type UpdateWalletRequest struct {
	Name          *string            `json:"name" binding:"omitempty,max=100"`
	Type          *models.WalletType `json:"type" binding:"omitempty,wallet_type"`
	Currency      *string            `json:"currency" binding:"omitempty,iso4217"`
	Description   *string            `json:"description" binding:"omitempty,max=500"`
	Icon          *string            `json:"icon" binding:"omitempty,max=50"`
	Color         *string            `json:"color" binding:"omitempty,hex_color"`
	IsFavorite    *bool              `json:"is_favorite"`
	FavoriteOrder *int               `json:"favorite_order"`
}

// TransferWalletRequest names the wallet absorbing this one's history.
type TransferWalletRequest struct {
	TargetWalletID string `json:"target_wallet_id" binding:"required,uuid"`
}

// BatchFavoriteUpdateRequest carries an ordered list of favorite writes.
type BatchFavoriteUpdateRequest struct {
	Favorites []FavoriteItem `json:"favorites" binding:"required,dive"`
}

// FavoriteItem is one favorite write; both fields are always applied.
type FavoriteItem struct {
	WalletID      string `json:"wallet_id" binding:"required,uuid"`
	IsFavorite    bool   `json:"is_favorite"`
	FavoriteOrder *int   `json:"favorite_order"`
}

// WalletResponse represents a wallet in responses, including the fields
// derived from the ledger.
type WalletResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Type          models.WalletType `json:"type"`
	Currency      string            `json:"currency"`
	Description   string            `json:"description,omitempty"`
	Icon          string            `json:"icon,omitempty"`
	Color         string            `json:"color,omitempty"`
	IsFavorite    bool              `json:"is_favorite"`
	FavoriteOrder *int              `json:"favorite_order,omitempty"`
	Balance       decimal.Decimal   `json:"balance"`
	DailyChange   decimal.Decimal   `json:"daily_change"`
	IsShared      bool              `json:"is_shared"`
	MemberCount   int               `json:"member_count"`
	IsOwner       bool              `json:"is_owner"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func toWalletResponse(view *services.WalletView) WalletResponse {
	return WalletResponse{
		ID:            view.Wallet.ID,
		Name:          view.Wallet.Name,
		Type:          view.Wallet.Type,
		Currency:      view.Wallet.Currency,
		Description:   view.Wallet.Description,
		Icon:          view.Wallet.Icon,
		Color:         view.Wallet.Color,
		IsFavorite:    view.Wallet.IsFavorite,
		FavoriteOrder: view.Wallet.FavoriteOrder,
		Balance:       view.Balance,
		DailyChange:   view.DailyChange,
		IsShared:      view.IsShared,
		MemberCount:   view.MemberCount,
		IsOwner:       view.IsOwner,
		CreatedAt:     view.Wallet.CreatedAt,
		UpdatedAt:     view.Wallet.UpdatedAt,
	}
}

func toWalletResponses(views []services.WalletView) []WalletResponse {
	responses := make([]WalletResponse, 0, len(views))
	for i := range views {
		responses = append(responses, toWalletResponse(&views[i]))
	}
	return responses
}

// GetWallets lists every wallet the user can read.
func (h *WalletHandler) GetWallets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	views, err := h.walletService.GetUserWallets(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWalletResponses(views))
}

// GetFavoriteWallets lists the user's favorite wallets in order.
func (h *WalletHandler) GetFavoriteWallets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	views, err := h.walletService.GetFavoriteWallets(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWalletResponses(views))
}

// GetWallet returns one wallet with its derived fields.
func (h *WalletHandler) GetWallet(c *gin.Context) {
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

	view, err := h.walletService.GetWalletByID(userID, walletID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWalletResponse(view))
}

// CreateWallet creates a wallet owned by the caller.
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	view, err := h.walletService.CreateWallet(userID, services.CreateWalletInput{
		Name:        req.Name,
		Type:        req.Type,
		Currency:    req.Currency,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWalletResponse(view))
}

// UpdateWallet applies a partial patch to an owned wallet.
func (h *WalletHandler) UpdateWallet(c *gin.Context) {
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

	var req UpdateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	view, err := h.walletService.UpdateWallet(userID, walletID, services.UpdateWalletInput{
		Name:          req.Name,
		Type:          req.Type,
		Currency:      req.Currency,
		Description:   req.Description,
		Icon:          req.Icon,
		Color:         req.Color,
		IsFavorite:    req.IsFavorite,
		FavoriteOrder: req.FavoriteOrder,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWalletResponse(view))
}

// DeleteWallet removes an owned wallet.
func (h *WalletHandler) DeleteWallet(c *gin.Context) {
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

	if err := h.walletService.DeleteWallet(userID, walletID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TransferWallet consolidates this wallet's history into another.
func (h *WalletHandler) TransferWallet(c *gin.Context) {
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

	var req TransferWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	view, err := h.walletService.TransferWallet(userID, walletID, req.TargetWalletID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWalletResponse(view))
}

// UpdateFavorites applies an all-or-nothing batch of favorite writes.
func (h *WalletHandler) UpdateFavorites(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BatchFavoriteUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	updates := make([]services.FavoriteUpdate, 0, len(req.Favorites))
	for _, item := range req.Favorites {
		updates = append(updates, services.FavoriteUpdate{
			WalletID:      item.WalletID,
			IsFavorite:    item.IsFavorite,
			FavoriteOrder: item.FavoriteOrder,
		})
	}

	views, err := h.walletService.UpdateFavorites(userID, updates)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWalletResponses(views))
}
