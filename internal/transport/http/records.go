package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sbcapp/tictactoe-chain/backend/internal/service/records"
)

type RecordsHandler struct {
	Records *records.Service
}

func NewRecordsHandler(svc *records.Service) *RecordsHandler {
	return &RecordsHandler{Records: svc}
}

// GetWinner returns the persisted result for a game. The winner is the
// winning wallet account, or the draw sentinel address for a draw.
func (h *RecordsHandler) GetWinner(c *gin.Context) {
	gameID := c.Param("gameId")

	winner, err := h.Records.GetResult(c.Request.Context(), gameID)
	if err != nil {
		log.Printf("[HTTP] Winner lookup failed for game %s: %v", gameID, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if winner == "" {
		c.String(http.StatusNotFound, "Game not found or no winner yet")
		return
	}

	c.JSON(http.StatusOK, gin.H{"winner": winner})
}

type saveAvatarRequest struct {
	Account    string `json:"account" binding:"required"`
	AvatarData string `json:"avatarData" binding:"required"`
}

// SaveAvatar upserts the avatar image for a wallet account.
func (h *RecordsHandler) SaveAvatar(c *gin.Context) {
	var req saveAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account and avatarData are required"})
		return
	}

	if err := h.Records.SaveAvatar(c.Request.Context(), req.Account, req.AvatarData); err != nil {
		log.Printf("[HTTP] Avatar save failed for account %s: %v", req.Account, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetAvatar returns the avatar stored for a wallet account.
func (h *RecordsHandler) GetAvatar(c *gin.Context) {
	account := c.Query("account")

	avatarData, err := h.Records.GetAvatar(c.Request.Context(), account)
	if err != nil {
		log.Printf("[HTTP] Avatar lookup failed for account %s: %v", account, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if avatarData == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Avatar not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatarData": avatarData})
}
