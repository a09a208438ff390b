package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sbcapp/tictactoe-chain/backend/internal/service/game"
)

type WatchHandler struct {
	SessionManager *game.Manager
}

func NewWatchHandler(sm *game.Manager) *WatchHandler {
	return &WatchHandler{SessionManager: sm}
}

type liveGameResponse struct {
	GameID    string `json:"gameId"`
	BetAmount string `json:"betAmount"`
	StartedAt string `json:"startedAt"`
}

// GetLiveGames returns all in-progress sessions
func (h *WatchHandler) GetLiveGames(c *gin.Context) {
	liveGames := h.SessionManager.LiveGames()

	response := make([]liveGameResponse, 0, len(liveGames))
	for _, g := range liveGames {
		response = append(response, liveGameResponse{
			GameID:    g.GameID,
			BetAmount: g.BetAmount,
			StartedAt: g.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	c.JSON(http.StatusOK, response)
}
