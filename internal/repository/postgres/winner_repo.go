package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

type WinnerRepo struct {
	DB *sql.DB
}

func NewWinnerRepo(db *sql.DB) *WinnerRepo {
	return &WinnerRepo{DB: db}
}

// UpsertWinner records the outcome of a game, keyed by game ID. Last
// write wins so a forfeit after a scored win simply overwrites.
func (r *WinnerRepo) UpsertWinner(ctx context.Context, gameID, winnerAccount string) error {
	query := `
	INSERT INTO winners (game_id, winner_account)
	VALUES ($1, $2)
	ON CONFLICT (game_id) DO UPDATE SET
		winner_account = EXCLUDED.winner_account;
	`
	_, err := r.DB.ExecContext(ctx, query, gameID, winnerAccount)
	if err != nil {
		return fmt.Errorf("failed to upsert winner: %v", err)
	}
	return nil
}

// GetWinner retrieves the recorded outcome for a game. Returns ("",
// nil) when no record exists yet.
func (r *WinnerRepo) GetWinner(ctx context.Context, gameID string) (string, error) {
	query := `
	SELECT winner_account
	FROM winners
	WHERE game_id = $1;
	`
	var winnerAccount string
	err := r.DB.QueryRowContext(ctx, query, gameID).Scan(&winnerAccount)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get winner: %v", err)
	}
	return winnerAccount, nil
}
