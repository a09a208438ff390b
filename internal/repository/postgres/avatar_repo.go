package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

type AvatarRepo struct {
	DB *sql.DB
}

func NewAvatarRepo(db *sql.DB) *AvatarRepo {
	return &AvatarRepo{DB: db}
}

// UpsertAvatar stores avatar data for a wallet account, replacing any
// previous image.
func (r *AvatarRepo) UpsertAvatar(ctx context.Context, account, avatarData string) error {
	query := `
	INSERT INTO avatars (account, avatar_data)
	VALUES ($1, $2)
	ON CONFLICT (account) DO UPDATE SET
		avatar_data = EXCLUDED.avatar_data;
	`
	_, err := r.DB.ExecContext(ctx, query, account, avatarData)
	if err != nil {
		return fmt.Errorf("failed to upsert avatar: %v", err)
	}
	return nil
}

// GetAvatar retrieves the avatar for an account. Returns ("", nil) when
// none is stored.
func (r *AvatarRepo) GetAvatar(ctx context.Context, account string) (string, error) {
	query := `
	SELECT avatar_data
	FROM avatars
	WHERE account = $1;
	`
	var avatarData string
	err := r.DB.QueryRowContext(ctx, query, account).Scan(&avatarData)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get avatar: %v", err)
	}
	return avatarData, nil
}
