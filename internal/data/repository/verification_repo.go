package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"socialgram/internal/data/entity"
	"socialgram/pkg/apperr"
	"socialgram/pkg/database"
)

// ErrCodeOutstanding is returned when an unconsumed, unexpired code already
// exists for the account.
var ErrCodeOutstanding = apperr.Conflict("A verification code was already sent. Wait for it to expire before requesting another")

type VerificationRepository interface {
	Create(ctx context.Context, code *entity.VerificationCode) error
	CreateExclusive(ctx context.Context, code *entity.VerificationCode) error
	FindValid(ctx context.Context, userID uuid.UUID, code string) (*entity.VerificationCode, error)
	MarkConfirmed(ctx context.Context, codeID uuid.UUID) error
	HasOutstanding(ctx context.Context, userID uuid.UUID) (bool, error)
}

type verificationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewVerificationRepository(db database.PgxIface, log *zap.Logger) VerificationRepository {
	return &verificationRepository{
		db:  db,
		log: log.With(zap.String("repository", "verification")),
	}
}

const insertCodeQuery = `
		INSERT INTO user_confirmations (id, user_id, code, channel,
		                                expires_at, is_confirmed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

func (r *verificationRepository) Create(ctx context.Context, code *entity.VerificationCode) error {
	_, err := r.db.Exec(ctx, insertCodeQuery,
		code.ID,
		code.UserID,
		code.Code,
		code.Channel,
		code.ExpiresAt,
		code.IsConfirmed,
		code.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create verification code",
			zap.Error(err),
			zap.String("user_id", code.UserID.String()),
			zap.String("channel", string(code.Channel)),
		)
		return fmt.Errorf("create verification code for %s: %w", code.UserID.String(), err)
	}

	return nil
}

// CreateExclusive inserts the code only if no unconsumed, unexpired code
// exists for the account. The user row is locked for the duration of the
// transaction so two concurrent requests cannot both pass the outstanding
// check.
func (r *verificationRepository) CreateExclusive(ctx context.Context, code *entity.VerificationCode) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin issue transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var lockedID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`,
		code.UserID,
	).Scan(&lockedID)
	if err != nil {
		r.log.Error("Failed to lock user row for issuance",
			zap.Error(err),
			zap.String("user_id", code.UserID.String()),
		)
		return fmt.Errorf("lock user %s: %w", code.UserID.String(), err)
	}

	var outstanding bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_confirmations
			WHERE user_id = $1
			  AND is_confirmed = false
			  AND expires_at > NOW()
		)
	`, code.UserID).Scan(&outstanding)
	if err != nil {
		return fmt.Errorf("check outstanding code for %s: %w", code.UserID.String(), err)
	}
	if outstanding {
		return ErrCodeOutstanding
	}

	_, err = tx.Exec(ctx, insertCodeQuery,
		code.ID,
		code.UserID,
		code.Code,
		code.Channel,
		code.ExpiresAt,
		code.IsConfirmed,
		code.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create verification code for %s: %w", code.UserID.String(), err)
	}

	return tx.Commit(ctx)
}

// FindValid returns the newest unconsumed, unexpired code matching the
// submitted value. Newest-first makes the pick deterministic if issuance
// discipline was ever violated.
func (r *verificationRepository) FindValid(ctx context.Context, userID uuid.UUID, submitted string) (*entity.VerificationCode, error) {
	query := `
		SELECT id, user_id, code, channel, expires_at, is_confirmed, created_at
		FROM user_confirmations
		WHERE user_id = $1
		  AND code = $2
		  AND is_confirmed = false
		  AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`

	var code entity.VerificationCode
	err := r.db.QueryRow(ctx, query, userID, submitted).Scan(
		&code.ID,
		&code.UserID,
		&code.Code,
		&code.Channel,
		&code.ExpiresAt,
		&code.IsConfirmed,
		&code.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find valid verification code",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find valid code for %s: %w", userID.String(), err)
	}

	return &code, nil
}

func (r *verificationRepository) MarkConfirmed(ctx context.Context, codeID uuid.UUID) error {
	query := `
		UPDATE user_confirmations
		SET is_confirmed = true
		WHERE id = $1 AND is_confirmed = false
	`

	result, err := r.db.Exec(ctx, query, codeID)
	if err != nil {
		r.log.Error("Failed to mark code as confirmed",
			zap.Error(err),
			zap.String("code_id", codeID.String()),
		)
		return fmt.Errorf("mark code %s confirmed: %w", codeID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("code %s not found or already confirmed", codeID.String())
	}

	return nil
}

func (r *verificationRepository) HasOutstanding(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_confirmations
			WHERE user_id = $1
			  AND is_confirmed = false
			  AND expires_at > NOW()
		)
	`

	var outstanding bool
	err := r.db.QueryRow(ctx, query, userID).Scan(&outstanding)
	if err != nil {
		r.log.Error("Failed to check outstanding code",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return false, fmt.Errorf("check outstanding code for %s: %w", userID.String(), err)
	}

	return outstanding, nil
}
