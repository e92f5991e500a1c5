package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/alimgiray/crewledger/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, email, otp_hash, otp_expires_at, otp_attempts, created_at, updated_at`

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, otp_hash, otp_expires_at, otp_attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID.String(),
		user.Email,
		user.OTPHash,
		user.OTPExpiresAt,
		user.OTPAttempts,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.OTPHash,
		&user.OTPExpiresAt,
		&user.OTPAttempts,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetOTP stores a new OTP hash and expiry and resets the attempt counter
func (r *UserRepository) SetOTP(ctx context.Context, id string, otpHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET otp_hash = ?, otp_expires_at = ?, otp_attempts = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	return r.execOne(ctx, query, otpHash, expiresAt.UTC(), id)
}

// ClaimOTPAttempt consumes one verification attempt for the pending OTP of a
// user and returns the hash to compare against. It returns sql.ErrNoRows when
// no OTP is pending or the attempts are used up.
func (r *UserRepository) ClaimOTPAttempt(ctx context.Context, id string, maxAttempts int) (string, int, error) {
	query := `
		UPDATE users
		SET otp_attempts = otp_attempts + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND otp_hash != '' AND otp_attempts < ?
		RETURNING otp_hash, otp_attempts
	`

	var (
		otpHash  string
		attempts int
	)
	if err := r.db.QueryRowContext(ctx, query, id, maxAttempts).Scan(&otpHash, &attempts); err != nil {
		return "", 0, err
	}
	return otpHash, attempts, nil
}

// ClearOTP removes the pending OTP of a user
func (r *UserRepository) ClearOTP(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET otp_hash = '', otp_expires_at = NULL, otp_attempts = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	return r.execOne(ctx, query, id)
}

// ClearExpiredOTPs removes every OTP that expired before now and returns
// how many were cleared
func (r *UserRepository) ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE users
		SET otp_hash = '', otp_expires_at = NULL, otp_attempts = 0, updated_at = CURRENT_TIMESTAMP
		WHERE otp_expires_at IS NOT NULL AND otp_expires_at < ?
	`

	result, err := r.db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireRows(result)
}
