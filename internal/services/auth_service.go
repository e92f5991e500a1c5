package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/alimgiray/crewledger/internal/metrics"
	"github.com/alimgiray/crewledger/internal/models"
	"github.com/alimgiray/crewledger/internal/repositories"
	"github.com/alimgiray/crewledger/pkg/config"
	"github.com/alimgiray/crewledger/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const otpDigits = 6

// AuthService implements email one-time-password login
type AuthService struct {
	userRepo    *repositories.UserRepository
	mailer      Mailer
	tokens      *TokenService
	otpTTL      time.Duration
	maxAttempts int
	hashCost    int
	now         func() time.Time
	generateOTP func() (string, error)
}

func NewAuthService(userRepo *repositories.UserRepository, mailer Mailer, tokens *TokenService, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		mailer:      mailer,
		tokens:      tokens,
		otpTTL:      cfg.OTPTTL,
		maxAttempts: cfg.OTPMaxAttempts,
		hashCost:    bcrypt.DefaultCost,
		now:         time.Now,
		generateOTP: randomOTP,
	}
}

// randomOTP returns a uniformly random zero-padded numeric code
func randomOTP() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(otpDigits), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SendOTP issues a new code for email, creating the user on first contact,
// and mails it. Only the bcrypt hash of the code is stored.
func (s *AuthService) SendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return models.MissingField("email")
	}
	if err := models.ValidateEmail(email); err != nil {
		return err
	}

	otp, err := s.generateOTP()
	if err != nil {
		return fmt.Errorf("generate OTP: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash OTP: %w", err)
	}
	expiresAt := s.now().UTC().Add(s.otpTTL)

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		user = &models.User{
			ID:           uuid.New(),
			Email:        email,
			OTPHash:      string(hash),
			OTPExpiresAt: &expiresAt,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
	case err != nil:
		return fmt.Errorf("get user: %w", err)
	default:
		if err := s.userRepo.SetOTP(ctx, user.ID.String(), string(hash), expiresAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &models.OperationFailedError{Operation: "update OTP"}
			}
			return fmt.Errorf("store OTP: %w", err)
		}
	}

	body := fmt.Sprintf("Your login code is %s. It expires in %d minutes.", otp, int(s.otpTTL.Minutes()))
	if err := s.mailer.Send(ctx, email, "Your login code", body); err != nil {
		return err
	}

	metrics.OTPSent.Inc()
	logger.WithField("user_id", user.ID).Info("OTP issued")
	return nil
}

// VerifyOTP checks otp against the code stored for email and returns a
// signed access token on success
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (string, *models.User, error) {
	email = normalizeEmail(email)
	otp = strings.TrimSpace(otp)
	if email == "" || otp == "" {
		return "", nil, models.MissingField("email or OTP")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, models.ErrUserNotFound
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}

	if !user.HasPendingOTP() {
		s.recordVerification("missing")
		return "", nil, models.NewValidationError("otp", "No OTP found. Please request a new one.")
	}

	if user.OTPExpired(s.now()) {
		s.recordVerification("expired")
		if err := s.userRepo.ClearOTP(ctx, user.ID.String()); err != nil {
			return "", nil, fmt.Errorf("clear OTP: %w", err)
		}
		return "", nil, models.NewValidationError("otp", "OTP expired")
	}

	// The attempt is consumed before comparing so concurrent guesses cannot
	// all slip under the limit.
	otpHash, attempts, err := s.userRepo.ClaimOTPAttempt(ctx, user.ID.String(), s.maxAttempts)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return "", nil, fmt.Errorf("claim OTP attempt: %w", err)
		}
		s.recordVerification("locked")
		if err := s.userRepo.ClearOTP(ctx, user.ID.String()); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", nil, fmt.Errorf("clear OTP: %w", err)
		}
		return "", nil, models.NewValidationError("otp", "Too many failed attempts. Please request a new OTP.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(otpHash), []byte(otp)); err != nil {
		s.recordVerification("mismatch")
		logger.WithField("user_id", user.ID).WithField("attempts", attempts).Warn("OTP mismatch")
		return "", nil, models.NewValidationError("otp", "OTP does not match")
	}

	if err := s.userRepo.ClearOTP(ctx, user.ID.String()); err != nil {
		return "", nil, fmt.Errorf("clear OTP: %w", err)
	}
	user.OTPHash = ""
	user.OTPExpiresAt = nil
	user.OTPAttempts = 0

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.recordVerification("success")
	logger.WithField("user_id", user.ID).Info("User logged in")
	return token, user, nil
}

func (s *AuthService) recordVerification(result string) {
	metrics.OTPVerifications.WithLabelValues(result).Inc()
}

// Authenticate resolves an access token to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, &models.UnauthorizedError{}
	}

	userID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, &models.UnauthorizedError{Reason: "invalid access token"}
	}

	user, err := s.userRepo.GetByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.UnauthorizedError{Reason: "invalid credentials"}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}
