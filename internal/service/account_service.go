package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cartside/api/internal/config"
	"cartside/api/internal/ids"
	"cartside/api/internal/mail"
	"cartside/api/internal/models"
	"cartside/api/internal/repository"
	"cartside/api/internal/security"
)

// UserStore is the slice of the credential store the user lifecycle needs.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

// CooldownGate throttles OTP resends per email address.
type CooldownGate interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type AccountService struct {
	users    UserStore
	tokens   *security.TokenService
	mailer   mail.Sender
	cooldown CooldownGate
	cfg      config.SecurityConfig
	log      zerolog.Logger
}

func NewAccountService(
	users UserStore,
	tokens *security.TokenService,
	mailer mail.Sender,
	cooldown CooldownGate,
	cfg config.SecurityConfig,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		users:    users,
		tokens:   tokens,
		mailer:   mailer,
		cooldown: cooldown,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

var validRoles = map[models.UserRole]struct{}{
	models.UserRoleUser:            {},
	models.UserRoleSeller:          {},
	models.UserRoleInstructor:      {},
	models.UserRoleServiceProvider: {},
}

// Register creates an account in pending-otp state. The verification mail is
// dispatched before the record is persisted, so a delivery failure means no
// account exists afterwards.
func (s *AccountService) Register(ctx context.Context, input RegisterUserInput) (models.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" || input.Name == "" {
		return models.User{}, ErrInvalidInput
	}

	role := input.Role
	if role == "" {
		role = models.UserRoleUser
	}
	if _, ok := validRoles[role]; !ok {
		return models.User{}, ErrInvalidInput
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	code, expiresAt, err := security.GenerateOTP(s.cfg.OTPTTL)
	if err != nil {
		return models.User{}, err
	}

	if err := s.mailer.SendOTP(ctx, email, input.Name, code, expiresAt); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("otp mail dispatch failed")
		return models.User{}, ErrDeliveryFailed
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         input.Name,
		Role:         role,
		Verified:     false,
		OTP:          &code,
		OTPExpiresAt: &expiresAt,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// ResendOTP regenerates and persists a fresh OTP before dispatching it. A
// dispatch failure leaves the new code live: the old one is gone either way,
// so the caller's only recourse is another resend.
func (s *AccountService) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}

	if s.cooldown != nil {
		ok, err := s.cooldown.Acquire(ctx, "otp:user:"+email, s.cfg.ResendCooldown)
		if err != nil {
			s.log.Warn().Err(err).Msg("otp cooldown check failed")
		} else if !ok {
			return ErrResendThrottled
		}
	}

	code, expiresAt, err := security.GenerateOTP(s.cfg.OTPTTL)
	if err != nil {
		return err
	}

	user.OTP = &code
	user.OTPExpiresAt = &expiresAt
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, user.Email, user.Name, code, expiresAt); err != nil {
		s.log.Error().Err(err).Str("email", user.Email).Msg("otp resend dispatch failed")
		return ErrDeliveryFailed
	}
	return nil
}

// Activate verifies the OTP, marks the account verified, clears the OTP pair
// and mints a session token.
func (s *AccountService) Activate(ctx context.Context, email string, code string) (models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return models.User{}, "", ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, "", ErrNotFound
		}
		return models.User{}, "", err
	}
	if user.Verified {
		return models.User{}, "", ErrAlreadyVerified
	}
	if user.OTP == nil || user.OTPExpiresAt == nil ||
		*user.OTP != code || time.Now().After(*user.OTPExpiresAt) {
		return models.User{}, "", ErrInvalidOTP
	}

	user.Verified = true
	user.OTP = nil
	user.OTPExpiresAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return models.User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Login checks verification state before credentials: an unverified account
// fails with ErrNotVerified regardless of the supplied password.
func (s *AccountService) Login(ctx context.Context, email string, password string) (models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return models.User{}, "", ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, "", ErrNotFound
		}
		return models.User{}, "", err
	}
	if !user.Verified {
		return models.User{}, "", ErrNotVerified
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
