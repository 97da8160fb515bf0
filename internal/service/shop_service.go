package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"cartside/api/internal/config"
	"cartside/api/internal/ids"
	"cartside/api/internal/mail"
	"cartside/api/internal/models"
	"cartside/api/internal/repository"
	"cartside/api/internal/security"
)

// ShopStore is the slice of the credential store the shop lifecycle needs.
// Shops form their own account namespace, distinct from users.
type ShopStore interface {
	Create(ctx context.Context, shop models.Shop) error
	FindByEmail(ctx context.Context, email string) (models.Shop, error)
	GetByID(ctx context.Context, id string) (models.Shop, error)
	Update(ctx context.Context, shop models.Shop) error
}

type ShopService struct {
	shops    ShopStore
	tokens   *security.TokenService
	mailer   mail.Sender
	cooldown CooldownGate
	cfg      config.SecurityConfig
	log      zerolog.Logger
}

func NewShopService(
	shops ShopStore,
	tokens *security.TokenService,
	mailer mail.Sender,
	cooldown CooldownGate,
	cfg config.SecurityConfig,
	log zerolog.Logger,
) *ShopService {
	return &ShopService{
		shops:    shops,
		tokens:   tokens,
		mailer:   mailer,
		cooldown: cooldown,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterShopInput struct {
	Name        string
	OwnerName   string
	Email       string
	Password    string
	Description string
}

func (s *ShopService) Register(ctx context.Context, input RegisterShopInput) (models.Shop, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" || input.Name == "" {
		return models.Shop{}, ErrInvalidInput
	}

	if _, err := s.shops.FindByEmail(ctx, email); err == nil {
		return models.Shop{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrShopNotFound) {
		return models.Shop{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.Shop{}, err
	}

	code, expiresAt, err := security.GenerateOTP(s.cfg.OTPTTL)
	if err != nil {
		return models.Shop{}, err
	}

	if err := s.mailer.SendOTP(ctx, email, input.OwnerName, code, expiresAt); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("shop otp mail dispatch failed")
		return models.Shop{}, ErrDeliveryFailed
	}

	shop := models.Shop{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         input.Name,
		OwnerName:    input.OwnerName,
		Description:  input.Description,
		Verified:     false,
		OTP:          &code,
		OTPExpiresAt: &expiresAt,
	}

	if err := s.shops.Create(ctx, shop); err != nil {
		return models.Shop{}, err
	}

	return shop, nil
}

func (s *ShopService) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrInvalidInput
	}

	shop, err := s.shops.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			return ErrNotFound
		}
		return err
	}
	if shop.Verified {
		return ErrAlreadyVerified
	}

	if s.cooldown != nil {
		ok, err := s.cooldown.Acquire(ctx, "otp:shop:"+email, s.cfg.ResendCooldown)
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

	shop.OTP = &code
	shop.OTPExpiresAt = &expiresAt
	if err := s.shops.Update(ctx, shop); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, shop.Email, shop.OwnerName, code, expiresAt); err != nil {
		s.log.Error().Err(err).Str("email", shop.Email).Msg("shop otp resend dispatch failed")
		return ErrDeliveryFailed
	}
	return nil
}

func (s *ShopService) Activate(ctx context.Context, email string, code string) (models.Shop, string, error) {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return models.Shop{}, "", ErrInvalidInput
	}

	shop, err := s.shops.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			return models.Shop{}, "", ErrNotFound
		}
		return models.Shop{}, "", err
	}
	if shop.Verified {
		return models.Shop{}, "", ErrAlreadyVerified
	}
	if shop.OTP == nil || shop.OTPExpiresAt == nil ||
		*shop.OTP != code || time.Now().After(*shop.OTPExpiresAt) {
		return models.Shop{}, "", ErrInvalidOTP
	}

	shop.Verified = true
	shop.OTP = nil
	shop.OTPExpiresAt = nil
	if err := s.shops.Update(ctx, shop); err != nil {
		return models.Shop{}, "", err
	}

	token, err := s.tokens.Issue(shop.ID)
	if err != nil {
		return models.Shop{}, "", err
	}
	return shop, token, nil
}

func (s *ShopService) Login(ctx context.Context, email string, password string) (models.Shop, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return models.Shop{}, "", ErrInvalidInput
	}

	shop, err := s.shops.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			return models.Shop{}, "", ErrNotFound
		}
		return models.Shop{}, "", err
	}
	if !shop.Verified {
		return models.Shop{}, "", ErrNotVerified
	}

	ok, err := security.VerifyPassword(password, shop.PasswordHash)
	if err != nil || !ok {
		return models.Shop{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(shop.ID)
	if err != nil {
		return models.Shop{}, "", err
	}
	return shop, token, nil
}
