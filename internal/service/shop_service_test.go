package service

import (
	"context"
	"errors"
	"testing"

	"cartside/api/internal/models"
	"cartside/api/internal/repository"
	"cartside/api/internal/security"

	"github.com/rs/zerolog"
)

type fakeShopStore struct {
	shops map[string]models.Shop
}

func newFakeShopStore() *fakeShopStore {
	return &fakeShopStore{shops: map[string]models.Shop{}}
}

func (f *fakeShopStore) Create(_ context.Context, shop models.Shop) error {
	if _, ok := f.shops[shop.Email]; ok {
		return errors.New("duplicate email")
	}
	f.shops[shop.Email] = shop
	return nil
}

func (f *fakeShopStore) FindByEmail(_ context.Context, email string) (models.Shop, error) {
	shop, ok := f.shops[email]
	if !ok {
		return models.Shop{}, repository.ErrShopNotFound
	}
	return shop, nil
}

func (f *fakeShopStore) GetByID(_ context.Context, id string) (models.Shop, error) {
	for _, shop := range f.shops {
		if shop.ID == id {
			return shop, nil
		}
	}
	return models.Shop{}, repository.ErrShopNotFound
}

func (f *fakeShopStore) Update(_ context.Context, shop models.Shop) error {
	if _, ok := f.shops[shop.Email]; !ok {
		return repository.ErrShopNotFound
	}
	f.shops[shop.Email] = shop
	return nil
}

func newTestShopService(store ShopStore, mailer *fakeMailer) (*ShopService, *security.TokenService) {
	cfg := testSecurityConfig()
	tokens := security.NewTokenService(cfg.TokenSecret, cfg.TokenTTL)
	return NewShopService(store, tokens, mailer, nil, cfg, zerolog.Nop()), tokens
}

func TestShopLifecycle(t *testing.T) {
	t.Parallel()

	store := newFakeShopStore()
	mailer := &fakeMailer{}
	svc, tokens := newTestShopService(store, mailer)
	ctx := context.Background()

	shop, err := svc.Register(ctx, RegisterShopInput{
		Name:      "Book Nook",
		OwnerName: "Bob",
		Email:     "shop@example.com",
		Password:  "secret1!",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if shop.Verified {
		t.Fatalf("freshly registered shop is verified")
	}

	// Unverified shops cannot log in, whatever the password.
	if _, _, err := svc.Login(ctx, "shop@example.com", "secret1!"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}

	if _, _, err := svc.Activate(ctx, "shop@example.com", "000000"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("wrong OTP: expected ErrInvalidOTP, got %v", err)
	}

	activated, token, err := svc.Activate(ctx, "shop@example.com", mailer.lastCode(t))
	if err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	if !activated.Verified || activated.OTP != nil {
		t.Fatalf("activation did not verify and clear the OTP")
	}
	if id, err := tokens.Verify(token); err != nil || id != shop.ID {
		t.Fatalf("shop token round-trip failed: id=%q err=%v", id, err)
	}

	if _, _, err := svc.Login(ctx, "shop@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "shop@example.com", "secret1!"); err != nil {
		t.Fatalf("shop login failed: %v", err)
	}
}

func TestShopRegisterMailFailure(t *testing.T) {
	t.Parallel()

	store := newFakeShopStore()
	svc, _ := newTestShopService(store, &fakeMailer{fail: true})

	_, err := svc.Register(context.Background(), RegisterShopInput{
		Name:      "Book Nook",
		OwnerName: "Bob",
		Email:     "shop@example.com",
		Password:  "secret1!",
	})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
	if len(store.shops) != 0 {
		t.Fatalf("shop persisted despite delivery failure")
	}
}

func TestShopNamespaceIsSeparate(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	userMailer := &fakeMailer{}
	accountSvc, _ := newTestAccountService(userStore, userMailer, nil)

	shopStore := newFakeShopStore()
	shopMailer := &fakeMailer{}
	shopSvc, _ := newTestShopService(shopStore, shopMailer)

	ctx := context.Background()
	registerUser(t, accountSvc, "same@example.com", "secret1!")

	// A shop may register the same address: namespaces are disjoint.
	if _, err := shopSvc.Register(ctx, RegisterShopInput{
		Name:      "Same Mart",
		OwnerName: "Sam",
		Email:     "same@example.com",
		Password:  "secret1!",
	}); err != nil {
		t.Fatalf("shop registration in separate namespace failed: %v", err)
	}
}
