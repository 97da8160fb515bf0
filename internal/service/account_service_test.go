package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"cartside/api/internal/config"
	"cartside/api/internal/models"
	"cartside/api/internal/repository"
	"cartside/api/internal/security"
)

// --- fakes ---

type fakeUserStore struct {
	users map[string]models.User // keyed by email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]models.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) error {
	if _, ok := f.users[user.Email]; ok {
		return errors.New("duplicate email")
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) Update(_ context.Context, user models.User) error {
	if _, ok := f.users[user.Email]; !ok {
		return repository.ErrUserNotFound
	}
	f.users[user.Email] = user
	return nil
}

type sentMail struct {
	To        string
	Code      string
	ExpiresAt time.Time
}

type fakeMailer struct {
	sent []sentMail
	fail bool
}

func (f *fakeMailer) SendOTP(_ context.Context, to string, _ string, code string, expiresAt time.Time) error {
	if f.fail {
		return errors.New("smtp unreachable")
	}
	f.sent = append(f.sent, sentMail{To: to, Code: code, ExpiresAt: expiresAt})
	return nil
}

func (f *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatalf("no mail sent")
	}
	return f.sent[len(f.sent)-1].Code
}

type fakeCooldown struct {
	allow bool
}

func (f *fakeCooldown) Acquire(context.Context, string, time.Duration) (bool, error) {
	return f.allow, nil
}

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		TokenSecret:    "test-secret",
		TokenTTL:       time.Hour,
		OTPTTL:         10 * time.Minute,
		ResendCooldown: time.Minute,
	}
}

func newTestAccountService(store UserStore, mailer *fakeMailer, cooldown CooldownGate) (*AccountService, *security.TokenService) {
	cfg := testSecurityConfig()
	tokens := security.NewTokenService(cfg.TokenSecret, cfg.TokenTTL)
	return NewAccountService(store, tokens, mailer, cooldown, cfg, zerolog.Nop()), tokens
}

func registerUser(t *testing.T, svc *AccountService, email string, password string) models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterUserInput{
		Name:     "Test User",
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	return user
}

// --- register ---

func TestRegisterLeavesAccountPending(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mailer := &fakeMailer{}
	svc, _ := newTestAccountService(store, mailer, nil)

	before := time.Now()
	user := registerUser(t, svc, "alice@example.com", "secret1!")
	after := time.Now()

	if user.Verified {
		t.Fatalf("freshly registered account is verified")
	}
	if user.OTP == nil || user.OTPExpiresAt == nil {
		t.Fatalf("pending account is missing its OTP pair")
	}
	if *user.OTP != mailer.lastCode(t) {
		t.Fatalf("stored OTP %q differs from mailed code %q", *user.OTP, mailer.lastCode(t))
	}
	if user.OTPExpiresAt.Before(before.Add(10 * time.Minute)) || user.OTPExpiresAt.After(after.Add(10*time.Minute)) {
		t.Fatalf("OTP expiry %v is not 10 minutes after issuance", user.OTPExpiresAt)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc, _ := newTestAccountService(store, &fakeMailer{}, nil)

	registerUser(t, svc, "alice@example.com", "secret1!")
	_, err := svc.Register(context.Background(), RegisterUserInput{
		Name:     "Other",
		Email:    "Alice@Example.com", // case-normalized into the same namespace
		Password: "secret2!",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterMailFailureCreatesNothing(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc, _ := newTestAccountService(store, &fakeMailer{fail: true}, nil)

	_, err := svc.Register(context.Background(), RegisterUserInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret1!",
	})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
	if len(store.users) != 0 {
		t.Fatalf("account persisted despite delivery failure")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAccountService(newFakeUserStore(), &fakeMailer{}, nil)

	cases := []RegisterUserInput{
		{Name: "", Email: "a@b.com", Password: "secret1!"},
		{Name: "A", Email: "", Password: "secret1!"},
		{Name: "A", Email: "a@b.com", Password: ""},
		{Name: "A", Email: "a@b.com", Password: "secret1!", Role: "superadmin"},
	}
	for _, input := range cases {
		if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", input, err)
		}
	}
}

// --- activate ---

func TestActivateSuccessClearsOTP(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mailer := &fakeMailer{}
	svc, tokens := newTestAccountService(store, mailer, nil)

	registered := registerUser(t, svc, "alice@example.com", "secret1!")
	code := mailer.lastCode(t)

	user, token, err := svc.Activate(context.Background(), "alice@example.com", code)
	if err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	if !user.Verified {
		t.Fatalf("activated account is not verified")
	}
	if user.OTP != nil || user.OTPExpiresAt != nil {
		t.Fatalf("OTP pair not cleared on activation")
	}

	accountID, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("minted token does not verify: %v", err)
	}
	if accountID != registered.ID {
		t.Fatalf("token resolves to %q, want %q", accountID, registered.ID)
	}

	// The cleared OTP must not be reusable.
	_, _, err = svc.Activate(context.Background(), "alice@example.com", code)
	if !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified on second activation, got %v", err)
	}
}

func TestActivateWrongOTP(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mailer := &fakeMailer{}
	svc, _ := newTestAccountService(store, mailer, nil)

	registerUser(t, svc, "alice@example.com", "secret1!")

	// Stored codes are sampled from [100000, 999999], so 000000 never matches.
	_, _, err := svc.Activate(context.Background(), "alice@example.com", "000000")
	if !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}
}

func TestActivateExpiredOTP(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mailer := &fakeMailer{}
	svc, _ := newTestAccountService(store, mailer, nil)

	registerUser(t, svc, "alice@example.com", "secret1!")
	code := mailer.lastCode(t)

	user := store.users["alice@example.com"]
	expired := time.Now().Add(-time.Second)
	user.OTPExpiresAt = &expired
	store.users["alice@example.com"] = user

	_, _, err := svc.Activate(context.Background(), "alice@example.com", code)
	if !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP for expired code, got %v", err)
	}
}

func TestActivateEdgeCases(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAccountService(newFakeUserStore(), &fakeMailer{}, nil)
	ctx := context.Background()

	if _, _, err := svc.Activate(ctx, "", "123456"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing email: expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := svc.Activate(ctx, "a@b.com", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing otp: expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := svc.Activate(ctx, "ghost@example.com", "123456"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown email: expected ErrNotFound, got %v", err)
	}
}

// --- login ---

func TestLoginUnverifiedAccount(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mailer := &fakeMailer{}
	svc, _ := newTestAccountService(store, mailer, nil)

	registerUser(t, svc, "alice@example.com", "secret1!")

	// Verification state gates before credentials: even the correct
	// password fails with NotVerified.
	_, _, err := svc.Login(context.Background(), "alice@example.com", "secret1!")
	if !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}
	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified with wrong password too, got %v", err)
	}
}

func TestLoginCredentialChecks(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mailer := &fakeMailer{}
	svc, tokens := newTestAccountService(store, mailer, nil)

	registered := registerUser(t, svc, "alice@example.com", "secret1!")
	if _, _, err := svc.Activate(context.Background(), "alice@example.com", mailer.lastCode(t)); err != nil {
		t.Fatalf("Activate error: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "secret1!"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown email: expected ErrNotFound, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	user, token, err := svc.Login(context.Background(), "alice@example.com", "secret1!")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("login returned account %q, want %q", user.ID, registered.ID)
	}
	accountID, err := tokens.Verify(token)
	if err != nil || accountID != registered.ID {
		t.Fatalf("login token round-trip failed: id=%q err=%v", accountID, err)
	}
}

// --- resend ---

func TestResendOTP(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mailer := &fakeMailer{}
	svc, _ := newTestAccountService(store, mailer, nil)

	if err := svc.ResendOTP(context.Background(), "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown email: expected ErrNotFound, got %v", err)
	}

	registerUser(t, svc, "alice@example.com", "secret1!")

	if err := svc.ResendOTP(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("ResendOTP error: %v", err)
	}
	user := store.users["alice@example.com"]
	if user.OTP == nil || *user.OTP != mailer.lastCode(t) {
		t.Fatalf("stored OTP not replaced by resend")
	}
	if user.Verified {
		t.Fatalf("resend changed verification state")
	}

	if _, _, err := svc.Activate(context.Background(), "alice@example.com", mailer.lastCode(t)); err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	if err := svc.ResendOTP(context.Background(), "alice@example.com"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestResendOTPThrottled(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mailer := &fakeMailer{}
	svc, _ := newTestAccountService(store, mailer, &fakeCooldown{allow: false})

	registerUser(t, svc, "alice@example.com", "secret1!")
	if err := svc.ResendOTP(context.Background(), "alice@example.com"); !errors.Is(err, ErrResendThrottled) {
		t.Fatalf("expected ErrResendThrottled, got %v", err)
	}
}

// Known edge case: a resend persists the fresh OTP before dispatch, so a
// delivery failure invalidates the old code with no rollback. The new code
// stays live and activation with it still works.
func TestResendOTPDeliveryFailureLeavesNewCodeLive(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mailer := &fakeMailer{}
	svc, _ := newTestAccountService(store, mailer, nil)

	registerUser(t, svc, "alice@example.com", "secret1!")
	oldCode := mailer.lastCode(t)

	mailer.fail = true
	if err := svc.ResendOTP(context.Background(), "alice@example.com"); !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}

	user := store.users["alice@example.com"]
	if user.OTP == nil {
		t.Fatalf("resend cleared the OTP")
	}
	if *user.OTP == oldCode {
		t.Fatalf("old OTP survived the failed resend")
	}

	if _, _, err := svc.Activate(context.Background(), "alice@example.com", *user.OTP); err != nil {
		t.Fatalf("new OTP not live after failed dispatch: %v", err)
	}
}

// --- end-to-end scenario ---

func TestAccountLifecycleScenario(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mailer := &fakeMailer{}
	svc, tokens := newTestAccountService(store, mailer, nil)

	registered := registerUser(t, svc, "alice@example.com", "secret1")
	code := mailer.lastCode(t)

	if _, _, err := svc.Activate(context.Background(), "alice@example.com", "000000"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("wrong OTP: expected ErrInvalidOTP, got %v", err)
	}

	_, token, err := svc.Activate(context.Background(), "alice@example.com", code)
	if err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	if id, err := tokens.Verify(token); err != nil || id != registered.ID {
		t.Fatalf("activation token round-trip failed: id=%q err=%v", id, err)
	}

	if _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "alice@example.com", "secret1"); err != nil {
		t.Fatalf("correct login failed: %v", err)
	}
}
