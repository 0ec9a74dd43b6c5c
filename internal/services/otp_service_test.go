package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type otpFixture struct {
	svc        *OTPService
	clock      *fakeClock
	email      *mockEmail
	registered map[string]bool
}

func newOTPFixture(t *testing.T) *otpFixture {
	t.Helper()
	logging.UseNop()

	f := &otpFixture{
		clock:      newFakeClock(),
		email:      &mockEmail{},
		registered: map[string]bool{},
	}
	f.svc = NewOTPService(
		constants.RoleCandidate,
		common.NewCacheService(600, 600),
		f.email,
		func(_ context.Context, email string) (bool, error) { return f.registered[email], nil },
		nil,
	)
	f.svc.Now = f.clock.Now
	f.svc.GenerateCode = func() (string, error) { return "123456", nil }
	return f
}

func TestGenerateOTPCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, constants.OTPLength)
		require.NotEqual(t, '0', rune(code[0]))
	}
}

func TestRequestOTP_SendsCode(t *testing.T) {
	f := newOTPFixture(t)

	resp, err := f.svc.RequestOTP(context.Background(), "  A@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", resp.Email)
	assert.Equal(t, 300, resp.ExpiresInSeconds)

	sent := f.email.last()
	assert.Equal(t, "a@example.com", sent.To)
	assert.True(t, strings.Contains(sent.HTML, "123456"))
}

func TestRequestOTP_Validation(t *testing.T) {
	f := newOTPFixture(t)

	_, err := f.svc.RequestOTP(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRequestOTP_AlreadyRegistered(t *testing.T) {
	f := newOTPFixture(t)
	f.registered["a@x.com"] = true

	_, err := f.svc.RequestOTP(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, 0, f.email.count())
}

func TestRequestOTP_RateLimited(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()

	_, err := f.svc.RequestOTP(ctx, "a@x.com")
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)
	_, err = f.svc.ResendOTP(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrRateLimited)

	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, KindRateLimit, se.Kind)
	assert.Equal(t, 180, se.Meta["retry_after_seconds"])

	f.clock.Advance(3 * time.Minute)
	_, err = f.svc.ResendOTP(ctx, "a@x.com")
	assert.NoError(t, err)
	assert.Equal(t, 2, f.email.count())
}

func TestRequestOTP_DispatchFailureDiscardsChallenge(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()
	f.email.sendFunc = func(context.Context, providers.Email) error { return errBoom }

	_, err := f.svc.RequestOTP(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrDispatchFailed)

	status, err := f.svc.Status(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, status.Exists)

	// No rate limit applies after a failed dispatch.
	f.email.sendFunc = nil
	_, err = f.svc.RequestOTP(ctx, "a@x.com")
	assert.NoError(t, err)
}

func TestVerifyOTP_Success(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()

	_, err := f.svc.RequestOTP(ctx, "a@x.com")
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	require.NoError(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"))

	verified, err := f.svc.IsVerified(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, verified)

	// Any second verify reports AlreadyVerified.
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"), ErrAlreadyVerified)
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "999999"), ErrAlreadyVerified)
}

func TestVerifyOTP_NotFound(t *testing.T) {
	f := newOTPFixture(t)
	err := f.svc.VerifyOTP(context.Background(), "nobody@x.com", "123456")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestVerifyOTP_Expired(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()

	_, err := f.svc.RequestOTP(ctx, "a@x.com")
	require.NoError(t, err)

	f.clock.Advance(6 * time.Minute)
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"), ErrOTPExpired)

	// The expired challenge is discarded.
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"), ErrOTPNotFound)
}

func TestVerifyOTP_AttemptsExhausted(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()

	_, err := f.svc.RequestOTP(ctx, "a@x.com")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	for i := 1; i <= 4; i++ {
		err := f.svc.VerifyOTP(ctx, "a@x.com", "000001")
		require.ErrorIs(t, err, ErrInvalidCode)
		se, _ := AsServiceError(err)
		assert.Equal(t, constants.OTPMaxAttempts-i, se.Meta["remaining_attempts"])
	}

	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "000001"), ErrAttemptsExhausted)
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"), ErrOTPNotFound)
}

func TestVerifyOTP_NumericComparison(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()

	_, err := f.svc.RequestOTP(ctx, "a@x.com")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "abc"), ErrInvalidCode)
	assert.NoError(t, f.svc.VerifyOTP(ctx, "a@x.com", " 123456 "))
}

func TestStatusAndConsume(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()

	_, err := f.svc.RequestOTP(ctx, "a@x.com")
	require.NoError(t, err)
	f.clock.Advance(30 * time.Second)
	_ = f.svc.VerifyOTP(ctx, "a@x.com", "111111")

	status, err := f.svc.Status(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, status.Exists)
	assert.False(t, status.Verified)
	assert.Equal(t, 270, status.ExpiresInSeconds)
	assert.Equal(t, 4, status.RemainingAttempts)

	require.NoError(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"))
	require.NoError(t, f.svc.Consume(ctx, "a@x.com"))

	verified, err := f.svc.IsVerified(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestIsVerified_LapsesAfterVerifiedTTL(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()

	_, _ = f.svc.RequestOTP(ctx, "a@x.com")
	require.NoError(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"))

	f.clock.Advance(constants.OTPVerifiedTTL + time.Second)
	verified, err := f.svc.IsVerified(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestOTP_CategoriesDoNotShareChallenges(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()
	store := f.svc.store

	volunteer := NewOTPService(constants.RoleVolunteer, store, f.email,
		func(context.Context, string) (bool, error) { return false, nil }, nil)
	volunteer.Now = f.clock.Now
	volunteer.GenerateCode = func() (string, error) { return "654321", nil }

	_, err := f.svc.RequestOTP(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = volunteer.RequestOTP(ctx, "a@x.com")
	require.NoError(t, err)

	assert.ErrorIs(t, volunteer.VerifyOTP(ctx, "a@x.com", "123456"), ErrInvalidCode)
	assert.NoError(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"))
}
