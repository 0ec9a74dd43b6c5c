package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"hash/fnv"
	"math"
	"math/big"
	"net/mail"
	"strconv"
	"strings"
	"sync"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/metrics"
	"anara-skills/registrar/internal/models/dtos"
	"anara-skills/registrar/internal/providers"
)

// otpChallenge is the JSON value kept in the cache per email.
type otpChallenge struct {
	Code       string    `json:"code"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Attempts   int       `json:"attempts"`
	Verified   bool      `json:"verified"`
	VerifiedAt time.Time `json:"verified_at,omitempty"`
}

// Unverified challenges stay in the store past their expiry so a late
// verify reports Expired rather than NotFound.
const otpRetention = 2 * constants.OTPTTL

const otpLockStripes = 64

// RegisteredCheck reports whether email already belongs to a confirmed record.
type RegisteredCheck func(ctx context.Context, email string) (bool, error)

// OTPService gates registration of one category behind a verified email.
//
// Challenges live in the injected CacheInterface. The striped locks are
// process local: with the Redis backend state is shared across instances but
// a concurrent verify on two instances can each see the same attempt count.
type OTPService struct {
	category     string
	store        common.CacheInterface
	email        providers.EmailSender
	isRegistered RegisteredCheck
	metrics      *metrics.MetricsRegistry

	Now          func() time.Time
	GenerateCode func() (string, error)

	locks [otpLockStripes]sync.Mutex
}

func NewOTPService(
	category constants.Role,
	store common.CacheInterface,
	email providers.EmailSender,
	isRegistered RegisteredCheck,
	m *metrics.MetricsRegistry,
) *OTPService {
	return &OTPService{
		category:     category.String(),
		store:        store,
		email:        email,
		isRegistered: isRegistered,
		metrics:      m,
		Now:          time.Now,
		GenerateCode: GenerateOTPCode,
	}
}

// GenerateOTPCode returns a uniformly random code in [100000, 999999].
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (s *OTPService) key(email string) string {
	return string(constants.CachePrefixOTP) + s.category + ":" + email
}

func (s *OTPService) lock(email string) func() {
	h := fnv.New32a()
	h.Write([]byte(email))
	m := &s.locks[h.Sum32()%otpLockStripes]
	m.Lock()
	return m.Unlock
}

func (s *OTPService) load(ctx context.Context, email string) (*otpChallenge, error) {
	var ch otpChallenge
	found, err := common.GetJSON(ctx, s.store, s.key(email), &ch)
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to read OTP challenge", err)
	}
	if !found {
		return nil, nil
	}
	return &ch, nil
}

func (s *OTPService) save(ctx context.Context, email string, ch *otpChallenge, ttl time.Duration) error {
	if err := common.SetJSON(ctx, s.store, s.key(email), ch, ttl); err != nil {
		return dependencyError(CodeStorageFailed, "failed to store OTP challenge", err)
	}
	return nil
}

func (s *OTPService) discard(ctx context.Context, email string) {
	if err := s.store.Delete(ctx, s.key(email)); err != nil {
		logging.Warn("Failed to discard OTP challenge", "category", s.category, "email", email, "error", err.Error())
	}
}

// RequestOTP issues a fresh challenge for email and mails the code.
func (s *OTPService) RequestOTP(ctx context.Context, email string) (*dtos.OTPStatusResponse, error) {
	email = NormalizeEmail(email)
	if !validEmail(email) {
		return nil, validationError(constants.MsgEmailRequired)
	}

	registered, err := s.isRegistered(ctx, email)
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to check registration", err)
	}
	if registered {
		return nil, newError(KindConflict, CodeAlreadyRegistered, constants.MsgEmailRegistered)
	}

	unlock := s.lock(email)
	defer unlock()

	now := s.Now()
	existing, err := s.load(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.Verified {
		if wait := existing.IssuedAt.Add(constants.OTPResendInterval).Sub(now); wait > 0 {
			s.metrics.OTPEvent(s.category, "rate_limited")
			return nil, newError(KindRateLimit, CodeRateLimited, constants.MsgOTPRateLimited).
				withMeta("retry_after_seconds", int(math.Ceil(wait.Seconds())))
		}
	}

	code, err := s.GenerateCode()
	if err != nil {
		return nil, dependencyError(CodeDispatchFailed, constants.MsgOTPSendFailed, err)
	}

	ch := &otpChallenge{
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(constants.OTPTTL),
	}
	if err := s.save(ctx, email, ch, otpRetention); err != nil {
		return nil, err
	}

	err = s.email.Send(ctx, providers.Email{
		To:      email,
		Subject: "Email Verification OTP",
		HTML:    otpEmail(code, int(constants.OTPTTL/time.Minute)),
	})
	if err != nil {
		s.discard(ctx, email)
		s.metrics.OTPEvent(s.category, "dispatch_failed")
		logging.Error("Failed to dispatch OTP", "category", s.category, "email", email, "error", err.Error())
		return nil, dependencyError(CodeDispatchFailed, constants.MsgOTPSendFailed, err)
	}

	s.metrics.OTPEvent(s.category, "issued")
	logging.Info("OTP issued", "category", s.category, "email", email)

	return &dtos.OTPStatusResponse{
		Email:             email,
		Exists:            true,
		ExpiresInSeconds:  int(constants.OTPTTL.Seconds()),
		RemainingAttempts: constants.OTPMaxAttempts,
	}, nil
}

// ResendOTP has the same rate limit as RequestOTP.
func (s *OTPService) ResendOTP(ctx context.Context, email string) (*dtos.OTPStatusResponse, error) {
	return s.RequestOTP(ctx, email)
}

// VerifyOTP checks code against the stored challenge for email.
func (s *OTPService) VerifyOTP(ctx context.Context, email, code string) error {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return validationError(constants.MsgEmailAndOTPRequired)
	}

	unlock := s.lock(email)
	defer unlock()

	ch, err := s.load(ctx, email)
	if err != nil {
		return err
	}
	if ch == nil {
		s.metrics.OTPEvent(s.category, "not_found")
		return newError(KindNotFound, CodeOTPNotFound, constants.MsgOTPNotFound)
	}
	if ch.Verified {
		return newError(KindConflict, CodeAlreadyVerified, constants.MsgOTPAlreadyVerified)
	}

	now := s.Now()
	if now.After(ch.ExpiresAt) {
		s.discard(ctx, email)
		s.metrics.OTPEvent(s.category, "expired")
		return newError(KindValidation, CodeOTPExpired, constants.MsgOTPExpired)
	}
	if ch.Attempts >= constants.OTPMaxAttempts {
		s.discard(ctx, email)
		s.metrics.OTPEvent(s.category, "exhausted")
		return newError(KindConflict, CodeAttemptsExhausted, constants.MsgOTPExhausted)
	}

	if !codesMatch(ch.Code, code) {
		ch.Attempts++
		if ch.Attempts >= constants.OTPMaxAttempts {
			s.discard(ctx, email)
			s.metrics.OTPEvent(s.category, "exhausted")
			return newError(KindConflict, CodeAttemptsExhausted, constants.MsgOTPExhausted)
		}
		if err := s.save(ctx, email, ch, ch.IssuedAt.Add(otpRetention).Sub(now)); err != nil {
			return err
		}
		s.metrics.OTPEvent(s.category, "invalid")
		return newError(KindValidation, CodeInvalidCode, constants.MsgOTPInvalid).
			withMeta("remaining_attempts", constants.OTPMaxAttempts-ch.Attempts)
	}

	ch.Verified = true
	ch.VerifiedAt = now
	if err := s.save(ctx, email, ch, constants.OTPVerifiedTTL); err != nil {
		return err
	}

	s.metrics.OTPEvent(s.category, "verified")
	logging.Info("OTP verified", "category", s.category, "email", email)
	return nil
}

// codesMatch compares numerically; non-numeric input never matches.
func codesMatch(stored, supplied string) bool {
	want, err := strconv.Atoi(stored)
	if err != nil {
		return false
	}
	got, err := strconv.Atoi(supplied)
	if err != nil {
		return false
	}
	return want == got
}

// Status reports the challenge state for email without mutating it.
func (s *OTPService) Status(ctx context.Context, email string) (*dtos.OTPStatusResponse, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, validationError(constants.MsgEmailRequired)
	}

	ch, err := s.load(ctx, email)
	if err != nil {
		return nil, err
	}
	resp := &dtos.OTPStatusResponse{Email: email}
	if ch == nil {
		return resp, nil
	}

	now := s.Now()
	resp.Exists = true
	resp.Verified = ch.Verified
	if !ch.Verified {
		if left := ch.ExpiresAt.Sub(now); left > 0 {
			resp.ExpiresInSeconds = int(math.Ceil(left.Seconds()))
		}
		resp.RemainingAttempts = constants.OTPMaxAttempts - ch.Attempts
	}
	return resp, nil
}

// IsVerified reports whether email holds a verified, unconsumed challenge.
func (s *OTPService) IsVerified(ctx context.Context, email string) (bool, error) {
	ch, err := s.load(ctx, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	if ch == nil || !ch.Verified {
		return false, nil
	}
	return !s.Now().After(ch.VerifiedAt.Add(constants.OTPVerifiedTTL)), nil
}

// Consume evicts the challenge once registration has succeeded.
func (s *OTPService) Consume(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	unlock := s.lock(email)
	defer unlock()

	if err := s.store.Delete(ctx, s.key(email)); err != nil {
		return dependencyError(CodeStorageFailed, "failed to consume OTP challenge", err)
	}
	return nil
}
