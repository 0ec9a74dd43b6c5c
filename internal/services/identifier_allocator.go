package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/metrics"
	gormModels "anara-skills/registrar/internal/models/gorm"

	"gorm.io/gorm"
)

// IdentifierScheme describes one family of registration numbers.
type IdentifierScheme struct {
	Category string // counter key
	Prefix   string
	Table    string // table whose reg_number column holds issued numbers
}

var (
	SchemeCandidate          = IdentifierScheme{Category: "candidate", Prefix: "ASF/CANDIDATE/", Table: "candidates"}
	SchemeVolunteer          = IdentifierScheme{Category: "volunteer", Prefix: "ASF/FE/", Table: "volunteers"}
	SchemeTemporaryVolunteer = IdentifierScheme{Category: "temporary_volunteer", Prefix: "T/ASF/FE/", Table: "temporary_registrations"}
)

const maxSequence = 99999

var (
	registrationNumberPattern = regexp.MustCompile(`^[A-Z]+/[A-Z]+/\d{5}$`)
	temporaryNumberPattern    = regexp.MustCompile(`^T/[A-Z]+/[A-Z]+/\d{5}$`)
	trailingDigitsPattern     = regexp.MustCompile(`(\d+)$`)
)

func (s IdentifierScheme) Format(seq int64) string {
	return fmt.Sprintf("%s%05d", s.Prefix, seq)
}

func ValidRegistrationNumber(s string) bool { return registrationNumberPattern.MatchString(s) }

func ValidTemporaryNumber(s string) bool { return temporaryNumberPattern.MatchString(s) }

// trailingSequence extracts the numeric suffix of a registration number, 0 when absent.
func trailingSequence(number string) int64 {
	m := trailingDigitsPattern.FindStringSubmatch(number)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// IdentifierAllocator hands out registration numbers from a per-category
// counter row. The unique index on reg_number stays the final authority.
type IdentifierAllocator struct {
	db      *gorm.DB
	metrics *metrics.MetricsRegistry
}

func NewIdentifierAllocator(db *gorm.DB, m *metrics.MetricsRegistry) *IdentifierAllocator {
	return &IdentifierAllocator{db: db, metrics: m}
}

// Allocate reserves the next number in its own transaction.
func (a *IdentifierAllocator) Allocate(ctx context.Context, scheme IdentifierScheme) (string, error) {
	var number string
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := a.AllocateWithin(ctx, tx, scheme)
		number = n
		return err
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// AllocateWithin reserves the next number inside tx, so a rolled back
// registration gives its number back. Numbers found already in use are
// skipped a bounded number of times before giving up.
func (a *IdentifierAllocator) AllocateWithin(ctx context.Context, tx *gorm.DB, scheme IdentifierScheme) (string, error) {
	tx = tx.WithContext(ctx)

	var number string
	for attempt := 1; attempt <= constants.RegistrationRetry; attempt++ {
		seq, err := a.nextSequence(tx, scheme)
		if err != nil {
			return "", err
		}
		if seq > maxSequence {
			return "", newError(KindConflict, CodeInvalidState, fmt.Sprintf("registration numbers exhausted for %s", scheme.Category))
		}

		number = scheme.Format(seq)

		var count int64
		if err := tx.Table(scheme.Table).Where("reg_number = ?", number).Count(&count).Error; err != nil {
			return "", dependencyError(CodeStorageFailed, "failed to check registration number", err)
		}
		if count == 0 {
			return number, nil
		}

		a.metrics.WriteConflict("allocate_" + scheme.Category)
		logging.Warn("Allocated registration number already in use",
			"category", scheme.Category,
			"reg_number", number,
			"attempt", attempt,
		)
	}

	return "", duplicateIdentifier(number)
}

func (a *IdentifierAllocator) nextSequence(tx *gorm.DB, scheme IdentifierScheme) (int64, error) {
	res := tx.Model(&gormModels.RegistrationCounter{}).
		Where("category = ?", scheme.Category).
		Update("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, dependencyError(CodeStorageFailed, "failed to advance registration counter", res.Error)
	}

	if res.RowsAffected == 0 {
		seed, err := lastIssuedSequence(tx, scheme)
		if err != nil {
			return 0, err
		}
		counter := gormModels.RegistrationCounter{Category: scheme.Category, Value: seed + 1}
		if err := tx.Create(&counter).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Seeded concurrently by another registration.
				return 0, duplicateIdentifier("")
			}
			return 0, dependencyError(CodeStorageFailed, "failed to seed registration counter", err)
		}
		return counter.Value, nil
	}

	var counter gormModels.RegistrationCounter
	if err := tx.Where("category = ?", scheme.Category).First(&counter).Error; err != nil {
		return 0, dependencyError(CodeStorageFailed, "failed to read registration counter", err)
	}
	return counter.Value, nil
}

// lastIssuedSequence seeds a missing counter from the most recently created record.
func lastIssuedSequence(tx *gorm.DB, scheme IdentifierScheme) (int64, error) {
	var numbers []string
	err := tx.Table(scheme.Table).
		Order("created_at DESC").
		Limit(1).
		Pluck("reg_number", &numbers).Error
	if err != nil {
		return 0, dependencyError(CodeStorageFailed, "failed to read last registration number", err)
	}
	if len(numbers) == 0 {
		return 0, nil
	}
	return trailingSequence(numbers[0]), nil
}

func duplicateIdentifier(number string) *ServiceError {
	e := newError(KindConflict, CodeDuplicateIdentifier, "registration number already allocated, retry")
	if number != "" {
		e.withMeta("reg_number", number)
	}
	return e
}

// withIdentifierRetry reruns fn while it fails with a duplicate identifier.
func withIdentifierRetry(ctx context.Context, m *metrics.MetricsRegistry, scheme IdentifierScheme, fn func() error) error {
	var err error
	for attempt := 1; attempt <= constants.RegistrationRetry; attempt++ {
		if err = fn(); err == nil || !errors.Is(err, ErrDuplicateIdentifier) {
			return err
		}
		m.WriteConflict("allocate_" + scheme.Category)
		logging.Warn("Retrying registration number allocation",
			"category", scheme.Category,
			"attempt", attempt,
		)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
