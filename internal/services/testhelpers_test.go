package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"anara-skills/registrar/internal/logging"
	gormModels "anara-skills/registrar/internal/models/gorm"
	"anara-skills/registrar/internal/providers"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logging.UseNop()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	// Auto migrate
	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

// Mock DocumentStorage
type mockStorage struct {
	mu         sync.Mutex
	uploadFunc func(ctx context.Context, data []byte, folder, filename string) (providers.StoredObject, error)
	uploads    []providers.StoredObject
	deleted    []string
	seq        int
}

func (m *mockStorage) Upload(ctx context.Context, data []byte, folder, filename string) (providers.StoredObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadFunc != nil {
		obj, err := m.uploadFunc(ctx, data, folder, filename)
		if err == nil {
			m.uploads = append(m.uploads, obj)
		}
		return obj, err
	}
	m.seq++
	obj := providers.StoredObject{
		URL:      fmt.Sprintf("https://cdn.example/%s/%d-%s", folder, m.seq, filename),
		PublicID: fmt.Sprintf("%s/%d-%s", folder, m.seq, filename),
	}
	m.uploads = append(m.uploads, obj)
	return obj, nil
}

func (m *mockStorage) Delete(ctx context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, publicID)
	return nil
}

// Mock EmailSender
type mockEmail struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, msg providers.Email) error
	sent     []providers.Email
}

func (m *mockEmail) Send(ctx context.Context, msg providers.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendFunc != nil {
		if err := m.sendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockEmail) last() providers.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return providers.Email{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *mockEmail) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var errBoom = errors.New("boom")

// fakeClock is a settable clock for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
