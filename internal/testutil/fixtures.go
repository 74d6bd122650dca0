package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Config returns a configuration good enough for services under test.
func Config() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:            "storefront-test",
			Environment:     "test",
			FrontendBaseURL: "http://shop.test/",
		},
		JWT: config.JWTConfig{
			Secret:            "test-secret-test-secret-test-secret!",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost:           bcrypt.MinCost,
			ActivationTokenTTL:   24 * time.Hour,
			PasswordResetEnabled: true,
		},
	}
}

// MemoryStore is an in-process session store with go-redis miss semantics.
type MemoryStore struct {
	mu      sync.Mutex
	values  map[string]string
	sets    map[string]map[string]struct{}
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:  map[string]string{},
		sets:    map[string]map[string]struct{}{},
		expires: map[string]time.Time{},
		now:     time.Now,
	}
}

// expireLocked drops key if its deadline has passed.
func (s *MemoryStore) expireLocked(key string) {
	if exp, ok := s.expires[key]; ok && !s.now().Before(exp) {
		delete(s.values, key)
		delete(s.sets, key)
		delete(s.expires, key)
	}
}

func (s *MemoryStore) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	str, ok := value.(string)
	if !ok {
		return errors.New("memory store only holds strings")
	}
	s.values[key] = str
	if expiration > 0 {
		s.expires[key] = s.now().Add(expiration)
	} else {
		delete(s.expires, key)
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(key)
	v, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
		delete(s.sets, k)
		delete(s.expires, k)
	}
	return nil
}

func (s *MemoryStore) AddToSet(_ context.Context, key, member string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(key)
	set, ok := s.sets[key]
	if !ok {
		set = map[string]struct{}{}
		s.sets[key] = set
	}
	set[member] = struct{}{}
	if ttl > 0 {
		s.expires[key] = s.now().Add(ttl)
	}
	return nil
}

func (s *MemoryStore) SetMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(key)
	members := make([]string, 0, len(s.sets[key]))
	for m := range s.sets[key] {
		members = append(members, m)
	}
	return members, nil
}

// IncrWindow counts hits per key; the window starts on the first hit.
func (s *MemoryStore) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(key)
	n, _ := strconv.ParseInt(s.values[key], 10, 64)
	n++
	s.values[key] = strconv.FormatInt(n, 10)
	if _, ok := s.expires[key]; !ok {
		s.expires[key] = s.now().Add(window)
	}
	return n, nil
}

// Health always succeeds.
func (s *MemoryStore) Health() error {
	return nil
}

// Len reports how many keys are held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) + len(s.sets)
}

// FakeMailer records account emails. Setting Err makes every send fail.
type FakeMailer struct {
	mu         sync.Mutex
	Err        error
	Activation []email.ActivationEmailData
	Changed    []email.PasswordChangedData
}

func (m *FakeMailer) SendActivationEmail(_ context.Context, data email.ActivationEmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Activation = append(m.Activation, data)
	return nil
}

func (m *FakeMailer) SendPasswordChangedEmail(_ context.Context, data email.PasswordChangedData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Changed = append(m.Changed, data)
	return nil
}

// LastActivation returns the most recent activation email.
func (m *FakeMailer) LastActivation(t *testing.T) email.ActivationEmailData {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Activation) == 0 {
		t.Fatal("no activation email was sent")
	}
	return m.Activation[len(m.Activation)-1]
}

// SeedUser inserts an account whose password is "secret123".
func SeedUser(t *testing.T, db *gorm.DB, username string, active bool) *user.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &user.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		IsActive: active,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// Catalog is a small seeded catalog.
type Catalog struct {
	Category    *product.Category
	SubCategory *product.SubCategory
	Product     *product.Product
	// Variant costs 20.00 with no discount and has sizes Small and Large.
	Variant *product.ProductVariant
	Small   *product.ProductVariantSize
	Large   *product.ProductVariantSize
	// Discounted costs 50.00 at 10% off and has size Other.
	Discounted *product.ProductVariant
	Other      *product.ProductVariantSize
}

// SeedCatalog inserts one category with one product and two variants.
func SeedCatalog(t *testing.T, db *gorm.DB) *Catalog {
	t.Helper()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed catalog: %v", err)
		}
	}

	c := &Catalog{}
	c.Category = &product.Category{Title: "Apparel", Slug: "apparel-" + t.Name()}
	must(db.Create(c.Category).Error)

	c.SubCategory = &product.SubCategory{Title: "Tees", CategoryID: c.Category.ID}
	must(db.Create(c.SubCategory).Error)

	c.Product = &product.Product{
		Title:         "Classic Tee",
		CategoryID:    c.Category.ID,
		SubCategoryID: &c.SubCategory.ID,
		Gender:        product.GenderMale,
	}
	must(db.Create(c.Product).Error)

	c.Variant = &product.ProductVariant{ProductID: c.Product.ID, Color: "black", Price: decimal.RequireFromString("20.00"), Stock: 10}
	must(db.Create(c.Variant).Error)
	c.Discounted = &product.ProductVariant{ProductID: c.Product.ID, Color: "white", Price: decimal.RequireFromString("50.00"), Stock: 5, Discount: 10}
	must(db.Create(c.Discounted).Error)

	c.Small = &product.ProductVariantSize{VariantID: &c.Variant.ID, Size: "S"}
	must(db.Create(c.Small).Error)
	c.Large = &product.ProductVariantSize{VariantID: &c.Variant.ID, Size: "L"}
	must(db.Create(c.Large).Error)
	c.Other = &product.ProductVariantSize{VariantID: &c.Discounted.ID, Size: "M"}
	must(db.Create(c.Other).Error)

	return c
}
