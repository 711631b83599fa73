// Package session keeps the signed-in account between CLI invocations.
package session

import (
	"context"
	"time"

	"github.com/kapu/messenger-api-go/internal/api"
	"github.com/kapu/messenger-api-go/internal/constants"
	"go.uber.org/zap"
)

type Account struct {
	AccountID              string    `json:"account_id"`
	Salt1                  string    `json:"salt1"`
	Salt2                  string    `json:"salt2"`
	PhoneNumber            string    `json:"phone_number,omitempty"`
	Name                   string    `json:"name,omitempty"`
	RealName               string    `json:"real_name,omitempty"`
	SubscriptionType       int       `json:"subscription_type,omitempty"`
	SubscriptionExpiration int64     `json:"subscription_expiration,omitempty"`
	Primary                bool      `json:"primary"`
	SavedAt                time.Time `json:"saved_at"`
}

// IsPrimary reports whether this device created the account.
func (a *Account) IsPrimary() bool {
	return a != nil && a.Primary
}

// FromLogin builds the session for a device that signed in to an existing
// account; such a device is never the primary one.
func FromLogin(resp *api.LoginResponse) Account {
	return Account{
		AccountID:              resp.AccountId,
		Salt1:                  resp.Salt1,
		Salt2:                  resp.Salt2,
		PhoneNumber:            resp.PhoneNumber,
		Name:                   resp.Name,
		RealName:               resp.RealName,
		SubscriptionType:       resp.SubscriptionType,
		SubscriptionExpiration: resp.SubscriptionExpiration,
	}
}

// FromSignup builds the session for the device that created the account,
// which becomes the primary device.
func FromSignup(req api.SignupRequest, resp *api.SignupResponse) Account {
	return Account{
		AccountID:   resp.AccountId,
		Salt1:       resp.Salt1,
		Salt2:       resp.Salt2,
		PhoneNumber: req.PhoneNumber,
		Name:        req.Name,
		RealName:    req.RealName,
		Primary:     true,
	}
}

// Cache is the key/value storage behind the store; *cache.CacheService
// satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

type Store struct {
	cache  Cache
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewStore uses the default session TTL when ttl is not positive.
func NewStore(cache Cache, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = constants.CacheTTL.Session
	}
	return &Store{
		cache:  cache,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

func (s *Store) Save(ctx context.Context, account Account) error {
	account.SavedAt = s.now().UTC()
	if err := s.cache.Set(ctx, constants.CacheKeys.Session, account, s.ttl); err != nil {
		return err
	}
	s.logger.Info("Session saved",
		zap.String("account_id", account.AccountID),
		zap.Bool("primary", account.Primary),
	)
	return nil
}

// Load returns nil, nil when nobody is signed in.
func (s *Store) Load(ctx context.Context) (*Account, error) {
	var account Account
	found, err := s.cache.Get(ctx, constants.CacheKeys.Session, &account)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &account, nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.cache.Del(ctx, constants.CacheKeys.Session)
}

func (s *Store) Exists(ctx context.Context) (bool, error) {
	return s.cache.Exists(ctx, constants.CacheKeys.Session)
}

// ExpiresIn is how long the saved session has left. It is zero when nobody
// is signed in.
func (s *Store) ExpiresIn(ctx context.Context) (time.Duration, error) {
	ttl, err := s.cache.TTL(ctx, constants.CacheKeys.Session)
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
