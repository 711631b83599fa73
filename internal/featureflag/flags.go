// Package featureflag toggles unfinished or risky features without a new
// release. Flags live in a Redis hash so every process sees the same values.
//
// Once a flag has proven itself, delete it and keep the code path it guarded.
package featureflag

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/kapu/messenger-api-go/internal/constants"
	"github.com/kapu/messenger-api-go/pkg/errors"
	"go.uber.org/zap"
)

type Flag string

const (
	SecurePrivate                     Flag = "flag_secure_private"
	QuickCompose                      Flag = "flag_quick_compose"
	CheckNewMessagesWithSignature     Flag = "flag_new_messages_with_signature"
	ReenableSendingStatusOnNonPrimary Flag = "flag_reenable_sending_status"
	NeverSendFromWatch                Flag = "flag_never_send_from_watch"
	AttachContact                     Flag = "flag_attach_contact"
)

var known = []Flag{
	SecurePrivate,
	QuickCompose,
	CheckNewMessagesWithSignature,
	ReenableSendingStatusOnNonPrimary,
	NeverSendFromWatch,
	AttachContact,
}

// alwaysOn flags default to true when nothing is stored.
var alwaysOn = map[Flag]bool{
	AttachContact: true,
}

// Known lists every flag in declaration order.
func Known() []Flag {
	out := make([]Flag, len(known))
	copy(out, known)
	return out
}

func ParseFlag(name string) (Flag, error) {
	for _, f := range known {
		if string(f) == name {
			return f, nil
		}
	}
	return "", errors.NewValidationError("unknown feature flag", "flag", name)
}

// Store is the hash storage behind the flags; *cache.CacheService satisfies it.
type Store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key, field, value string) error
}

type Flags struct {
	store         Store
	globalDefault bool
	logger        *zap.Logger

	mu     sync.RWMutex
	values map[Flag]bool
}

// New creates the flag set. globalDefault forces every flag on at Load time,
// which is how test builds enable everything.
func New(store Store, globalDefault bool, logger *zap.Logger) *Flags {
	return &Flags{
		store:         store,
		globalDefault: globalDefault,
		logger:        logger,
		values:        make(map[Flag]bool, len(known)),
	}
}

// Load reads every known flag from the store.
func (f *Flags) Load(ctx context.Context) error {
	stored, err := f.store.HGetAll(ctx, constants.CacheKeys.FeatureFlags)
	if err != nil {
		return err
	}

	values := make(map[Flag]bool, len(known))
	for _, flag := range known {
		value := alwaysOn[flag]
		if raw, ok := stored[string(flag)]; ok {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				f.logger.Warn("Ignoring malformed feature flag value",
					zap.String("flag", string(flag)),
					zap.String("value", raw),
				)
			} else {
				value = parsed
			}
		}
		values[flag] = f.globalDefault || value
	}

	f.mu.Lock()
	f.values = values
	f.mu.Unlock()

	f.logger.Debug("Feature flags loaded", zap.Int("count", len(values)))
	return nil
}

// Update persists the flag and applies it immediately.
func (f *Flags) Update(ctx context.Context, flag Flag, enabled bool) error {
	if _, err := ParseFlag(string(flag)); err != nil {
		return err
	}

	if err := f.store.HSet(ctx, constants.CacheKeys.FeatureFlags, string(flag), strconv.FormatBool(enabled)); err != nil {
		return err
	}

	f.mu.Lock()
	f.values[flag] = enabled
	f.mu.Unlock()

	f.logger.Info("Feature flag updated",
		zap.String("flag", string(flag)),
		zap.Bool("enabled", enabled),
	)
	return nil
}

func (f *Flags) Enabled(flag Flag) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[flag]
}

// Snapshot is a name-sorted copy of the current values.
func (f *Flags) Snapshot() []FlagValue {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]FlagValue, 0, len(f.values))
	for flag, enabled := range f.values {
		out = append(out, FlagValue{Flag: flag, Enabled: enabled})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Flag < out[j].Flag })
	return out
}

type FlagValue struct {
	Flag    Flag
	Enabled bool
}
