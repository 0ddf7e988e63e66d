package auth

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/blake2b"

	"github.com/goliatone/go-staff/store"
)

// Registry is the bun backed Token Registry. Register, IsValid and Revoke
// report store failures as false so the request path can degrade; the
// failure is logged.
type Registry struct {
	db     bun.IDB
	key    []byte
	now    func() time.Time
	logger Logger
}

var _ TokenRegistry = (*Registry)(nil)

// RegistryOption customizes NewRegistry.
type RegistryOption func(*Registry)

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

func WithRegistryLogger(logger Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry returns a registry hashing tokens with a key derived from salt.
func NewRegistry(db bun.IDB, salt string, opts ...RegistryOption) *Registry {
	key := blake2b.Sum256([]byte(salt))
	r := &Registry{
		db:     db,
		key:    key[:],
		now:    func() time.Time { return time.Now().UTC() },
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Hash returns the keyed digest stored for raw.
func (r *Registry) Hash(raw string) string {
	h, err := blake2b.New256(r.key)
	if err != nil {
		// only possible with a key longer than 64 bytes
		panic(err)
	}
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

func (r *Registry) Register(ctx context.Context, userID, rawToken string, ttl time.Duration) bool {
	now := r.now()
	record := &SessionToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: r.Hash(rawToken),
		ExpiresAt: now.Add(ttl),
		IsActive:  true,
		CreatedAt: now,
	}

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		r.logger.Error("token registry register failed for user %s: %v", userID, err)
		return false
	}
	return true
}

func (r *Registry) IsValid(ctx context.Context, rawToken, userID string) bool {
	exists, err := r.db.NewSelect().
		Model((*SessionToken)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.token_hash = ?", r.Hash(rawToken)).
		Where("?TableAlias.is_active = ?", true).
		Where("?TableAlias.expires_at > ?", r.now()).
		Exists(ctx)
	if err != nil {
		r.logger.Error("token registry lookup failed for user %s: %v", userID, err)
		return false
	}
	return exists
}

func (r *Registry) Revoke(ctx context.Context, rawToken, userID string) bool {
	now := r.now()
	res, err := r.db.NewUpdate().
		Model((*SessionToken)(nil)).
		Set("is_active = ?", false).
		Set("deactivated_at = ?", now).
		Where("user_id = ?", userID).
		Where("token_hash = ?", r.Hash(rawToken)).
		Where("is_active = ?", true).
		Exec(ctx)
	if err != nil {
		r.logger.Error("token registry revoke failed for user %s: %v", userID, err)
		return false
	}
	return store.RowsAffected(res) > 0
}

func (r *Registry) RevokeAllForUser(ctx context.Context, userID string) (int, error) {
	now := r.now()
	res, err := r.db.NewUpdate().
		Model((*SessionToken)(nil)).
		Set("is_active = ?", false).
		Set("deactivated_at = ?", now).
		Where("user_id = ?", userID).
		Where("is_active = ?", true).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return store.RowsAffected(res), nil
}

func (r *Registry) SweepExpired(ctx context.Context) (int, error) {
	res, err := r.db.NewDelete().
		Model((*SessionToken)(nil)).
		Where("expires_at <= ?", r.now()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return store.RowsAffected(res), nil
}
