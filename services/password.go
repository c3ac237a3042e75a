package services

import (
	"context"
	"sync"
	"time"

	"github.com/sjbaraho/app-places-backend/utils/errors"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// fallbackDummyDigest is a cost 12 digest of a password nobody has, used when
// the dummy digest cannot be generated at the configured cost.
const fallbackDummyDigest = "$2b$12$dfvqamzgjZFMfh883IWHceW/di3.C/lCssR4vn/41lcI2g1k4SYea"

// PasswordHasher wraps bcrypt with a bounded running time. A call that
// outlives the timeout is reported as ErrHashingFailure.
type PasswordHasher struct {
	cost    int
	timeout time.Duration

	dummyOnce   sync.Once
	dummyDigest string
}

func NewPasswordHasher(timeout time.Duration) *PasswordHasher {
	return NewPasswordHasherWithCost(bcryptCost, timeout)
}

// NewPasswordHasherWithCost is NewPasswordHasher with an explicit bcrypt cost.
// Costs outside bcrypt's range fall back to the default.
func NewPasswordHasherWithCost(cost int, timeout time.Duration) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcryptCost
	}
	return &PasswordHasher{cost: cost, timeout: timeout}
}

func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		digest []byte
		err    error
	)
	if runErr := h.run(ctx, func() {
		digest, err = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	}); runErr != nil {
		return "", runErr
	}
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", errors.ErrInvalidInput
	}
	if err != nil {
		return "", errors.Wrap(err, errors.ErrHashingFailure)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is (false, nil);
// only a broken digest or a timeout is an error.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	var err error
	if runErr := h.run(ctx, func() {
		err = bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	}); runErr != nil {
		return false, runErr
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.Wrap(err, errors.ErrHashingFailure)
	}
}

// VerifyDummy spends one comparison against a fixed digest. Login uses it for
// unknown emails so both failure paths cost the same.
func (h *PasswordHasher) VerifyDummy(ctx context.Context, plaintext string) {
	h.dummyOnce.Do(func() {
		h.dummyDigest = fallbackDummyDigest
		digest, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), h.cost)
		if err == nil {
			h.dummyDigest = string(digest)
		}
	})
	_, _ = h.Verify(ctx, plaintext, h.dummyDigest)
}

func (h *PasswordHasher) run(ctx context.Context, fn func()) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.ErrHashingFailure)
	}
}
