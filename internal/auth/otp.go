package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// Verification failures returned by CodeStore.Verify.
var (
	ErrNoPendingCode = errors.New("no pending verification code")
	ErrCodeExpired   = errors.New("verification code expired")
	ErrCodeMismatch  = errors.New("verification code mismatch")
)

type pendingCode struct {
	code      string
	expiresAt time.Time
}

// CodeStore holds one pending verification code per email. Codes live in
// memory only; a restart drops them, which is fine for their lifetime.
type CodeStore struct {
	mu    sync.Mutex
	codes map[string]pendingCode
	ttl   time.Duration
	now   func() time.Time
}

// NewCodeStore creates a store whose codes expire after ttl.
func NewCodeStore(ttl time.Duration) *CodeStore {
	return NewCodeStoreWithClock(ttl, time.Now)
}

// NewCodeStoreWithClock creates a store with an injected clock for tests.
func NewCodeStoreWithClock(ttl time.Duration, now func() time.Time) *CodeStore {
	return &CodeStore{
		codes: make(map[string]pendingCode),
		ttl:   ttl,
		now:   now,
	}
}

// Issue generates a fresh 6-digit code for the email and stores it,
// replacing any code already pending for that email. The previous code
// becomes invalid immediately, even if it had not expired yet.
func (s *CodeStore) Issue(email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[email] = pendingCode{
		code:      code,
		expiresAt: s.now().Add(s.ttl),
	}

	return code, nil
}

// Verify checks the submitted code against the pending entry for the email.
// On success the entry is deleted, so a code verifies at most once. A
// mismatch or an expired entry leaves the entry in place; expired entries
// stay until the next Issue for that email overwrites them.
func (s *CodeStore) Verify(email, submitted string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.codes[email]
	if !ok {
		return ErrNoPendingCode
	}

	if s.now().After(pending.expiresAt) {
		return ErrCodeExpired
	}

	if pending.code != submitted {
		return ErrCodeMismatch
	}

	delete(s.codes, email)
	return nil
}

func generateCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
