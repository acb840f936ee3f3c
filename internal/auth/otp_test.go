package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(t *testing.T) (*CodeStore, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	return NewCodeStoreWithClock(5*time.Minute, clock.Now), clock
}

func TestIssue_SixASCIIDigits(t *testing.T) {
	store, _ := newTestStore(t)

	code, err := store.Issue("a@x.com")
	require.NoError(t, err)

	require.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "expected digit, got %q", r)
	}
}

func TestVerify_NoPendingCode(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Verify("nobody@x.com", "123456")
	assert.ErrorIs(t, err, ErrNoPendingCode)
}

func TestVerify_SuccessIsSingleUse(t *testing.T) {
	store, _ := newTestStore(t)

	code, err := store.Issue("a@x.com")
	require.NoError(t, err)

	require.NoError(t, store.Verify("a@x.com", code))

	err = store.Verify("a@x.com", code)
	assert.ErrorIs(t, err, ErrNoPendingCode)
}

func TestVerify_MismatchKeepsEntry(t *testing.T) {
	store, _ := newTestStore(t)

	code, err := store.Issue("a@x.com")
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	err = store.Verify("a@x.com", wrong)
	assert.ErrorIs(t, err, ErrCodeMismatch)

	// The correct code still verifies after a failed attempt.
	assert.NoError(t, store.Verify("a@x.com", code))
}

func TestVerify_ExpiredAfterTTL(t *testing.T) {
	store, clock := newTestStore(t)

	code, err := store.Issue("a@x.com")
	require.NoError(t, err)

	clock.Advance(5*time.Minute + time.Second)

	err = store.Verify("a@x.com", code)
	assert.ErrorIs(t, err, ErrCodeExpired)

	// The entry is not purged; it keeps failing as expired, not missing.
	err = store.Verify("a@x.com", code)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestVerify_JustBeforeExpiry(t *testing.T) {
	store, clock := newTestStore(t)

	code, err := store.Issue("a@x.com")
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)

	assert.NoError(t, store.Verify("a@x.com", code))
}

func TestIssue_ReloginOverwritesPendingCode(t *testing.T) {
	store, _ := newTestStore(t)

	first, err := store.Issue("a@x.com")
	require.NoError(t, err)

	second, err := store.Issue("a@x.com")
	require.NoError(t, err)

	if first != second {
		err = store.Verify("a@x.com", first)
		assert.ErrorIs(t, err, ErrCodeMismatch)
	}

	assert.NoError(t, store.Verify("a@x.com", second))
}

func TestIssue_IndependentPerEmail(t *testing.T) {
	store, _ := newTestStore(t)

	codeA, err := store.Issue("a@x.com")
	require.NoError(t, err)
	codeB, err := store.Issue("b@x.com")
	require.NoError(t, err)

	require.NoError(t, store.Verify("b@x.com", codeB))
	assert.NoError(t, store.Verify("a@x.com", codeA))
}

func TestCodeStore_ConcurrentIssueAndVerify(t *testing.T) {
	store, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := store.Issue("race@x.com")
			assert.NoError(t, err)
			// Whichever code is stored last wins; others fail cleanly.
			_ = store.Verify("race@x.com", code)
		}()
	}
	wg.Wait()
}
