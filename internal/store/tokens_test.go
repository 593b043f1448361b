package store

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndRedeem(t *testing.T) {
	s := NewMemoryStore()
	joined := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tok, err := s.Issue("42", "ada#0001", joined)
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.Equal(t, 1, s.Len())

	rec, ok := s.Redeem(tok)
	require.True(t, ok)
	assert.Equal(t, "42", rec.UserID)
	assert.Equal(t, "ada#0001", rec.Username)
	assert.True(t, rec.JoinedAt.Equal(joined))
	assert.Equal(t, 0, s.Len())
}

func TestRedeem_UnknownToken(t *testing.T) {
	s := NewMemoryStore()
	_, ok := s.Redeem("never-issued")
	assert.False(t, ok)
}

func TestRedeem_SecondAttemptFails(t *testing.T) {
	s := NewMemoryStore()
	tok, err := s.Issue("42", "ada#0001", time.Now())
	require.NoError(t, err)

	_, ok := s.Redeem(tok)
	require.True(t, ok)
	_, ok = s.Redeem(tok)
	assert.False(t, ok, "a token must be consumable exactly once")
}

func TestIssue_TokensAreUnique(t *testing.T) {
	s := NewMemoryStore()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok, err := s.Issue("u", "u#0", time.Now())
		require.NoError(t, err)
		require.False(t, seen[tok], "duplicate token issued")
		seen[tok] = true
	}
}

func TestRedeem_ConcurrentSameToken(t *testing.T) {
	s := NewMemoryStore()
	tok, err := s.Issue("42", "ada#0001", time.Now())
	require.NoError(t, err)

	const n = 100
	var successes atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := s.Redeem(tok); ok {
				successes.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load(),
		"exactly one of %d concurrent redemptions may succeed", n)
}

func TestConcurrentIssueAndRedeem_DistinctTokens(t *testing.T) {
	s := NewMemoryStore()

	const n = 100
	tokens := make([]string, n)
	for i := range tokens {
		tok, err := s.Issue("u", "u#0", time.Now())
		require.NoError(t, err)
		tokens[i] = tok
	}

	var successes atomic.Int32
	var wg sync.WaitGroup
	for _, tok := range tokens {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			if _, ok := s.Redeem(tok); ok {
				successes.Add(1)
			}
		}(tok)
		// Interleave issues for other members while redemptions run.
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Issue("other", "other#0", time.Now())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(n), successes.Load())
	assert.Equal(t, n, s.Len(), "interleaved issues must all be retained")
}
