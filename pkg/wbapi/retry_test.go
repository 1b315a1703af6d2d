package wbapi

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func transientErr() error {
	return &url.Error{Op: "Get", URL: "https://example.com", Err: errors.New("connection reset by peer")}
}

func TestRetrier_BackoffGrowsAndCaps(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	r := newRetrier(clock, time.Second)

	const failures = 15
	attempts := 0
	err := r.do(context.Background(), func() error {
		attempts++
		if attempts <= failures {
			return transientErr()
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, clock.sleeps, failures)

	// Задержка растёт на единицу за каждый сбой подряд и упирается в потолок
	for k, slept := range clock.sleeps {
		expected := k
		if expected > maxRetryDelay {
			expected = maxRetryDelay
		}
		assert.Equal(t, time.Duration(expected)*time.Second, slept, "задержка после сбоя №%d", k+1)
	}
}

func TestRetrier_LongGapResetsBackoff(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	r := newRetrier(clock, time.Second)

	attempts := 0
	err := r.do(context.Background(), func() error {
		attempts++
		switch attempts {
		case 1, 2, 3:
			return transientErr()
		case 4:
			// Долгая пауза без сбоев: счётчик должен сброситься
			clock.now = clock.now.Add(31 * time.Second)
			return transientErr()
		default:
			return nil
		}
	})
	require.NoError(t, err)
	require.Len(t, clock.sleeps, 4)
	assert.Equal(t, []time.Duration{0, time.Second, 2 * time.Second, 0}, clock.sleeps)
}

func TestRetrier_SuccessResetsCounter(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	r := newRetrier(clock, time.Second)

	attempts := 0
	failThenSucceed := func() error {
		attempts++
		if attempts%3 != 0 {
			return transientErr()
		}
		return nil
	}

	require.NoError(t, r.do(context.Background(), failThenSucceed))
	require.NoError(t, r.do(context.Background(), failThenSucceed))

	// Каждый вызов начинает отсчёт задержки заново
	assert.Equal(t, []time.Duration{0, time.Second, 0, time.Second}, clock.sleeps)
}

func TestRetrier_MarketplaceErrorNotRetried(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	r := newRetrier(clock, time.Second)

	attempts := 0
	err := r.do(context.Background(), func() error {
		attempts++
		return &MarketplaceError{Code: "AccessDenied", Message: "доступ запрещён"}
	})

	var marketplaceErr *MarketplaceError
	require.ErrorAs(t, err, &marketplaceErr)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, clock.sleeps)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(transientErr()))
	assert.True(t, isTransient(io.ErrUnexpectedEOF))
	assert.False(t, isTransient(nil))
	assert.False(t, isTransient(&MarketplaceError{Message: "bad"}))
	assert.False(t, isTransient(errors.New("прочая ошибка")))
}
