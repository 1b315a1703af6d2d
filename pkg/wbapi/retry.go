package wbapi

import (
	"context"
	"time"
)

const (
	// Максимальная задержка между повторами, в единицах retryUnit
	maxRetryDelay = 10
	// Пауза без сбоев, после которой счётчик задержки сбрасывается
	retryResetAfter = 30
)

// clock отделяет ретраер от реального времени. В проде - системные часы,
// в тестах - ручные.
type clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// retrier повторяет вызов при временных сетевых сбоях.
// Задержка начинается с нуля, растёт на единицу за каждый подряд идущий сбой
// и упирается в потолок maxRetryDelay. Если с последнего сбоя прошло больше
// retryResetAfter единиц, задержка сбрасывается в ноль.
type retrier struct {
	clock clock
	unit  time.Duration
}

func newRetrier(c clock, unit time.Duration) *retrier {
	return &retrier{clock: c, unit: unit}
}

func (r *retrier) do(ctx context.Context, fn func() error) error {
	delay := 0
	var lastFailure time.Time

	for {
		err := fn()
		if err == nil || !isTransient(err) {
			return err
		}

		now := r.clock.Now()
		if !lastFailure.IsZero() && now.Sub(lastFailure) > retryResetAfter*r.unit {
			delay = 0
		}
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
		lastFailure = now

		r.clock.Sleep(time.Duration(delay) * r.unit)
		delay++

		if ctx.Err() != nil {
			return err
		}
	}
}
