// Package transport simulates the network hop between the app UI and the
// engine. Every call waits a fixed delay and then calls straight through.
package transport

import (
	"context"
	"time"

	"github.com/pickuppal/pickuppal/internal/app/progression"
	"github.com/pickuppal/pickuppal/internal/app/spending"
	"github.com/pickuppal/pickuppal/internal/app/session"
	"github.com/pickuppal/pickuppal/internal/domain"
)

// DefaultDelay is the artificial latency applied to every call.
const DefaultDelay = 500 * time.Millisecond

// Mock wraps a session with a fixed delay. Values and errors from the
// session are returned unchanged.
type Mock struct {
	core  *session.Service
	delay time.Duration
}

// New creates a mock transport. A zero delay calls through immediately.
func New(core *session.Service, delay time.Duration) *Mock {
	if delay < 0 {
		delay = 0
	}
	return &Mock{core: core, delay: delay}
}

// Delay returns the configured latency.
func (m *Mock) Delay() time.Duration { return m.delay }

// wait sleeps for the delay. A cancelled context ends the wait early and
// the call is never made.
func (m *Mock) wait(ctx context.Context) error {
	if m.delay == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func call[T any](ctx context.Context, m *Mock, fn func() (T, error)) (T, error) {
	if err := m.wait(ctx); err != nil {
		var zero T
		return zero, err
	}
	return fn()
}

// ─── Reads ──────────────────────────────────────────────────────────────────

func (m *Mock) Profile(ctx context.Context) (domain.UserProfile, error) {
	return call(ctx, m, func() (domain.UserProfile, error) { return m.core.Profile(), nil })
}

func (m *Mock) Activities(ctx context.Context) ([]domain.Activity, error) {
	return call(ctx, m, func() ([]domain.Activity, error) { return m.core.Activities(), nil })
}

func (m *Mock) Rankings(ctx context.Context) (domain.Rankings, error) {
	return call(ctx, m, func() (domain.Rankings, error) { return m.core.Rankings(ctx), nil })
}

func (m *Mock) Journal(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	return call(ctx, m, func() ([]domain.LedgerEntry, error) { return m.core.Journal(limit) })
}

// ─── Writes ─────────────────────────────────────────────────────────────────

func (m *Mock) LogPickup(ctx context.Context, restaurant string, distanceKm float64, reusable bool) (progression.Result, error) {
	return call(ctx, m, func() (progression.Result, error) {
		return m.core.LogPickup(ctx, restaurant, distanceKm, reusable)
	})
}

func (m *Mock) LogDelivery(ctx context.Context, restaurant string, orderValue int) (progression.Result, error) {
	return call(ctx, m, func() (progression.Result, error) {
		return m.core.LogDelivery(ctx, restaurant, orderValue)
	})
}

func (m *Mock) RewardSteps(ctx context.Context, steps int) (int, error) {
	return call(ctx, m, func() (int, error) { return m.core.RewardSteps(ctx, steps) })
}

func (m *Mock) Spend(ctx context.Context, amount int) (bool, error) {
	return call(ctx, m, func() (bool, error) { return m.core.Spend(ctx, amount) })
}

func (m *Mock) AllocateStats(ctx context.Context, attack, defense int) (domain.Character, error) {
	return call(ctx, m, func() (domain.Character, error) { return m.core.AllocateStats(ctx, attack, defense) })
}

func (m *Mock) DrawCoupon(ctx context.Context, cost int) (*domain.Coupon, error) {
	return call(ctx, m, func() (*domain.Coupon, error) { return m.core.DrawCoupon(ctx, cost) })
}

// Spin is the roulette result plus whether the spin was paid for.
type Spin struct {
	spending.SpinResult
	OK bool `json:"ok"`
}

func (m *Mock) SpinRoulette(ctx context.Context, cost int) (Spin, error) {
	return call(ctx, m, func() (Spin, error) {
		res, ok, err := m.core.SpinRoulette(ctx, cost)
		return Spin{SpinResult: res, OK: ok}, err
	})
}

func (m *Mock) Checkout(ctx context.Context, subtotal, requested int) (spending.CheckoutQuote, error) {
	return call(ctx, m, func() (spending.CheckoutQuote, error) { return m.core.Checkout(ctx, subtotal, requested) })
}

func (m *Mock) AddFriend(ctx context.Context, nickname string) (domain.AddFriendResult, error) {
	return call(ctx, m, func() (domain.AddFriendResult, error) { return m.core.AddFriend(ctx, nickname) })
}

func (m *Mock) Rename(ctx context.Context, name string) (domain.UserProfile, error) {
	return call(ctx, m, func() (domain.UserProfile, error) { return m.core.Rename(ctx, name) })
}
