// Package session is the in-process API the UI layer talks to.
//
// It bundles the reward calculator and progression engine into "log
// activity", exposes rankings and every spend, and serializes all writes
// for the user through a single-owner Queue.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/pickuppal/pickuppal/internal/app/progression"
	"github.com/pickuppal/pickuppal/internal/app/ranking"
	"github.com/pickuppal/pickuppal/internal/app/reward"
	"github.com/pickuppal/pickuppal/internal/app/spending"
	"github.com/pickuppal/pickuppal/internal/domain"
	"github.com/pickuppal/pickuppal/internal/infra/observability"
	"github.com/pickuppal/pickuppal/internal/ledger"
)

var errPanicked = errors.New("session operation panicked")

// Config controls session behavior.
type Config struct {
	LevelUpPolicy progression.Policy
	QueueSize     int
}

// DefaultConfig returns the stock session settings.
func DefaultConfig() Config {
	return Config{
		LevelUpPolicy: progression.SingleStep,
		QueueSize:     64,
	}
}

// Service is the session facade over the ledger store.
type Service struct {
	store    *ledger.Store
	engine   *progression.Engine
	spending *spending.Service
	queue    *Queue
	tracer   *observability.Tracer
	shuffler domain.Shuffler
}

// Deps are the collaborators a Service needs. Nil Shuffler and Picker fall
// back to math/rand/v2; a nil Tracer records nothing.
type Deps struct {
	Store    *ledger.Store
	Tracer   *observability.Tracer
	Shuffler domain.Shuffler
	Picker   domain.Picker
}

// New creates a session service and starts its queue.
func New(cfg Config, deps Deps) *Service {
	if deps.Shuffler == nil {
		deps.Shuffler = ranking.RandomShuffler{}
	}
	if deps.Picker == nil {
		deps.Picker = randomPicker{}
	}
	s := &Service{
		store:    deps.Store,
		engine:   progression.New(cfg.LevelUpPolicy),
		spending: spending.New(deps.Store, deps.Picker),
		queue:    NewQueue(cfg.QueueSize),
		tracer:   deps.Tracer,
		shuffler: deps.Shuffler,
	}
	s.publishGauges()
	return s
}

// Close drains the queue. Further calls fail with domain.ErrQueueClosed.
func (s *Service) Close() { s.queue.Close() }

// QueueStats exposes the queue counters.
func (s *Service) QueueStats() QueueStats { return s.queue.Stats() }

// do runs fn on the queue inside a span.
func (s *Service) do(ctx context.Context, op string, attrs map[string]string, fn func() error) error {
	span := s.tracer.StartSpan(ctx, op, attrs)
	err := s.queue.Do(ctx, fn)
	s.tracer.EndSpan(span, err)
	if err == nil {
		s.publishGauges()
	}
	return err
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// Profile returns the user's profile.
func (s *Service) Profile() domain.UserProfile { return s.store.Profile() }

// Activities returns the history, most recent first.
func (s *Service) Activities() []domain.Activity { return s.store.Activities() }

// Rankings recomputes the leaderboards from the current state.
func (s *Service) Rankings(ctx context.Context) domain.Rankings {
	span := s.tracer.StartSpan(ctx, "rankings", nil)
	defer s.tracer.EndSpan(span, nil)

	var r domain.Rankings
	s.store.View(func(st *ledger.State) {
		r = ranking.Compute(st.Profile, st.Roster, st.FriendIDs, s.shuffler)
	})
	return r
}

// Journal returns the newest point journal rows.
func (s *Service) Journal(limit int) ([]domain.LedgerEntry, error) {
	return s.store.Journal(limit)
}

// ─── Logging Activities ─────────────────────────────────────────────────────

// LogPickup records a completed pickup.
func (s *Service) LogPickup(ctx context.Context, restaurant string, distanceKm float64, reusable bool) (progression.Result, error) {
	return s.LogActivity(ctx, domain.RewardEvent{
		RestaurantName: restaurant,
		Pickup:         &domain.PickupEvent{DistanceKm: distanceKm, UsedReusableContainer: reusable},
	})
}

// LogDelivery records a completed delivery order.
func (s *Service) LogDelivery(ctx context.Context, restaurant string, orderValue int) (progression.Result, error) {
	return s.LogActivity(ctx, domain.RewardEvent{
		RestaurantName: restaurant,
		Delivery:       &domain.DeliveryEvent{OrderValue: orderValue},
	})
}

// LogActivity scores the event against the current attack stat and applies
// it, atomically. Invalid events change nothing.
func (s *Service) LogActivity(ctx context.Context, event domain.RewardEvent) (progression.Result, error) {
	var (
		res progression.Result
		out domain.RewardOutcome
	)
	attrs := map[string]string{"kind": string(event.Kind()), "restaurant": event.RestaurantName}

	err := s.do(ctx, "log_activity", attrs, func() error {
		return s.store.Update(func(st *ledger.State) error {
			var err error
			out, err = reward.Compute(event, st.Profile.Character.Attack)
			if err != nil {
				return err
			}
			res = s.engine.Apply(st, event, out)
			return nil
		})
	})
	if err != nil {
		return progression.Result{}, fmt.Errorf("log activity: %w", err)
	}

	kind := string(res.Activity.Kind)
	observability.ActivitiesLogged.WithLabelValues(kind).Inc()
	observability.PointsEarned.WithLabelValues(kind).Add(float64(out.TotalPoints))
	observability.CarbonReduced.Add(out.Carbon)
	if res.LevelUps > 0 {
		observability.LevelUps.Add(float64(res.LevelUps))
		log.Printf("[session] level up x%d after %s at %s", res.LevelUps, kind, res.Activity.RestaurantName)
	}
	return res, nil
}

// RewardSteps converts pedometer steps into spendable points. Steps earn
// currency only; they do not add experience.
func (s *Service) RewardSteps(ctx context.Context, steps int) (int, error) {
	points, err := reward.StepReward(steps)
	if err != nil {
		return 0, err
	}

	err = s.do(ctx, "reward_steps", nil, func() error {
		return s.store.Update(func(st *ledger.State) error {
			st.Credit(domain.TxBonus, points, fmt.Sprintf("steps: %d", steps))
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	observability.PointsEarned.WithLabelValues("steps").Add(float64(points))
	return points, nil
}

// ─── Spending ───────────────────────────────────────────────────────────────

// Spend debits amount. ok is false on an insufficient balance; err is only
// set when the call itself was abandoned.
func (s *Service) Spend(ctx context.Context, amount int) (ok bool, err error) {
	err = s.do(ctx, "spend", nil, func() error {
		ok = s.spending.Spend(amount)
		return nil
	})
	if err == nil {
		recordSpend("spend", amount, ok)
	}
	return ok, err
}

// AllocateStats moves stat points into attack/defense.
func (s *Service) AllocateStats(ctx context.Context, attack, defense int) (domain.Character, error) {
	var c domain.Character
	err := s.do(ctx, "allocate_stats", nil, func() error {
		var err error
		c, err = s.spending.AllocateStats(attack, defense)
		return err
	})
	if err != nil {
		return domain.Character{}, err
	}
	observability.StatPointsAllocated.WithLabelValues("attack").Add(float64(attack))
	observability.StatPointsAllocated.WithLabelValues("defense").Add(float64(defense))
	return c, nil
}

// DrawCoupon pays cost for a lucky draw; nil coupon means a miss.
func (s *Service) DrawCoupon(ctx context.Context, cost int) (*domain.Coupon, error) {
	var c *domain.Coupon
	err := s.do(ctx, "draw_coupon", nil, func() error {
		c = s.spending.DrawCoupon(cost)
		return nil
	})
	if err != nil {
		return nil, err
	}
	recordSpend("coupon", cost, c != nil)
	return c, nil
}

// SpinRoulette pays cost and spins the wheel; ok is false on a miss.
func (s *Service) SpinRoulette(ctx context.Context, cost int) (res spending.SpinResult, ok bool, err error) {
	err = s.do(ctx, "spin_roulette", nil, func() error {
		res, ok = s.spending.SpinRoulette(cost)
		return nil
	})
	if err != nil {
		return spending.SpinResult{}, false, err
	}
	recordSpend("roulette", cost, ok)
	if res.Refund > 0 {
		observability.PointsEarned.WithLabelValues("roulette").Add(float64(res.Refund))
	}
	return res, ok, nil
}

// Checkout pays part of an order with points.
func (s *Service) Checkout(ctx context.Context, subtotal, requested int) (spending.CheckoutQuote, error) {
	var q spending.CheckoutQuote
	err := s.do(ctx, "checkout", nil, func() error {
		var err error
		q, err = s.spending.Checkout(subtotal, requested)
		return err
	})
	if err != nil {
		return spending.CheckoutQuote{}, err
	}
	recordSpend("checkout", q.PointsUsed, true)
	return q, nil
}

// ─── Social ─────────────────────────────────────────────────────────────────

// AddFriend adds a roster user by display name.
func (s *Service) AddFriend(ctx context.Context, nickname string) (domain.AddFriendResult, error) {
	var res domain.AddFriendResult
	err := s.do(ctx, "add_friend", map[string]string{"nickname": nickname}, func() error {
		res = s.spending.AddFriend(nickname)
		return nil
	})
	if err != nil {
		return domain.AddFriendResult{}, err
	}
	result := "rejected"
	if res.Success {
		result = "added"
	}
	observability.FriendRequests.WithLabelValues(result).Inc()
	return res, nil
}

// Rename changes the user's display name. Blank names are rejected.
func (s *Service) Rename(ctx context.Context, name string) (domain.UserProfile, error) {
	if strings.TrimSpace(name) == "" {
		return domain.UserProfile{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	var p domain.UserProfile
	err := s.do(ctx, "rename", nil, func() error {
		return s.store.Update(func(st *ledger.State) error {
			st.Profile.Name = name
			p = st.Profile.Clone()
			return nil
		})
	})
	if err != nil {
		return domain.UserProfile{}, err
	}
	return p, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func recordSpend(kind string, amount int, ok bool) {
	if !ok {
		observability.SpendAttempts.WithLabelValues(kind, "miss").Inc()
		return
	}
	observability.SpendAttempts.WithLabelValues(kind, "ok").Inc()
	observability.PointsSpent.WithLabelValues(kind).Add(float64(amount))
}

func (s *Service) publishGauges() {
	p := s.store.Profile()
	observability.UserLevel.Set(float64(p.Level))
	observability.UserExperience.Set(float64(p.Experience))
	observability.SpendableBalance.Set(float64(p.SpendableBalance))
}
