// Package reward scores logged pickup and delivery events.
//
// Pickup:   calories = round(km×30), money saved = flat delivery fee,
//           carbon = round2(km×0.15) (+0.05 with a reusable container),
//           base = round(calories×0.5 + saved/100 + carbon×20)
// Delivery: base = floor(orderValue×0.005), no health/eco stats
// Both:     total = floor(base × (1 + attack×0.01))
//
// Everything here is pure. Random session distances are generated by the
// caller, never inside this package.
package reward

import (
	"fmt"
	"math"
	"strings"

	"github.com/pickuppal/pickuppal/internal/domain"
)

// ─── Constants ──────────────────────────────────────────────────────────────

const (
	// CaloriesPerKm burned walking to the restaurant and back.
	CaloriesPerKm = 30.0

	// DeliveryFeeSaved is the flat fee avoided by picking up (KRW).
	DeliveryFeeSaved = 3000

	// CarbonPerKm is the kg CO₂ a delivery vehicle would have emitted.
	CarbonPerKm = 0.15

	// ReusableContainerCarbon is the extra credit for a reusable container.
	ReusableContainerCarbon = 0.05

	// Pickup point weights.
	CaloriePointWeight = 0.5
	MoneyPointDivisor  = 100.0
	CarbonPointWeight  = 20.0

	// DeliveryPointRate is the share of order value returned as points.
	DeliveryPointRate = 0.005

	// AttackBonusRate is the bonus per point of character attack (1%).
	AttackBonusRate = 0.01

	// Steps reward (pedometer): 1 point per StepsPerPoint, at most MaxStepPoints.
	StepsPerPoint = 100
	MaxStepPoints = 100

	// MaxPoints caps the base and total points of one event. Larger events
	// are rejected as invalid.
	MaxPoints = math.MaxInt32
)

// Compute scores a reward event for a character with the given attack.
func Compute(event domain.RewardEvent, characterAttack int) (domain.RewardOutcome, error) {
	if err := Validate(event); err != nil {
		return domain.RewardOutcome{}, err
	}
	if characterAttack < 0 {
		return domain.RewardOutcome{}, fmt.Errorf("%w: attack %d is negative", domain.ErrInvalidInput, characterAttack)
	}

	var (
		out  domain.RewardOutcome
		base float64
	)
	if event.IsPickup() {
		out, base = pickupOutcome(*event.Pickup)
	} else {
		base = math.Floor(float64(event.Delivery.OrderValue) * DeliveryPointRate)
	}
	if base > MaxPoints {
		return domain.RewardOutcome{}, fmt.Errorf("%w: event worth %.0f base points exceeds %d", domain.ErrInvalidInput, base, MaxPoints)
	}
	out.BasePoints = int(base)

	total := bonusPoints(base, characterAttack)
	if total > MaxPoints {
		return domain.RewardOutcome{}, fmt.Errorf("%w: event worth %.0f points exceeds %d", domain.ErrInvalidInput, total, MaxPoints)
	}
	out.TotalPoints = int(total)
	return out, nil
}

// Validate checks the event shape and parameters without scoring it.
func Validate(event domain.RewardEvent) error {
	if strings.TrimSpace(event.RestaurantName) == "" {
		return fmt.Errorf("%w: restaurant name is required", domain.ErrInvalidInput)
	}

	switch {
	case event.Pickup != nil && event.Delivery != nil:
		return fmt.Errorf("%w: event is both pickup and delivery", domain.ErrInvalidInput)
	case event.Pickup != nil:
		d := event.Pickup.DistanceKm
		if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
			return fmt.Errorf("%w: distance %v km must be positive", domain.ErrInvalidInput, d)
		}
	case event.Delivery != nil:
		if event.Delivery.OrderValue <= 0 {
			return fmt.Errorf("%w: order value %d must be positive", domain.ErrInvalidInput, event.Delivery.OrderValue)
		}
	default:
		return fmt.Errorf("%w: event has no pickup or delivery", domain.ErrInvalidInput)
	}
	return nil
}

// pickupOutcome fills everything but the points and returns the unrounded
// base so the caller can range-check it before converting.
func pickupOutcome(p domain.PickupEvent) (domain.RewardOutcome, float64) {
	calories := math.Round(p.DistanceKm * CaloriesPerKm)
	carbon := round2(p.DistanceKm * CarbonPerKm)
	if p.UsedReusableContainer {
		carbon += ReusableContainerCarbon
	}

	base := math.Round(calories*CaloriePointWeight +
		float64(DeliveryFeeSaved)/MoneyPointDivisor +
		carbon*CarbonPointWeight)

	return domain.RewardOutcome{
		Calories:   calories,
		MoneySaved: DeliveryFeeSaved,
		Carbon:     carbon,
	}, base
}

// ApplyBonus returns floor(base × (1 + attack×0.01)), capped at MaxPoints.
func ApplyBonus(basePoints, characterAttack int) int {
	return int(min(bonusPoints(float64(basePoints), characterAttack), MaxPoints))
}

func bonusPoints(base float64, characterAttack int) float64 {
	bonusRate := float64(characterAttack) * AttackBonusRate
	return math.Floor(base * (1.0 + bonusRate))
}

// StepReward converts a pedometer step count into points: min(steps/100, 100).
func StepReward(steps int) (int, error) {
	if steps < 0 {
		return 0, fmt.Errorf("%w: steps %d is negative", domain.ErrInvalidInput, steps)
	}
	return min(steps/StepsPerPoint, MaxStepPoints), nil
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
