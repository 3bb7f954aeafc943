// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import (
	"math"
	"time"
)

// ─── Character Types ────────────────────────────────────────────────────────

// Skill is an entry in a character's fixed skill catalog.
type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Character is the avatar attached to a user profile.
// Attack feeds the reward bonus; StatPoints are earned on level-up and
// spent only through stat allocation.
type Character struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ModelURL     string  `json:"model_url"`
	ThumbnailURL string  `json:"thumbnail_url"`
	StatPoints   int     `json:"stat_points"`
	Attack       int     `json:"attack"`
	Defense      int     `json:"defense"`
	Skills       []Skill `json:"skills"`
}

// Clone returns a deep copy. The skill catalog is shared read-only data,
// but callers get their own slice header anyway.
func (c Character) Clone() Character {
	out := c
	out.Skills = append([]Skill(nil), c.Skills...)
	return out
}

// ─── Profile Types ──────────────────────────────────────────────────────────

// UserStats holds cumulative pickup-only totals.
type UserStats struct {
	TotalPickups        int     `json:"total_pickups"`
	TotalCaloriesBurned float64 `json:"total_calories_burned"`
	TotalMoneySaved     int     `json:"total_money_saved"`
	TotalCarbonReduced  float64 `json:"total_carbon_reduced"`
}

// UserProfile is the canonical mutable state for one user.
//
// Experience and SpendableBalance are independent counters: both grow by the
// same amount when points are earned, only the balance is ever spent.
type UserProfile struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Level                 int       `json:"level"`
	Experience            int       `json:"exp"`
	ExperienceToNextLevel int       `json:"exp_to_next_level"`
	SpendableBalance      int       `json:"cash_points"`
	Coupons               []Coupon  `json:"coupons"`
	Stats                 UserStats `json:"stats"`
	Character             Character `json:"character"`
}

// Clone returns a deep copy safe to hand out of the ledger store.
func (u UserProfile) Clone() UserProfile {
	out := u
	out.Coupons = append([]Coupon(nil), u.Coupons...)
	out.Character = u.Character.Clone()
	return out
}

// ProgressPct returns progress toward the next level threshold, 0–100.
func (u UserProfile) ProgressPct() float64 {
	if u.ExperienceToNextLevel <= 0 {
		return 100
	}
	pct := float64(u.Experience) / float64(u.ExperienceToNextLevel) * 100
	return math.Min(pct, 100)
}

// ─── Activity Types ─────────────────────────────────────────────────────────

// ActivityKind distinguishes how the food was obtained.
type ActivityKind string

const (
	ActivityPickup   ActivityKind = "pickup"
	ActivityDelivery ActivityKind = "delivery"
)

// Activity is an immutable record of one logged reward event.
type Activity struct {
	ID                    string       `json:"id"`
	Kind                  ActivityKind `json:"kind"`
	RestaurantName        string       `json:"restaurant_name"`
	Timestamp             time.Time    `json:"date"`
	CaloriesBurned        float64      `json:"calories_burned"`
	MoneySaved            int          `json:"money_saved"`
	CarbonReduced         float64      `json:"carbon_reduced"`
	PointsEarned          int          `json:"points_earned"`
	UsedReusableContainer bool         `json:"use_reusable_container"`
}

// ─── Reward Events ──────────────────────────────────────────────────────────

// RewardEvent is a logged pickup or delivery completion.
// Exactly one of Pickup or Delivery is set.
type RewardEvent struct {
	RestaurantName string         `json:"restaurant_name"`
	Pickup         *PickupEvent   `json:"pickup,omitempty"`
	Delivery       *DeliveryEvent `json:"delivery,omitempty"`
}

// PickupEvent: the user walked DistanceKm to collect the order.
type PickupEvent struct {
	DistanceKm            float64 `json:"distance_km"`
	UsedReusableContainer bool    `json:"use_reusable_container"`
}

// DeliveryEvent: the order was delivered; only its value matters.
type DeliveryEvent struct {
	OrderValue int `json:"order_value"`
}

// IsPickup reports whether the event is a pickup.
func (e RewardEvent) IsPickup() bool { return e.Pickup != nil }

// Kind returns the activity kind the event will produce.
func (e RewardEvent) Kind() ActivityKind {
	if e.IsPickup() {
		return ActivityPickup
	}
	return ActivityDelivery
}

// RewardOutcome is the pure result of scoring a reward event.
type RewardOutcome struct {
	Calories    float64 `json:"calories"`
	MoneySaved  int     `json:"money_saved"`
	Carbon      float64 `json:"carbon"`
	BasePoints  int     `json:"base_points"`
	TotalPoints int     `json:"total_points"`
}

// ─── Shop Types ─────────────────────────────────────────────────────────────

// Coupon is created only by a successful spend and never mutated.
type Coupon struct {
	Name         string  `json:"name"`
	DiscountRate float64 `json:"discount_rate"` // 0.1 = 10% off
	Description  string  `json:"description"`
}
