package domain

import (
	"testing"
)

// ─── UserProfile Tests ──────────────────────────────────────────────────────

func TestUserProfile_Clone_IsDeep(t *testing.T) {
	u := UserProfile{
		ID:      "user_1",
		Coupons: []Coupon{{Name: "랜덤 쿠폰", DiscountRate: 0.1}},
		Character: Character{
			Attack: 25,
			Skills: []Skill{{Name: "절약의 일격"}},
		},
	}

	c := u.Clone()
	c.Coupons[0].Name = "changed"
	c.Character.Skills[0].Name = "changed"
	c.Character.Attack = 99

	if u.Coupons[0].Name != "랜덤 쿠폰" {
		t.Errorf("original coupon mutated: %q", u.Coupons[0].Name)
	}
	if u.Character.Skills[0].Name != "절약의 일격" {
		t.Errorf("original skill mutated: %q", u.Character.Skills[0].Name)
	}
	if u.Character.Attack != 25 {
		t.Errorf("Attack = %d, want 25", u.Character.Attack)
	}
}

func TestUserProfile_ProgressPct(t *testing.T) {
	tests := []struct {
		name    string
		exp     int
		toNext  int
		wantPct float64
	}{
		{"halfway", 7500, 15000, 50},
		{"empty", 0, 100, 0},
		{"capped", 200, 100, 100},
		{"zero threshold", 10, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := UserProfile{Experience: tt.exp, ExperienceToNextLevel: tt.toNext}
			if got := u.ProgressPct(); got != tt.wantPct {
				t.Errorf("ProgressPct() = %f, want %f", got, tt.wantPct)
			}
		})
	}
}

// ─── RewardEvent Tests ──────────────────────────────────────────────────────

func TestRewardEvent_Kind(t *testing.T) {
	pickup := RewardEvent{Pickup: &PickupEvent{DistanceKm: 1}}
	if !pickup.IsPickup() {
		t.Error("pickup event should report IsPickup")
	}
	if pickup.Kind() != ActivityPickup {
		t.Errorf("Kind() = %q, want %q", pickup.Kind(), ActivityPickup)
	}

	delivery := RewardEvent{Delivery: &DeliveryEvent{OrderValue: 18000}}
	if delivery.IsPickup() {
		t.Error("delivery event should not report IsPickup")
	}
	if delivery.Kind() != ActivityDelivery {
		t.Errorf("Kind() = %q, want %q", delivery.Kind(), ActivityDelivery)
	}
}
