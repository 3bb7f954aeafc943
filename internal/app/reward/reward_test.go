package reward

import (
	"errors"
	"math"
	"testing"

	"github.com/pickuppal/pickuppal/internal/domain"
)

// ─── Helpers ────────────────────────────────────────────────────────────────

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func pickup(km float64, reusable bool) domain.RewardEvent {
	return domain.RewardEvent{
		RestaurantName: "피자헛",
		Pickup:         &domain.PickupEvent{DistanceKm: km, UsedReusableContainer: reusable},
	}
}

func delivery(value int) domain.RewardEvent {
	return domain.RewardEvent{
		RestaurantName: "BHC 치킨",
		Delivery:       &domain.DeliveryEvent{OrderValue: value},
	}
}

// ─── Pickup Tests ───────────────────────────────────────────────────────────

func TestCompute_Pickup(t *testing.T) {
	tests := []struct {
		name       string
		km         float64
		reusable   bool
		attack     int
		calories   float64
		carbon     float64
		basePoints int
		total      int
	}{
		// 60*0.5 + 3000/100 + 0.30*20 = 30+30+6 = 66
		{"2km no container", 2.0, false, 0, 60, 0.30, 66, 66},
		// 30+30+7 = 67; floor(67*1.25) = 83
		{"2km container attack 25", 2.0, true, 25, 60, 0.35, 67, 83},
		// 18+30+3.6 = 51.6 → 52
		{"1.2km", 1.2, false, 0, 36, 0.18, 52, 52},
		// 15+30+3 = 48; floor(48*1.1) = 52
		{"1km attack 10", 1.0, false, 10, 30, 0.15, 48, 52},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(pickup(tt.km, tt.reusable), tt.attack)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			if got.Calories != tt.calories {
				t.Errorf("Calories = %v, want %v", got.Calories, tt.calories)
			}
			if got.MoneySaved != DeliveryFeeSaved {
				t.Errorf("MoneySaved = %d, want %d", got.MoneySaved, DeliveryFeeSaved)
			}
			if !almostEqual(got.Carbon, tt.carbon, 1e-9) {
				t.Errorf("Carbon = %v, want %v", got.Carbon, tt.carbon)
			}
			if got.BasePoints != tt.basePoints {
				t.Errorf("BasePoints = %d, want %d", got.BasePoints, tt.basePoints)
			}
			if got.TotalPoints != tt.total {
				t.Errorf("TotalPoints = %d, want %d", got.TotalPoints, tt.total)
			}
		})
	}
}

func TestCompute_Pickup_FormulaHoldsAcrossDistances(t *testing.T) {
	for d := 0.1; d <= 5.0; d += 0.1 {
		got, err := Compute(pickup(d, false), 0)
		if err != nil {
			t.Fatalf("Compute(%v) error: %v", d, err)
		}
		if want := math.Round(30 * d); got.Calories != want {
			t.Errorf("d=%v: Calories = %v, want %v", d, got.Calories, want)
		}
		if want := math.Round(0.15*d*100) / 100; got.Carbon != want {
			t.Errorf("d=%v: Carbon = %v, want %v", d, got.Carbon, want)
		}

		withContainer, _ := Compute(pickup(d, true), 0)
		if !almostEqual(withContainer.Carbon-got.Carbon, ReusableContainerCarbon, 1e-9) {
			t.Errorf("d=%v: container bonus = %v, want %v", d, withContainer.Carbon-got.Carbon, ReusableContainerCarbon)
		}
	}
}

// ─── Delivery Tests ─────────────────────────────────────────────────────────

func TestCompute_Delivery(t *testing.T) {
	tests := []struct {
		name   string
		value  int
		attack int
		base   int
		total  int
	}{
		{"18000 won", 18000, 0, 90, 90},
		{"18000 won attack 25", 18000, 25, 90, 112},
		{"below one point", 150, 50, 0, 0},
		{"floor", 1999, 0, 9, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(delivery(tt.value), tt.attack)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			if got.Calories != 0 || got.MoneySaved != 0 || got.Carbon != 0 {
				t.Errorf("delivery should carry no stats, got %+v", got)
			}
			if got.BasePoints != tt.base {
				t.Errorf("BasePoints = %d, want %d", got.BasePoints, tt.base)
			}
			if got.TotalPoints != tt.total {
				t.Errorf("TotalPoints = %d, want %d", got.TotalPoints, tt.total)
			}
		})
	}
}

// ─── Bonus Tests ────────────────────────────────────────────────────────────

func TestCompute_MonotonicInAttack(t *testing.T) {
	events := []domain.RewardEvent{pickup(2.0, true), pickup(0.7, false), delivery(23000)}
	for _, ev := range events {
		prev := -1
		for attack := 0; attack <= 200; attack++ {
			got, err := Compute(ev, attack)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			if got.TotalPoints < prev {
				t.Fatalf("attack=%d: TotalPoints %d < previous %d", attack, got.TotalPoints, prev)
			}
			prev = got.TotalPoints
		}
	}
}

func TestApplyBonus(t *testing.T) {
	if got := ApplyBonus(67, 25); got != 83 {
		t.Errorf("ApplyBonus(67, 25) = %d, want 83", got)
	}
	if got := ApplyBonus(100, 0); got != 100 {
		t.Errorf("ApplyBonus(100, 0) = %d, want 100", got)
	}
}

// ─── Validation Tests ───────────────────────────────────────────────────────

func TestCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		event  domain.RewardEvent
		attack int
	}{
		{"zero distance", pickup(0, false), 0},
		{"negative distance", pickup(-1.5, false), 0},
		{"NaN distance", pickup(math.NaN(), false), 0},
		{"infinite distance", pickup(math.Inf(1), false), 0},
		{"zero order", delivery(0), 0},
		{"negative order", delivery(-100), 0},
		{"negative attack", pickup(1, false), -1},
		{"huge distance", pickup(1e18, false), 25},
		{"huge order", delivery(math.MaxInt), 0},
		{"bonus past cap", delivery(400_000_000_000), 100},
		{"empty restaurant", domain.RewardEvent{Pickup: &domain.PickupEvent{DistanceKm: 1}}, 0},
		{"no event", domain.RewardEvent{RestaurantName: "x"}, 0},
		{"both events", domain.RewardEvent{
			RestaurantName: "x",
			Pickup:         &domain.PickupEvent{DistanceKm: 1},
			Delivery:       &domain.DeliveryEvent{OrderValue: 1000},
		}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.event, tt.attack)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("Compute() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

// ─── Steps Tests ────────────────────────────────────────────────────────────

func TestStepReward(t *testing.T) {
	tests := []struct {
		steps int
		want  int
	}{
		{0, 0},
		{99, 0},
		{4321, 43},
		{10000, 100},
		{250000, 100},
	}

	for _, tt := range tests {
		got, err := StepReward(tt.steps)
		if err != nil {
			t.Fatalf("StepReward(%d) error: %v", tt.steps, err)
		}
		if got != tt.want {
			t.Errorf("StepReward(%d) = %d, want %d", tt.steps, got, tt.want)
		}
	}

	if _, err := StepReward(-1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("StepReward(-1) error = %v, want ErrInvalidInput", err)
	}
}

func TestApplyBonus_Capped(t *testing.T) {
	if got := ApplyBonus(MaxPoints, 100); got != MaxPoints {
		t.Errorf("ApplyBonus(MaxPoints, 100) = %d, want %d", got, MaxPoints)
	}
}
