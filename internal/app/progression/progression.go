// Package progression applies scored rewards to a user's ledger state.
//
// Order of operations for one reward:
//  1. Build the immutable Activity record
//  2. Pickups only: bump the cumulative health/eco stats
//  3. Add the points to experience AND the spendable balance
//  4. Level-up check (single step by default)
//  5. Prepend the activity to history
package progression

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pickuppal/pickuppal/internal/domain"
	"github.com/pickuppal/pickuppal/internal/ledger"
)

// ─── Constants ──────────────────────────────────────────────────────────────

const (
	// ThresholdGrowth multiplies the next-level threshold on each level-up.
	ThresholdGrowth = 1.2

	// StatPointsPerLevel are granted to the character on each level-up.
	StatPointsPerLevel = 3
)

// Policy controls how many thresholds one reward may cross.
type Policy int

const (
	// SingleStep checks the threshold once per reward, so a reward large
	// enough to cross two thresholds still levels up only once.
	SingleStep Policy = iota

	// Loop keeps leveling while experience stays above the threshold.
	Loop
)

// String returns the config name of the policy.
func (p Policy) String() string {
	if p == Loop {
		return "loop"
	}
	return "single"
}

// ParsePolicy maps a config value to a Policy. Unknown values fall back to
// SingleStep.
func ParsePolicy(s string) Policy {
	if s == "loop" {
		return Loop
	}
	return SingleStep
}

// Result describes one applied reward.
type Result struct {
	Activity domain.Activity `json:"activity"`
	LevelUps int             `json:"level_ups"`
}

// Engine applies reward outcomes.
type Engine struct {
	policy Policy
	now    func() time.Time
	newID  func() string
}

// New creates an engine with the given level-up policy.
func New(policy Policy) *Engine {
	return &Engine{
		policy: policy,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Policy returns the engine's level-up policy.
func (e *Engine) Policy() Policy { return e.policy }

// Apply mutates st for one scored event and returns the new activity.
// Apply cannot fail: inputs were validated by the reward calculator.
func (e *Engine) Apply(st *ledger.State, event domain.RewardEvent, outcome domain.RewardOutcome) Result {
	activity := domain.Activity{
		ID:                    e.newID(),
		Kind:                  event.Kind(),
		RestaurantName:        event.RestaurantName,
		Timestamp:             e.now(),
		CaloriesBurned:        outcome.Calories,
		MoneySaved:            outcome.MoneySaved,
		CarbonReduced:         outcome.Carbon,
		PointsEarned:          outcome.TotalPoints,
		UsedReusableContainer: event.IsPickup() && event.Pickup.UsedReusableContainer,
	}

	p := &st.Profile
	if event.IsPickup() {
		p.Stats.TotalPickups++
		p.Stats.TotalCaloriesBurned += outcome.Calories
		p.Stats.TotalMoneySaved += outcome.MoneySaved
		p.Stats.TotalCarbonReduced += outcome.Carbon
	}

	p.Experience += outcome.TotalPoints
	st.Credit(domain.TxEarn, outcome.TotalPoints, string(activity.Kind)+": "+activity.RestaurantName)

	levelUps := CheckLevelUp(p, e.policy)

	st.Activities = append([]domain.Activity{activity}, st.Activities...)

	return Result{Activity: activity, LevelUps: levelUps}
}

// CheckLevelUp runs the level-up transition on p and returns how many
// levels were gained.
func CheckLevelUp(p *domain.UserProfile, policy Policy) int {
	gained := 0
	for p.Experience >= p.ExperienceToNextLevel {
		p.Level++
		p.ExperienceToNextLevel = nextThreshold(p.ExperienceToNextLevel, policy)
		p.Character.StatPoints += StatPointsPerLevel
		gained++
		if policy == SingleStep {
			break
		}
	}
	return gained
}

// nextThreshold returns floor(current × 1.2). Under Loop it grows by at
// least one point so tiny thresholds cannot stall the loop.
func nextThreshold(current int, policy Policy) int {
	next := int(math.Floor(float64(current) * ThresholdGrowth))
	if policy == Loop && next <= current {
		next = current + 1
	}
	return next
}
