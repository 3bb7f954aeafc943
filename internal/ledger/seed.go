package ledger

import (
	"time"

	"github.com/pickuppal/pickuppal/internal/domain"
)

// Seed is the initial content of a Store.
type Seed struct {
	User       domain.UserProfile
	Roster     []domain.UserProfile
	FriendIDs  []string
	Activities []domain.Activity
}

// DefaultCharacter is the starter avatar "피키".
func DefaultCharacter() domain.Character {
	return domain.Character{
		ID:           "char_1",
		Name:         "피키",
		ModelURL:     "https://modelviewer.dev/shared-assets/models/RobotExpressive.glb",
		ThumbnailURL: "https://i.pravatar.cc/150?u=char_1",
		StatPoints:   15,
		Attack:       25,
		Defense:      18,
		Skills: []domain.Skill{
			{Name: "절약의 일격", Description: "절약 금액에 비례하여 추가 포인트를 획득합니다."},
			{Name: "탄소 방패", Description: "탄소 절감량이 높을수록 방어력이 증가합니다."},
		},
	}
}

// DefaultSeed returns the demo session: one level-25 user with 12000 exp
// and 5000 spendable points, five roster users, one friend and two past
// pickups. now anchors the activity timestamps.
func DefaultSeed(now time.Time) Seed {
	user := domain.UserProfile{
		ID: "user_1", Name: "김픽업",
		Level: 25, Experience: 12000, ExperienceToNextLevel: 15000,
		SpendableBalance: 5000,
		Stats: domain.UserStats{
			TotalPickups: 128, TotalCaloriesBurned: 5450,
			TotalMoneySaved: 342000, TotalCarbonReduced: 45.5,
		},
		Character: DefaultCharacter(),
	}

	other := func(id, name string, level, exp, toNext int, stats domain.UserStats) domain.UserProfile {
		return domain.UserProfile{
			ID: id, Name: name, Level: level,
			Experience: exp, ExperienceToNextLevel: toNext,
			Stats: stats, Character: DefaultCharacter(),
		}
	}

	return Seed{
		User: user,
		Roster: []domain.UserProfile{
			other("user_2", "박배달", 20, 9500, 10000, domain.UserStats{TotalPickups: 10, TotalCaloriesBurned: 500, TotalMoneySaved: 10000, TotalCarbonReduced: 2.0}),
			other("user_3", "이포장", 18, 8200, 9000, domain.UserStats{TotalPickups: 15, TotalCaloriesBurned: 800, TotalMoneySaved: 15000, TotalCarbonReduced: 3.5}),
			other("user_4", "최워킹", 15, 7000, 8000, domain.UserStats{TotalPickups: 5, TotalCaloriesBurned: 300, TotalMoneySaved: 5000, TotalCarbonReduced: 1.0}),
			other("user_5", "강달려", 22, 11000, 12000, domain.UserStats{TotalPickups: 20, TotalCaloriesBurned: 1000, TotalMoneySaved: 30000, TotalCarbonReduced: 5.0}),
			other("user_6", "조절약", 10, 4500, 5000, domain.UserStats{TotalPickups: 8, TotalCaloriesBurned: 400, TotalMoneySaved: 8000, TotalCarbonReduced: 1.5}),
		},
		FriendIDs: []string{"user_2"},
		Activities: []domain.Activity{
			{
				ID: "act_1", Kind: domain.ActivityPickup, RestaurantName: "피자헛",
				Timestamp:      now.Add(-time.Hour),
				CaloriesBurned: 60, MoneySaved: 3000, CarbonReduced: 0.35,
				PointsEarned: 55, UsedReusableContainer: true,
			},
			{
				ID: "act_2", Kind: domain.ActivityPickup, RestaurantName: "BHC 치킨",
				Timestamp:      now.Add(-48 * time.Hour),
				CaloriesBurned: 45, MoneySaved: 3000, CarbonReduced: 0.2,
				PointsEarned: 40,
			},
		},
	}
}
