// Package spending debits the user's balances.
//
// Two currencies are spent here:
//   - the spendable balance (coupons, roulette, checkout), always routed
//     through the single Spend gate
//   - character stat points (attack/defense allocation)
//
// An insufficient balance is a normal "miss" (false / nil), never an error.
// Insufficient stat points is an error, and nothing is partially applied.
package spending

import (
	"errors"
	"fmt"

	"github.com/pickuppal/pickuppal/internal/domain"
	"github.com/pickuppal/pickuppal/internal/ledger"
)

// ─── Constants ──────────────────────────────────────────────────────────────

const (
	// DrawCost is the price of one lucky draw.
	DrawCost = 1000

	// RouletteCost is the price of one roulette spin.
	RouletteCost = 1000

	// RouletteRefund is credited when the wheel lands on the points slice.
	RouletteRefund = 1000
)

// errMiss aborts an Update when the balance is too low.
var errMiss = errors.New("insufficient balance")

// DrawCouponReward is the fixed coupon handed out by a lucky draw.
func DrawCouponReward() domain.Coupon {
	return domain.Coupon{Name: "랜덤 쿠폰", DiscountRate: 0.1, Description: "축하합니다!"}
}

// ─── Roulette ───────────────────────────────────────────────────────────────

// SliceKind classifies a roulette slice.
type SliceKind string

const (
	SliceMiss   SliceKind = "miss"
	SlicePoints SliceKind = "points"
	SliceCoupon SliceKind = "coupon"
)

// Slice is one wedge of the roulette wheel.
type Slice struct {
	Label        string    `json:"label"`
	Kind         SliceKind `json:"kind"`
	DiscountRate float64   `json:"discount_rate,omitempty"`
}

// Wheel is the roulette layout: three misses, a points refund and two
// discount coupons, each equally likely.
var Wheel = []Slice{
	{Label: "꽝", Kind: SliceMiss},
	{Label: "꽝", Kind: SliceMiss},
	{Label: "꽝", Kind: SliceMiss},
	{Label: "1000P", Kind: SlicePoints},
	{Label: "20% 할인", Kind: SliceCoupon, DiscountRate: 0.2},
	{Label: "40% 할인", Kind: SliceCoupon, DiscountRate: 0.4},
}

// SpinResult is the outcome of a paid roulette spin.
type SpinResult struct {
	Slice   Slice          `json:"slice"`
	Message string         `json:"message"`
	Refund  int            `json:"refund"`
	Coupon  *domain.Coupon `json:"coupon,omitempty"`
}

// ─── Checkout ───────────────────────────────────────────────────────────────

// CheckoutQuote is the result of paying part of an order with points.
type CheckoutQuote struct {
	Subtotal   int `json:"subtotal"`
	PointsUsed int `json:"points_used"`
	FinalPrice int `json:"final_price"`
}

// ─── Service ────────────────────────────────────────────────────────────────

// Service debits the ledger store. Callers serialize calls per user.
type Service struct {
	store  *ledger.Store
	picker domain.Picker
}

// New creates a spending service. picker chooses roulette slices.
func New(store *ledger.Store, picker domain.Picker) *Service {
	return &Service{store: store, picker: picker}
}

// Spend debits amount from the spendable balance. It returns false and
// changes nothing if the balance is too small or the amount is negative.
func (s *Service) Spend(amount int) bool {
	return s.spendWith(amount, "spend", nil) == nil
}

// spendWith debits amount and, on success, runs then against the same
// state inside one atomic update.
func (s *Service) spendWith(amount int, description string, then func(st *ledger.State) error) error {
	return s.store.Update(func(st *ledger.State) error {
		if !Debit(st, amount, description) {
			return errMiss
		}
		if then != nil {
			return then(st)
		}
		return nil
	})
}

// Debit is the Spend gate at the state level. It is exported so that
// bundled operations can spend inside their own Update.
func Debit(st *ledger.State, amount int, description string) bool {
	if amount < 0 || amount > st.Profile.SpendableBalance {
		return false
	}
	return st.Debit(domain.TxSpend, amount, description) == nil
}

// AllocateStats moves stat points into attack and defense.
func (s *Service) AllocateStats(attack, defense int) (domain.Character, error) {
	if attack < 0 || defense < 0 {
		return domain.Character{}, fmt.Errorf("%w: stat deltas must be non-negative (attack=%d defense=%d)",
			domain.ErrInvalidInput, attack, defense)
	}

	var out domain.Character
	err := s.store.Update(func(st *ledger.State) error {
		c := &st.Profile.Character
		// Compared one delta at a time so attack+defense cannot overflow.
		if attack > c.StatPoints || defense > c.StatPoints-attack {
			return fmt.Errorf("%w: need %d+%d, have %d", domain.ErrInsufficientPoints, attack, defense, c.StatPoints)
		}
		cost := attack + defense
		c.Attack += attack
		c.Defense += defense
		c.StatPoints -= cost
		out = c.Clone()
		return nil
	})
	if err != nil {
		return domain.Character{}, err
	}
	return out, nil
}

// DrawCoupon pays cost for a lucky draw. It returns nil when the balance is
// too low. A won coupon is also added to the user's coupon box.
func (s *Service) DrawCoupon(cost int) *domain.Coupon {
	coupon := DrawCouponReward()
	err := s.spendWith(cost, "lucky draw", func(st *ledger.State) error {
		st.Profile.Coupons = append(st.Profile.Coupons, coupon)
		return nil
	})
	if err != nil {
		return nil
	}
	return &coupon
}

// SpinRoulette pays cost and spins the wheel. ok is false when the balance
// is too low, in which case nothing is charged.
func (s *Service) SpinRoulette(cost int) (result SpinResult, ok bool) {
	err := s.spendWith(cost, "roulette", func(st *ledger.State) error {
		slice := Wheel[s.picker.IntN(len(Wheel))]
		result = SpinResult{Slice: slice}

		switch slice.Kind {
		case SliceMiss:
			result.Message = "아쉽지만 꽝입니다!"
		case SlicePoints:
			st.Credit(domain.TxBonus, RouletteRefund, "roulette refund")
			result.Refund = RouletteRefund
			result.Message = fmt.Sprintf("축하합니다! %s 당첨!", slice.Label)
		case SliceCoupon:
			c := domain.Coupon{
				Name:         slice.Label + " 쿠폰",
				DiscountRate: slice.DiscountRate,
				Description:  "룰렛 당첨 쿠폰",
			}
			st.Profile.Coupons = append(st.Profile.Coupons, c)
			result.Coupon = &c
			result.Message = fmt.Sprintf("축하합니다! %s 쿠폰 당첨!", slice.Label)
		}
		return nil
	})
	if err != nil {
		return SpinResult{}, false
	}
	return result, true
}

// Checkout pays up to requested points toward an order of subtotal.
// Points used are capped by the balance and by the subtotal itself.
func (s *Service) Checkout(subtotal, requested int) (CheckoutQuote, error) {
	if subtotal < 0 {
		return CheckoutQuote{}, fmt.Errorf("%w: subtotal %d is negative", domain.ErrInvalidInput, subtotal)
	}
	requested = max(requested, 0)

	var q CheckoutQuote
	err := s.store.Update(func(st *ledger.State) error {
		use := min(requested, st.Profile.SpendableBalance, subtotal)
		if !Debit(st, use, "checkout") {
			return errMiss
		}
		q = CheckoutQuote{Subtotal: subtotal, PointsUsed: use, FinalPrice: subtotal - use}
		return nil
	})
	if err != nil {
		return CheckoutQuote{}, err
	}
	return q, nil
}

// AddFriend adds the roster user with the given display name to the friend
// set. It never fails; the outcome is described in the result.
func (s *Service) AddFriend(nickname string) domain.AddFriendResult {
	var res domain.AddFriendResult
	_ = s.store.Update(func(st *ledger.State) error {
		friend, ok := st.FindByName(nickname)
		switch {
		case !ok:
			res = domain.AddFriendResult{Success: false, Message: "사용자를 찾을 수 없습니다."}
		case st.IsFriend(friend.ID):
			res = domain.AddFriendResult{Success: false, Message: "이미 친구입니다."}
		default:
			st.FriendIDs = append(st.FriendIDs, friend.ID)
			res = domain.AddFriendResult{Success: true, Message: nickname + "님을 친구로 추가했습니다."}
		}
		return nil
	})
	return res
}
