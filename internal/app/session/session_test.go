package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pickuppal/pickuppal/internal/app/progression"
	"github.com/pickuppal/pickuppal/internal/domain"
	"github.com/pickuppal/pickuppal/internal/infra/observability"
	"github.com/pickuppal/pickuppal/internal/infra/sqlite"
	"github.com/pickuppal/pickuppal/internal/ledger"
)

// ─── Helpers ────────────────────────────────────────────────────────────────

type fixedPicker int

func (p fixedPicker) IntN(n int) int { return int(p) % n }

func newTestSession(t *testing.T) (*Service, *ledger.Store, *observability.Tracer) {
	t.Helper()
	store := ledger.New(ledger.DefaultSeed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))

	db, err := sqlite.Open()
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store.SetJournal(db)

	tr := observability.NewTracer(observability.DefaultTracerConfig())
	svc := New(DefaultConfig(), Deps{Store: store, Tracer: tr, Picker: fixedPicker(3)})
	t.Cleanup(svc.Close)
	return svc, store, tr
}

// ─── Log Activity ───────────────────────────────────────────────────────────

func TestLogPickup_Scenario(t *testing.T) {
	svc, _, tr := newTestSession(t)
	ctx := context.Background()

	res, err := svc.LogPickup(ctx, "피자헛", 2.0, true)
	if err != nil {
		t.Fatalf("LogPickup() error: %v", err)
	}
	if res.Activity.PointsEarned != 83 {
		t.Errorf("PointsEarned = %d, want 83", res.Activity.PointsEarned)
	}

	p := svc.Profile()
	if p.Experience != 12083 || p.Level != 25 {
		t.Errorf("exp/level = %d/%d, want 12083/25", p.Experience, p.Level)
	}
	if p.SpendableBalance != 5083 {
		t.Errorf("SpendableBalance = %d, want 5083", p.SpendableBalance)
	}
	if acts := svc.Activities(); acts[0].ID != res.Activity.ID {
		t.Errorf("newest activity = %s, want %s", acts[0].ID, res.Activity.ID)
	}

	spans := tr.Spans(1)
	if len(spans) != 1 || spans[0].Operation != "log_activity" || spans[0].Attrs["kind"] != "pickup" {
		t.Errorf("spans = %+v", spans)
	}
}

func TestLogDelivery_UsesCurrentAttack(t *testing.T) {
	svc, _, _ := newTestSession(t)
	ctx := context.Background()

	// attack 25 → floor(90*1.25) = 112
	res, err := svc.LogDelivery(ctx, "BHC 치킨", 18000)
	if err != nil {
		t.Fatalf("LogDelivery() error: %v", err)
	}
	if res.Activity.PointsEarned != 112 {
		t.Errorf("PointsEarned = %d, want 112", res.Activity.PointsEarned)
	}

	// attack 40 → floor(90*1.40) = 126
	if _, err := svc.AllocateStats(ctx, 15, 0); err != nil {
		t.Fatalf("AllocateStats() error: %v", err)
	}
	res, _ = svc.LogDelivery(ctx, "BHC 치킨", 18000)
	if res.Activity.PointsEarned != 126 {
		t.Errorf("PointsEarned after allocation = %d, want 126", res.Activity.PointsEarned)
	}
}

func TestLogActivity_InvalidInputChangesNothing(t *testing.T) {
	svc, _, tr := newTestSession(t)
	before := svc.Profile()

	_, err := svc.LogPickup(context.Background(), "피자헛", 0, false)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("LogPickup(0km) error = %v, want ErrInvalidInput", err)
	}

	after := svc.Profile()
	if after.Experience != before.Experience || after.SpendableBalance != before.SpendableBalance {
		t.Errorf("state changed on invalid input")
	}
	if len(svc.Activities()) != 2 {
		t.Errorf("activities = %d, want 2", len(svc.Activities()))
	}
	if spans := tr.Spans(1); spans[0].Status != observability.SpanError {
		t.Errorf("span status = %d, want SpanError", spans[0].Status)
	}
}

func TestLogActivity_LoopPolicy(t *testing.T) {
	seed := ledger.DefaultSeed(time.Now())
	seed.User.Experience = 0
	seed.User.ExperienceToNextLevel = 10
	store := ledger.New(seed)

	cfg := DefaultConfig()
	cfg.LevelUpPolicy = progression.Loop
	svc := New(cfg, Deps{Store: store})
	defer svc.Close()

	// 83 exp against thresholds 10, 12, 14, 16, 19, ... 74, 88
	res, err := svc.LogPickup(context.Background(), "피자헛", 2.0, true)
	if err != nil {
		t.Fatalf("LogPickup() error: %v", err)
	}
	if res.LevelUps < 2 {
		t.Errorf("LevelUps = %d, want several with the loop policy", res.LevelUps)
	}
	if p := svc.Profile(); p.Experience >= p.ExperienceToNextLevel {
		t.Errorf("loop policy left exp %d >= threshold %d", p.Experience, p.ExperienceToNextLevel)
	}
}

// ─── Rankings ───────────────────────────────────────────────────────────────

func TestRankings_ReflectLatestWrite(t *testing.T) {
	svc, store, _ := newTestSession(t)
	ctx := context.Background()

	store.Update(func(st *ledger.State) error {
		st.Profile.Experience = 10000
		st.Profile.ExperienceToNextLevel = 1 << 30
		return nil
	})
	r := svc.Rankings(ctx)
	if r.Local[0].UserID != "user_5" {
		t.Fatalf("Local[0] = %s, want user_5", r.Local[0].UserID)
	}

	// 18000 won delivery twice: 2 × 112 = 224 → 10224 < 11000, still second.
	svc.LogDelivery(ctx, "BHC 치킨", 18000)
	svc.LogDelivery(ctx, "BHC 치킨", 18000)
	r = svc.Rankings(ctx)
	if r.Local[1].UserID != "user_1" || r.Local[1].Score != 10224 {
		t.Errorf("Local[1] = %+v, want user_1 with 10224", r.Local[1])
	}

	res, _ := svc.AddFriend(ctx, "강달려")
	if !res.Success {
		t.Fatalf("AddFriend() = %+v", res)
	}
	if r = svc.Rankings(ctx); len(r.Friends) != 3 {
		t.Errorf("Friends = %d, want 3", len(r.Friends))
	}
}

// ─── Spending ───────────────────────────────────────────────────────────────

func TestSpend_Miss(t *testing.T) {
	svc, store, _ := newTestSession(t)
	store.Update(func(st *ledger.State) error {
		st.Profile.SpendableBalance = 50
		return nil
	})

	ok, err := svc.Spend(context.Background(), 100)
	if err != nil {
		t.Fatalf("Spend() error: %v", err)
	}
	if ok {
		t.Error("Spend(100) on 50 should miss")
	}
	if got := svc.Profile().SpendableBalance; got != 50 {
		t.Errorf("SpendableBalance = %d, want 50", got)
	}
}

func TestSpendingFlow_JournalTracksBalance(t *testing.T) {
	svc, _, _ := newTestSession(t)
	ctx := context.Background()

	svc.LogPickup(ctx, "피자헛", 2.0, true) // +83 → 5083
	if c, _ := svc.DrawCoupon(ctx, 1000); c == nil {
		t.Fatal("DrawCoupon() = nil") // → 4083
	}
	res, ok, err := svc.SpinRoulette(ctx, 1000) // slot 3 = 1000P: -1000 +1000
	if err != nil || !ok || res.Refund != 1000 {
		t.Fatalf("SpinRoulette() = %+v, %v, %v", res, ok, err)
	}
	q, err := svc.Checkout(ctx, 21000, 2000) // → 2083
	if err != nil || q.FinalPrice != 19000 {
		t.Fatalf("Checkout() = %+v, %v", q, err)
	}
	if pts, _ := svc.RewardSteps(ctx, 4321); pts != 43 { // → 2126
		t.Errorf("RewardSteps() = %d, want 43", pts)
	}

	p := svc.Profile()
	if p.SpendableBalance != 2126 {
		t.Errorf("SpendableBalance = %d, want 2126", p.SpendableBalance)
	}
	if p.Experience != 12083 {
		t.Errorf("Experience = %d, want 12083 (spends and steps never touch it)", p.Experience)
	}
	if len(p.Coupons) != 1 {
		t.Errorf("coupons = %d, want 1", len(p.Coupons))
	}

	rows, err := svc.Journal(0)
	if err != nil {
		t.Fatalf("Journal() error: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("journal rows = %d, want 6", len(rows))
	}
	if rows[0].Balance != 2126 || rows[0].Type != domain.TxBonus {
		t.Errorf("newest row = %+v, want steps bonus with balance 2126", rows[0])
	}
}

func TestAllocateStats_Insufficient(t *testing.T) {
	svc, _, _ := newTestSession(t)
	_, err := svc.AllocateStats(context.Background(), 10, 10)
	if !errors.Is(err, domain.ErrInsufficientPoints) {
		t.Errorf("AllocateStats(10,10) error = %v, want ErrInsufficientPoints", err)
	}
	if c := svc.Profile().Character; c.StatPoints != 15 || c.Attack != 25 {
		t.Errorf("character changed: %+v", c)
	}
}

// ─── Rename ─────────────────────────────────────────────────────────────────

func TestRename(t *testing.T) {
	svc, _, _ := newTestSession(t)
	ctx := context.Background()

	if _, err := svc.Rename(ctx, "   "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Rename(blank) error = %v, want ErrInvalidInput", err)
	}
	p, err := svc.Rename(ctx, "픽업왕")
	if err != nil {
		t.Fatalf("Rename() error: %v", err)
	}
	if p.Name != "픽업왕" || svc.Profile().Name != "픽업왕" {
		t.Errorf("Name = %q, want 픽업왕", p.Name)
	}
}

// ─── Serialization ──────────────────────────────────────────────────────────

func TestConcurrentCallers_AreSerialized(t *testing.T) {
	svc, _, _ := newTestSession(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.LogDelivery(ctx, "BHC 치킨", 18000) // +112
		}()
		go func() {
			defer wg.Done()
			svc.Spend(ctx, 10)
		}()
	}
	wg.Wait()

	p := svc.Profile()
	if want := 5000 + n*112 - n*10; p.SpendableBalance != want {
		t.Errorf("SpendableBalance = %d, want %d", p.SpendableBalance, want)
	}
	if want := 12000 + n*112; p.Experience != want {
		t.Errorf("Experience = %d, want %d", p.Experience, want)
	}
	if got := len(svc.Activities()); got != 2+n {
		t.Errorf("activities = %d, want %d", got, 2+n)
	}
}

func TestCancelledContext_IsNoOp(t *testing.T) {
	svc, _, _ := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.LogPickup(ctx, "피자헛", 2.0, true)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("LogPickup() error = %v, want context.Canceled", err)
	}
	if p := svc.Profile(); p.Experience != 12000 {
		t.Errorf("Experience = %d, want 12000", p.Experience)
	}
}

func TestClosedSession(t *testing.T) {
	svc, _, _ := newTestSession(t)
	svc.Close()

	if _, err := svc.Spend(context.Background(), 1); !errors.Is(err, domain.ErrQueueClosed) {
		t.Errorf("Spend() after Close error = %v, want ErrQueueClosed", err)
	}
}
