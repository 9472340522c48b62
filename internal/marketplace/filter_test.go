package marketplace

import (
	"context"
	"fmt"
	"testing"
)

type mockRater struct {
	rate float64
	err  error
}

func (m *mockRater) APEUSD(_ context.Context) (float64, error) {
	return m.rate, m.err
}

func healthyStats() FloorStats {
	return FloorStats{
		Collection:   "Cool Apes",
		FloorPrice:   50,
		Currency:     "APE",
		OwnerCount:   1200,
		Volume30d:    9000,
		FloorSale30d: 45,
	}
}

func TestEvaluate_HealthyCollection(t *testing.T) {
	f := NewFilter(Thresholds{MinOwners: 10, MaxPumpRatio: 100, MaxFloorUSD: 250000}, &mockRater{rate: 1.2})
	reason, err := f.Evaluate(context.Background(), healthyStats())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != "" {
		t.Fatalf("expected clean floor, got reason %q", reason)
	}
}

func TestEvaluate_TooFewOwners(t *testing.T) {
	f := NewFilter(Thresholds{MinOwners: 10}, nil)
	stats := healthyStats()
	stats.OwnerCount = 3
	reason, err := f.Evaluate(context.Background(), stats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason == "" {
		t.Fatal("expected suspicious reason for 3 owners")
	}
	t.Logf("Correctly flagged: %s", reason)
}

func TestEvaluate_OwnersCheckDisabledWhenZero(t *testing.T) {
	f := NewFilter(Thresholds{}, nil)
	stats := healthyStats()
	stats.OwnerCount = 0
	reason, err := f.Evaluate(context.Background(), stats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != "" {
		t.Fatalf("zero threshold should disable check, got %q", reason)
	}
}

func TestEvaluate_ZeroVolume(t *testing.T) {
	f := NewFilter(Thresholds{}, nil)
	stats := healthyStats()
	stats.Volume30d = 0
	reason, err := f.Evaluate(context.Background(), stats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason == "" {
		t.Fatal("expected suspicious reason for zero 30-day volume")
	}
	t.Logf("Correctly flagged: %s", reason)
}

func TestEvaluate_PumpedFloor(t *testing.T) {
	f := NewFilter(Thresholds{MaxPumpRatio: 100}, nil)
	stats := healthyStats()
	stats.FloorSale30d = 1
	stats.FloorPrice = 150
	reason, err := f.Evaluate(context.Background(), stats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason == "" {
		t.Fatal("expected suspicious reason for 150x pump")
	}
	t.Logf("Correctly flagged: %s", reason)
}

func TestEvaluate_PumpWithinRatio(t *testing.T) {
	f := NewFilter(Thresholds{MaxPumpRatio: 100}, nil)
	stats := healthyStats()
	stats.FloorSale30d = 1
	stats.FloorPrice = 99
	reason, err := f.Evaluate(context.Background(), stats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != "" {
		t.Fatalf("99x is within the 100x ratio, got %q", reason)
	}
}

func TestEvaluate_USDCeiling(t *testing.T) {
	f := NewFilter(Thresholds{MaxFloorUSD: 250000}, &mockRater{rate: 10000})
	stats := healthyStats() // 50 APE * $10000 = $500k
	reason, err := f.Evaluate(context.Background(), stats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason == "" {
		t.Fatal("expected suspicious reason above USD ceiling")
	}
	t.Logf("Correctly flagged: %s", reason)
}

func TestEvaluate_RaterError(t *testing.T) {
	f := NewFilter(Thresholds{MaxFloorUSD: 250000}, &mockRater{err: fmt.Errorf("api down")})
	_, err := f.Evaluate(context.Background(), healthyStats())
	if err == nil {
		t.Fatal("expected error when the rater fails")
	}
	t.Logf("Correctly errored: %v", err)
}

func TestEvaluate_USDCheckDisabledWithoutRater(t *testing.T) {
	f := NewFilter(Thresholds{MaxFloorUSD: 1}, nil)
	reason, err := f.Evaluate(context.Background(), healthyStats())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != "" {
		t.Fatalf("no rater should disable the USD check, got %q", reason)
	}
}
