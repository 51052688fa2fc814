package engine

import (
	"testing"
	"time"
)

const (
	testThreshold = 2.5
	testMinVolume = 10000.0
	testCooldown  = 60 * time.Second
)

func TestClassifierThresholdGate(t *testing.T) {
	c := NewClassifier()
	now := time.UnixMilli(1700000000000)

	// 240% is a 2.4x multiplier, under the 2.5x threshold
	if c.ShouldAlert("BTCUSDT", 240, 50000, now, testThreshold, testMinVolume, testCooldown) {
		t.Fatalf("2.4x should not alert at 2.5x threshold")
	}
	// exactly at threshold qualifies
	if !c.ShouldAlert("BTCUSDT", 250, 50000, now, testThreshold, testMinVolume, testCooldown) {
		t.Fatalf("2.5x should alert at 2.5x threshold")
	}
}

func TestClassifierMinVolumeGate(t *testing.T) {
	c := NewClassifier()
	now := time.UnixMilli(1700000000000)

	if c.ShouldAlert("BTCUSDT", 300, 9999, now, testThreshold, testMinVolume, testCooldown) {
		t.Fatalf("volume under minimum should not alert")
	}
	if !c.ShouldAlert("BTCUSDT", 300, 10000, now, testThreshold, testMinVolume, testCooldown) {
		t.Fatalf("volume at minimum should alert")
	}
}

func TestClassifierCooldown(t *testing.T) {
	c := NewClassifier()
	base := time.UnixMilli(1700000000000)

	if !c.ShouldAlert("BTCUSDT", 300, 50000, base, testThreshold, testMinVolume, testCooldown) {
		t.Fatalf("first qualifying event should alert")
	}
	c.Mark("BTCUSDT", base)

	if c.ShouldAlert("BTCUSDT", 300, 50000, base.Add(59*time.Second), testThreshold, testMinVolume, testCooldown) {
		t.Fatalf("event inside cooldown should not alert")
	}
	if !c.ShouldAlert("BTCUSDT", 300, 50000, base.Add(60*time.Second), testThreshold, testMinVolume, testCooldown) {
		t.Fatalf("event at exactly the cooldown should alert")
	}
	if !c.ShouldAlert("BTCUSDT", 300, 50000, base.Add(60*time.Second+time.Millisecond), testThreshold, testMinVolume, testCooldown) {
		t.Fatalf("event past the cooldown should alert")
	}
}

func TestClassifierCooldownPerSymbol(t *testing.T) {
	c := NewClassifier()
	base := time.UnixMilli(1700000000000)

	c.Mark("BTCUSDT", base)
	if !c.ShouldAlert("ETHUSDT", 300, 50000, base, testThreshold, testMinVolume, testCooldown) {
		t.Fatalf("cooldown on BTCUSDT must not block ETHUSDT")
	}
}

func TestClassifierReset(t *testing.T) {
	c := NewClassifier()
	base := time.UnixMilli(1700000000000)

	c.Mark("BTCUSDT", base)
	c.Reset()
	if !c.ShouldAlert("BTCUSDT", 300, 50000, base, testThreshold, testMinVolume, testCooldown) {
		t.Fatalf("reset should clear the cooldown")
	}
}

func TestClassifierRetain(t *testing.T) {
	c := NewClassifier()
	base := time.UnixMilli(1700000000000)

	c.Mark("BTCUSDT", base)
	c.Mark("ETHUSDT", base)
	c.Retain(map[string]struct{}{"ETHUSDT": {}})

	if !c.ShouldAlert("BTCUSDT", 300, 50000, base, testThreshold, testMinVolume, testCooldown) {
		t.Fatalf("pruned symbol should be eligible again")
	}
	if c.ShouldAlert("ETHUSDT", 300, 50000, base, testThreshold, testMinVolume, testCooldown) {
		t.Fatalf("retained symbol keeps its cooldown")
	}
}
