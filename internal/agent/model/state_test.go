package model

import (
	"testing"
	"time"
)

func TestLockLifecycle(t *testing.T) {
	s := NewConversationState("t1")
	now := time.Now()
	timeout := 5 * time.Minute

	if s.LockExpired(now, timeout) {
		t.Fatalf("unlocked state must never report expiry")
	}

	s.Lock(ScenarioDelivery, now)
	if s.ActiveScenario != ScenarioDelivery {
		t.Fatalf("ActiveScenario = %q, want delivery", s.ActiveScenario)
	}
	if s.LockExpired(now.Add(timeout-time.Second), timeout) {
		t.Fatalf("lock expired too early")
	}
	if !s.LockExpired(now.Add(timeout), timeout) {
		t.Fatalf("lock should expire at the timeout boundary")
	}

	s.Unlock()
	if s.ActiveScenario != "" || !s.ActiveScenarioAt.IsZero() {
		t.Fatalf("Unlock must clear scenario and stamp")
	}
}

func TestDiscardPartial(t *testing.T) {
	s := NewConversationState("t1")
	s.Delivery = &DeliveryInfo{UnloadingSite: "x"}
	s.MetalCalc = &MetalCalcInfo{Shape: ShapeAngle}
	s.ParsingError = "주소가 누락되었습니다"

	s.DiscardPartial()
	if s.Delivery != nil || s.ProductOrder != nil || s.MetalCalc != nil || s.Registration != nil {
		t.Fatalf("DiscardPartial must drop all records")
	}
	if s.ParsingError != "" {
		t.Fatalf("DiscardPartial must clear ParsingError")
	}
}

func TestSuspended(t *testing.T) {
	s := NewConversationState("t1")
	if s.Suspended() {
		t.Fatalf("fresh state must not be suspended")
	}
	s.SuspendedAt = SuspendApproval
	if !s.Suspended() {
		t.Fatalf("state at approval must report suspended")
	}
}

func TestParseScenario(t *testing.T) {
	for _, valid := range []string{"delivery", "product_order", "metal_calculation", "business_registration", "help"} {
		if _, ok := ParseScenario(valid); !ok {
			t.Fatalf("ParseScenario(%q) rejected a valid label", valid)
		}
	}
	if _, ok := ParseScenario("weather"); ok {
		t.Fatalf("ParseScenario must reject unknown labels")
	}
}
