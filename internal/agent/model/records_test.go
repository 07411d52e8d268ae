package model

import (
	"strings"
	"testing"
)

func TestDeliveryValidateOrder(t *testing.T) {
	info := &DeliveryInfo{}
	if err := info.Validate(); err == nil || !strings.Contains(err.Error(), "하차지") {
		t.Fatalf("empty record should fail on 하차지 first, got %v", err)
	}

	info.UnloadingSite = "삼성전자"
	if err := info.Validate(); err == nil || !strings.Contains(err.Error(), "주소") {
		t.Fatalf("should fail on 주소 next, got %v", err)
	}

	info.Address = "서울시 강남구 테헤란로 123"
	if err := info.Validate(); err == nil || !strings.Contains(err.Error(), "연락처") {
		t.Fatalf("should fail on 연락처 next, got %v", err)
	}

	info.Contact = "010-1234-5678"
	if err := info.Validate(); err == nil || !strings.Contains(err.Error(), "지불 방법") {
		t.Fatalf("should fail on payment type next, got %v", err)
	}

	info.PaymentType = PaymentCollect
	info.FreightCost = 35000
	if err := info.Validate(); err != nil {
		t.Fatalf("complete record should validate, got %v", err)
	}
}

func TestDeliveryValidateLowConfidence(t *testing.T) {
	info := &DeliveryInfo{
		UnloadingSite: "삼성전자",
		Address:       "서울시 강남구 테헤란로 123",
		Contact:       "010-1234-5678",
		PaymentType:   PaymentPrepaid,
		Confidence:    0.3,
	}
	if err := info.Validate(); err == nil || !strings.Contains(err.Error(), "신뢰도") {
		t.Fatalf("low confidence should fail validation, got %v", err)
	}

	info.Confidence = 0.9
	if err := info.Validate(); err != nil {
		t.Fatalf("high confidence should validate, got %v", err)
	}
}

func TestDeliveryApplyEdits(t *testing.T) {
	info := &DeliveryInfo{
		UnloadingSite: "삼성전자",
		Address:       "서울시 강남구 테헤란로 123",
		Contact:       "010-1234-5678",
		PaymentType:   PaymentCollect,
		FreightCost:   35000,
	}
	err := info.ApplyEdits(map[string]string{
		"연락처":        "010-9999-8888",
		"freight_cost": "40,000원",
		"주소":         "없음", // sentinel, no change
	})
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if info.Contact != "010-9999-8888" {
		t.Fatalf("contact not edited, got %q", info.Contact)
	}
	if info.FreightCost != 40000 {
		t.Fatalf("freight cost = %d, want 40000", info.FreightCost)
	}
	if info.Address != "서울시 강남구 테헤란로 123" {
		t.Fatalf("sentinel edit must not change address, got %q", info.Address)
	}
}

func TestDeliveryApplyEditsUnknownField(t *testing.T) {
	info := &DeliveryInfo{}
	if err := info.ApplyEdits(map[string]string{"color": "red"}); err == nil {
		t.Fatalf("unknown field should be rejected")
	}
}

func TestDeliveryApplyEditsBadAmount(t *testing.T) {
	info := &DeliveryInfo{}
	if err := info.ApplyEdits(map[string]string{"운송비": "공짜"}); err == nil {
		t.Fatalf("non-numeric freight cost should be rejected")
	}
}

func TestProductOrderTotalPrice(t *testing.T) {
	p := &ProductOrderInfo{Client: "한국상사", ProductName: "각파이프", Quantity: 100, UnitPrice: 5000}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := p.TotalPrice(); got != 500000 {
		t.Fatalf("TotalPrice = %d, want 500000", got)
	}
}

func TestProductOrderValidateOrder(t *testing.T) {
	p := &ProductOrderInfo{}
	if err := p.Validate(); err == nil || !strings.Contains(err.Error(), "거래처") {
		t.Fatalf("empty record should fail on 거래처 first, got %v", err)
	}
	p.Client = "한국상사"
	if err := p.Validate(); err == nil || !strings.Contains(err.Error(), "품목") {
		t.Fatalf("should fail on 품목 next, got %v", err)
	}
}

func TestMetalCalcValidatePerShape(t *testing.T) {
	cases := []struct {
		name string
		info MetalCalcInfo
		want string
	}{
		{"no shape", MetalCalcInfo{}, "형상"},
		{"square pipe missing dims", MetalCalcInfo{Shape: ShapeSquarePipe, Width: 50}, "사각파이프"},
		{"round pipe missing thickness", MetalCalcInfo{Shape: ShapeRoundPipe, Diameter: 50}, "원파이프"},
		{"angle missing widths", MetalCalcInfo{Shape: ShapeAngle, Thickness: 3}, "앵글"},
		{"flat bar missing width", MetalCalcInfo{Shape: ShapeFlatBar, Thickness: 5}, "평철"},
		{"round bar missing diameter", MetalCalcInfo{Shape: ShapeRoundBar}, "환봉"},
		{"channel missing dims", MetalCalcInfo{Shape: ShapeChannel, Thickness: 5}, "찬넬"},
	}
	for _, c := range cases {
		err := c.info.Validate()
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Fatalf("%s: got %v, want error mentioning %q", c.name, err, c.want)
		}
	}
}

func TestMetalCalcValidateNoDensityDefault(t *testing.T) {
	info := &MetalCalcInfo{
		Shape:     ShapeRoundPipe,
		Diameter:  50,
		Thickness: 3,
		LengthM:   6,
		Quantity:  10,
	}
	if err := info.Validate(); err == nil || !strings.Contains(err.Error(), "비중") {
		t.Fatalf("missing density must fail, got %v", err)
	}
	info.Density = 2.8
	if err := info.Validate(); err != nil {
		t.Fatalf("complete record should validate, got %v", err)
	}
}

func TestRegistrationValidate(t *testing.T) {
	r := &RegistrationInfo{}
	if err := r.Validate(); err == nil || !strings.Contains(err.Error(), "거래처명") {
		t.Fatalf("empty record should fail on 거래처명, got %v", err)
	}
	r.ClientName = "유진상사"
	if err := r.Validate(); err == nil || !strings.Contains(err.Error(), "상호") {
		t.Fatalf("should fail on 상호 next, got %v", err)
	}
	r.BusinessName = "유진상사"
	if err := r.Validate(); err != nil {
		t.Fatalf("complete record should validate, got %v", err)
	}
}

func TestRegistrationApplyEdits(t *testing.T) {
	r := &RegistrationInfo{ClientName: "유진상사", BusinessName: "유진상사"}
	err := r.ApplyEdits(map[string]string{
		"대표자명":          "홍길동",
		"business_number": "123-45-67890",
		"기초잔액":          "1,000,000원",
		"memo":            "none", // sentinel
	})
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if r.RepresentativeName != "홍길동" {
		t.Fatalf("representative not edited, got %q", r.RepresentativeName)
	}
	if r.BusinessNumber != "123-45-67890" {
		t.Fatalf("business number not edited, got %q", r.BusinessNumber)
	}
	if r.InitialBalance != 1000000 {
		t.Fatalf("initial balance = %d, want 1000000", r.InitialBalance)
	}
	if r.Memo != "" {
		t.Fatalf("sentinel edit must not change memo, got %q", r.Memo)
	}
}

func TestParseWon(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"35000", 35000, false},
		{"35000원", 35000, false},
		{"35,000원", 35000, false},
		{" 5000 ", 5000, false},
		{"-100", 0, true},
		{"오천원", 0, true},
		{"35000원정도", 0, true},
	}
	for _, c := range cases {
		got, err := parseWon(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("parseWon(%q) should fail", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseWon(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("parseWon(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
