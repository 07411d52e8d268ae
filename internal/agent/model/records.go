package model

import (
	"fmt"
	"strconv"
	"strings"
)

// PaymentType is the freight payment method for delivery notes.
type PaymentType string

const (
	PaymentCollect PaymentType = "착불"
	PaymentPrepaid PaymentType = "선불"
)

// MetalShape is the cross-section shape of a metal product.
type MetalShape string

const (
	ShapeSquarePipe MetalShape = "square_pipe"
	ShapeRoundPipe  MetalShape = "round_pipe"
	ShapeAngle      MetalShape = "angle"
	ShapeFlatBar    MetalShape = "flat_bar"
	ShapeRoundBar   MetalShape = "round_bar"
	ShapeChannel    MetalShape = "channel"
)

// minParseConfidence is the extraction confidence below which a record is
// treated as unusable even when all fields are present.
const minParseConfidence = 0.5

// editIgnored reports whether an edited value is the "no change" sentinel.
func editIgnored(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "none", "n/a", "없음":
		return true
	}
	return false
}

// DeliveryInfo is the validated payload for a delivery note.
type DeliveryInfo struct {
	UnloadingSite string `json:"unloading_site"`
	Address       string `json:"address"`
	Contact       string `json:"contact"`

	LoadingSite    string `json:"loading_site,omitempty"`
	LoadingAddress string `json:"loading_address,omitempty"`
	LoadingPhone   string `json:"loading_phone,omitempty"`

	PaymentType PaymentType `json:"payment_type"`
	// FreightCost in won; meaningful only for 착불 (collect) deliveries.
	FreightCost int `json:"freight_cost,omitempty"`

	Confidence float64 `json:"confidence,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// Validate checks required fields in display order and returns the first
// missing field's human-readable description. Ordered and short-circuiting:
// one error at a time keeps retry prompts simple.
func (d *DeliveryInfo) Validate() error {
	if strings.TrimSpace(d.UnloadingSite) == "" {
		return fmt.Errorf("하차지가 누락되었습니다")
	}
	if strings.TrimSpace(d.Address) == "" {
		return fmt.Errorf("주소가 누락되었습니다")
	}
	if strings.TrimSpace(d.Contact) == "" {
		return fmt.Errorf("연락처가 누락되었습니다")
	}
	if d.PaymentType != PaymentCollect && d.PaymentType != PaymentPrepaid {
		return fmt.Errorf("운송비 지불 방법(착불/선불)이 누락되었습니다")
	}
	if d.Confidence > 0 && d.Confidence < minParseConfidence {
		return fmt.Errorf("파싱 신뢰도가 낮습니다 (%.0f%%)", d.Confidence*100)
	}
	return nil
}

// ApplyEdits splices externally edited fields over the record. Edited fields
// win, unspecified fields keep prior values, sentinel values mean no change.
func (d *DeliveryInfo) ApplyEdits(edits map[string]string) error {
	for key, val := range edits {
		if editIgnored(val) {
			continue
		}
		val = strings.TrimSpace(val)
		switch key {
		case "unloading_site", "하차지":
			d.UnloadingSite = val
		case "address", "주소":
			d.Address = val
		case "contact", "연락처":
			d.Contact = val
		case "loading_site", "상차지":
			d.LoadingSite = val
		case "loading_address", "상차지주소":
			d.LoadingAddress = val
		case "loading_phone", "상차지전화번호":
			d.LoadingPhone = val
		case "payment_type", "지불방법":
			d.PaymentType = PaymentType(val)
		case "freight_cost", "운송비":
			n, err := parseWon(val)
			if err != nil {
				return fmt.Errorf("운송비 형식이 올바르지 않습니다: %q", val)
			}
			d.FreightCost = n
		case "notes", "비고":
			d.Notes = val
		default:
			return fmt.Errorf("알 수 없는 필드: %q", key)
		}
	}
	return nil
}

// ProductOrderInfo is the validated payload for a trade statement.
type ProductOrderInfo struct {
	Client      string  `json:"client"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   int     `json:"unit_price"`
	Confidence  float64 `json:"confidence,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

func (p *ProductOrderInfo) Validate() error {
	if strings.TrimSpace(p.Client) == "" {
		return fmt.Errorf("거래처가 누락되었습니다")
	}
	if strings.TrimSpace(p.ProductName) == "" {
		return fmt.Errorf("품목이 누락되었습니다")
	}
	if p.Quantity <= 0 {
		return fmt.Errorf("수량이 누락되었습니다")
	}
	if p.UnitPrice <= 0 {
		return fmt.Errorf("단가가 누락되었습니다")
	}
	if p.Confidence > 0 && p.Confidence < minParseConfidence {
		return fmt.Errorf("파싱 신뢰도가 낮습니다 (%.0f%%)", p.Confidence*100)
	}
	return nil
}

// TotalPrice is quantity times unit price in won.
func (p *ProductOrderInfo) TotalPrice() int {
	return p.Quantity * p.UnitPrice
}

func (p *ProductOrderInfo) ApplyEdits(edits map[string]string) error {
	for key, val := range edits {
		if editIgnored(val) {
			continue
		}
		val = strings.TrimSpace(val)
		switch key {
		case "client", "거래처":
			p.Client = val
		case "product_name", "품목":
			p.ProductName = val
		case "quantity", "수량":
			n, err := parseWon(val)
			if err != nil {
				return fmt.Errorf("수량 형식이 올바르지 않습니다: %q", val)
			}
			p.Quantity = n
		case "unit_price", "단가":
			n, err := parseWon(val)
			if err != nil {
				return fmt.Errorf("단가 형식이 올바르지 않습니다: %q", val)
			}
			p.UnitPrice = n
		case "notes", "비고":
			p.Notes = val
		default:
			return fmt.Errorf("알 수 없는 필드: %q", key)
		}
	}
	return nil
}

// MetalCalcInfo is the validated payload for a metal unit-price calculation.
// Zero dimensions mean "not provided"; validation is strict and never fills
// in defaults for shape, dimensions, length, quantity, or density.
type MetalCalcInfo struct {
	Shape   MetalShape `json:"shape"`
	LengthM float64    `json:"length_m"`

	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	Thickness     float64 `json:"thickness,omitempty"`
	Diameter      float64 `json:"diameter,omitempty"`
	WidthA        float64 `json:"width_a,omitempty"`
	WidthB        float64 `json:"width_b,omitempty"`
	ChannelHeight float64 `json:"channel_height,omitempty"`
	ChannelWidth  float64 `json:"channel_width,omitempty"`

	Quantity int     `json:"quantity"`
	Density  float64 `json:"density"`

	// PricePerKg in won; zero computes weight only.
	PricePerKg int `json:"price_per_kg,omitempty"`

	Confidence float64 `json:"confidence,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

func (m *MetalCalcInfo) Validate() error {
	switch m.Shape {
	case ShapeSquarePipe:
		if m.Width <= 0 || m.Height <= 0 || m.Thickness <= 0 {
			return fmt.Errorf("사각파이프 치수(폭x높이x두께)가 누락되었습니다")
		}
	case ShapeRoundPipe:
		if m.Diameter <= 0 || m.Thickness <= 0 {
			return fmt.Errorf("원파이프 치수(지름x두께)가 누락되었습니다")
		}
	case ShapeAngle:
		if m.WidthA <= 0 || m.WidthB <= 0 || m.Thickness <= 0 {
			return fmt.Errorf("앵글 치수(폭Ax폭Bx두께)가 누락되었습니다")
		}
	case ShapeFlatBar:
		if m.Width <= 0 || m.Thickness <= 0 {
			return fmt.Errorf("평철 치수(폭x두께)가 누락되었습니다")
		}
	case ShapeRoundBar:
		if m.Diameter <= 0 {
			return fmt.Errorf("환봉 치수(지름)가 누락되었습니다")
		}
	case ShapeChannel:
		if m.ChannelWidth <= 0 || m.ChannelHeight <= 0 || m.Thickness <= 0 {
			return fmt.Errorf("찬넬 치수(웹높이x플랜지폭x두께)가 누락되었습니다")
		}
	default:
		return fmt.Errorf("제품 형상이 누락되었습니다")
	}
	if m.LengthM <= 0 {
		return fmt.Errorf("길이가 누락되었습니다")
	}
	if m.Quantity <= 0 {
		return fmt.Errorf("수량이 누락되었습니다")
	}
	if m.Density <= 0 {
		return fmt.Errorf("비중이 누락되었습니다")
	}
	if m.Confidence > 0 && m.Confidence < minParseConfidence {
		return fmt.Errorf("파싱 신뢰도가 낮습니다 (%.0f%%)", m.Confidence*100)
	}
	return nil
}

// RegistrationInfo is the validated payload extracted from a business
// registration certificate image.
type RegistrationInfo struct {
	ClientName         string `json:"client_name"`
	BusinessName       string `json:"business_name"`
	RepresentativeName string `json:"representative_name,omitempty"`
	BusinessNumber     string `json:"business_number,omitempty"`
	BranchNumber       string `json:"branch_number,omitempty"`

	PostalCode string `json:"postal_code,omitempty"`
	Address1   string `json:"address1,omitempty"`
	Address2   string `json:"address2,omitempty"`

	BusinessType string `json:"business_type,omitempty"`
	BusinessItem string `json:"business_item,omitempty"`

	Phone1 string `json:"phone1,omitempty"`
	Phone2 string `json:"phone2,omitempty"`
	Fax    string `json:"fax,omitempty"`

	ContactPerson1 string `json:"contact_person1,omitempty"`
	Mobile1        string `json:"mobile1,omitempty"`
	ContactPerson2 string `json:"contact_person2,omitempty"`
	Mobile2        string `json:"mobile2,omitempty"`

	ClientType     string `json:"client_type,omitempty"`
	PriceGrade     string `json:"price_grade,omitempty"`
	InitialBalance int    `json:"initial_balance"`
	OptimalBalance int    `json:"optimal_balance"`
	Memo           string `json:"memo,omitempty"`

	Confidence float64 `json:"confidence,omitempty"`
	ImageURL   string  `json:"image_url,omitempty"`
}

func (r *RegistrationInfo) Validate() error {
	if strings.TrimSpace(r.ClientName) == "" {
		return fmt.Errorf("거래처명이 누락되었습니다")
	}
	if strings.TrimSpace(r.BusinessName) == "" {
		return fmt.Errorf("상호가 누락되었습니다")
	}
	return nil
}

func (r *RegistrationInfo) ApplyEdits(edits map[string]string) error {
	fields := map[string]*string{
		"client_name": &r.ClientName, "거래처명": &r.ClientName,
		"business_name": &r.BusinessName, "상호": &r.BusinessName,
		"representative_name": &r.RepresentativeName, "대표자명": &r.RepresentativeName,
		"business_number": &r.BusinessNumber, "사업자번호": &r.BusinessNumber,
		"branch_number": &r.BranchNumber, "종사업자번호": &r.BranchNumber,
		"postal_code": &r.PostalCode, "우편번호": &r.PostalCode,
		"address1": &r.Address1, "주소1": &r.Address1,
		"address2": &r.Address2, "주소2": &r.Address2,
		"business_type": &r.BusinessType, "업태": &r.BusinessType,
		"business_item": &r.BusinessItem, "종목": &r.BusinessItem,
		"phone1": &r.Phone1, "전화1": &r.Phone1,
		"phone2": &r.Phone2, "전화2": &r.Phone2,
		"fax": &r.Fax, "팩스": &r.Fax,
		"contact_person1": &r.ContactPerson1, "담당자1": &r.ContactPerson1,
		"mobile1": &r.Mobile1, "휴대폰1": &r.Mobile1,
		"contact_person2": &r.ContactPerson2, "담당자2": &r.ContactPerson2,
		"mobile2": &r.Mobile2, "휴대폰2": &r.Mobile2,
		"client_type": &r.ClientType, "거래처구분": &r.ClientType,
		"price_grade": &r.PriceGrade, "출고가등급": &r.PriceGrade,
		"memo": &r.Memo, "메모": &r.Memo,
	}
	for key, val := range edits {
		if editIgnored(val) {
			continue
		}
		val = strings.TrimSpace(val)
		switch key {
		case "initial_balance", "기초잔액":
			n, err := parseWon(val)
			if err != nil {
				return fmt.Errorf("기초잔액 형식이 올바르지 않습니다: %q", val)
			}
			r.InitialBalance = n
		case "optimal_balance", "적정잔액":
			n, err := parseWon(val)
			if err != nil {
				return fmt.Errorf("적정잔액 형식이 올바르지 않습니다: %q", val)
			}
			r.OptimalBalance = n
		default:
			dst, ok := fields[key]
			if !ok {
				return fmt.Errorf("알 수 없는 필드: %q", key)
			}
			*dst = val
		}
	}
	return nil
}

// parseWon parses an integer amount, tolerating thousands separators and a
// trailing 원 suffix.
func parseWon(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "원")
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative amount")
	}
	return n, nil
}
