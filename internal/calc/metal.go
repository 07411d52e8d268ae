// Package calc implements the cross-section, weight, and price formulas for
// metal products. All functions are pure; the workflow layer formats results.
package calc

import (
	"fmt"
	"math"
	"strings"

	"github.com/officeflow-core-poc/server/internal/agent/model"
)

// Result holds one computed calculation.
type Result struct {
	Shape        model.MetalShape
	Spec         string // human-readable dimension spec, e.g. "50×3t"
	LengthM      float64
	Quantity     int
	AreaCM2      float64
	UnitWeightKg float64
	TotalWeight  float64
	// Price fields are zero when no price-per-kg was supplied.
	PricePerKg int
	UnitPrice  float64
	TotalPrice float64
}

// HasPrice reports whether a price-per-kg was part of the calculation.
func (r *Result) HasPrice() bool { return r.PricePerKg > 0 }

// SquarePipeArea returns the cross-section area of a square pipe in cm².
func SquarePipeArea(width, height, thickness float64) float64 {
	outer := width * height
	inner := (width - 2*thickness) * (height - 2*thickness)
	return (outer - inner) / 100 // mm² → cm²
}

// RoundPipeArea returns the cross-section area of a round pipe in cm².
func RoundPipeArea(diameter, thickness float64) float64 {
	inner := diameter - 2*thickness
	return (math.Pi / 4) * (diameter*diameter - inner*inner) / 100
}

// AngleArea returns the cross-section area of an L-shaped angle in cm².
func AngleArea(widthA, widthB, thickness float64) float64 {
	return (widthA*thickness + widthB*thickness - thickness*thickness) / 100
}

// FlatBarArea returns the cross-section area of a flat bar in cm².
func FlatBarArea(width, thickness float64) float64 {
	return width * thickness / 100
}

// RoundBarArea returns the cross-section area of a round bar in cm².
func RoundBarArea(diameter float64) float64 {
	return math.Pi * (diameter / 2) * (diameter / 2) / 100
}

// ChannelArea returns the cross-section area of a C-channel in cm²:
// two flanges plus the web.
func ChannelArea(webHeight, flangeWidth, thickness float64) float64 {
	flanges := flangeWidth * thickness * 2
	web := (webHeight - 2*thickness) * thickness
	return (flanges + web) / 100
}

// Compute evaluates the weight (and price, when price-per-kg is present) for a
// validated calculation record. The record must have passed Validate; an
// unknown shape is the only error path left.
func Compute(info *model.MetalCalcInfo) (*Result, error) {
	var area float64
	var spec string

	switch info.Shape {
	case model.ShapeSquarePipe:
		area = SquarePipeArea(info.Width, info.Height, info.Thickness)
		spec = fmt.Sprintf("%s×%s×%st", trimFloat(info.Width), trimFloat(info.Height), trimFloat(info.Thickness))
	case model.ShapeRoundPipe:
		area = RoundPipeArea(info.Diameter, info.Thickness)
		spec = fmt.Sprintf("Ø%s×%st", trimFloat(info.Diameter), trimFloat(info.Thickness))
	case model.ShapeAngle:
		area = AngleArea(info.WidthA, info.WidthB, info.Thickness)
		spec = fmt.Sprintf("%s×%s×%st", trimFloat(info.WidthA), trimFloat(info.WidthB), trimFloat(info.Thickness))
	case model.ShapeFlatBar:
		area = FlatBarArea(info.Width, info.Thickness)
		spec = fmt.Sprintf("%s×%st", trimFloat(info.Width), trimFloat(info.Thickness))
	case model.ShapeRoundBar:
		area = RoundBarArea(info.Diameter)
		spec = fmt.Sprintf("Ø%s", trimFloat(info.Diameter))
	case model.ShapeChannel:
		area = ChannelArea(info.ChannelHeight, info.ChannelWidth, info.Thickness)
		spec = fmt.Sprintf("%s×%s×%st", trimFloat(info.ChannelHeight), trimFloat(info.ChannelWidth), trimFloat(info.Thickness))
	default:
		return nil, fmt.Errorf("unknown metal shape: %q", info.Shape)
	}

	lengthCM := info.LengthM * 100
	unitWeight := area * lengthCM * (info.Density / 1000)

	res := &Result{
		Shape:        info.Shape,
		Spec:         spec,
		LengthM:      info.LengthM,
		Quantity:     info.Quantity,
		AreaCM2:      area,
		UnitWeightKg: unitWeight,
		TotalWeight:  unitWeight * float64(info.Quantity),
		PricePerKg:   info.PricePerKg,
	}
	if info.PricePerKg > 0 {
		res.UnitPrice = unitWeight * float64(info.PricePerKg)
		res.TotalPrice = res.UnitPrice * float64(info.Quantity)
	}
	return res, nil
}

// shapeNames maps shapes to their Korean display names.
var shapeNames = map[model.MetalShape]string{
	model.ShapeSquarePipe: "사각파이프",
	model.ShapeRoundPipe:  "원파이프",
	model.ShapeAngle:      "앵글",
	model.ShapeFlatBar:    "평철",
	model.ShapeRoundBar:   "환봉",
	model.ShapeChannel:    "찬넬",
}

// Format renders a calculation result as the user-facing message.
func Format(r *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 %s %s (%sM)\n\n", shapeNames[r.Shape], r.Spec, trimFloat(r.LengthM))
	fmt.Fprintf(&b, "• 단면적: %.2f cm²\n", r.AreaCM2)
	fmt.Fprintf(&b, "• 단위중량: %.2f kg\n", r.UnitWeightKg)
	if r.HasPrice() {
		fmt.Fprintf(&b, "• 단위가격: ₩%s\n", formatWon(r.UnitPrice))
	}
	if r.Quantity > 1 {
		fmt.Fprintf(&b, "• 수량: %d개\n", r.Quantity)
		fmt.Fprintf(&b, "• 총 중량: %.2f kg\n", r.TotalWeight)
		if r.HasPrice() {
			fmt.Fprintf(&b, "• 총 금액: ₩%s\n", formatWon(r.TotalPrice))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// trimFloat renders a float without trailing zeros (50 not 50.0, 2.5 stays 2.5).
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// formatWon renders a rounded won amount with thousands separators.
func formatWon(v float64) string {
	n := int64(math.Round(v))
	s := fmt.Sprintf("%d", n)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		return "-" + out
	}
	return out
}
