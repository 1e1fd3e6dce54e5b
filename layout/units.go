package layout

// This file defines unit-safe types and helpers for lengths.
// Layout tables are authored in centimeters and stored in points.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants. 1 cm = 28.3464567 pt.
const (
	PointsPerCm = 28.3464567
	MmToPt      = PointsPerCm / 10
	PtToMm      = 1.0 / MmToPt
	PointsPerIn = 72.0
)

// CmToPt converts centimeters to points.
func CmToPt(cm float64) float64 { return cm * PointsPerCm }

// PtToCm converts points back to centimeters.
func PtToCm(pt float64) float64 { return pt / PointsPerCm }

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Cm is shorthand for a centimeter length.
func Cm(v float64) Length { return Length{Value: v, Unit: UnitCM} }

// Pt is shorthand for a point length.
func Pt(v float64) Length { return Length{Value: v, Unit: UnitPT} }

// To converts this length to target unit. Supported targets: UnitMM, UnitPT.
func (l Length) To(target Unit) float64 {
	var pt float64
	switch l.Unit {
	case UnitCM:
		pt = CmToPt(l.Value)
	case UnitMM:
		pt = l.Value * MmToPt
	case UnitIN:
		pt = l.Value * PointsPerIn
	case UnitPT:
		pt = l.Value
	default:
		// 无单位数值按目标单位原样返回
		return l.Value
	}
	switch target {
	case UnitPT:
		return pt
	case UnitMM, UnitNone:
		return pt * PtToMm
	case UnitCM:
		return PtToCm(pt)
	case UnitIN:
		return pt / PointsPerIn
	}
	return pt
}

// ToMM 与 ToPT 是 To 的简写。
func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }
