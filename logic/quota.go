package logic

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// QuotaSummary is the derived cost breakdown pushed to the form's
// cuotaCalculada field.
type QuotaSummary struct {
	TotalProducts float64 `json:"totalProductos"`
	PerGuest      float64 `json:"cuotaPorPersona"`
	GuestCount    int     `json:"cantidadPersonas"`
}

// TotalCost sums price * quantity over instances. Invalid prices and
// quantities contribute nothing.
func TotalCost(instances []ProductInstance) float64 {
	total := decimal.Zero
	for _, inst := range instances {
		price := sanitizePrice(inst.Product.Price)
		qty := inst.Product.Quantity
		if price == 0 || qty < 1 {
			continue
		}
		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))))
	}
	return total.InexactFloat64()
}

// PerGuestShare divides total across guests, returning 0 when there are no
// guests. The result is not rounded.
func PerGuestShare(total float64, guestCount int) float64 {
	if guestCount <= 0 {
		return 0
	}
	return decimal.NewFromFloat(sanitizePrice(total)).
		Div(decimal.NewFromInt(int64(guestCount))).
		InexactFloat64()
}

// ComputeQuota derives the full summary from scratch.
func ComputeQuota(instances []ProductInstance, guestCount int) QuotaSummary {
	if guestCount < 0 {
		guestCount = 0
	}
	total := TotalCost(instances)
	return QuotaSummary{
		TotalProducts: total,
		PerGuest:      PerGuestShare(total, guestCount),
		GuestCount:    guestCount,
	}
}

// ShouldAutoUpdateDisplay reports whether the editable amount should be
// replaced by the freshly computed share. Empty or unparsable values are
// always replaced; otherwise the value is replaced when it differs from the
// rounded-up share.
func ShouldAutoUpdateDisplay(current string, computedShare float64) bool {
	current = strings.TrimSpace(current)
	if current == "" {
		return true
	}
	v, err := strconv.ParseFloat(current, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return true
	}
	return v != ceilAmount(computedShare)
}

// FormatForInput renders amount as a whole-unit ceiling for the quota field.
func FormatForInput(amount float64) string {
	return strconv.FormatFloat(ceilAmount(amount), 'f', 0, 64)
}

// ParseManualEdit keeps only the digits of text, defaulting to "0".
func ParseManualEdit(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}

// ParseGuestCount parses a non-negative guest count. Empty input is a valid 0;
// anything else that is not a whole number yields (0, false).
func ParseGuestCount(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, true
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func ceilAmount(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0
	}
	return decimal.NewFromFloat(amount).Ceil().InexactFloat64()
}
