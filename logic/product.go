// Package logic provides the product selection ledger and quota calculation
// behind the guest payment form.
package logic

import (
	"math"
	"strconv"
	"strings"
)

// Placeholders substituted for missing catalog fields.
const (
	PlaceholderName     = "Unnamed product"
	PlaceholderImageURL = "https://placehold.co/120x120?text=Product"
	defaultIDPrefix     = "item"
)

// MaxQuantity is the largest quantity a line item can hold.
const MaxQuantity = math.MaxInt32

// Product is a catalog entry as returned by the product search API.
type Product struct {
	ExternalID string  `json:"externalId" yaml:"externalId"`
	Name       string  `json:"name" yaml:"name"`
	Brand      string  `json:"brand" yaml:"brand"`
	ImageURL   string  `json:"imageUrl" yaml:"imageUrl"`
	Price      float64 `json:"price" yaml:"price"`
}

// RawProduct is a loosely decoded catalog or form entry. Field types are not
// trusted.
type RawProduct map[string]any

// FormProduct is one element of the flat product list persisted by the form.
type FormProduct struct {
	Product  `yaml:",inline"`
	Quantity int `json:"quantity" yaml:"quantity"`
}

// FormProductList is the identity-free projection of the ledger.
type FormProductList []FormProduct

// ProductInstance is one line item: a product, its quantity, and a locally
// unique id.
type ProductInstance struct {
	InstanceID string      `json:"instanceId"`
	Product    FormProduct `json:"product"`
}

// Normalize applies the defaulting policy to a typed product.
func (p Product) Normalize() Product {
	p.ExternalID = strings.TrimSpace(p.ExternalID)
	if strings.TrimSpace(p.Name) == "" {
		p.Name = PlaceholderName
	}
	if strings.TrimSpace(p.ImageURL) == "" {
		p.ImageURL = PlaceholderImageURL
	}
	p.Price = sanitizePrice(p.Price)
	return p
}

var (
	idKeys    = []string{"externalId", "id", "_id", "sku"}
	nameKeys  = []string{"name", "nombre"}
	brandKeys = []string{"brand", "marca"}
	imageKeys = []string{"imageUrl", "image", "imagen"}
	priceKeys = []string{"price", "precio"}
	qtyKeys   = []string{"quantity", "cantidad"}
)

// NormalizeProduct coerces an untrusted catalog entry into a Product. It never
// fails: malformed fields fall back to safe defaults.
func NormalizeProduct(raw RawProduct) Product {
	p := Product{
		ExternalID: stringField(raw, idKeys),
		Name:       stringField(raw, nameKeys),
		Brand:      stringField(raw, brandKeys),
		ImageURL:   stringField(raw, imageKeys),
	}
	if v, ok := lookup(raw, priceKeys); ok {
		p.Price = toFloat(v)
	}
	return p.Normalize()
}

// normalizeFormProduct coerces a flat product-with-quantity entry.
func normalizeFormProduct(raw RawProduct) FormProduct {
	fp := FormProduct{Product: NormalizeProduct(raw), Quantity: 1}
	if v, ok := lookup(raw, qtyKeys); ok {
		fp.Quantity = normalizeQuantity(v)
	}
	return fp
}

func (fp FormProduct) normalize() FormProduct {
	fp.Product = fp.Product.Normalize()
	fp.Quantity = clampQuantity(fp.Quantity)
	return fp
}

// normalizeQuantity converts v to a quantity of at least 1.
func normalizeQuantity(v any) int {
	f := toFloat(v)
	if f < 1 {
		return 1
	}
	if f > MaxQuantity {
		return MaxQuantity
	}
	return int(f)
}

// clampQuantity bounds q to [1, MaxQuantity].
func clampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// addQuantity returns clampQuantity(q+delta) without overflowing.
func addQuantity(q, delta int) int {
	q = clampQuantity(q)
	switch {
	case delta > MaxQuantity-q:
		return MaxQuantity
	case delta < 1-q:
		return 1
	default:
		return q + delta
	}
}

func sanitizePrice(price float64) float64 {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0
	}
	return price
}

func lookup(raw RawProduct, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(raw RawProduct, keys []string) string {
	v, ok := lookup(raw, keys)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return sanitizePrice(n)
	case float32:
		return sanitizePrice(float64(n))
	case int:
		return sanitizePrice(float64(n))
	case int32:
		return sanitizePrice(float64(n))
	case int64:
		return sanitizePrice(float64(n))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return sanitizePrice(f)
	default:
		return 0
	}
}
