package logic

import (
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Origin tells ReconcileFromExternal where a product list came from.
type Origin int

const (
	// OriginExternal marks a list supplied from outside the ledger, such as an
	// event record loaded from the server.
	OriginExternal Origin = iota
	// OriginLedger marks an echo of the ledger's own projection.
	OriginLedger
)

// ParseOrigin maps the wire names "external" and "ledger" to an Origin.
// Anything else is treated as external.
func ParseOrigin(s string) Origin {
	if strings.EqualFold(strings.TrimSpace(s), "ledger") {
		return OriginLedger
	}
	return OriginExternal
}

func (o Origin) String() string {
	if o == OriginLedger {
		return "ledger"
	}
	return "external"
}

// ReconcileFromExternal replaces the instance list with entries. Accepted
// entries are normalized instances (ProductInstance or an
// {instanceId, product} map), which keep their id unless it collides, and
// flat products (FormProduct, Product or a product map), which get fresh ids.
// Anything else is dropped.
//
// Echoes of the ledger's own projection are ignored, as is any list whose
// normalized projection already matches the current one. Reports whether the
// ledger changed.
func (l *Ledger) ReconcileFromExternal(entries []any, origin Origin) bool {
	if origin == OriginLedger {
		return false
	}

	candidate := make([]ProductInstance, 0, len(entries))
	assigned := make(map[string]struct{}, len(entries))
	taken := func(id string) bool {
		_, ok := assigned[id]
		return ok
	}
	place := func(id string, fp FormProduct) {
		if id == "" || taken(id) {
			id = l.ids.Next(fp.ExternalID, taken)
		}
		assigned[id] = struct{}{}
		candidate = append(candidate, ProductInstance{InstanceID: id, Product: fp})
	}

	dropped := 0
	for _, entry := range entries {
		id, fp, ok := classifyEntry(entry)
		if !ok {
			dropped++
			continue
		}
		place(id, fp)
	}
	if dropped > 0 {
		l.logger.Debug("dropped malformed product entries", zap.Int("count", dropped))
	}

	if slices.Equal(projectionOf(candidate), l.Projection()) {
		return false
	}

	l.instances = candidate
	l.reindex()
	l.logger.Debug("ledger reconciled",
		zap.Stringer("origin", origin),
		zap.Int("instances", len(candidate)),
	)
	l.sync()
	return true
}

// classifyEntry returns the instance id (empty when a fresh one is needed) and
// the normalized product for entry. ok is false for malformed entries.
func classifyEntry(entry any) (string, FormProduct, bool) {
	switch e := entry.(type) {
	case ProductInstance:
		return e.InstanceID, e.Product.normalize(), true
	case *ProductInstance:
		if e == nil {
			return "", FormProduct{}, false
		}
		return e.InstanceID, e.Product.normalize(), true
	case FormProduct:
		return "", e.normalize(), true
	case *FormProduct:
		if e == nil {
			return "", FormProduct{}, false
		}
		return "", e.normalize(), true
	case Product:
		return "", FormProduct{Product: e, Quantity: 1}.normalize(), true
	case RawProduct:
		return classifyMap(e)
	case map[string]any:
		return classifyMap(RawProduct(e))
	default:
		return "", FormProduct{}, false
	}
}

func classifyMap(m RawProduct) (string, FormProduct, bool) {
	if nested, ok := asMap(m["product"]); ok {
		id, _ := m["instanceId"].(string)
		if !looksLikeProduct(nested) {
			return "", FormProduct{}, false
		}
		return strings.TrimSpace(id), normalizeFormProduct(nested), true
	}
	if !looksLikeProduct(m) {
		return "", FormProduct{}, false
	}
	return "", normalizeFormProduct(m), true
}

func asMap(v any) (RawProduct, bool) {
	switch m := v.(type) {
	case map[string]any:
		return RawProduct(m), true
	case RawProduct:
		return m, true
	default:
		return nil, false
	}
}

// looksLikeProduct reports whether m carries at least one recognizable
// product field.
func looksLikeProduct(m RawProduct) bool {
	for _, keys := range [][]string{idKeys, nameKeys, brandKeys, imageKeys, priceKeys, qtyKeys} {
		if _, ok := lookup(m, keys); ok {
			return true
		}
	}
	return false
}

func projectionOf(instances []ProductInstance) FormProductList {
	out := make(FormProductList, len(instances))
	for i, inst := range instances {
		out[i] = inst.Product
	}
	return out
}
