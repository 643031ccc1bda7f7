package logic

import (
	"go.uber.org/zap"
)

// Ledger holds the ordered, identity-bearing list of selected products and
// pushes its flat projection to a sink after every mutation.
//
// A Ledger is not safe for concurrent use; Session serializes access.
type Ledger struct {
	instances []ProductInstance
	index     map[string]int
	ids       *IDGenerator
	sink      func(FormProductList)
	logger    *zap.Logger
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithProjectionSink sets the callback that receives the projection after
// each mutation.
func WithProjectionSink(sink func(FormProductList)) LedgerOption {
	return func(l *Ledger) { l.sink = sink }
}

// WithLedgerLogger sets the ledger's logger.
func WithLedgerLogger(logger *zap.Logger) LedgerOption {
	return func(l *Ledger) { l.logger = logger }
}

// WithIDGenerator overrides the instance id generator.
func WithIDGenerator(g *IDGenerator) LedgerOption {
	return func(l *Ledger) { l.ids = g }
}

// NewLedger creates an empty ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		index:  make(map[string]int),
		ids:    NewIDGenerator(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add appends a new instance of p and returns its id.
func (l *Ledger) Add(p Product, quantity int) string {
	fp := FormProduct{Product: p, Quantity: quantity}.normalize()
	id := l.ids.Next(fp.ExternalID, l.has)
	l.instances = append(l.instances, ProductInstance{InstanceID: id, Product: fp})
	l.index[id] = len(l.instances) - 1
	l.logger.Debug("product added",
		zap.String("instance_id", id),
		zap.String("external_id", fp.ExternalID),
		zap.Int("quantity", fp.Quantity),
	)
	l.sync()
	return id
}

// AddRaw normalizes an untrusted catalog entry and appends it.
func (l *Ledger) AddRaw(raw RawProduct, quantity int) string {
	return l.Add(NormalizeProduct(raw), quantity)
}

// AdjustQuantity changes an instance's quantity by delta, saturating at 1
// and MaxQuantity.
// Unknown ids are ignored and reported as false.
func (l *Ledger) AdjustQuantity(instanceID string, delta int) bool {
	i, ok := l.index[instanceID]
	if !ok {
		l.logger.Debug("adjust quantity on unknown instance", zap.String("instance_id", instanceID))
		return false
	}
	inst := &l.instances[i]
	inst.Product.Quantity = addQuantity(inst.Product.Quantity, delta)
	l.sync()
	return true
}

// Remove deletes an instance. Unknown ids are ignored and reported as false.
func (l *Ledger) Remove(instanceID string) bool {
	i, ok := l.index[instanceID]
	if !ok {
		l.logger.Debug("remove unknown instance", zap.String("instance_id", instanceID))
		return false
	}
	l.instances = append(l.instances[:i], l.instances[i+1:]...)
	l.reindex()
	l.sync()
	return true
}

// Projection maps each instance to its product, dropping identity.
func (l *Ledger) Projection() FormProductList {
	return projectionOf(l.instances)
}

// Instances returns a copy of the instance list in display order.
func (l *Ledger) Instances() []ProductInstance {
	out := make([]ProductInstance, len(l.instances))
	copy(out, l.instances)
	return out
}

// Get returns the instance with the given id.
func (l *Ledger) Get(instanceID string) (ProductInstance, bool) {
	i, ok := l.index[instanceID]
	if !ok {
		return ProductInstance{}, false
	}
	return l.instances[i], true
}

// Len returns the number of instances.
func (l *Ledger) Len() int { return len(l.instances) }

func (l *Ledger) has(id string) bool {
	_, ok := l.index[id]
	return ok
}

func (l *Ledger) reindex() {
	l.index = make(map[string]int, len(l.instances))
	for i, inst := range l.instances {
		l.index[inst.InstanceID] = i
	}
}

func (l *Ledger) sync() {
	if l.sink != nil {
		l.sink(l.Projection())
	}
}
