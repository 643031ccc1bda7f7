package logic

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
)

// DefaultMinQueryLength is the shortest catalog query a session will send.
const DefaultMinQueryLength = 2

// ProductSearcher is the catalog search API.
type ProductSearcher interface {
	Search(ctx context.Context, query string) ([]RawProduct, error)
}

// Session is one editing context of the event form. It wires a Ledger and a
// QuotaField to a FormSink and serializes every operation. Catalog searches
// run without holding the session lock.
type Session struct {
	mu sync.Mutex

	id             string
	ledger         *Ledger
	field          QuotaField
	guestCount     int
	sink           FormSink
	catalog        ProductSearcher
	minQueryLength int
	ids            *IDGenerator
	logger         *zap.Logger

	searchSeq   uint64
	results     []Product
	errorActive bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithCatalog sets the product searcher used by Search.
func WithCatalog(c ProductSearcher) SessionOption {
	return func(s *Session) { s.catalog = c }
}

// WithMinQueryLength sets the minimum query length in runes.
func WithMinQueryLength(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.minQueryLength = n
		}
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithSessionIDGenerator overrides the ledger's instance id generator.
func WithSessionIDGenerator(g *IDGenerator) SessionOption {
	return func(s *Session) { s.ids = g }
}

// NewSession creates a session writing to sink and pushes the initial quota.
func NewSession(id string, sink FormSink, opts ...SessionOption) *Session {
	s := &Session{
		id:             id,
		sink:           sink,
		minQueryLength: DefaultMinQueryLength,
		ids:            NewIDGenerator(),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session_id", id))
	s.ledger = NewLedger(
		WithProjectionSink(s.onProjection),
		WithLedgerLogger(s.logger),
		WithIDGenerator(s.ids),
	)
	s.recompute()
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Add appends a typed product and returns its instance id.
func (s *Session) Add(p Product, quantity int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Add(p, quantity)
}

// AddRaw appends an untrusted catalog entry and returns its instance id.
func (s *Session) AddRaw(raw RawProduct, quantity int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.AddRaw(raw, quantity)
}

// AdjustQuantity changes an instance's quantity by delta.
func (s *Session) AdjustQuantity(instanceID string, delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.AdjustQuantity(instanceID, delta)
}

// Remove deletes an instance.
func (s *Session) Remove(instanceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Remove(instanceID)
}

// Reconcile replaces the product list with one supplied by the form.
func (s *Session) Reconcile(entries []any, origin Origin) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.ReconcileFromExternal(entries, origin)
}

// SetGuestCount parses the guest count field. Invalid input is reported
// through the sink and counts as zero guests.
func (s *Session) SetGuestCount(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := ParseGuestCount(text)
	if !ok {
		s.reportError(ErrMsgGuestCountInvalid)
	} else {
		s.clearError()
	}
	s.guestCount = n
	s.recompute()
	return n
}

// SetGuests sets an already validated guest count.
func (s *Session) SetGuests(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 {
		n = 0
	}
	s.guestCount = n
	s.recompute()
}

// EditQuota records a manual edit of the quota field and returns the
// sanitized value.
func (s *Session) EditQuota(text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.field.Edit(text)
	s.sink.UpdateQuotaAmount(v)
	return v
}

// ResetQuota drops any manual override and shows the computed share again.
func (s *Session) ResetQuota() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary := ComputeQuota(s.ledger.instances, s.guestCount)
	v := s.field.Reset(summary.PerGuest)
	s.sink.UpdateQuotaAmount(v)
	return v
}

// Search queries the catalog. Results are kept only when this is still the
// latest search once the response arrives; the second return value reports
// whether they were applied. Failures are reported through the sink and
// never touch the ledger.
func (s *Session) Search(ctx context.Context, query string) ([]Product, bool) {
	s.mu.Lock()
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < s.minQueryLength {
		s.reportError(ErrMsgQueryTooShort(s.minQueryLength))
		s.mu.Unlock()
		return nil, false
	}
	if s.catalog == nil {
		s.logger.Warn("search without catalog", zap.Error(ErrNoCatalog))
		s.reportError(ErrMsgSearchFailed)
		s.mu.Unlock()
		return nil, false
	}
	s.searchSeq++
	ticket := s.searchSeq
	catalog := s.catalog
	s.mu.Unlock()

	raw, err := catalog.Search(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.searchSeq {
		s.logger.Debug("discarding stale search response",
			zap.String("query", q),
			zap.Uint64("ticket", ticket),
			zap.Uint64("latest", s.searchSeq),
		)
		return nil, false
	}
	if err != nil {
		s.logger.Warn("catalog search failed", zap.String("query", q), zap.Error(err))
		s.results = nil
		s.reportError(ErrMsgSearchFailed)
		return nil, false
	}

	products := make([]Product, 0, len(raw))
	for _, r := range raw {
		products = append(products, NormalizeProduct(r))
	}
	s.results = products
	s.clearError()
	return append([]Product(nil), products...), true
}

// AddSearchResult adds the index-th product from the latest search.
func (s *Session) AddSearchResult(index, quantity int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.results) {
		s.reportError(ErrMsgSearchResultGone)
		return "", false
	}
	return s.ledger.Add(s.results[index], quantity), true
}

// Results returns the products from the latest applied search.
func (s *Session) Results() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Product(nil), s.results...)
}

// Quota returns a freshly computed summary.
func (s *Session) Quota() QuotaSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeQuota(s.ledger.instances, s.guestCount)
}

// Display returns the quota field value.
func (s *Session) Display() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.field.Display()
}

// Mode returns the quota field mode.
func (s *Session) Mode() QuotaMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.field.Mode()
}

// view runs fn with the session lock held.
func (s *Session) view(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Instances returns the ledger contents.
func (s *Session) Instances() []ProductInstance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Instances()
}

// Projection returns the flat product list.
func (s *Session) Projection() FormProductList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Projection()
}

func (s *Session) onProjection(products FormProductList) {
	s.sink.UpdateProducts(products)
	s.recompute()
}

func (s *Session) recompute() {
	summary := ComputeQuota(s.ledger.instances, s.guestCount)
	s.sink.UpdateQuota(summary)
	if amount, ok := s.field.Recompute(summary.PerGuest); ok {
		s.sink.UpdateQuotaAmount(amount)
	}
}

func (s *Session) reportError(msg string) {
	s.errorActive = true
	s.sink.SetError(msg)
}

func (s *Session) clearError() {
	if s.errorActive {
		s.errorActive = false
		s.sink.SetError("")
	}
}
