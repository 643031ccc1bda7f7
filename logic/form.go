package logic

import "sync"

// FormSink receives every write the session makes to the surrounding form.
type FormSink interface {
	UpdateProducts(products FormProductList)
	UpdateQuota(summary QuotaSummary)
	UpdateQuotaAmount(amount string)
	SetError(message string)
}

// FormState is an in-memory form object. It is safe for concurrent use.
type FormState struct {
	mu    sync.Mutex
	value FormValues
}

// FormValues is a snapshot of the form fields owned by the session.
type FormValues struct {
	Products    FormProductList `json:"productos"`
	Quota       QuotaSummary    `json:"cuotaCalculada"`
	QuotaAmount string          `json:"cuotaAmount"`
	Error       string          `json:"error,omitempty"`
}

// NewFormState returns an empty form.
func NewFormState() *FormState {
	return &FormState{value: FormValues{Products: FormProductList{}}}
}

func (f *FormState) UpdateProducts(products FormProductList) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value.Products = append(FormProductList(nil), products...)
}

func (f *FormState) UpdateQuota(summary QuotaSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value.Quota = summary
}

func (f *FormState) UpdateQuotaAmount(amount string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value.QuotaAmount = amount
}

func (f *FormState) SetError(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value.Error = message
}

// Snapshot returns a copy of the current form values.
func (f *FormState) Snapshot() FormValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.value
	v.Products = append(FormProductList{}, f.value.Products...)
	return v
}
