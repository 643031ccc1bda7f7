package features

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"

	"selection/logic"
)

// countingForm records how often the session pushes the product list.
type countingForm struct {
	*logic.FormState
	productPushes int
}

func (f *countingForm) UpdateProducts(products logic.FormProductList) {
	f.productPushes++
	f.FormState.UpdateProducts(products)
}

type selectionTestContext struct {
	form        *countingForm
	session     *logic.Session
	idsBefore   []string
	reconciled  bool
	lastChanged bool
}

func (c *selectionTestContext) reset() {
	c.form = &countingForm{FormState: logic.NewFormState()}
	c.session = nil
	c.idsBefore = nil
	c.reconciled = false
	c.lastChanged = false
}

func (c *selectionTestContext) instance(n int) (logic.ProductInstance, error) {
	instances := c.session.Instances()
	if n < 1 || n > len(instances) {
		return logic.ProductInstance{}, fmt.Errorf("no line item %d (have %d)", n, len(instances))
	}
	return instances[n-1], nil
}

// Given steps

func (c *selectionTestContext) anEmptySelectionForGuests(guests int) error {
	c.session = logic.NewSession("scenario", c.form)
	c.session.SetGuests(guests)
	return nil
}

// When steps

func (c *selectionTestContext) iAddPricedWithQuantity(name, price string, quantity int) error {
	p, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return err
	}
	c.session.Add(logic.Product{ExternalID: name, Name: name, Price: p}, quantity)
	return nil
}

func (c *selectionTestContext) iChangeTheQuantityOfLineItemBy(n, delta int) error {
	inst, err := c.instance(n)
	if err != nil {
		return err
	}
	c.lastChanged = c.session.AdjustQuantity(inst.InstanceID, delta)
	return nil
}

func (c *selectionTestContext) iRemoveLineItem(id string) error {
	c.lastChanged = c.session.Remove(id)
	return nil
}

func (c *selectionTestContext) theFormLoadsTheSavedProducts(table *godog.Table) error {
	if len(table.Rows) < 1 {
		return fmt.Errorf("table has no header")
	}
	header := table.Rows[0].Cells
	entries := make([]any, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		m := map[string]any{}
		for i, cell := range row.Cells {
			m[header[i].Value] = cell.Value
		}
		entries = append(entries, m)
	}
	c.reconciled = c.session.Reconcile(entries, logic.OriginExternal)
	return nil
}

func (c *selectionTestContext) theFormEchoesTheCurrentProductList() error {
	for _, inst := range c.session.Instances() {
		c.idsBefore = append(c.idsBefore, inst.InstanceID)
	}
	projection := c.session.Projection()
	entries := make([]any, len(projection))
	for i, fp := range projection {
		entries[i] = fp
	}
	c.reconciled = c.session.Reconcile(entries, logic.OriginExternal)
	return nil
}

func (c *selectionTestContext) iSetTheGuestCountTo(text string) error {
	c.session.SetGuestCount(text)
	return nil
}

func (c *selectionTestContext) iTypeIntoTheQuotaField(text string) error {
	c.session.EditQuota(text)
	return nil
}

func (c *selectionTestContext) iResetTheQuotaField() error {
	c.session.ResetQuota()
	return nil
}

// Then steps

func (c *selectionTestContext) theSelectionHasLineItems(n int) error {
	if got := len(c.session.Instances()); got != n {
		return fmt.Errorf("expected %d line items, got %d", n, got)
	}
	if got := len(c.form.Snapshot().Products); got != n {
		return fmt.Errorf("expected form to list %d products, got %d", n, got)
	}
	return nil
}

func (c *selectionTestContext) everyLineItemIdIsUnique() error {
	seen := map[string]bool{}
	for _, inst := range c.session.Instances() {
		if seen[inst.InstanceID] {
			return fmt.Errorf("duplicate id %q", inst.InstanceID)
		}
		seen[inst.InstanceID] = true
	}
	return nil
}

func (c *selectionTestContext) lineItemHasQuantity(n, quantity int) error {
	inst, err := c.instance(n)
	if err != nil {
		return err
	}
	if inst.Product.Quantity != quantity {
		return fmt.Errorf("expected quantity %d, got %d", quantity, inst.Product.Quantity)
	}
	return nil
}

func (c *selectionTestContext) theProductListWasPushedTimes(n int) error {
	if c.form.productPushes != n {
		return fmt.Errorf("expected %d product pushes, got %d", n, c.form.productPushes)
	}
	return nil
}

func (c *selectionTestContext) theReconcileReportedNoChange() error {
	if c.reconciled {
		return fmt.Errorf("expected no change")
	}
	return nil
}

func (c *selectionTestContext) lineItemKeepsItsId(n int) error {
	inst, err := c.instance(n)
	if err != nil {
		return err
	}
	if n > len(c.idsBefore) || c.idsBefore[n-1] != inst.InstanceID {
		return fmt.Errorf("expected line item %d to keep its id, got %q", n, inst.InstanceID)
	}
	return nil
}

func (c *selectionTestContext) theTotalCostIs(total float64) error {
	if got := c.form.Snapshot().Quota.TotalProducts; got != total {
		return fmt.Errorf("expected total %v, got %v", total, got)
	}
	return nil
}

func (c *selectionTestContext) theSharePerGuestIs(share float64) error {
	if got := c.form.Snapshot().Quota.PerGuest; got != share {
		return fmt.Errorf("expected share %v, got %v", share, got)
	}
	return nil
}

func (c *selectionTestContext) theQuotaFieldShows(amount string) error {
	if got := c.form.Snapshot().QuotaAmount; got != amount {
		return fmt.Errorf("expected quota field %q, got %q", amount, got)
	}
	return nil
}

func (c *selectionTestContext) theQuotaFieldIsInMode(mode string) error {
	if got := c.session.Mode().String(); got != mode {
		return fmt.Errorf("expected mode %q, got %q", mode, got)
	}
	return nil
}

func (c *selectionTestContext) theFormShowsTheError(msg string) error {
	if got := c.form.Snapshot().Error; got != msg {
		return fmt.Errorf("expected error %q, got %q", msg, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &selectionTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty selection for (\d+) guests$`, tc.anEmptySelectionForGuests)

	// When steps
	ctx.Step(`^I add "([^"]*)" priced ([\d.]+) with quantity (-?\d+)$`, tc.iAddPricedWithQuantity)
	ctx.Step(`^I change the quantity of line item (\d+) by (-?\d+)$`, tc.iChangeTheQuantityOfLineItemBy)
	ctx.Step(`^I remove line item "([^"]*)"$`, tc.iRemoveLineItem)
	ctx.Step(`^the form loads the saved products:$`, tc.theFormLoadsTheSavedProducts)
	ctx.Step(`^the form echoes the current product list$`, tc.theFormEchoesTheCurrentProductList)
	ctx.Step(`^I set the guest count to "([^"]*)"$`, tc.iSetTheGuestCountTo)
	ctx.Step(`^I type "([^"]*)" into the quota field$`, tc.iTypeIntoTheQuotaField)
	ctx.Step(`^I reset the quota field$`, tc.iResetTheQuotaField)

	// Then steps
	ctx.Step(`^the selection has (\d+) line items$`, tc.theSelectionHasLineItems)
	ctx.Step(`^every line item id is unique$`, tc.everyLineItemIdIsUnique)
	ctx.Step(`^line item (\d+) has quantity (\d+)$`, tc.lineItemHasQuantity)
	ctx.Step(`^the product list was pushed (\d+) times?$`, tc.theProductListWasPushedTimes)
	ctx.Step(`^the reconcile reported no change$`, tc.theReconcileReportedNoChange)
	ctx.Step(`^line item (\d+) keeps its id$`, tc.lineItemKeepsItsId)
	ctx.Step(`^the total cost is ([\d.]+)$`, tc.theTotalCostIs)
	ctx.Step(`^the share per guest is ([\d.]+)$`, tc.theSharePerGuestIs)
	ctx.Step(`^the quota field shows "([^"]*)"$`, tc.theQuotaFieldShows)
	ctx.Step(`^the quota field is in "([^"]*)" mode$`, tc.theQuotaFieldIsInMode)
	ctx.Step(`^the form shows the error "([^"]*)"$`, tc.theFormShowsTheError)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"product_selection.feature", "quota.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
