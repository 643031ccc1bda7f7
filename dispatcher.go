package main

import (
	"context"

	"go.uber.org/zap"

	"selection/common"
	"selection/logic"
)

// Command payloads.
type (
	openSessionPayload struct {
		GuestCount int `json:"guestCount"`
	}
	addProductPayload struct {
		Product  logic.RawProduct `json:"product"`
		Quantity int              `json:"quantity"`
	}
	adjustQuantityPayload struct {
		InstanceID string `json:"instanceId"`
		Delta      int    `json:"delta"`
	}
	removeProductPayload struct {
		InstanceID string `json:"instanceId"`
	}
	reconcilePayload struct {
		Productos []any  `json:"productos"`
		Origin    string `json:"origin"`
	}
	textPayload struct {
		Text string `json:"text"`
	}
	searchPayload struct {
		Query string `json:"query"`
	}
	addSearchResultPayload struct {
		Index    int `json:"index"`
		Quantity int `json:"quantity"`
	}
)

// Error message constants.
const (
	ErrMsgNoSession       = "session is required"
	ErrMsgUnknownSession  = "unknown session"
	ErrMsgNoProduct       = "product is required"
	ErrMsgNoInstance      = "instanceId is required"
	ErrMsgZeroDelta       = "delta must not be zero"
	ErrMsgNegativeGuests  = "guestCount must not be negative"
	ErrMsgNegativeIndex   = "index must not be negative"
	ErrMsgNoProductsField = "productos is required"
)

// outcome carries the command-specific parts of a response.
type outcome struct {
	InstanceID string
	Results    []logic.Product
	Changed    *bool
}

func changed(v bool) *outcome { return &outcome{Changed: &v} }

func newRouter() *common.CommandRouter[*logic.Session] {
	return common.NewCommandRouter[*logic.Session](Domain).
		On("AddProduct", handleAddProduct).
		On("AdjustQuantity", handleAdjustQuantity).
		On("RemoveProduct", handleRemoveProduct).
		On("ReconcileProducts", handleReconcile).
		On("SetGuestCount", handleSetGuestCount).
		On("EditQuota", handleEditQuota).
		On("ResetQuota", handleResetQuota).
		On("SearchCatalog", handleSearch).
		On("AddSearchResult", handleAddSearchResult).
		On("GetForm", handleGetForm)
}

func handleAddProduct(_ context.Context, cmd *common.Command, s *logic.Session) (any, error) {
	var p addProductPayload
	if err := cmd.Decode(&p); err != nil {
		return nil, err
	}
	if p.Product == nil {
		return nil, common.NewInvalidArgument(ErrMsgNoProduct)
	}
	id := s.AddRaw(p.Product, p.Quantity)
	logger.Info("adding product", zap.String("session_id", s.ID()), zap.String("instance_id", id))
	return &outcome{InstanceID: id}, nil
}

func handleAdjustQuantity(_ context.Context, cmd *common.Command, s *logic.Session) (any, error) {
	var p adjustQuantityPayload
	if err := cmd.Decode(&p); err != nil {
		return nil, err
	}
	if err := common.RequireExists(p.InstanceID, ErrMsgNoInstance); err != nil {
		return nil, err
	}
	if err := common.RequireNonZero(p.Delta, ErrMsgZeroDelta); err != nil {
		return nil, err
	}
	return changed(s.AdjustQuantity(p.InstanceID, p.Delta)), nil
}

func handleRemoveProduct(_ context.Context, cmd *common.Command, s *logic.Session) (any, error) {
	var p removeProductPayload
	if err := cmd.Decode(&p); err != nil {
		return nil, err
	}
	if err := common.RequireExists(p.InstanceID, ErrMsgNoInstance); err != nil {
		return nil, err
	}
	return changed(s.Remove(p.InstanceID)), nil
}

func handleReconcile(_ context.Context, cmd *common.Command, s *logic.Session) (any, error) {
	var p reconcilePayload
	if err := cmd.Decode(&p); err != nil {
		return nil, err
	}
	if p.Productos == nil {
		return nil, common.NewInvalidArgument(ErrMsgNoProductsField)
	}
	origin := logic.ParseOrigin(p.Origin)
	ok := s.Reconcile(p.Productos, origin)
	logger.Debug("reconciled products",
		zap.String("session_id", s.ID()),
		zap.String("origin", origin.String()),
		zap.Bool("changed", ok),
	)
	return changed(ok), nil
}

func handleSetGuestCount(_ context.Context, cmd *common.Command, s *logic.Session) (any, error) {
	var p textPayload
	if err := cmd.Decode(&p); err != nil {
		return nil, err
	}
	s.SetGuestCount(p.Text)
	return &outcome{}, nil
}

func handleEditQuota(_ context.Context, cmd *common.Command, s *logic.Session) (any, error) {
	var p textPayload
	if err := cmd.Decode(&p); err != nil {
		return nil, err
	}
	s.EditQuota(p.Text)
	return &outcome{}, nil
}

func handleResetQuota(_ context.Context, _ *common.Command, s *logic.Session) (any, error) {
	s.ResetQuota()
	return &outcome{}, nil
}

func handleSearch(ctx context.Context, cmd *common.Command, s *logic.Session) (any, error) {
	var p searchPayload
	if err := cmd.Decode(&p); err != nil {
		return nil, err
	}
	results, ok := s.Search(ctx, p.Query)
	if !ok {
		results = []logic.Product{}
	}
	return &outcome{Results: results}, nil
}

func handleAddSearchResult(_ context.Context, cmd *common.Command, s *logic.Session) (any, error) {
	var p addSearchResultPayload
	if err := cmd.Decode(&p); err != nil {
		return nil, err
	}
	if err := common.RequireNonNegative(p.Index, ErrMsgNegativeIndex); err != nil {
		return nil, err
	}
	id, ok := s.AddSearchResult(p.Index, p.Quantity)
	return &outcome{InstanceID: id, Changed: &ok}, nil
}

func handleGetForm(_ context.Context, _ *common.Command, _ *logic.Session) (any, error) {
	return &outcome{}, nil
}
