package main

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"selection/common"
	"selection/logic"
)

// Response is returned for every command.
type Response struct {
	Session    string                  `json:"session"`
	Form       logic.FormValues        `json:"form"`
	Instances  []logic.ProductInstance `json:"instances"`
	Mode       string                  `json:"mode"`
	Results    []logic.Product         `json:"results,omitempty"`
	InstanceID string                  `json:"instanceId,omitempty"`
	Changed    *bool                   `json:"changed,omitempty"`
	Closed     bool                    `json:"closed,omitempty"`
}

type server struct {
	store  *logic.SessionStore
	router *common.CommandRouter[*logic.Session]
}

var _ common.SelectionServer = (*server)(nil)

func newServer(store *logic.SessionStore) *server {
	return &server{store: store, router: newRouter()}
}

// Handle implements the gRPC surface.
func (s *server) Handle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cmd, err := common.CommandFromStruct(req)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	resp, err := s.execute(ctx, cmd)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	out, err := common.ToStruct(resp)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	return out, nil
}

// execute runs one command. Session lifecycle commands are handled here;
// everything else goes through the router against an open session.
func (s *server) execute(ctx context.Context, cmd *common.Command) (*Response, error) {
	switch {
	case strings.HasSuffix(cmd.Type, "OpenSession"):
		var p openSessionPayload
		if err := cmd.Decode(&p); err != nil {
			return nil, err
		}
		if err := common.RequireNonNegative(p.GuestCount, ErrMsgNegativeGuests); err != nil {
			return nil, err
		}
		entry := s.store.Open(p.GuestCount)
		return buildResponse(entry, &outcome{}), nil

	case strings.HasSuffix(cmd.Type, "CloseSession"):
		entry, err := s.lookup(cmd.Session)
		if err != nil {
			return nil, err
		}
		s.store.Close(cmd.Session)
		resp := buildResponse(entry, &outcome{})
		resp.Closed = true
		return resp, nil
	}

	if !s.router.Handles(cmd.Type) {
		return nil, common.NewInvalidArgumentf("%s: %s", common.ErrMsgUnknownCommand, cmd.Type)
	}
	entry, err := s.lookup(cmd.Session)
	if err != nil {
		return nil, err
	}
	result, err := s.router.Dispatch(ctx, cmd, entry.Session)
	if err != nil {
		logger.Debug("command rejected",
			zap.String("session_id", cmd.Session),
			zap.String("type", cmd.Type),
			zap.Error(err),
		)
		return nil, err
	}
	out, _ := result.(*outcome)
	return buildResponse(entry, out), nil
}

func (s *server) lookup(id string) (logic.SessionEntry, error) {
	if err := common.RequireExists(id, ErrMsgNoSession); err != nil {
		return logic.SessionEntry{}, err
	}
	entry, ok := s.store.Get(id)
	if !ok {
		return logic.SessionEntry{}, common.NewNotFound(ErrMsgUnknownSession + ": " + id)
	}
	return entry, nil
}

func buildResponse(entry logic.SessionEntry, out *outcome) *Response {
	snap := entry.Snapshot()
	resp := &Response{
		Session:   entry.Session.ID(),
		Form:      snap.Form,
		Instances: snap.Instances,
		Mode:      snap.Mode.String(),
	}
	if out != nil {
		resp.Results = out.Results
		resp.InstanceID = out.InstanceID
		resp.Changed = out.Changed
	}
	return resp
}
