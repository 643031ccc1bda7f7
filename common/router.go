package common

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// Error message constants.
const (
	ErrMsgUnknownCommand = "unknown command type"
	ErrMsgNoCommand      = "request has no command"
	ErrMsgNoCommandType  = "command type is required"
)

// Command is the request envelope: a session id, a command type and the
// command's JSON payload.
type Command struct {
	Session string          `json:"session,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CommandFromStruct decodes a command from a protobuf Struct with the keys
// "session", "type" and "payload".
func CommandFromStruct(s *structpb.Struct) (*Command, error) {
	if s == nil {
		return nil, NewInvalidArgument(ErrMsgNoCommand)
	}
	fields := s.GetFields()
	cmd := &Command{
		Session: fields["session"].GetStringValue(),
		Type:    fields["type"].GetStringValue(),
	}
	if p, ok := fields["payload"]; ok {
		if _, isNull := p.GetKind().(*structpb.Value_NullValue); !isNull {
			data, err := p.MarshalJSON()
			if err != nil {
				return nil, NewInvalidArgumentf("invalid payload: %v", err)
			}
			cmd.Payload = data
		}
	}
	if err := RequireExists(cmd.Type, ErrMsgNoCommandType); err != nil {
		return nil, err
	}
	return cmd, nil
}

// ToStruct encodes the command as a protobuf Struct.
func (c *Command) ToStruct() (*structpb.Struct, error) {
	return ToStruct(c)
}

// Decode unmarshals the payload into v. An empty payload leaves v untouched.
func (c *Command) Decode(v any) error {
	if len(c.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(c.Payload, v); err != nil {
		return NewInvalidArgumentf("invalid payload for %s: %v", c.Type, err)
	}
	return nil
}

// ToStruct converts any JSON-encodable value to a protobuf Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{}
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}

// CommandHandler processes a command against state and returns the value to
// send back.
type CommandHandler[S any] func(ctx context.Context, cmd *Command, state S) (any, error)

type commandEntry[S any] struct {
	suffix  string
	handler CommandHandler[S]
}

// CommandRouter dispatches commands to handlers by type suffix.
//
// Example:
//
//	router := common.NewCommandRouter[*logic.Session]("selection").
//	    On("AddProduct", handleAddProduct).
//	    On("RemoveProduct", handleRemoveProduct)
//
//	resp, err := router.Dispatch(ctx, cmd, session)
type CommandRouter[S any] struct {
	domain  string
	entries []commandEntry[S]
}

// NewCommandRouter creates a command router for a domain.
func NewCommandRouter[S any](domain string) *CommandRouter[S] {
	return &CommandRouter[S]{domain: domain}
}

// On registers a handler for a command type suffix.
//
// The suffix is matched against the end of the command type, so
// .On("AddProduct", h) matches both "AddProduct" and "selection.AddProduct".
func (r *CommandRouter[S]) On(suffix string, handler CommandHandler[S]) *CommandRouter[S] {
	r.entries = append(r.entries, commandEntry[S]{suffix, handler})
	return r
}

// Dispatch calls the first handler whose suffix matches cmd.Type.
func (r *CommandRouter[S]) Dispatch(ctx context.Context, cmd *Command, state S) (any, error) {
	if cmd == nil {
		return nil, NewInvalidArgument(ErrMsgNoCommand)
	}
	for _, e := range r.entries {
		if strings.HasSuffix(cmd.Type, e.suffix) {
			return e.handler(ctx, cmd, state)
		}
	}
	return nil, NewInvalidArgumentf("%s: %s", ErrMsgUnknownCommand, cmd.Type)
}

// Handles reports whether a handler is registered for typ.
func (r *CommandRouter[S]) Handles(typ string) bool {
	for _, e := range r.entries {
		if strings.HasSuffix(typ, e.suffix) {
			return true
		}
	}
	return false
}

// Domain returns the router's domain name.
func (r *CommandRouter[S]) Domain() string { return r.domain }

// Types returns registered command type suffixes.
func (r *CommandRouter[S]) Types() []string {
	result := make([]string, len(r.entries))
	for i, e := range r.entries {
		result[i] = e.suffix
	}
	return result
}
