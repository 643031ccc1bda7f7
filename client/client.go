package client

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"selection/common"
)

// formatEndpoint converts an endpoint to gRPC target format.
// UDS paths are detected by leading '/' or './' and converted to unix:// URIs.
func formatEndpoint(endpoint string) string {
	if strings.HasPrefix(endpoint, "/") || strings.HasPrefix(endpoint, "./") {
		return "unix://" + endpoint
	}
	return endpoint
}

// Client sends commands to a selection service.
type Client struct {
	inner common.SelectionClient
	conn  *grpc.ClientConn
}

// NewClient connects to a selection service at the given endpoint.
func NewClient(endpoint string) (*Client, error) {
	if endpoint == "" {
		return nil, InvalidArgumentError("endpoint is required")
	}
	conn, err := grpc.NewClient(formatEndpoint(endpoint), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, ConnectionError(err)
	}
	return &Client{
		inner: common.NewSelectionClient(conn),
		conn:  conn,
	}, nil
}

// ClientFromEnv connects using an environment variable with fallback.
func ClientFromEnv(envVar, defaultEndpoint string) (*Client, error) {
	endpoint := os.Getenv(envVar)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return NewClient(endpoint)
}

// ClientFromConn creates a client from an existing connection.
func ClientFromConn(conn *grpc.ClientConn) *Client {
	return &Client{
		inner: common.NewSelectionClient(conn),
		conn:  conn,
	}
}

// Send executes one command and returns the raw response.
func (c *Client) Send(ctx context.Context, cmd *common.Command) (*structpb.Struct, error) {
	if cmd == nil || cmd.Type == "" {
		return nil, InvalidArgumentError(common.ErrMsgNoCommandType)
	}
	req, err := cmd.ToStruct()
	if err != nil {
		return nil, InvalidArgumentError("payload is not a JSON object: " + err.Error())
	}
	resp, err := c.inner.Handle(ctx, req)
	if err != nil {
		return nil, callError(err)
	}
	return resp, nil
}

// SendInto executes one command and decodes the response into v.
func (c *Client) SendInto(ctx context.Context, cmd *common.Command, v any) error {
	resp, err := c.Send(ctx, cmd)
	if err != nil {
		return err
	}
	data, err := resp.MarshalJSON()
	if err != nil {
		return InvalidResponseError(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return InvalidResponseError(err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
