package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"selection/client"
	"selection/common"
)

var (
	callEndpoint string
	callSession  string
	callType     string
	callPayload  string
	callTimeout  time.Duration
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Send one command to a running selection server",
	Example: `  selection call --type OpenSession --payload '{"guestCount":4}'
  selection call --session <id> --type AddProduct --payload '{"product":{"id":"p1","name":"Coke","price":1500},"quantity":2}'`,
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringVarP(&callEndpoint, "endpoint", "e", "", "Server endpoint (default $SELECTION_ENDPOINT or localhost:50210)")
	callCmd.Flags().StringVarP(&callSession, "session", "s", "", "Session id")
	callCmd.Flags().StringVarP(&callType, "type", "t", "", "Command type")
	callCmd.Flags().StringVarP(&callPayload, "payload", "p", "", "Command payload as JSON")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 10*time.Second, "Request timeout")
	_ = callCmd.MarkFlagRequired("type")
}

func runCall(cmd *cobra.Command, _ []string) error {
	if callPayload != "" && !json.Valid([]byte(callPayload)) {
		return fmt.Errorf("payload is not valid JSON")
	}

	var (
		c   *client.Client
		err error
	)
	if callEndpoint != "" {
		c, err = client.NewClient(callEndpoint)
	} else {
		c, err = client.ClientFromEnv("SELECTION_ENDPOINT", "localhost:50210")
	}
	if err != nil {
		return describeCallError(err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()

	command := &common.Command{Session: callSession, Type: callType}
	if callPayload != "" {
		command.Payload = json.RawMessage(callPayload)
	}

	var resp map[string]any
	if err := c.SendInto(ctx, command, &resp); err != nil {
		return describeCallError(err)
	}
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

// describeCallError turns a client failure into a one-line CLI message.
func describeCallError(err error) error {
	ce := client.AsClientError(err)
	if ce == nil {
		return err
	}
	switch {
	case ce.IsConnectionError():
		return fmt.Errorf("%w; check --endpoint or $SELECTION_ENDPOINT", err)
	case ce.IsNotFound():
		return fmt.Errorf("not found: %s", ce.Reason())
	case ce.IsInvalidArgument():
		return fmt.Errorf("invalid command: %s", ce.Reason())
	case ce.IsPreconditionFailed():
		return fmt.Errorf("command not allowed: %s", ce.Reason())
	}
	return err
}
