//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Client wraps a gRPC connection to the alarm clock control API.
type Client struct {
	// conn is the underlying gRPC connection to the alarm clock.
	conn *grpc.ClientConn

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial prepares a gRPC connection to the alarm clock.
// The control API is meant for the local machine or a trusted network and
// uses insecure transport credentials.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm clock: %w", err)
	}

	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Arm asks the alarm clock to ring at the requested time.
func (c *Client) Arm(ctx context.Context, req *api.ArmRequest) (domain.Status, error) {
	msg, err := api.EncodeArmRequest(req)
	if err != nil {
		return domain.Status{}, fmt.Errorf("encode arm request: %w", err)
	}

	return c.invoke(ctx, api.ArmMethod, msg)
}

// Cancel disarms the alarm with handleID, or the current one for uuid.Nil.
func (c *Client) Cancel(ctx context.Context, handleID uuid.UUID) (domain.Status, error) {
	var value string
	if handleID != uuid.Nil {
		value = handleID.String()
	}

	return c.invoke(ctx, api.CancelMethod, wrapperspb.String(value))
}

// Status returns the alarm clock status.
func (c *Client) Status(ctx context.Context) (domain.Status, error) {
	return c.invoke(ctx, api.GetStatusMethod, new(emptypb.Empty))
}

// Dismiss stops a ringing alarm.
func (c *Client) Dismiss(ctx context.Context) (domain.Status, error) {
	return c.invoke(ctx, api.DismissMethod, new(emptypb.Empty))
}

// invoke performs one unary call and decodes the status reply.
func (c *Client) invoke(ctx context.Context, method string, req any) (domain.Status, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	reply := new(structpb.Struct)

	if err := c.conn.Invoke(callCtx, method, req, reply); err != nil {
		return domain.Status{}, fmt.Errorf("call %s: %w", method, api.FromStatusError(err))
	}

	st, err := api.DecodeStatus(reply)
	if err != nil {
		return domain.Status{}, fmt.Errorf("decode %s reply: %w", method, err)
	}

	return st, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
