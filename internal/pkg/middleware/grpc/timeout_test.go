package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
)

func TestUnaryClientTimeout(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	invoker := func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		deadline, hasDeadline = ctx.Deadline()
		return nil
	}

	start := time.Now()
	assert.NoError(t, UnaryClientTimeout(time.Minute)(context.Background(), "/m", nil, nil, nil, invoker))
	assert.True(t, hasDeadline)
	assert.WithinDuration(t, start.Add(time.Minute), deadline, 5*time.Second)

	// an existing deadline wins
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	want, _ := ctx.Deadline()
	assert.NoError(t, UnaryClientTimeout(time.Minute)(ctx, "/m", nil, nil, nil, invoker))
	assert.Equal(t, want, deadline)
}

func TestUnaryServerTimeout(t *testing.T) {
	var deadline time.Time
	handler := func(ctx context.Context, _ any) (any, error) {
		deadline, _ = ctx.Deadline()
		return nil, nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/m"}

	start := time.Now()
	_, err := UnaryServerTimeout(time.Minute)(context.Background(), nil, info, handler)
	assert.NoError(t, err)
	assert.WithinDuration(t, start.Add(time.Minute), deadline, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	want, _ := ctx.Deadline()
	_, err = UnaryServerTimeout(time.Hour)(ctx, nil, info, handler)
	assert.NoError(t, err)
	assert.Equal(t, want, deadline)
}
