package kafka

import (
	"context"
	"testing"
)

// Shutdown interleavings must never double-close the inbox. No messages
// are published, so nothing touches the network.

func TestProducerShutdown_CloseThenCancel(t *testing.T) {
	for i := 0; i < 500; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewProducer([]string{"localhost:9092"}, "orders.created", 8)
		p.Start(ctx)
		p.Close()
		cancel()
		p.WaitClosed()
	}
}

func TestProducerShutdown_CancelThenClose(t *testing.T) {
	for i := 0; i < 500; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewProducer([]string{"localhost:9092"}, "orders.created", 8)
		p.Start(ctx)
		cancel()
		p.Close()
		p.WaitClosed()
	}
}

func TestProducerClose_IsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewProducer([]string{"localhost:9092"}, "orders.created", 8)
	p.Start(ctx)
	p.Close()
	p.Close()
	p.WaitClosed()
}
