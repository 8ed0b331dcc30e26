package util

import (
	"context"
	"sync"
)

// Ready is signalled once a subscriber is attached to the event stream.
type Ready struct {
	once sync.Once
	ch   chan struct{}
}

func NewReady() *Ready {
	return &Ready{ch: make(chan struct{})}
}

// Signal marks subscriber as ready, repeated calls are no-op.
func (r *Ready) Signal() {
	r.once.Do(func() { close(r.ch) })
}

func (r *Ready) Done() <-chan struct{} {
	return r.ch
}

// NewContext adds Ready to the Context.
func NewContext(parent context.Context, ready *Ready) context.Context {
	return context.WithValue(parent, ctxReady, ready)
}

// FromContext gets Ready from the Context.
func FromContext(ctx context.Context) *Ready {
	if val, ok := ctx.Value(ctxReady).(*Ready); ok {
		return val
	}

	return nil
}

type ctxKey int

const (
	ctxReady ctxKey = iota
)
