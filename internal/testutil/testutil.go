// Package testutil holds canvas fixtures shared by package tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// InstanceName is the namespace used by every fixture store.
const InstanceName = "test-instance"

// AllowAll authorizes every painter.
type AllowAll struct{}

func (AllowAll) RequireAuth(context.Context, canvas.Identity) error { return nil }

// HubCall is one lifecycle call seen by a RecordingHub.
type HubCall struct {
	Kind   string // "start" or "end"
	Hub    canvas.Identity
	GameID string
}

// RecordingHub is a canvas.GameHub that remembers its calls.
type RecordingHub struct {
	mu    sync.Mutex
	calls []HubCall
}

func (h *RecordingHub) StartGame(_ context.Context, hub canvas.Identity, gameID string) error {
	h.record(HubCall{Kind: "start", Hub: hub, GameID: gameID})
	return nil
}

func (h *RecordingHub) EndGame(_ context.Context, hub canvas.Identity, gameID string) error {
	h.record(HubCall{Kind: "end", Hub: hub, GameID: gameID})
	return nil
}

func (h *RecordingHub) record(c HubCall) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, c)
}

// Calls returns a copy of the recorded calls.
func (h *RecordingHub) Calls() []HubCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HubCall(nil), h.calls...)
}

// Env is a canvas store backed by miniredis.
type Env struct {
	Redis *miniredis.Miniredis
	Store *canvas.Store
	Hub   *RecordingHub
}

// NewEnv starts miniredis and opens a store on it with an AllowAll authorizer
// and a RecordingHub. Both are closed when the test ends.
func NewEnv(t *testing.T, opts ...canvas.Option) *Env {
	t.Helper()

	mr := miniredis.RunT(t)
	hub := &RecordingHub{}

	store, err := canvas.NewStore(&redis.Options{Addr: mr.Addr()}, InstanceName, AllowAll{}, hub, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &Env{Redis: mr, Store: store, Hub: hub}
}
