package web

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/thejezzi/conway/session"
	"github.com/thejezzi/conway/utils"
)

func recvPayload(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case payload := <-ch:
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a payload")
		return nil
	}
}

func TestHubPublishFrame(t *testing.T) {
	hub := NewHub(nil)

	hub.PublishFrame(session.Frame{
		Generation: 3,
		Population: 7,
		Lines:      []string{"..#", "#.."},
		Stagnant:   true,
		Stats:      utils.Snapshot{GenerationsPerSecond: 10},
	})

	payload := recvPayload(t, hub.Broadcast)

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("failed to unmarshal broadcast payload: %v", err)
	}
	if env.Type != "frame" {
		t.Errorf("expected type 'frame', got %q", env.Type)
	}
	if env.Frame == nil {
		t.Fatal("expected a frame in the envelope")
	}
	if env.Frame.Generation != 3 || env.Frame.Population != 7 {
		t.Errorf("expected generation 3 population 7, got %d/%d",
			env.Frame.Generation, env.Frame.Population)
	}
	if len(env.Frame.Lines) != 2 || env.Frame.Lines[0] != "..#" {
		t.Errorf("unexpected lines: %q", env.Frame.Lines)
	}
	if !env.Frame.Stagnant {
		t.Error("expected the stagnant flag to survive the trip")
	}
	if env.Frame.Stats.GenerationsPerSecond != 10 {
		t.Errorf("expected stats to survive the trip, got %f", env.Frame.Stats.GenerationsPerSecond)
	}

	// A frame envelope carries no state field.
	if strings.Contains(string(payload), `"state"`) {
		t.Errorf("expected the state field to be omitted, got %s", payload)
	}
}

func TestHubPublishState(t *testing.T) {
	hub := NewHub(nil)

	hub.PublishState(session.StatePaused)

	payload := recvPayload(t, hub.Broadcast)

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("failed to unmarshal broadcast payload: %v", err)
	}
	if env.Type != "state" {
		t.Errorf("expected type 'state', got %q", env.Type)
	}
	if env.State != "paused" {
		t.Errorf("expected state 'paused', got %q", env.State)
	}
	if env.Frame != nil {
		t.Error("expected no frame in a state envelope")
	}
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub(nil)

	// Saturate the broadcast buffer with nobody draining it; further
	// publishes must drop instead of stalling the session's tick.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < cap(hub.Broadcast)+10; i++ {
			hub.PublishFrame(session.Frame{Generation: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing into a full hub blocked")
	}

	if len(hub.Broadcast) != cap(hub.Broadcast) {
		t.Errorf("expected a full buffer, got %d of %d", len(hub.Broadcast), cap(hub.Broadcast))
	}
}

func TestHubRunFansOut(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := &client{hub: hub, send: make(chan []byte, 4)}
	hub.Register <- c

	hub.PublishFrame(session.Frame{Generation: 1})

	payload := recvPayload(t, c.send)
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("failed to unmarshal fanned-out payload: %v", err)
	}
	if env.Type != "frame" || env.Frame == nil || env.Frame.Generation != 1 {
		t.Errorf("unexpected fanned-out envelope: %+v", env)
	}

	// Unregistering closes the client's send channel.
	hub.Unregister <- c
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected the send channel to be closed after unregister")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the send channel to close")
	}
}

func TestHubSlowClientDoesNotStall(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := &client{hub: hub, send: make(chan []byte, 1)}
	c.send <- []byte("stuck")
	hub.Register <- c

	// The client's buffer is full; the fanout drops for it rather than
	// blocking the hub loop, which must stay responsive.
	hub.PublishFrame(session.Frame{Generation: 1})
	hub.Unregister <- c

	if got := string(recvPayload(t, c.send)); got != "stuck" {
		t.Errorf("expected the pre-filled payload, got %q", got)
	}
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected the send channel to be closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the send channel to close")
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	c := &client{hub: hub, send: make(chan []byte, 1)}
	hub.Register <- c

	cancel()

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected shutdown to close the send channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for shutdown to close the client")
	}
}
