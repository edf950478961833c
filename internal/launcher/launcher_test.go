//go:build unix

package launcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"doppel/internal/domain"
	"doppel/internal/eventbus"
)

// fakeDecoy writes an executable stub so Launch has something to spawn.
func fakeDecoy(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doppel-decoy")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0755))
	return path
}

func waitFor(t *testing.T, ch <-chan eventbus.DomainEvent) eventbus.DomainEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestLaunchPublishesStarted(t *testing.T) {
	bus := eventbus.New()
	started := make(chan eventbus.DomainEvent, 1)
	bus.Subscribe(eventbus.EventLaunchStarted, func(ev eventbus.DomainEvent) {
		started <- ev
	})

	s := &Service{bus: bus, decoyPath: fakeDecoy(t)}
	s.Launch(domain.Game{Name: "Celeste", Exe: "Celeste.exe"}, 15)

	ev := waitFor(t, started)
	require.Equal(t, "Celeste", ev.(eventbus.LaunchStartedEvent).Game.Name)
}

func TestLaunchRequestOverBus(t *testing.T) {
	bus := eventbus.New()
	started := make(chan eventbus.DomainEvent, 1)
	bus.Subscribe(eventbus.EventLaunchStarted, func(ev eventbus.DomainEvent) {
		started <- ev
	})

	s, unsub := NewService(bus)
	defer unsub()
	s.decoyPath = fakeDecoy(t)

	bus.Publish(eventbus.LaunchRequestedEvent{
		Game:    domain.Game{Name: "Hades", Exe: "Hades.exe"},
		Minutes: 30,
	})

	ev := waitFor(t, started)
	require.Equal(t, "Hades", ev.(eventbus.LaunchStartedEvent).Game.Name)
}

func TestLaunchMissingDecoyPublishesError(t *testing.T) {
	bus := eventbus.New()
	errs := make(chan eventbus.DomainEvent, 1)
	bus.Subscribe(eventbus.EventError, func(ev eventbus.DomainEvent) {
		errs <- ev
	})

	s := &Service{bus: bus, decoyPath: filepath.Join(t.TempDir(), "missing")}
	s.Launch(domain.Game{Name: "Rust", Exe: "RustClient.exe"}, 15)

	ev := waitFor(t, errs)
	require.Error(t, ev.(eventbus.ErrorEvent).Err)
}
