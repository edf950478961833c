package launcher

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"doppel/internal/domain"
	"doppel/internal/eventbus"
)

// DecoyBinary is the helper spawned for each launch.
const DecoyBinary = "doppel-decoy"

// Service spawns the decoy helper for launch requests. It listens on
// the event bus so the UI never touches os/exec directly.
type Service struct {
	bus eventbus.EventBus
	// decoyPath overrides binary resolution, used by tests.
	decoyPath string
}

// NewService creates a launcher service and subscribes it to launch
// requests. The returned unsubscribe function detaches it again.
func NewService(bus eventbus.EventBus) (*Service, func()) {
	s := &Service{bus: bus}
	unsub := bus.Subscribe(eventbus.EventLaunchRequested, func(event eventbus.DomainEvent) {
		req, ok := event.(eventbus.LaunchRequestedEvent)
		if !ok {
			return
		}
		s.Launch(req.Game, req.Minutes)
	})
	return s, unsub
}

// Launch spawns a detached decoy process for the given game. Errors
// are published to the bus rather than returned: by the time the spawn
// fails the requesting keypress is long gone.
func (s *Service) Launch(game domain.Game, minutes int) {
	decoy, err := s.resolveDecoy()
	if err != nil {
		s.fail(fmt.Errorf("locating %s: %w", DecoyBinary, err))
		return
	}
	log.Printf("Launching %q for %d minutes via %s", game.Name, minutes, decoy)

	cmd := exec.Command(decoy, game.Name, strconv.Itoa(minutes))
	if err := cmd.Start(); err != nil {
		s.fail(fmt.Errorf("starting %s: %w", DecoyBinary, err))
		return
	}
	// Detach: the decoy outlives this process.
	if err := cmd.Process.Release(); err != nil {
		log.Printf("Failed to release decoy process: %v", err)
	}

	if s.bus != nil {
		s.bus.Publish(eventbus.LaunchStartedEvent{Game: game})
	}
}

// resolveDecoy looks for the helper next to our own binary first, then
// falls back to $PATH.
func (s *Service) resolveDecoy() (string, error) {
	if s.decoyPath != "" {
		return s.decoyPath, nil
	}

	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), DecoyBinary)
		if _, err := os.Stat(sibling); err == nil {
			return sibling, nil
		}
	}

	return exec.LookPath(DecoyBinary)
}

func (s *Service) fail(err error) {
	log.Printf("Launch failed: %v", err)
	if s.bus != nil {
		s.bus.Publish(eventbus.ErrorEvent{Message: "launch failed", Err: err})
	}
}
