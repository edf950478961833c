package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"doppel/internal/domain"
	"doppel/internal/eventbus"
)

// bundledGames ships inside the binary as the fallback of last resort.
//
//go:embed games.json
var bundledGames []byte

// Options configures a catalog service.
type Options struct {
	// URL of the published catalog; empty disables remote refresh.
	URL string
	// CachePath overrides the default local cache location.
	CachePath string
	// Client overrides the HTTP client used by Refresh.
	Client *http.Client
}

// Service supplies the game catalog: bundled list, local cache and
// remote refresh. It publishes domain events as the catalog changes.
type Service struct {
	bus       eventbus.EventBus
	url       string
	cachePath string
	client    *http.Client
}

// NewService creates a catalog service
func NewService(bus eventbus.EventBus, opts Options) *Service {
	s := &Service{
		bus:       bus,
		url:       opts.URL,
		cachePath: opts.CachePath,
		client:    opts.Client,
	}
	if s.cachePath == "" {
		s.cachePath = defaultCachePath()
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: 30 * time.Second}
	}
	return s
}

// defaultCachePath places the cache next to the config file.
func defaultCachePath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	return filepath.Join(configDir, "doppel", "games.json")
}

// Load returns the games from the local cache, seeding the cache from
// the bundled list when it does not exist yet. It never fails: the
// bundled list is the floor.
func (s *Service) Load() []domain.Game {
	log.Printf("Loading games from local cache at %s", s.cachePath)
	s.ensureLocalCache()

	if data, err := os.ReadFile(s.cachePath); err == nil {
		if games, err := decodeGames(data); err == nil {
			s.publishLoaded(games)
			return games
		} else {
			log.Printf("Local games cache is corrupt, falling back to bundled list: %v", err)
		}
	}

	games, err := decodeGames(bundledGames)
	if err != nil {
		// The bundled list is validated by tests; this cannot happen in
		// a correctly built binary.
		log.Printf("Bundled games list is invalid: %v", err)
		games = nil
	}
	s.publishLoaded(games)
	return games
}

// Refresh fetches the remote catalog, rewrites the local cache and
// publishes a GamesRefreshedEvent. On failure the previously loaded
// list simply stays in effect.
func (s *Service) Refresh(ctx context.Context) ([]domain.Game, error) {
	if s.url == "" {
		return nil, fmt.Errorf("no catalog URL configured")
	}
	log.Printf("Fetching games from %s", s.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, s.refreshFailed(fmt.Errorf("building catalog request: %w", err))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, s.refreshFailed(fmt.Errorf("fetching catalog: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.refreshFailed(fmt.Errorf("fetching catalog: unexpected status %s", resp.Status))
	}

	var games []domain.Game
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		return nil, s.refreshFailed(fmt.Errorf("parsing catalog: %w", err))
	}
	log.Printf("Parsed %d games from remote catalog", len(games))

	if err := s.writeCache(games); err != nil {
		// Not fatal; the fetched list is still usable this session.
		log.Printf("Failed to write fetched games to local cache: %v", err)
	}

	if s.bus != nil {
		s.bus.Publish(eventbus.GamesRefreshedEvent{Games: games})
	}
	return games, nil
}

// ensureLocalCache writes the bundled list to the cache path when no
// cache exists yet.
func (s *Service) ensureLocalCache() {
	if _, err := os.Stat(s.cachePath); err == nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.cachePath), 0755); err != nil {
		log.Printf("Failed to create cache directory, skipping local cache: %v", err)
		return
	}
	if err := os.WriteFile(s.cachePath, bundledGames, 0644); err != nil {
		log.Printf("Failed to seed local games cache: %v", err)
		return
	}
	log.Printf("Wrote bundled games list to local cache")
}

func (s *Service) writeCache(games []domain.Game) error {
	data, err := json.Marshal(games)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.cachePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.cachePath, data, 0644)
}

func (s *Service) publishLoaded(games []domain.Game) {
	if s.bus != nil {
		s.bus.Publish(eventbus.GamesLoadedEvent{Games: games})
	}
}

func (s *Service) refreshFailed(err error) error {
	log.Printf("Catalog refresh failed: %v", err)
	if s.bus != nil {
		s.bus.Publish(eventbus.RefreshFailedEvent{Err: err})
	}
	return err
}

// decodeGames parses and sanity-checks a catalog document.
func decodeGames(data []byte) ([]domain.Game, error) {
	var games []domain.Game
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, err
	}
	for i, g := range games {
		if g.Name == "" {
			return nil, fmt.Errorf("game %d has no name", i)
		}
	}
	return games, nil
}
