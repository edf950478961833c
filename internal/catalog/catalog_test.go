package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"doppel/internal/domain"
)

func TestBundledGamesAreValid(t *testing.T) {
	games, err := decodeGames(bundledGames)
	require.NoError(t, err)
	require.NotEmpty(t, games)
	for _, g := range games {
		require.NotEmpty(t, g.Name)
		require.NotEmpty(t, g.Exe)
	}
}

func TestLoadSeedsCacheFromBundledList(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "doppel", "games.json")
	s := NewService(nil, Options{CachePath: cachePath})

	games := s.Load()
	require.NotEmpty(t, games)

	// The cache now exists and matches what Load returned.
	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	cached, err := decodeGames(data)
	require.NoError(t, err)
	require.Equal(t, games, cached)
}

func TestLoadPrefersExistingCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "games.json")
	custom := []domain.Game{{Name: "Custom Game", Exe: "custom.exe"}}
	data, err := json.Marshal(custom)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cachePath, data, 0644))

	s := NewService(nil, Options{CachePath: cachePath})
	require.Equal(t, custom, s.Load())
}

func TestLoadFallsBackOnCorruptCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "games.json")
	require.NoError(t, os.WriteFile(cachePath, []byte("not json"), 0644))

	s := NewService(nil, Options{CachePath: cachePath})
	games := s.Load()
	require.NotEmpty(t, games, "corrupt cache should fall back to the bundled list")
}

func TestRefreshFetchesAndRewritesCache(t *testing.T) {
	remote := []domain.Game{
		{Name: "Remote One", Exe: "one.exe"},
		{Name: "Remote Two", Exe: "two.exe"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(remote))
	}))
	defer srv.Close()

	cachePath := filepath.Join(t.TempDir(), "games.json")
	s := NewService(nil, Options{URL: srv.URL, CachePath: cachePath})

	games, err := s.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, remote, games)

	// Cache was rewritten with the fetched list.
	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	cached, err := decodeGames(data)
	require.NoError(t, err)
	require.Equal(t, remote, cached)
}

func TestRefreshBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewService(nil, Options{URL: srv.URL, CachePath: filepath.Join(t.TempDir(), "games.json")})
	_, err := s.Refresh(context.Background())
	require.Error(t, err)
}

func TestRefreshBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{broken"))
	}))
	defer srv.Close()

	s := NewService(nil, Options{URL: srv.URL, CachePath: filepath.Join(t.TempDir(), "games.json")})
	_, err := s.Refresh(context.Background())
	require.Error(t, err)
}

func TestRefreshWithoutURL(t *testing.T) {
	s := NewService(nil, Options{CachePath: filepath.Join(t.TempDir(), "games.json")})
	_, err := s.Refresh(context.Background())
	require.Error(t, err)
}
