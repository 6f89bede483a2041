// Package preferences persists the small UI settings kept next to the entity
// collections: the landing page theme and the sidebar state.
package preferences

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/MarcoPoloResearchLab/studyhub/internal/storage"
	"go.uber.org/zap"
)

// Theme is the landing page color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	// DefaultTheme applies when no valid theme is stored.
	DefaultTheme = ThemeLight
)

const (
	opSetTheme   = "preferences.theme.set"
	opSetSidebar = "preferences.sidebar.set"
)

// ErrUnknownTheme reports a theme other than light or dark.
var ErrUnknownTheme = errors.New("preferences: unknown theme")

// ParseTheme maps raw to a Theme. Quoted JSON strings are accepted.
func ParseTheme(raw string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.Trim(strings.TrimSpace(raw), `"`))) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	default:
		return "", false
	}
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Snapshot is the full set of preferences.
type Snapshot struct {
	Theme            Theme `json:"theme"`
	SidebarCollapsed bool  `json:"sidebarCollapsed"`
}

// Config describes the dependencies of a Store.
type Config struct {
	Store  storage.KeyValueStore
	Logger *zap.Logger
}

// Store reads and writes preferences. Unreadable stored values fall back to
// their defaults.
type Store struct {
	mu     sync.Mutex
	store  storage.KeyValueStore
	logger *zap.Logger
}

// NewStore validates cfg and returns a Store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Store == nil {
		return nil, storage.ErrMissingStore
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{store: cfg.Store, logger: logger}, nil
}

// Snapshot returns every preference.
func (s *Store) Snapshot(ctx context.Context) Snapshot {
	return Snapshot{Theme: s.Theme(ctx), SidebarCollapsed: s.SidebarCollapsed(ctx)}
}

// Theme returns the stored theme or DefaultTheme.
func (s *Store) Theme(ctx context.Context) Theme {
	raw, found := s.read(ctx, storage.KeyLandingTheme)
	if !found {
		return DefaultTheme
	}
	theme, ok := ParseTheme(raw)
	if !ok {
		s.logger.Warn("ignoring stored theme", zap.String("key", storage.KeyLandingTheme), zap.String("value", raw))
		return DefaultTheme
	}
	return theme
}

// SetTheme stores theme.
func (s *Store) SetTheme(ctx context.Context, theme Theme) error {
	parsed, ok := ParseTheme(string(theme))
	if !ok {
		return storage.NewServiceError(opSetTheme, "unknown_theme", ErrUnknownTheme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, opSetTheme, storage.KeyLandingTheme, string(parsed))
}

// ToggleTheme switches between light and dark and returns the new theme.
func (s *Store) ToggleTheme(ctx context.Context) (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.Theme(ctx).Opposite()
	if err := s.write(ctx, opSetTheme, storage.KeyLandingTheme, string(next)); err != nil {
		return "", err
	}
	return next, nil
}

// SidebarCollapsed returns the stored sidebar state; false when unset.
func (s *Store) SidebarCollapsed(ctx context.Context) bool {
	raw, found := s.read(ctx, storage.KeySidebarCollapsed)
	if !found {
		return false
	}
	switch strings.TrimSpace(raw) {
	case "true":
		return true
	case "false":
		return false
	default:
		s.logger.Warn("ignoring stored sidebar state", zap.String("key", storage.KeySidebarCollapsed), zap.String("value", raw))
		return false
	}
}

// SetSidebarCollapsed stores the sidebar state.
func (s *Store) SetSidebarCollapsed(ctx context.Context, collapsed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, opSetSidebar, storage.KeySidebarCollapsed, formatBool(collapsed))
}

// ToggleSidebar flips the sidebar state and returns the new value.
func (s *Store) ToggleSidebar(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := !s.SidebarCollapsed(ctx)
	if err := s.write(ctx, opSetSidebar, storage.KeySidebarCollapsed, formatBool(next)); err != nil {
		return false, err
	}
	return next, nil
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Error("preference read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return raw, found
}

func (s *Store) write(ctx context.Context, operation, key, value string) error {
	if err := s.store.Set(ctx, key, value); err != nil {
		s.logger.Error("preferences error",
			zap.String("operation", operation),
			zap.String("reason", "persist_failed"),
			zap.Error(err))
		return storage.NewServiceError(operation, "persist_failed", err)
	}
	return nil
}

func formatBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}
