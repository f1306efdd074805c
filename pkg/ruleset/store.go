package ruleset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNotLoaded is returned by Ready before the first successful load.
var ErrNotLoaded = errors.New("rule set not loaded")

// StoreConfig configures a Store.
type StoreConfig struct {
	// Name of the rule set.
	Name string

	// Target is the group that list lines without a target route to.
	Target string

	// Groups are the selector groups that accompany the rules.
	Groups []string

	// Source provides the rule list.
	Source Source

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// OnReload is called after every reload attempt.
	OnReload func(set *Set, err error)
}

// Store holds the current rule set. Reads are lock-free; reloads are
// serialized and a failed reload keeps the previous set.
type Store struct {
	cfg     StoreConfig
	logger  *slog.Logger
	current atomic.Pointer[Set]
	mu      sync.Mutex
}

// NewStore creates a Store. Call Reload to load the first set.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("rule set source is required")
	}
	if cfg.Target == "" {
		return nil, fmt.Errorf("rule set target is required")
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Target
	}
	cfg.Groups = slices.Clone(cfg.Groups)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		cfg:    cfg,
		logger: logger.With("component", "ruleset", "ruleset", cfg.Name),
	}, nil
}

// NewStaticStore returns a store already holding set.
func NewStaticStore(set *Set) *Store {
	s := &Store{
		cfg:    StoreConfig{Name: set.Name, Source: EmbeddedSource{}, Target: set.Name},
		logger: slog.Default().With("component", "ruleset", "ruleset", set.Name),
	}
	s.current.Store(set)
	return s
}

// Reload loads and parses the source and swaps in the new set.
func (s *Store) Reload(ctx context.Context) (*Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx)
	if s.cfg.OnReload != nil {
		s.cfg.OnReload(set, err)
	}
	if err != nil {
		s.logger.Error("rule set reload failed",
			"source", s.cfg.Source.String(),
			"error", err,
		)
		return nil, err
	}

	s.current.Store(set)
	s.logger.Info("rule set loaded",
		"source", set.Source,
		"rules", len(set.Rules),
		"groups", set.Groups,
	)
	return set, nil
}

func (s *Store) load(ctx context.Context) (*Set, error) {
	data, err := s.cfg.Source.Load(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := ParseList(data, s.cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rule list from %s: %w", s.cfg.Source, err)
	}
	return &Set{
		Name:     s.cfg.Name,
		Groups:   slices.Clone(s.cfg.Groups),
		Rules:    rules,
		Source:   s.cfg.Source.String(),
		LoadedAt: time.Now(),
	}, nil
}

// Current returns the active set, or nil before the first load.
func (s *Store) Current() *Set {
	return s.current.Load()
}

// Ready reports whether a set has been loaded.
func (s *Store) Ready(context.Context) error {
	if s.current.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}

// Source returns the configured source.
func (s *Store) Source() Source {
	return s.cfg.Source
}
