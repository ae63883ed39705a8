package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	hb "github.com/cordialsys/hopbridge"
	"github.com/sirupsen/logrus"
)

// Loader fetches a complete snapshot for an environment.
type Loader func(ctx context.Context, env hb.Env) (*Snapshot, error)

// Store holds the current snapshot per environment. Snapshots are swapped
// wholesale so readers always see one complete catalog.
type Store struct {
	loader    Loader
	snapshots map[hb.Env]*atomic.Pointer[Snapshot]
	// serializes loads, readers never take it
	loadLock sync.Mutex
}

var _ Catalog = &Store{}

func NewStore(loader Loader) *Store {
	snapshots := map[hb.Env]*atomic.Pointer[Snapshot]{}
	for _, env := range hb.EnvList {
		snapshots[env] = &atomic.Pointer[Snapshot]{}
	}
	return &Store{loader: loader, snapshots: snapshots}
}

// FileLoader loads registry json files from a path per environment.
func FileLoader(hubParaID uint32, paths map[hb.Env]string) Loader {
	return func(ctx context.Context, env hb.Env) (*Snapshot, error) {
		path, ok := paths[env]
		if !ok || path == "" {
			return nil, fmt.Errorf("no registry configured for %s", env)
		}
		return LoadRegistryFile(env, hubParaID, path)
	}
}

func (s *Store) slot(env hb.Env) (*atomic.Pointer[Snapshot], error) {
	slot, ok := s.snapshots[env]
	if !ok {
		return nil, fmt.Errorf("invalid environment '%s'", env)
	}
	return slot, nil
}

// Select returns the current snapshot for the environment, loading it on first use.
func (s *Store) Select(ctx context.Context, env hb.Env) (*Snapshot, error) {
	slot, err := s.slot(env)
	if err != nil {
		return nil, err
	}
	if snap := slot.Load(); snap != nil {
		return snap, nil
	}
	s.loadLock.Lock()
	defer s.loadLock.Unlock()
	if snap := slot.Load(); snap != nil {
		return snap, nil
	}
	return s.refresh(ctx, env, slot)
}

// Refresh reloads the snapshot for the environment and replaces the current one.
func (s *Store) Refresh(ctx context.Context, env hb.Env) (*Snapshot, error) {
	slot, err := s.slot(env)
	if err != nil {
		return nil, err
	}
	s.loadLock.Lock()
	defer s.loadLock.Unlock()
	return s.refresh(ctx, env, slot)
}

func (s *Store) refresh(ctx context.Context, env hb.Env, slot *atomic.Pointer[Snapshot]) (*Snapshot, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("no catalog loader configured")
	}
	snap, err := s.loader(ctx, env)
	if err != nil {
		return nil, err
	}
	if snap.Env() != env {
		return nil, fmt.Errorf("loader returned catalog for %s, expected %s", snap.Env(), env)
	}
	slot.Store(snap)
	logrus.WithFields(logrus.Fields{
		"env":        env,
		"chains":     snap.evmChains.Len(),
		"parachains": snap.parachains.Len(),
		"tokens":     snap.tokens.Len(),
	}).Debug("loaded catalog")
	return snap, nil
}

// Replace installs a snapshot directly.
func (s *Store) Replace(snap *Snapshot) error {
	slot, err := s.slot(snap.Env())
	if err != nil {
		return err
	}
	slot.Store(snap)
	return nil
}

func (s *Store) ListChains(env hb.Env) ([]hb.Node, error) {
	snap, err := s.Select(context.Background(), env)
	if err != nil {
		return nil, err
	}
	return snap.ListChains(env)
}

func (s *Store) ListTokens(env hb.Env) ([]hb.TokenInfo, error) {
	snap, err := s.Select(context.Background(), env)
	if err != nil {
		return nil, err
	}
	return snap.ListTokens(env)
}

func (s *Store) ListParachains(env hb.Env) ([]hb.Node, error) {
	snap, err := s.Select(context.Background(), env)
	if err != nil {
		return nil, err
	}
	return snap.ListParachains(env)
}
