package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	hb "github.com/cordialsys/hopbridge"
	"gopkg.in/yaml.v3"
)

// Journal remembers confirmed phases so a failed transfer can be resumed
// without repeating them.
type Journal interface {
	Load(key string) ([]hb.PhaseResult, error)
	Record(key string, result hb.PhaseResult) error
	Clear(key string) error
}

// JournalKey identifies one submitted transfer, with its parameters, over one route.
func JournalKey(route hb.Route, prepared *hb.PreparedTransfer) string {
	return prepared.ID() + "/" + prepared.Digest() + "/" + route.ID
}

func upsert(results []hb.PhaseResult, result hb.PhaseResult) []hb.PhaseResult {
	for i := range results {
		if results[i].EdgeIndex == result.EdgeIndex {
			results[i] = result
			return results
		}
	}
	results = append(results, result)
	sort.Slice(results, func(i, j int) bool {
		return results[i].EdgeIndex < results[j].EdgeIndex
	})
	return results
}

type MemoryJournal struct {
	lock    sync.Mutex
	entries map[string][]hb.PhaseResult
}

var _ Journal = &MemoryJournal{}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{entries: map[string][]hb.PhaseResult{}}
}

func (j *MemoryJournal) Load(key string) ([]hb.PhaseResult, error) {
	j.lock.Lock()
	defer j.lock.Unlock()
	return append([]hb.PhaseResult{}, j.entries[key]...), nil
}

func (j *MemoryJournal) Record(key string, result hb.PhaseResult) error {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.entries[key] = upsert(j.entries[key], result)
	return nil
}

func (j *MemoryJournal) Clear(key string) error {
	j.lock.Lock()
	defer j.lock.Unlock()
	delete(j.entries, key)
	return nil
}

// FileJournal keeps the journal in a YAML file, rewritten on every change.
type FileJournal struct {
	lock sync.Mutex
	path string
}

var _ Journal = &FileJournal{}

func NewFileJournal(path string) *FileJournal {
	return &FileJournal{path: path}
}

func (j *FileJournal) read() (map[string][]hb.PhaseResult, error) {
	entries := map[string][]hb.PhaseResult{}
	bz, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(bz, &entries); err != nil {
		return nil, fmt.Errorf("invalid journal %s: %v", j.path, err)
	}
	if entries == nil {
		entries = map[string][]hb.PhaseResult{}
	}
	return entries, nil
}

func (j *FileJournal) write(entries map[string][]hb.PhaseResult) error {
	bz, err := yaml.Marshal(entries)
	if err != nil {
		return err
	}
	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".journal-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(bz); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), j.path)
}

func (j *FileJournal) Load(key string) ([]hb.PhaseResult, error) {
	j.lock.Lock()
	defer j.lock.Unlock()
	entries, err := j.read()
	if err != nil {
		return nil, err
	}
	return entries[key], nil
}

func (j *FileJournal) Record(key string, result hb.PhaseResult) error {
	j.lock.Lock()
	defer j.lock.Unlock()
	entries, err := j.read()
	if err != nil {
		return err
	}
	entries[key] = upsert(entries[key], result)
	return j.write(entries)
}

func (j *FileJournal) Clear(key string) error {
	j.lock.Lock()
	defer j.lock.Unlock()
	entries, err := j.read()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return j.write(entries)
}
