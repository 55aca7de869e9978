package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileGroups persists named order groups to a single JSON file shared between
// a trading process and its monitors. Access is serialized by a single-writer
// mutex and every write replaces the file atomically (temp file + rename) so
// a reader never observes a partially written ledger.
type FileGroups struct {
	mu   sync.Mutex
	path string
}

func NewFileGroups(path string) (*FileGroups, error) {
	fg := &FileGroups{path: path}

	fg.mu.Lock()
	defer fg.mu.Unlock()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := fg.write(map[string][]Order{}); err != nil {
			return nil, err
		}
	} else if _, err := fg.read(); err != nil {
		return nil, err
	}
	return fg, nil
}

func (fg *FileGroups) Create(name string, o Order) error {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	groups, err := fg.read()
	if err != nil {
		return err
	}
	groups[name] = append(groups[name], o)
	return fg.write(groups)
}

func (fg *FileGroups) Get(name string) ([]Order, error) {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	groups, err := fg.read()
	if err != nil {
		return nil, err
	}
	return groups[name], nil
}

func (fg *FileGroups) Clear(name string) error {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	groups, err := fg.read()
	if err != nil {
		return err
	}
	groups[name] = []Order{}
	return fg.write(groups)
}

func (fg *FileGroups) Len(name string) (int, error) {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	groups, err := fg.read()
	if err != nil {
		return 0, err
	}
	return len(groups[name]), nil
}

// Remove drops one order from a group by id.
func (fg *FileGroups) Remove(name string, id int64) error {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	groups, err := fg.read()
	if err != nil {
		return err
	}
	kept := groups[name][:0]
	for _, o := range groups[name] {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	groups[name] = kept
	return fg.write(groups)
}

func (fg *FileGroups) read() (map[string][]Order, error) {
	data, err := os.ReadFile(fg.path)
	if err != nil {
		return nil, fmt.Errorf("read order groups: %w", err)
	}
	groups := make(map[string][]Order)
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("parse order groups %s: %w", fg.path, err)
	}
	return groups, nil
}

func (fg *FileGroups) write(groups map[string][]Order) error {
	data, err := json.Marshal(groups)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(fg.path), ".orders-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), fg.path)
}
