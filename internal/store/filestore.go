// Package store provides the durable, process-local persistence for the task
// snapshot and the offline action queue. The two records live as JSON files
// under a data directory and every mutation goes through a single-writer
// closure, so interleaved read-modify-write pairs cannot lose updates.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/taskpocket/taskpocket/internal/domain"
)

const (
	tasksFile = "tasks.json"
	queueFile = "queue.json"
)

// State is the full persisted state: the last-known task collection and the
// queue of pending offline actions.
type State struct {
	Tasks []domain.Task          `json:"tasks"`
	Queue []domain.OfflineAction `json:"queue"`
}

// Clone returns a deep-enough copy for callers to mutate freely.
func (s State) Clone() State {
	out := State{}
	if s.Tasks != nil {
		out.Tasks = make([]domain.Task, len(s.Tasks))
		copy(out.Tasks, s.Tasks)
	}
	if s.Queue != nil {
		out.Queue = make([]domain.OfflineAction, len(s.Queue))
		copy(out.Queue, s.Queue)
	}
	return out
}

// FindTask returns the task with the given id, if present.
func (s State) FindTask(id int) (domain.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

// ReplaceTask swaps the stored task with the same id. Returns false if absent.
func (s *State) ReplaceTask(task domain.Task) bool {
	for i, t := range s.Tasks {
		if t.ID == task.ID {
			s.Tasks[i] = task
			return true
		}
	}
	return false
}

// RemoveTask deletes the task with the given id. Returns false if absent.
func (s *State) RemoveTask(id int) bool {
	for i, t := range s.Tasks {
		if t.ID == id {
			s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Store is the persistence contract the reconciliation engine depends on.
// There is deliberately no separate write method: all mutations happen inside
// Update so the read-modify-write cycle is atomic.
type Store interface {
	Load(ctx context.Context) (State, error)
	Update(ctx context.Context, fn func(*State) error) error
}

// FileStore implements Store on top of two JSON files.
type FileStore struct {
	mu        sync.Mutex
	tasksPath string
	queuePath string
}

// NewFileStore opens (creating if needed) a store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &FileStore{
		tasksPath: filepath.Join(dir, tasksFile),
		queuePath: filepath.Join(dir, queueFile),
	}, nil
}

// Load returns a copy of the persisted state. Missing files read as empty
// collections so a fresh install starts with a clean cache.
func (s *FileStore) Load(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Update runs fn against the current state and persists the result. If fn
// returns an error nothing is written.
func (s *FileStore) Update(ctx context.Context, fn func(*State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readLocked()
	if err != nil {
		return err
	}
	if err := fn(&state); err != nil {
		return err
	}
	return s.writeLocked(state)
}

func (s *FileStore) readLocked() (State, error) {
	var state State
	if err := readJSONFile(s.tasksPath, &state.Tasks); err != nil {
		return State{}, err
	}
	if err := readJSONFile(s.queuePath, &state.Queue); err != nil {
		return State{}, err
	}
	return state, nil
}

func (s *FileStore) writeLocked(state State) error {
	if err := writeJSONFile(s.tasksPath, state.Tasks); err != nil {
		return err
	}
	return writeJSONFile(s.queuePath, state.Queue)
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// writeJSONFile writes via a temp file + rename so a crash mid-write cannot
// leave a truncated record behind.
func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
