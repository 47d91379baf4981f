package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpocket/taskpocket/internal/domain"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("FreshStoreIsEmpty", func(t *testing.T) {
		st, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		state, err := st.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, state.Tasks)
		assert.Empty(t, state.Queue)
	})

	t.Run("StateSurvivesReopen", func(t *testing.T) {
		dir := t.TempDir()
		st, err := NewFileStore(dir)
		require.NoError(t, err)

		err = st.Update(ctx, func(s *State) error {
			s.Tasks = append(s.Tasks, domain.Task{ID: 1, Title: "persisted", IsLocal: true})
			s.Queue = append(s.Queue, domain.OfflineAction{ActionID: "a1", Kind: domain.ActionCreate, TaskID: 1})
			return nil
		})
		require.NoError(t, err)

		reopened, err := NewFileStore(dir)
		require.NoError(t, err)
		state, err := reopened.Load(ctx)
		require.NoError(t, err)

		require.Len(t, state.Tasks, 1)
		assert.Equal(t, "persisted", state.Tasks[0].Title)
		assert.True(t, state.Tasks[0].IsLocal)
		require.Len(t, state.Queue, 1)
		assert.Equal(t, "a1", state.Queue[0].ActionID)
	})

	t.Run("TwoNamedRecordsOnDisk", func(t *testing.T) {
		dir := t.TempDir()
		st, err := NewFileStore(dir)
		require.NoError(t, err)
		require.NoError(t, st.Update(ctx, func(s *State) error { return nil }))

		for _, name := range []string{"tasks.json", "queue.json"} {
			_, err := os.Stat(filepath.Join(dir, name))
			assert.NoError(t, err, "expected %s to exist", name)
		}
	})

	t.Run("FailedUpdateWritesNothing", func(t *testing.T) {
		st, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		boom := errors.New("boom")
		err = st.Update(ctx, func(s *State) error {
			s.Tasks = append(s.Tasks, domain.Task{ID: 1})
			return boom
		})
		assert.ErrorIs(t, err, boom)

		state, err := st.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, state.Tasks)
	})

	t.Run("CorruptRecordSurfacesError", func(t *testing.T) {
		dir := t.TempDir()
		st, err := NewFileStore(dir)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.json"), []byte("{not json"), 0644))

		_, err = st.Load(ctx)
		assert.Error(t, err)
	})

	t.Run("LoadReturnsACopy", func(t *testing.T) {
		st, err := NewFileStore(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, st.Update(ctx, func(s *State) error {
			s.Tasks = append(s.Tasks, domain.Task{ID: 1, Title: "original"})
			return nil
		}))

		state, err := st.Load(ctx)
		require.NoError(t, err)
		state.Tasks[0].Title = "mutated"

		again, err := st.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "original", again.Tasks[0].Title)
	})
}

func TestStateHelpers(t *testing.T) {
	state := State{Tasks: []domain.Task{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}}

	t.Run("FindTask", func(t *testing.T) {
		task, ok := state.FindTask(2)
		require.True(t, ok)
		assert.Equal(t, "b", task.Title)

		_, ok = state.FindTask(3)
		assert.False(t, ok)
	})

	t.Run("ReplaceTask", func(t *testing.T) {
		s := state.Clone()
		assert.True(t, s.ReplaceTask(domain.Task{ID: 1, Title: "a2"}))
		task, _ := s.FindTask(1)
		assert.Equal(t, "a2", task.Title)

		assert.False(t, s.ReplaceTask(domain.Task{ID: 9}))
	})

	t.Run("RemoveTask", func(t *testing.T) {
		s := state.Clone()
		assert.True(t, s.RemoveTask(1))
		assert.Len(t, s.Tasks, 1)
		assert.False(t, s.RemoveTask(1))
	})
}
