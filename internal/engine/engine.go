// Package engine implements the offline reconciliation core: it decides per
// operation whether a mutation goes straight to the remote service or into
// the durable offline queue, and later drains that queue and refreshes the
// local cache from server-authoritative data.
//
// Known limitation: nothing reconciles a local edit against a concurrent
// server-side edit of the same task. The post-drain fetch overwrites the
// local snapshot wholesale, so the last fetch wins.
package engine

import (
	"context"
	"fmt"

	"github.com/taskpocket/taskpocket/internal/domain"
	"github.com/taskpocket/taskpocket/internal/logger"
	"github.com/taskpocket/taskpocket/internal/store"
)

// DrainResult reports the outcome of one queue drain. Failed actions have
// already been removed from the queue by the time the caller sees this; the
// ids are returned so the loss is observable rather than silent.
type DrainResult struct {
	Applied []string `json:"applied"`
	Failed  []string `json:"failed"`
}

// Engine is the reconciliation core consumed by the UI and notification
// collaborators.
type Engine interface {
	FetchTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error)
	UpdateTask(ctx context.Context, id int, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, id int) error
	SyncOfflineChanges(ctx context.Context) (DrainResult, error)
	GetDueTasks(ctx context.Context) ([]domain.Task, error)
	PendingActions(ctx context.Context) ([]domain.OfflineAction, error)
}

type reconciler struct {
	session domain.Session
	gateway domain.TaskGateway
	store   store.Store
	opts    *options
}

// New wires the engine with its collaborators.
func New(session domain.Session, gw domain.TaskGateway, st store.Store, opts ...Option) Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &reconciler{session: session, gateway: gw, store: st, opts: o}
}

// FetchTasks reads the authoritative task collection from the remote service
// and replaces the local snapshot with it. Any remote failure, including a
// missing session token, falls back to the cached collection; reads never
// hard-fail while a cache exists.
func (r *reconciler) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	if token, ok := r.session.Token(ctx); ok {
		remote, err := r.gateway.FetchTasks(ctx, token)
		if err == nil {
			uerr := r.store.Update(ctx, func(s *store.State) error {
				s.Tasks = remote
				return nil
			})
			if uerr != nil {
				return nil, uerr
			}
			return remote, nil
		}
		logger.WarnLog(ctx, "task fetch failed, serving cached tasks: %v", err)
	} else {
		logger.DebugLog(ctx, "no session token, serving cached tasks")
	}

	state, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return state.Tasks, nil
}

// CreateTask synthesizes a provisional task with a locally generated id and
// attempts the remote create. On remote failure the provisional task is
// persisted together with a create action, so it is immediately visible and
// will be replayed on the next sync.
func (r *reconciler) CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	user, ok := r.session.CurrentUser(ctx)
	if !ok {
		return domain.Task{}, domain.ErrAuthenticationRequired
	}

	provisional := domain.Task{
		ID:        r.opts.localID(),
		Title:     draft.Title,
		Owner:     user,
		IsLocal:   true,
		NeedsSync: true,
	}
	if draft.DueDate != nil {
		due := *draft.DueDate
		provisional.DueDate = &due
	}

	created, err := r.remoteCreate(ctx, draft)
	if err == nil {
		return r.resolveCreated(ctx, draft, created, user), nil
	}

	logger.WarnLog(ctx, "remote create failed, queueing offline action: %v", err)
	action := domain.OfflineAction{
		ActionID:   r.opts.actionID(),
		Kind:       domain.ActionCreate,
		TaskID:     provisional.ID,
		Create:     &draft,
		EnqueuedAt: r.opts.clock(),
	}
	uerr := r.store.Update(ctx, func(s *store.State) error {
		s.Tasks = append(s.Tasks, provisional)
		s.Queue = append(s.Queue, action)
		return nil
	})
	if uerr != nil {
		return domain.Task{}, uerr
	}
	return provisional, nil
}

// resolveCreated locates the just-created task in a full refetch by matching
// title and due date. When the refreshed set does not contain it (stale
// fallback cache, server-side normalization) the response payload itself is
// returned with a timestamp id.
func (r *reconciler) resolveCreated(ctx context.Context, draft domain.TaskDraft, created domain.Task, user domain.User) domain.Task {
	refreshed, err := r.FetchTasks(ctx)
	if err == nil {
		for _, t := range refreshed {
			if t.Title == draft.Title && sameDue(t.DueDate, draft.DueDate) {
				return t
			}
		}
	}

	created.ID = int(r.opts.clock().UnixMilli())
	created.IsLocal = false
	created.NeedsSync = false
	if created.Owner == (domain.User{}) {
		created.Owner = user
	}
	return created
}

// UpdateTask merges the patch into the locally stored task and attempts the
// remote update. On success the server's version replaces the stored one; on
// failure the merged version is kept and an update action queued.
func (r *reconciler) UpdateTask(ctx context.Context, id int, patch domain.TaskPatch) (domain.Task, error) {
	state, err := r.store.Load(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	current, ok := state.FindTask(id)
	if !ok {
		return domain.Task{}, fmt.Errorf("%w: id %d", domain.ErrTaskNotFound, id)
	}

	merged := patch.Apply(current)
	merged.NeedsSync = true

	authoritative, err := r.remoteUpdate(ctx, id, patch)
	if err == nil {
		authoritative.IsLocal = false
		authoritative.NeedsSync = false
		uerr := r.store.Update(ctx, func(s *store.State) error {
			if !s.ReplaceTask(authoritative) {
				s.Tasks = append(s.Tasks, authoritative)
			}
			return nil
		})
		if uerr != nil {
			return domain.Task{}, uerr
		}
		return authoritative, nil
	}

	logger.WarnLog(ctx, "remote update failed, queueing offline action: %v", err)
	action := domain.OfflineAction{
		ActionID:   r.opts.actionID(),
		Kind:       domain.ActionUpdate,
		TaskID:     id,
		Update:     &patch,
		EnqueuedAt: r.opts.clock(),
	}
	uerr := r.store.Update(ctx, func(s *store.State) error {
		if !s.ReplaceTask(merged) {
			s.Tasks = append(s.Tasks, merged)
		}
		s.Queue = append(s.Queue, action)
		return nil
	})
	if uerr != nil {
		return domain.Task{}, uerr
	}
	return merged, nil
}

// DeleteTask removes the task locally whether or not the remote delete
// succeeds; on failure a delete action is queued so the server catches up on
// the next sync.
func (r *reconciler) DeleteTask(ctx context.Context, id int) error {
	state, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	if _, ok := state.FindTask(id); !ok {
		return fmt.Errorf("%w: id %d", domain.ErrTaskNotFound, id)
	}

	remoteErr := r.remoteDelete(ctx, id)
	if remoteErr != nil {
		logger.WarnLog(ctx, "remote delete failed, queueing offline action: %v", remoteErr)
	}

	return r.store.Update(ctx, func(s *store.State) error {
		s.RemoveTask(id)
		if remoteErr != nil {
			s.Queue = append(s.Queue, domain.OfflineAction{
				ActionID:   r.opts.actionID(),
				Kind:       domain.ActionDelete,
				TaskID:     id,
				EnqueuedAt: r.opts.clock(),
			})
		}
		return nil
	})
}

// SyncOfflineChanges drains the offline queue against the remote service in
// strict enqueue order. Per-action failures are logged and recorded in the
// result but never abort the pass; under DrainBestEffortClearAll the queue is
// then cleared unconditionally and the local snapshot refreshed from the
// server. A no-op when there is no session token or the queue is empty.
func (r *reconciler) SyncOfflineChanges(ctx context.Context) (DrainResult, error) {
	var result DrainResult

	token, ok := r.session.Token(ctx)
	if !ok {
		return result, nil
	}
	state, err := r.store.Load(ctx)
	if err != nil {
		return result, err
	}
	if len(state.Queue) == 0 {
		return result, nil
	}

	logger.InfoLog(ctx, "draining %d offline actions", len(state.Queue))
	for _, action := range state.Queue {
		if err := r.replay(ctx, token, action); err != nil {
			logger.WarnLog(ctx, "offline action %s (%s) failed: %v", action.ActionID, action.Kind, err)
			result.Failed = append(result.Failed, action.ActionID)
			continue
		}
		result.Applied = append(result.Applied, action.ActionID)
	}

	// DrainBestEffortClearAll: the whole queue goes, failed actions included.
	err = r.store.Update(ctx, func(s *store.State) error {
		s.Queue = nil
		return nil
	})
	if err != nil {
		return result, err
	}

	if _, err := r.FetchTasks(ctx); err != nil {
		return result, err
	}
	return result, nil
}

func (r *reconciler) replay(ctx context.Context, token string, action domain.OfflineAction) error {
	switch action.Kind {
	case domain.ActionCreate:
		if action.Create == nil {
			return fmt.Errorf("create action %s has no payload", action.ActionID)
		}
		_, err := r.gateway.CreateTask(ctx, token, *action.Create)
		return err
	case domain.ActionUpdate:
		if action.Update == nil {
			return fmt.Errorf("update action %s has no payload", action.ActionID)
		}
		_, err := r.gateway.UpdateTask(ctx, token, action.TaskID, *action.Update)
		return err
	case domain.ActionDelete:
		return r.gateway.DeleteTask(ctx, token, action.TaskID)
	default:
		return fmt.Errorf("unknown action kind %q", action.Kind)
	}
}

// GetDueTasks returns the incomplete tasks due exactly today. Past-due and
// future tasks are excluded; the notification collaborator only fires for
// same-day matches.
func (r *reconciler) GetDueTasks(ctx context.Context) ([]domain.Task, error) {
	state, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := r.opts.clock()
	due := make([]domain.Task, 0)
	for _, t := range state.Tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		if t.DueDate.SameDay(now) {
			due = append(due, t)
		}
	}
	return due, nil
}

// PendingActions returns a snapshot of the offline queue for diagnostics.
func (r *reconciler) PendingActions(ctx context.Context) ([]domain.OfflineAction, error) {
	state, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return state.Clone().Queue, nil
}

// remoteCreate, remoteUpdate and remoteDelete treat a missing token the same
// as an unreachable remote so the caller lands on the offline path.

func (r *reconciler) remoteCreate(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	token, ok := r.session.Token(ctx)
	if !ok {
		return domain.Task{}, missingTokenErr()
	}
	return r.gateway.CreateTask(ctx, token, draft)
}

func (r *reconciler) remoteUpdate(ctx context.Context, id int, patch domain.TaskPatch) (domain.Task, error) {
	token, ok := r.session.Token(ctx)
	if !ok {
		return domain.Task{}, missingTokenErr()
	}
	return r.gateway.UpdateTask(ctx, token, id, patch)
}

func (r *reconciler) remoteDelete(ctx context.Context, id int) error {
	token, ok := r.session.Token(ctx)
	if !ok {
		return missingTokenErr()
	}
	return r.gateway.DeleteTask(ctx, token, id)
}

func missingTokenErr() error {
	return fmt.Errorf("%w: no session token", domain.ErrRemoteUnavailable)
}

func sameDue(a, b *domain.DueDate) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.SameDay(b.Time)
}
