package domain

import "context"

// Session supplies the bearer token and current-user identity the engine
// needs to call the remote service. Implementations report absence through
// the boolean rather than an error so a missing session can be treated as an
// offline condition.
type Session interface {
	Token(ctx context.Context) (string, bool)
	CurrentUser(ctx context.Context) (User, bool)
}

// TaskGateway is the stateless request/response wrapper around the remote
// task API. Every failure mode (transport error, non-success status,
// malformed body) is reported as an error wrapping ErrRemoteUnavailable.
type TaskGateway interface {
	FetchTasks(ctx context.Context, token string) ([]Task, error)
	CreateTask(ctx context.Context, token string, draft TaskDraft) (Task, error)
	UpdateTask(ctx context.Context, token string, id int, patch TaskPatch) (Task, error)
	DeleteTask(ctx context.Context, token string, id int) error
}
