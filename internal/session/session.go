// Package session provides the credential collaborator the engine consumes.
// The real mobile app keeps these in secure storage; here they come from
// configuration, and tests substitute their own domain.Session fakes.
package session

import (
	"context"

	"github.com/taskpocket/taskpocket/internal/domain"
)

// StaticSession serves a fixed token and user identity.
type StaticSession struct {
	token string
	user  domain.User
}

// NewStaticSession builds a session from configured values. An empty token or
// zero user id is reported as absent, which the engine treats as the
// logged-out state.
func NewStaticSession(token string, user domain.User) *StaticSession {
	return &StaticSession{token: token, user: user}
}

func (s *StaticSession) Token(ctx context.Context) (string, bool) {
	if s == nil || s.token == "" {
		return "", false
	}
	return s.token, true
}

func (s *StaticSession) CurrentUser(ctx context.Context) (domain.User, bool) {
	if s == nil || s.user.ID == 0 {
		return domain.User{}, false
	}
	return s.user, true
}
