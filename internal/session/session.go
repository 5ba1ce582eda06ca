// Package session gates record writes on the acting user's role.
//
// A Session starts Anonymous and becomes Authenticated only through
// Authenticate, after a successful credential check. There is no way back to
// Anonymous; a session simply ends when the caller discards it.
package session

import (
	"context"
	"fmt"

	"securecheck/internal/officer"
)

// Role is the role the user selected for an interaction.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleOfficer Role = "officer"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleViewer, RoleOfficer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

type Session struct {
	state   State
	officer *officer.Officer
}

func New() *Session {
	return &Session{state: Anonymous}
}

// Authenticate moves the session to Authenticated for o.
func (s *Session) Authenticate(o *officer.Officer) {
	if o == nil {
		return
	}
	s.officer = o
	s.state = Authenticated
}

func (s *Session) State() State {
	if s == nil {
		return Anonymous
	}
	return s.state
}

func (s *Session) IsAuthenticated() bool {
	return s.State() == Authenticated
}

// Officer returns the authenticated officer, or nil.
func (s *Session) Officer() *officer.Officer {
	if s == nil {
		return nil
	}
	return s.officer
}

// OfficerID returns the authenticated officer's id, or "".
func (s *Session) OfficerID() string {
	if o := s.Officer(); o != nil {
		return o.ID
	}
	return ""
}

// CanWrite reports whether a record write may proceed for the selected role.
// Viewers never write; officers write only once authenticated.
func (s *Session) CanWrite(role Role) bool {
	switch role {
	case RoleOfficer:
		return s.IsAuthenticated()
	default:
		return false
	}
}

// IsAdmin reports whether the session belongs to an authenticated admin.
func (s *Session) IsAdmin() bool {
	o := s.Officer()
	return s.IsAuthenticated() && o != nil && o.Role == officer.RoleAdmin
}

type contextKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or a fresh Anonymous one.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok && s != nil {
		return s
	}
	return New()
}
