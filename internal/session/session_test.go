package session_test

import (
	"context"
	"testing"

	"securecheck/internal/officer"
	"securecheck/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Gate(t *testing.T) {
	admin := &officer.Officer{ID: "A1", Username: "admin1", Role: officer.RoleAdmin}
	entry := &officer.Officer{ID: "A2", Username: "entry1", Role: officer.RoleDataEntry}

	t.Run("NewIsAnonymous", func(t *testing.T) {
		s := session.New()
		assert.Equal(t, session.Anonymous, s.State())
		assert.False(t, s.IsAuthenticated())
		assert.Nil(t, s.Officer())
		assert.Empty(t, s.OfficerID())
	})

	t.Run("AnonymousOfficerCannotWrite", func(t *testing.T) {
		s := session.New()
		assert.False(t, s.CanWrite(session.RoleOfficer))
	})

	t.Run("ViewerNeverWrites", func(t *testing.T) {
		s := session.New()
		assert.False(t, s.CanWrite(session.RoleViewer))

		s.Authenticate(admin)
		assert.False(t, s.CanWrite(session.RoleViewer))
	})

	t.Run("AuthenticatedOfficerWrites", func(t *testing.T) {
		s := session.New()
		s.Authenticate(entry)

		assert.Equal(t, session.Authenticated, s.State())
		assert.True(t, s.CanWrite(session.RoleOfficer))
		assert.Equal(t, "A2", s.OfficerID())
		assert.False(t, s.IsAdmin())
	})

	t.Run("AuthenticateNilKeepsAnonymous", func(t *testing.T) {
		s := session.New()
		s.Authenticate(nil)
		assert.Equal(t, session.Anonymous, s.State())
	})

	t.Run("UnknownRoleCannotWrite", func(t *testing.T) {
		s := session.New()
		s.Authenticate(admin)
		assert.False(t, s.CanWrite(session.Role("auditor")))
		assert.True(t, s.IsAdmin())
	})

	t.Run("NilSessionIsAnonymous", func(t *testing.T) {
		var s *session.Session
		assert.Equal(t, session.Anonymous, s.State())
		assert.False(t, s.CanWrite(session.RoleOfficer))
	})
}

func TestParseRole(t *testing.T) {
	r, err := session.ParseRole("viewer")
	require.NoError(t, err)
	assert.Equal(t, session.RoleViewer, r)

	r, err = session.ParseRole("officer")
	require.NoError(t, err)
	assert.Equal(t, session.RoleOfficer, r)

	_, err = session.ParseRole("admin")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	s := session.FromContext(context.Background())
	require.NotNil(t, s)
	assert.False(t, s.IsAuthenticated())

	authed := session.New()
	authed.Authenticate(&officer.Officer{ID: "A1", Role: officer.RoleAdmin})
	ctx := session.NewContext(context.Background(), authed)
	assert.Same(t, authed, session.FromContext(ctx))
}
