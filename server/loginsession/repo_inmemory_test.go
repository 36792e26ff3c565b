package loginsession

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-attendance-portal/internal/errors"
	"github.com/jrsteele09/go-attendance-portal/sessions"
)

func TestUpsertGetDelete(t *testing.T) {
	repo := NewInMemoryLoginSessionRepo()
	now := time.Now()
	s := sessions.New("token", "refresh", "1", "jo", "employee", now, time.Hour)

	require.NoError(t, repo.Upsert("sid", s))

	got, err := repo.Get("sid")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	s.Username = "joanne"
	require.NoError(t, repo.Upsert("sid", s))
	got, err = repo.Get("sid")
	require.NoError(t, err)
	assert.Equal(t, "joanne", got.Username)

	require.NoError(t, repo.Delete("sid"))
	_, err = repo.Get("sid")
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))

	require.NoError(t, repo.Delete("sid"))
}

func TestRequiresID(t *testing.T) {
	repo := NewInMemoryLoginSessionRepo()
	assert.Error(t, repo.Upsert("", sessions.Session{}))
	assert.Error(t, repo.Delete(""))
	_, err := repo.Get("")
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))
}

func TestExpiry(t *testing.T) {
	repo := NewInMemoryLoginSessionRepo()
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return start.Add(2 * time.Hour) }

	require.NoError(t, repo.Upsert("old", sessions.New("t", "", "1", "jo", "", start, time.Hour)))
	require.NoError(t, repo.Upsert("new", sessions.New("t", "", "2", "al", "", start, 12*time.Hour)))

	_, err := repo.Get("old")
	assert.True(t, errors.Is(err, apperrors.ErrSessionExpired))

	require.NoError(t, repo.Upsert("old", sessions.New("t", "", "1", "jo", "", start, time.Hour)))
	assert.Equal(t, 1, repo.PurgeExpired())

	_, err = repo.Get("new")
	assert.NoError(t, err)
}

func TestUpdateDoesNotRecreate(t *testing.T) {
	repo := NewInMemoryLoginSessionRepo()
	s := sessions.New("token", "refresh", "1", "jo", "employee", time.Now(), time.Hour)

	err := repo.Update("sid", s)
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))
	_, err = repo.Get("sid")
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))

	require.NoError(t, repo.Upsert("sid", s))
	s.IsPunchedIn = true
	require.NoError(t, repo.Update("sid", s))
	got, err := repo.Get("sid")
	require.NoError(t, err)
	assert.True(t, got.IsPunchedIn)

	require.NoError(t, repo.Delete("sid"))
	assert.True(t, errors.Is(repo.Update("sid", s), apperrors.ErrSessionNotFound))
	_, err = repo.Get("sid")
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))

	assert.True(t, errors.Is(repo.Update("", s), apperrors.ErrSessionNotFound))
}
