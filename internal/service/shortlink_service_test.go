package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

func TestShortLinkCreate_RejectsBadURLs(t *testing.T) {
	repo := new(MockShortLinkRepository)
	svc := &ShortLinkService{repo: repo}

	for _, raw := range []string{"", "   ", "not a url", "ftp://example.com/file", "//no-scheme.example.com"} {
		_, err := svc.Create(ShortLinkInput{FullURL: raw})
		assert.ErrorIs(t, err, apperrors.ErrValidation, "url %q", raw)
	}
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestShortLinkCreate_RetriesOnPathCollision(t *testing.T) {
	repo := new(MockShortLinkRepository)
	repo.On("Create", mock.Anything).Return(apperrors.ErrConflict).Once()
	repo.On("Create", mock.Anything).Return(nil).Once()

	svc := &ShortLinkService{repo: repo}

	link, err := svc.Create(ShortLinkInput{
		FullURL: "https://beams.example.com/beams-today/42",
		Title:   "  Oceans  ",
	})
	require.NoError(t, err)

	assert.Len(t, link.ShortPath, shortPathLength)
	assert.Equal(t, "Oceans", link.Title)
	repo.AssertExpectations(t)
}

func TestShortLinkCreate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := new(MockShortLinkRepository)
	repo.On("Create", mock.Anything).Return(apperrors.ErrConflict)

	svc := &ShortLinkService{repo: repo}

	_, err := svc.Create(ShortLinkInput{FullURL: "https://beams.example.com/x"})
	require.Error(t, err)
	repo.AssertNumberOfCalls(t, "Create", 5)
}

func TestShortLinkResolve_CountsClick(t *testing.T) {
	stored := &entity.ShortLink{ShortPath: "aB3xK9qZ", FullURL: "https://beams.example.com/theatre/7"}

	repo := new(MockShortLinkRepository)
	repo.On("GetByShortPath", "aB3xK9qZ").Return(stored, nil)
	repo.On("IncrementClicks", "aB3xK9qZ").Return(nil)

	svc := &ShortLinkService{repo: repo}

	link, err := svc.Resolve("aB3xK9qZ")
	require.NoError(t, err)
	assert.Equal(t, stored.FullURL, link.FullURL)
	repo.AssertExpectations(t)
}

func TestShortLinkResolve_UnknownPath(t *testing.T) {
	repo := new(MockShortLinkRepository)
	repo.On("GetByShortPath", "missing1").Return(nil, apperrors.ErrNotFound)

	svc := &ShortLinkService{repo: repo}

	_, err := svc.Resolve("missing1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "IncrementClicks", mock.Anything)
}

func TestShortURL(t *testing.T) {
	withBase := &ShortLinkService{baseURL: "https://beams.example.com"}
	assert.Equal(t, "https://beams.example.com/s/aB3xK9qZ", withBase.ShortURL("aB3xK9qZ"))

	withoutBase := &ShortLinkService{}
	assert.Equal(t, "/s/aB3xK9qZ", withoutBase.ShortURL("aB3xK9qZ"))
}

func TestGenerateShortPath(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		path, err := generateShortPath()
		require.NoError(t, err)
		assert.Len(t, path, shortPathLength)
		for _, r := range path {
			assert.Contains(t, shortPathAlphabet, string(r))
		}
		seen[path] = true
	}
	// 20 random paths should essentially never collide
	assert.Greater(t, len(seen), 15)
}
