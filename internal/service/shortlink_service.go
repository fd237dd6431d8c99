package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/yourusername/beams-api/internal/domain/entity"
	"github.com/yourusername/beams-api/internal/domain/repository"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

const shortPathAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const shortPathLength = 8

// ShortLinkInput describes a link to shorten with its preview metadata.
type ShortLinkInput struct {
	FullURL     string
	Title       string
	Description string
	ImageURL    string
}

// ShortLinkService creates shareable short links and resolves them,
// counting every click.
type ShortLinkService struct {
	repo    repository.ShortLinkRepository
	baseURL string
}

func NewShortLinkService(repo repository.ShortLinkRepository, baseURL string) (*ShortLinkService, error) {
	if repo == nil {
		return nil, fmt.Errorf("ShortLinkRepository is required for ShortLinkService")
	}
	return &ShortLinkService{
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Create stores a short link and returns it. Path collisions are
// retried with a fresh random path.
func (s *ShortLinkService) Create(input ShortLinkInput) (*entity.ShortLink, error) {
	fullURL := strings.TrimSpace(input.FullURL)
	if fullURL == "" {
		return nil, fmt.Errorf("%w: url is required", apperrors.ErrValidation)
	}
	parsed, err := url.Parse(fullURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: url must be absolute http(s)", apperrors.ErrValidation)
	}

	for attempt := 0; attempt < 5; attempt++ {
		shortPath, err := generateShortPath()
		if err != nil {
			return nil, fmt.Errorf("failed to generate short path: %w", err)
		}

		link := &entity.ShortLink{
			ShortPath:   shortPath,
			FullURL:     fullURL,
			Title:       strings.TrimSpace(input.Title),
			Description: strings.TrimSpace(input.Description),
			ImageURL:    strings.TrimSpace(input.ImageURL),
		}
		err = s.repo.Create(link)
		if err == nil {
			log.Printf("[ShortLinkService] created short link %s -> %s", shortPath, fullURL)
			return link, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to generate a unique short path")
}

// Resolve looks up a short link and bumps its click counter.
func (s *ShortLinkService) Resolve(shortPath string) (*entity.ShortLink, error) {
	link, err := s.repo.GetByShortPath(shortPath)
	if err != nil {
		return nil, err
	}

	// Count the click even if the caller never follows the redirect
	if err := s.repo.IncrementClicks(shortPath); err != nil {
		log.Printf("[ShortLinkService] failed to count click for %s: %v", shortPath, err)
	}

	return link, nil
}

// Get returns a short link without counting a click.
func (s *ShortLinkService) Get(shortPath string) (*entity.ShortLink, error) {
	return s.repo.GetByShortPath(shortPath)
}

// List returns stored short links, newest first.
func (s *ShortLinkService) List(page, pageSize int) ([]entity.ShortLink, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}
	return s.repo.List(pageSize, (page-1)*pageSize)
}

// ShortURL renders the public URL for a short path.
func (s *ShortLinkService) ShortURL(shortPath string) string {
	if s.baseURL == "" {
		return "/s/" + shortPath
	}
	return s.baseURL + "/s/" + shortPath
}

func generateShortPath() (string, error) {
	buf := make([]byte, shortPathLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	path := make([]byte, shortPathLength)
	for i, b := range buf {
		path[i] = shortPathAlphabet[int(b)%len(shortPathAlphabet)]
	}
	return string(path), nil
}
