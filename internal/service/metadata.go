package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	domainerrors "github.com/mybooks/mybooks-server/internal/errors"
	"github.com/mybooks/mybooks-server/internal/metadata/googlebooks"
)

// VolumeSource looks up Google Books volumes.
type VolumeSource interface {
	Search(ctx context.Context, params googlebooks.SearchParams) ([]googlebooks.Volume, error)
	Get(ctx context.Context, volumeID string) (*googlebooks.Volume, error)
}

// MetadataService is the book finder. Provider failures never reach the
// caller as errors: a search that fails yields no volumes.
type MetadataService struct {
	source VolumeSource
	logger *slog.Logger
}

// NewMetadataService creates a new metadata service.
func NewMetadataService(source VolumeSource, logger *slog.Logger) *MetadataService {
	return &MetadataService{source: source, logger: logger}
}

// Search queries the provider. An empty query returns nothing without a
// request.
func (s *MetadataService) Search(ctx context.Context, params googlebooks.SearchParams) []googlebooks.Volume {
	if params.IsEmpty() {
		return nil
	}

	s.logger.Debug("searching Google Books", "query", params.Query())

	volumes, err := s.source.Search(ctx, params)
	if err != nil {
		s.logger.Warn("Google Books search failed", "query", params.Query(), "error", err)
		return nil
	}
	return volumes
}

// Get fetches one volume. Any provider failure is reported as not found.
func (s *MetadataService) Get(ctx context.Context, volumeID string) (*googlebooks.Volume, error) {
	v, err := s.source.Get(ctx, volumeID)
	if err != nil {
		if !errors.Is(err, googlebooks.ErrNotFound) {
			s.logger.Warn("Google Books lookup failed", "volume_id", volumeID, "error", err)
		}
		return nil, domainerrors.NotFoundf("volume %s not found", volumeID)
	}
	return v, nil
}

// Prefill maps a volume onto the book form.
func (s *MetadataService) Prefill(ctx context.Context, volumeID string) (BookInput, error) {
	v, err := s.Get(ctx, volumeID)
	if err != nil {
		return BookInput{}, err
	}
	return BookInputFromVolume(v), nil
}

// BookInputFromVolume maps a volume onto the book form. Fields the form
// would reject, such as an unparseable year, are left empty.
func BookInputFromVolume(v *googlebooks.Volume) BookInput {
	in := BookInput{
		Title:       v.Title,
		Authors:     v.AuthorList(),
		Publisher:   v.Publisher,
		ISBN:        v.ISBN,
		Description: v.Description,
		Thumbnail:   v.Thumbnail,
		Rank:        v.Rank,
	}
	if year, err := strconv.Atoi(v.Year); err == nil {
		in.Year = &year
	}
	if len(in.ISBN) > 13 {
		in.ISBN = ""
	}
	return in
}
