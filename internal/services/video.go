package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"churchadmin/internal/domain"
)

type videoService struct {
	videoRepo      domain.VideoRepository
	metadata       domain.VideoMetadataFetcher
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewVideoService creates a VideoService. metadata may be nil, in which case
// videos are stored exactly as submitted.
func NewVideoService(videoRepo domain.VideoRepository, metadata domain.VideoMetadataFetcher, logger *slog.Logger, timeout time.Duration) domain.VideoService {
	return &videoService{
		videoRepo:      videoRepo,
		metadata:       metadata,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *videoService) CreateVideo(ctx context.Context, v *domain.Video) (*domain.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v.Tags = normalizeTags(v.Tags)
	if s.metadata != nil && (v.Title == "" || v.ThumbnailURL == nil) {
		meta, err := s.metadata.Fetch(ctx, v.YoutubeURL)
		if err != nil {
			s.logger.WarnContext(ctx, "video metadata lookup failed", "url", v.YoutubeURL, "err", err)
		} else {
			if v.Title == "" {
				v.Title = meta.Title
			}
			if v.ThumbnailURL == nil && meta.ThumbnailURL != "" {
				thumb := meta.ThumbnailURL
				v.ThumbnailURL = &thumb
			}
		}
	}
	if v.Title == "" {
		return nil, domain.ErrInvalidInput.WithMessage("Title is required")
	}

	if err := s.videoRepo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}
	return v, nil
}

func (s *videoService) GetVideo(ctx context.Context, id string) (*domain.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, videoError(err)
	}
	return v, nil
}

func (s *videoService) ListVideos(ctx context.Context, f domain.VideoFilter) ([]*domain.Video, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	f.Tag = strings.ToLower(strings.TrimSpace(f.Tag))
	return s.videoRepo.List(ctx, f)
}

func (s *videoService) UpdateVideo(ctx context.Context, id string, u *domain.VideoUpdate) (*domain.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if u.Title == nil && u.Description == nil && u.YoutubeURL == nil && u.ThumbnailURL == nil && u.Tags == nil {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if u.Tags != nil {
		tags := normalizeTags(*u.Tags)
		u.Tags = &tags
	}
	v, err := s.videoRepo.Update(ctx, id, u)
	if err != nil {
		return nil, videoError(err)
	}
	return v, nil
}

func (s *videoService) DeleteVideo(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return videoError(s.videoRepo.SoftDelete(ctx, id))
}

func (s *videoService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.videoRepo.ListTags(ctx)
}

func videoError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrVideoNotFound
	}
	return err
}

// normalizeTags lowercases, trims and de-duplicates tag names.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
