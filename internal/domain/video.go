package domain

import (
	"context"
	"time"
)

// Video is an entry of the sermon/worship video library.
// swagger:model Video
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	YoutubeURL   string    `json:"youtube_url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	IsActive     bool      `json:"is_active"`
	Tags         []string  `json:"tags"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VideoUpdate holds optional video changes. A non-nil Tags replaces all tags.
type VideoUpdate struct {
	Title        *string
	Description  *string
	YoutubeURL   *string
	ThumbnailURL *string
	Tags         *[]string
}

// Video library page sizes, in videos per page.
const (
	VideoPageSizeDefault = 12
	VideoPageSizeMax     = 48
)

// VideoPage is a 1-based page of the video library.
type VideoPage struct {
	Number int
	Size   int
}

// NewVideoPage clamps a requested page. Non-positive values fall back to the
// first page and the default size; sizes above VideoPageSizeMax are capped.
func NewVideoPage(number, size int) VideoPage {
	if number < 1 {
		number = 1
	}
	switch {
	case size < 1:
		size = VideoPageSizeDefault
	case size > VideoPageSizeMax:
		size = VideoPageSizeMax
	}
	return VideoPage{Number: number, Size: size}
}

// Offset is the number of videos that precede this page.
func (p VideoPage) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// TotalPages is how many pages of this size hold total videos.
func (p VideoPage) TotalPages(total int) int {
	if p.Size <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}

// VideoFilter selects videos for the library listing.
type VideoFilter struct {
	Tag  string
	Page VideoPage
}

// VideoMetadata is what an external provider knows about a video URL.
type VideoMetadata struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// VideoMetadataFetcher looks up metadata for a video URL.
type VideoMetadataFetcher interface {
	Fetch(ctx context.Context, videoURL string) (*VideoMetadata, error)
}

// VideoRepository defines video and tag storage.
type VideoRepository interface {
	Create(ctx context.Context, v *Video) error
	GetByID(ctx context.Context, id string) (*Video, error)
	List(ctx context.Context, f VideoFilter) ([]*Video, int, error)
	Update(ctx context.Context, id string, u *VideoUpdate) (*Video, error)
	SoftDelete(ctx context.Context, id string) error
	ListTags(ctx context.Context) ([]*Tag, error)
}

// VideoService manages the video library.
type VideoService interface {
	CreateVideo(ctx context.Context, v *Video) (*Video, error)
	GetVideo(ctx context.Context, id string) (*Video, error)
	ListVideos(ctx context.Context, f VideoFilter) ([]*Video, int, error)
	UpdateVideo(ctx context.Context, id string, u *VideoUpdate) (*Video, error)
	DeleteVideo(ctx context.Context, id string) error
	ListTags(ctx context.Context) ([]*Tag, error)
}
