package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"churchadmin/internal/delivery/http/helpers"
	"churchadmin/internal/delivery/http/middleware"
	"churchadmin/internal/domain"
)

// CreateVideoRequest is the request body for POST /videos.
// Title and thumbnail are looked up from YouTube when omitted.
type CreateVideoRequest struct {
	Title        string   `json:"title"`
	Description  *string  `json:"description"`
	YoutubeURL   string   `json:"youtube_url" validate:"required,url"`
	ThumbnailURL *string  `json:"thumbnail_url" validate:"omitempty,url"`
	Tags         []string `json:"tags"`
}

// UpdateVideoRequest is the request body for PUT /videos/{id}. A present tags list replaces all tags.
type UpdateVideoRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	YoutubeURL   *string   `json:"youtube_url" validate:"omitempty,url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	Tags         *[]string `json:"tags"`
}

// VideoPageMeta describes where a VideoList sits in the library.
type VideoPageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// VideoList is a page of videos.
type VideoList struct {
	Videos     []*domain.Video `json:"videos"`
	Pagination VideoPageMeta   `json:"pagination"`
}

// parseVideoPage reads page and limit from the query string. Unparsable
// values are treated as absent.
func parseVideoPage(r *http.Request) domain.VideoPage {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("limit"))
	return domain.NewVideoPage(number, size)
}

type VideoController struct {
	Logger  *slog.Logger
	Service domain.VideoService
}

func NewVideoController(logger *slog.Logger, svc domain.VideoService) *VideoController {
	return &VideoController{Logger: logger, Service: svc}
}

// CreateVideo godoc
// @Summary Add a video to the library
// @Tags videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateVideoRequest true "Video"
// @Success 201 {object} helpers.Result
// @Router /videos [post]
func (c *VideoController) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req CreateVideoRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	video, err := c.Service.CreateVideo(r.Context(), &domain.Video{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		YoutubeURL:   req.YoutubeURL,
		ThumbnailURL: req.ThumbnailURL,
		Tags:         req.Tags,
		CreatedBy:    userID,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, "VIDEO_CREATED", "Video added successfully", video)
}

// ListVideos godoc
// @Summary List active videos
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param tag query string false "Tag name"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Videos per page (default 12, max 48)"
// @Success 200 {object} helpers.Result "data is a VideoList"
// @Router /videos [get]
func (c *VideoController) ListVideos(w http.ResponseWriter, r *http.Request) {
	page := parseVideoPage(r)
	videos, total, err := c.Service.ListVideos(r.Context(), domain.VideoFilter{
		Tag:  r.URL.Query().Get("tag"),
		Page: page,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "VIDEOS_FETCHED", "Videos fetched successfully", VideoList{
		Videos:     videos,
		Pagination: VideoPageMeta{
			Page:       page.Number,
			Limit:      page.Size,
			Total:      total,
			TotalPages: page.TotalPages(total),
		},
	})
}

// GetVideo godoc
// @Summary Get a video
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Success 200 {object} helpers.Result
// @Failure 404 {object} helpers.Result "VIDEO_NOT_FOUND"
// @Router /videos/{id} [get]
func (c *VideoController) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "id", domain.ErrVideoNotFound)
	if !ok {
		return
	}
	video, err := c.Service.GetVideo(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "VIDEO_FETCHED", "Video fetched successfully", video)
}

func (c *VideoController) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "id", domain.ErrVideoNotFound)
	if !ok {
		return
	}
	var req UpdateVideoRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	video, err := c.Service.UpdateVideo(r.Context(), id, &domain.VideoUpdate{
		Title:        req.Title,
		Description:  req.Description,
		YoutubeURL:   req.YoutubeURL,
		ThumbnailURL: req.ThumbnailURL,
		Tags:         req.Tags,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "VIDEO_UPDATED", "Video updated successfully", video)
}

// DeleteVideo hides a video from the library; the row is kept.
func (c *VideoController) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "id", domain.ErrVideoNotFound)
	if !ok {
		return
	}
	if err := c.Service.DeleteVideo(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "VIDEO_DELETED", "Video deleted successfully", nil)
}

func (c *VideoController) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := c.Service.ListTags(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "TAGS_FETCHED", "Tags fetched successfully", tags)
}
