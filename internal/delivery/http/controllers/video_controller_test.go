package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"churchadmin/internal/delivery/http/helpers"
	"churchadmin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoController_CreateVideo(t *testing.T) {
	t.Run("created by caller", func(t *testing.T) {
		svc := &fakeVideoService{video: &domain.Video{ID: "v-1"}}
		c := NewVideoController(testLogger, svc)
		body := map[string]any{"youtube_url": "https://youtu.be/abc", "tags": []string{"Faith"}}
		rec := serve("POST /videos", c.CreateVideo, newRequest(t, http.MethodPost, "/videos", body, "u-1"))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "u-1", svc.lastCreate.CreatedBy)
		assert.Equal(t, []string{"Faith"}, svc.lastCreate.Tags)
	})

	t.Run("url required", func(t *testing.T) {
		c := NewVideoController(testLogger, &fakeVideoService{})
		rec := serve("POST /videos", c.CreateVideo, newRequest(t, http.MethodPost, "/videos", map[string]any{"title": "x"}, "u-1"))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, helpers.ErrCodeValidation, decodeEnvelope(t, rec).Code)
	})
}

func TestVideoController_ListVideos(t *testing.T) {
	svc := &fakeVideoService{videos: []*domain.Video{{ID: "v-1"}}, total: 41}
	c := NewVideoController(testLogger, svc)
	rec := serve("GET /videos", c.ListVideos, newRequest(t, http.MethodGet, "/videos?tag=faith&page=2&limit=20", nil, "u-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "faith", svc.lastFilter.Tag)
	assert.Equal(t, domain.VideoPage{Number: 2, Size: 20}, svc.lastFilter.Page)

	var data VideoList
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	assert.Len(t, data.Videos, 1)
	assert.Equal(t, VideoPageMeta{Page: 2, Limit: 20, Total: 41, TotalPages: 3}, data.Pagination)
}

func TestParseVideoPage(t *testing.T) {
	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, domain.VideoPageSizeDefault},
		{"page=3&limit=6", 3, 6},
		{"page=0&limit=-1", 1, domain.VideoPageSizeDefault},
		{"limit=500", 1, domain.VideoPageSizeMax},
		{"page=abc&limit=ten", 1, domain.VideoPageSizeDefault},
		{"page_size=30", 1, domain.VideoPageSizeDefault},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := parseVideoPage(httptest.NewRequest(http.MethodGet, "/videos?"+tt.query, nil))
			assert.Equal(t, tt.wantPage, p.Number)
			assert.Equal(t, tt.wantLimit, p.Size)
		})
	}
}

func TestVideoController_notFound(t *testing.T) {
	c := NewVideoController(testLogger, &fakeVideoService{err: domain.ErrVideoNotFound})

	rec := serve("GET /videos/{id}", c.GetVideo, newRequest(t, http.MethodGet, "/videos/"+sermonVideo, nil, "u-1"))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve("DELETE /videos/{id}", c.DeleteVideo, newRequest(t, http.MethodDelete, "/videos/"+sermonVideo, nil, "u-1"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "VIDEO_NOT_FOUND", decodeEnvelope(t, rec).Code)
}

func TestVideoController_UpdateVideo_replacesTags(t *testing.T) {
	svc := &fakeVideoService{video: &domain.Video{ID: "v-1"}}
	c := NewVideoController(testLogger, svc)
	rec := serve("PUT /videos/{id}", c.UpdateVideo, newRequest(t, http.MethodPut, "/videos/"+sermonVideo, map[string]any{"tags": []string{}}, "u-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastUpdate.Tags)
	assert.Empty(t, *svc.lastUpdate.Tags)
}
