package domain

// Tag represents a named label shared across videos.
// swagger:model Tag
type Tag struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	VideoCount int    `json:"video_count"`
}
