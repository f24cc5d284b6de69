package model

// ImageResult is a single image entry produced by an image provider or the
// built-in fallback set.
type ImageResult struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Source    string `json:"source"`
	Context   string `json:"context"`
}
