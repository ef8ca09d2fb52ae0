package tmdb

const (
	// ImageBaseURL is the image CDN root.
	ImageBaseURL = "https://image.tmdb.org/t/p/"

	// DefaultImageSize is used when no size is requested.
	DefaultImageSize = "w500"
)

// ImageURL builds the CDN URL for an image path such as "/abc.jpg".
// An empty path yields "". The size is not validated.
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = DefaultImageSize
	}
	return ImageBaseURL + size + path
}
