package media

import (
	"mime"
	"sort"
	"strings"
)

// Item images are served straight from the bucket, so only web-safe
// raster formats are accepted.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

func allowedImageTypes() []string {
	list := make([]string, 0, len(imageExtensions))
	for value := range imageExtensions {
		list = append(list, value)
	}
	sort.Strings(list)
	return list
}

func normalizeImageType(value string) (string, bool) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", false
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", false
	}
	mediaType = strings.ToLower(mediaType)
	if _, ok := imageExtensions[mediaType]; !ok {
		return "", false
	}
	return mediaType, true
}
