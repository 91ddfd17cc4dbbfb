package gateway

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageSize is the largest attachment read from disk.
const MaxImageSize = 20 << 20

// ErrNotImage is returned when an attachment is not an image.
var ErrNotImage = errors.New("attachment is not an image")

// DataURL encodes data as a base64 data: URL.
func DataURL(data []byte, mediaType string) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL decodes a base64 data: URL.
func ParseDataURL(url string) (Image, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return Image{}, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("malformed data URL")
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return Image{}, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("decoding data URL: %w", err)
	}
	return Image{Data: data, MediaType: mediaType}, nil
}

// DecodeBase64Image decodes a base64 image payload.
func DecodeBase64Image(b64 string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return data, nil
}

// LoadImage resolves an attachment reference to image data. The reference
// may be a data: URL, a file:// URL or a file path.
func LoadImage(ref string) (Image, error) {
	if strings.HasPrefix(ref, "data:") {
		return ParseDataURL(ref)
	}

	path := strings.TrimPrefix(ref, "file://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Image{}, fmt.Errorf("reading attachment: %w", err)
	}
	if info.Size() > MaxImageSize {
		return Image{}, fmt.Errorf("attachment is larger than %d MB", MaxImageSize>>20)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: the user chose this file
	if err != nil {
		return Image{}, fmt.Errorf("reading attachment: %w", err)
	}

	mediaType := http.DetectContentType(data)
	if !strings.HasPrefix(mediaType, "image/") {
		return Image{}, fmt.Errorf("%w: %s", ErrNotImage, mediaType)
	}
	return Image{Data: data, MediaType: mediaType}, nil
}
