package ocr

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// Format is the container chosen for a temporary image file.
type Format string

const (
	FormatJPEG Format = "jpg"
	FormatPNG  Format = "png"
)

// DetectFormat classifies a buffer as JPEG when it starts with FF D8 and as
// PNG otherwise.
func DetectFormat(data []byte) Format {
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8 {
		return FormatJPEG
	}
	return FormatPNG
}

// MIMEType returns the media type for f.
func (f Format) MIMEType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// DecodePayload decodes base64 image data, with or without a data-URL prefix.
func DecodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		payload = dataURLPrefix.ReplaceAllString(payload, "")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	return data, nil
}

var imageExtensions = []string{"png", "jpg", "jpeg", "gif", "bmp", "webp", "tiff"}

// ImageExtensions lists the extensions offered by the open-file dialog.
func ImageExtensions() []string {
	return slices.Clone(imageExtensions)
}

// IsImage reports whether a file looks like an image, judging by its name or,
// failing that, by sniffing its first bytes.
func IsImage(name string, head []byte) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "tif" || slices.Contains(imageExtensions, ext) {
		return true
	}
	if len(head) == 0 {
		return false
	}
	return strings.HasPrefix(http.DetectContentType(head), "image/")
}
