package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes a stored image; a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ErrInvalidImage is returned for malformed data URIs.
var ErrInvalidImage = errors.New("invalid image payload")

var dataURIPattern = regexp.MustCompile(`^data:(image/[a-zA-Z0-9.+-]+);base64,(.+)$`)

// Image is a decoded upload.
type Image struct {
	ContentType string
	Data        []byte
}

// Extension returns the file extension for the image's content type.
func (i Image) Extension() string {
	sub := strings.TrimPrefix(i.ContentType, "image/")
	switch sub {
	case "jpeg", "pjpeg":
		return "jpg"
	case "svg+xml":
		return "svg"
	default:
		return sub
	}
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>".
func DecodeDataURI(uri string) (Image, error) {
	m := dataURIPattern.FindStringSubmatch(strings.TrimSpace(uri))
	if m == nil {
		return Image{}, ErrInvalidImage
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return Image{}, ErrInvalidImage
	}
	return Image{ContentType: m[1], Data: data}, nil
}

// NewKey builds a unique object key under prefix.
func NewKey(prefix string, img Image) string {
	return path.Join(prefix, uuid.NewString()+"."+img.Extension())
}
