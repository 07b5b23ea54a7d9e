// Package avatar derives default avatar URLs and normalizes uploaded avatar
// images to a fixed square size on disk.
package avatar

import (
	"crypto/md5"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"
)

// Size is the square dimension every stored avatar is scaled to.
const Size = 250

const jpegQuality = 85

// DefaultURL derives a deterministic identicon-style avatar URL from an email
// address, so freshly signed-up users have a usable avatar before uploading
// one.
func DefaultURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", sum)
}

// Store writes normalized avatars into a directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Process decodes the image at srcPath, scales it to Size x Size, and writes
// it under a name unique per user and upload time. It returns the stored file
// name. The source file at srcPath is left in place; removal is the caller's
// concern.
func (s *Store) Process(srcPath, userID, originalName string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	resized := scale(img, Size, Size)

	filename := fmt.Sprintf("%s_%d_%s", userID, time.Now().UnixNano(), sanitize(originalName))

	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file: %w", err)
	}
	defer dst.Close()

	switch format {
	case "png":
		err = png.Encode(dst, resized)
	case "jpeg":
		err = jpeg.Encode(dst, resized, &jpeg.Options{Quality: jpegQuality})
	default:
		err = fmt.Errorf("unsupported image format: %s", format)
	}
	if err != nil {
		return "", err
	}

	return filename, nil
}

func scale(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// sanitize strips path separators and spaces so the original file name can be
// embedded in the stored name.
func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, name)
}
