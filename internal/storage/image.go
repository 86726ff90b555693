package storage

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MasterMaxSize bounds the long edge of stored images.
	MasterMaxSize = 2048
	JPEGQuality   = 82
	WebPQuality   = 70
)

// ProcessedImage is the result of validating and re-encoding an upload.
// JPEG is the master stored at the object key; WebP is a rendition stored
// alongside it under the same key with a .webp extension.
type ProcessedImage struct {
	JPEG   []byte
	WebP   []byte
	Width  int
	Height int
}

// ImageError reports an invalid upload. It distinguishes caller mistakes from
// encoder failures so handlers can map them to 400 vs 500.
type ImageError struct {
	Reason string
}

func (e *ImageError) Error() string {
	return e.Reason
}

// ProcessImage validates content as an image, bounds its dimensions and
// re-encodes it to JPEG plus a WebP rendition. declaredType is the
// Content-Type the client sent, checked against what the bytes actually are.
func ProcessImage(content []byte, declaredType string, maxBytes int64) (*ProcessedImage, error) {
	if len(content) == 0 {
		return nil, &ImageError{Reason: "no file uploaded"}
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return nil, &ImageError{Reason: "file too large"}
	}

	detectedType := http.DetectContentType(content)
	if !isAllowedImageMIME(detectedType) {
		return nil, &ImageError{Reason: "invalid image type"}
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, &ImageError{Reason: "invalid image file"}
	}

	if provided := normalizeContentType(declaredType); strings.HasPrefix(provided, "image/") &&
		!isMatchingContentType(provided, decodedFormatToMime(format)) {
		return nil, &ImageError{Reason: "image content type mismatch"}
	}

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)

	jpegBytes, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, err
	}
	webpBytes, err := encodeWebP(master, WebPQuality)
	if err != nil {
		return nil, err
	}

	b := master.Bounds()
	return &ProcessedImage{
		JPEG:   jpegBytes,
		WebP:   webpBytes,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// WebPKey derives the rendition key from a master key by swapping the extension.
func WebPKey(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[:i] + ".webp"
	}
	return key + ".webp"
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
