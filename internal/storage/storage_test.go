package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImageBytes(t *testing.T, w, h int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 40, A: 255})
		}
	}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, encode(buf, img))
	return buf.Bytes()
}

func encodeAsJPEG(buf *bytes.Buffer, img image.Image) error {
	return jpeg.Encode(buf, img, &jpeg.Options{Quality: 90})
}

func encodeAsPNG(buf *bytes.Buffer, img image.Image) error {
	return png.Encode(buf, img)
}

func TestProcessImage(t *testing.T) {
	t.Run("jpeg upload is re-encoded with a webp rendition", func(t *testing.T) {
		content := testImageBytes(t, 320, 240, encodeAsJPEG)

		out, err := ProcessImage(content, "image/jpeg", 10*1024*1024)
		require.NoError(t, err)
		assert.NotEmpty(t, out.JPEG)
		assert.NotEmpty(t, out.WebP)
		assert.Equal(t, 320, out.Width)
		assert.Equal(t, 240, out.Height)
	})

	t.Run("png upload is accepted", func(t *testing.T) {
		content := testImageBytes(t, 64, 64, encodeAsPNG)

		out, err := ProcessImage(content, "image/png", 10*1024*1024)
		require.NoError(t, err)
		assert.NotEmpty(t, out.JPEG)
	})

	t.Run("oversized image is bounded to the master size", func(t *testing.T) {
		content := testImageBytes(t, 4096, 1024, encodeAsJPEG)

		out, err := ProcessImage(content, "image/jpeg", 50*1024*1024)
		require.NoError(t, err)
		assert.Equal(t, MasterMaxSize, out.Width)
		assert.Equal(t, 512, out.Height)
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		_, err := ProcessImage(nil, "image/jpeg", 1024)
		var imgErr *ImageError
		require.ErrorAs(t, err, &imgErr)
		assert.Equal(t, "no file uploaded", imgErr.Reason)
	})

	t.Run("file over the byte limit is rejected", func(t *testing.T) {
		content := testImageBytes(t, 320, 240, encodeAsJPEG)
		_, err := ProcessImage(content, "image/jpeg", 16)
		var imgErr *ImageError
		require.ErrorAs(t, err, &imgErr)
		assert.Equal(t, "file too large", imgErr.Reason)
	})

	t.Run("non-image bytes are rejected", func(t *testing.T) {
		_, err := ProcessImage([]byte("definitely not an image"), "image/jpeg", 1024)
		var imgErr *ImageError
		require.ErrorAs(t, err, &imgErr)
	})

	t.Run("mismatched declared content type is rejected", func(t *testing.T) {
		content := testImageBytes(t, 64, 64, encodeAsPNG)
		_, err := ProcessImage(content, "image/jpeg", 10*1024*1024)
		var imgErr *ImageError
		require.ErrorAs(t, err, &imgErr)
		assert.Equal(t, "image content type mismatch", imgErr.Reason)
	})
}

func TestObjectKeys(t *testing.T) {
	coverRe := regexp.MustCompile(`^42/\d+\.jpg$`)
	assert.Regexp(t, coverRe, CoverKey(42, "jpg"))

	stepRe := regexp.MustCompile(`^42/steps/\d+-[0-9a-f]+\.jpg$`)
	assert.Regexp(t, stepRe, StepKey(42, "jpg"))

	// The random component keeps same-second step uploads distinct.
	assert.NotEqual(t, StepKey(42, "jpg"), StepKey(42, "jpg"))
}

func TestWebPKey(t *testing.T) {
	assert.Equal(t, "7/170000.webp", WebPKey("7/170000.jpg"))
	assert.Equal(t, "7/steps/170000-ab12.webp", WebPKey("7/steps/170000-ab12.png"))
	assert.Equal(t, "noext.webp", WebPKey("noext"))
}

func TestLocalStore(t *testing.T) {
	newStore := func(t *testing.T) *LocalStore {
		t.Helper()
		s, err := NewLocalStore(t.TempDir(), "/media")
		require.NoError(t, err)
		return s
	}

	t.Run("put writes the object and returns its public URL", func(t *testing.T) {
		s := newStore(t)
		url, err := s.Put(context.Background(), "7/1700000000.jpg", []byte("jpeg bytes"))
		require.NoError(t, err)
		assert.Equal(t, "/media/7/1700000000.jpg", url)

		data, err := os.ReadFile(filepath.Join(s.Root(), "7", "1700000000.jpg"))
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg bytes"), data)
	})

	t.Run("remove deletes the object and tolerates missing keys", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Put(context.Background(), "7/steps/1-aa.jpg", []byte("x"))
		require.NoError(t, err)

		require.NoError(t, s.Remove(context.Background(), "7/steps/1-aa.jpg"))
		_, err = os.Stat(filepath.Join(s.Root(), "7", "steps", "1-aa.jpg"))
		assert.True(t, os.IsNotExist(err))

		assert.NoError(t, s.Remove(context.Background(), "7/steps/1-aa.jpg"))
	})

	t.Run("traversal outside the root is rejected", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Put(context.Background(), "../escape.jpg", []byte("x"))
		// Clean("/"+key) collapses the traversal inside the root, so either
		// the write lands under root or the key is rejected outright.
		if err == nil {
			_, statErr := os.Stat(filepath.Join(filepath.Dir(s.Root()), "escape.jpg"))
			assert.True(t, os.IsNotExist(statErr))
		}
	})

	t.Run("URL trims duplicate slashes", func(t *testing.T) {
		s, err := NewLocalStore(t.TempDir(), "/media/")
		require.NoError(t, err)
		assert.Equal(t, "/media/7/x.jpg", s.URL("/7/x.jpg"))
	})
}

func TestLocalStoreKeyLayout(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	key := CoverKey(7, "jpg")
	url, err := s.Put(context.Background(), key, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("/media/%s", key), url)
}
