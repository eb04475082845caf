// Package photo prepares task photos: resizing uploads into data URIs and
// turning stored data URIs back into image bytes.
package photo

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

const (
	DefaultMaxWidth  = 800
	DefaultMaxHeight = 600
	DefaultQuality   = 80

	jpegMime = "image/jpeg"
)

type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int // JPEG quality, 1..100
}

func DefaultOptions() Options {
	return Options{MaxWidth: DefaultMaxWidth, MaxHeight: DefaultMaxHeight, Quality: DefaultQuality}
}

/*
ResizeToDataURI reads an uploaded image and returns it as a JPEG data URI.

The steps are:
  - Decode the upload (JPEG, PNG or GIF), honoring EXIF orientation.
  - Scale it down to fit inside MaxWidth x MaxHeight, keeping the aspect ratio.
    Images that already fit are left at their size.
  - Encode it as JPEG with the given quality.

If any step fails, it returns a *xerr.Error.
*/
func ResizeToDataURI(source io.Reader, options Options) (dataURI string, e *xerr.Error) {
	if options.MaxWidth <= 0 || options.MaxHeight <= 0 || options.Quality <= 0 {
		options = DefaultOptions()
	}

	// Decode whatever format the browser or phone sent.
	original, err := imaging.Decode(source, imaging.AutoOrientation(true))
	if err != nil {
		e = xerr.NewError(err, "decode uploaded photo", "")
		return "", e
	}

	// Fit inside the box; Fit never upscales.
	bounds := original.Bounds()
	resized := imaging.Fit(original, options.MaxWidth, options.MaxHeight, imaging.Lanczos)

	encoded, e := encodeJPEG(resized, options.Quality)
	if e != nil {
		return "", e
	}

	tl.Log(
		tl.Info1, palette.Blue, "Resized photo from %s to %s (%s bytes)",
		dimensions(bounds), dimensions(resized.Bounds()), fmt.Sprint(len(encoded)),
	)

	return EncodeDataURI(jpegMime, encoded), nil
}

// EncodeDataURI builds a base64 data URI.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

/*
DecodeDataURI splits a base64 data URI into its media type and bytes.

Only base64 payloads are accepted, which is how photos are stored.
*/
func DecodeDataURI(dataURI string) (mime string, data []byte, e *xerr.Error) {
	rest, found := strings.CutPrefix(strings.TrimSpace(dataURI), "data:")
	if !found {
		e = xerr.NewError(fmt.Errorf("missing data: prefix"), "decode photo data URI", truncate(dataURI))
		return "", nil, e
	}

	header, payload, found := strings.Cut(rest, ",")
	if !found {
		e = xerr.NewError(fmt.Errorf("missing ',' separator"), "decode photo data URI", truncate(dataURI))
		return "", nil, e
	}

	mime, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		e = xerr.NewError(fmt.Errorf("payload is not base64"), "decode photo data URI", truncate(dataURI))
		return "", nil, e
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		e = xerr.NewError(err, "decode photo base64 payload", truncate(dataURI))
		return "", nil, e
	}

	return mime, data, nil
}

/*
ToJPEG decodes a stored photo data URI and re-encodes it as a baseline JPEG.

Documents embed photos through this so every photo reaches them in a single
well-formed format, whatever the browser originally produced. Also returns the
pixel size of the image.
*/
func ToJPEG(dataURI string) (jpegBytes []byte, size image.Point, e *xerr.Error) {
	_, data, e := DecodeDataURI(dataURI)
	if e != nil {
		return nil, size, e
	}

	decoded, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		e = xerr.NewError(err, "decode stored photo", truncate(dataURI))
		return nil, size, e
	}

	jpegBytes, e = encodeJPEG(decoded, DefaultQuality)
	if e != nil {
		return nil, size, e
	}
	return jpegBytes, decoded.Bounds().Size(), nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, *xerr.Error) {
	var buffer bytes.Buffer
	err := imaging.Encode(&buffer, img, imaging.JPEG, imaging.JPEGQuality(quality))
	if err != nil {
		return nil, xerr.NewError(err, "encode photo as JPEG", "")
	}
	return buffer.Bytes(), nil
}

func dimensions(bounds image.Rectangle) string {
	return fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy())
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
