package form

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"
	"time"

	// Sniffing support for the formats signature pads and phone cameras
	// actually emit, beyond the stdlib png/jpeg/gif set.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"qc-console/pkg/apierror"
)

const dataURLPrefix = "data:image"

// IsInlineImage reports whether raw carries the recognized inline image
// encoding. Anything else is treated as "no signature", not an error.
func IsInlineImage(raw string) bool {
	return strings.HasPrefix(raw, dataURLPrefix)
}

// DecodeSignature converts a data-URL signature into a timestamped photo
// attachment ready to be merged into the rejection multipart payload.
func DecodeSignature(raw string, now time.Time) (Photo, error) {
	if !IsInlineImage(raw) {
		return Photo{}, apierror.Validation("BAD_SIGNATURE", "signature is not inline image data", "")
	}

	comma := strings.IndexByte(raw, ',')
	if comma < 0 {
		return Photo{}, apierror.Validation("BAD_SIGNATURE", "signature data URL has no payload", "")
	}

	header, payload := raw[:comma], raw[comma+1:]
	if !strings.Contains(header, ";base64") {
		return Photo{}, apierror.Validation("BAD_SIGNATURE", "signature payload is not base64", "")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Photo{}, apierror.Validation("BAD_SIGNATURE", "signature payload is not valid base64", err.Error())
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return Photo{}, apierror.Validation("BAD_SIGNATURE", "signature payload does not decode as an image", err.Error())
	}

	return Photo{
		Name:        fmt.Sprintf("signature_%d.png", now.UnixMilli()),
		ContentType: "image/png",
		Data:        data,
	}, nil
}
