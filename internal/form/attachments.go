package form

import (
	"fmt"
	"net/http"
	"strings"

	"qc-console/pkg/apierror"
)

// MaxPhotos is the hard cap on photo attachments per rejection record.
const MaxPhotos = 4

type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// AttachmentSet holds the photos staged for one rejection record. Adds are
// atomic: when any file in a batch is rejected, or the batch would push the
// set past MaxPhotos, nothing from the batch is accepted and the previously
// staged photos are untouched.
type AttachmentSet struct {
	photos []Photo
}

func (s *AttachmentSet) Add(photos ...Photo) error {
	if len(photos) == 0 {
		return nil
	}

	if len(s.photos)+len(photos) > MaxPhotos {
		return apierror.Validation("TOO_MANY_PHOTOS",
			fmt.Sprintf("no more than %d photos are allowed", MaxPhotos),
			fmt.Sprintf("%d staged, %d new", len(s.photos), len(photos)))
	}

	var problems []string
	for _, photo := range photos {
		if err := checkImage(photo); err != nil {
			problems = append(problems, fmt.Sprintf("%q: %s", photo.Name, err))
		}
	}
	if len(problems) > 0 {
		return apierror.Validation("NOT_AN_IMAGE", "only image files can be attached", strings.Join(problems, "; "))
	}

	s.photos = append(s.photos, photos...)
	return nil
}

func (s *AttachmentSet) Photos() []Photo {
	out := make([]Photo, len(s.photos))
	copy(out, s.photos)
	return out
}

func (s *AttachmentSet) Count() int {
	return len(s.photos)
}

// checkImage requires the declared media type to be an image type, and when
// the content sniffs as something recognizable, the sniff must agree.
func checkImage(photo Photo) error {
	declared := strings.ToLower(strings.TrimSpace(photo.ContentType))
	if !strings.HasPrefix(declared, "image/") {
		return fmt.Errorf("declared type %s is not an image", photo.ContentType)
	}

	if len(photo.Data) == 0 {
		return fmt.Errorf("file is empty")
	}

	sniffed := http.DetectContentType(photo.Data)
	if !strings.HasPrefix(sniffed, "image/") && sniffed != "application/octet-stream" {
		return fmt.Errorf("content looks like %s, not an image", sniffed)
	}

	return nil
}
