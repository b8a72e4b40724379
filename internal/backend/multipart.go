package backend

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Multipart is a pre-built multipart/form-data body. The client detects this
// type structurally and sends it with the writer's generated boundary;
// callers never set a Content-Type themselves.
type Multipart struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	closed bool
}

func NewMultipart() *Multipart {
	m := &Multipart{}
	m.writer = multipart.NewWriter(&m.buf)
	return m
}

func (m *Multipart) AddField(name string, value string) error {
	if m.closed {
		return fmt.Errorf("multipart body already finalized")
	}

	return m.writer.WriteField(name, value)
}

// AddFile appends a file part with an explicit part-level content type.
func (m *Multipart) AddFile(field string, filename string, contentType string, data []byte) error {
	if m.closed {
		return fmt.Errorf("multipart body already finalized")
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
		escapeQuotes(field), escapeQuotes(filename)))
	header.Set("Content-Type", contentType)

	part, err := m.writer.CreatePart(header)
	if err != nil {
		return err
	}

	_, err = part.Write(data)
	return err
}

// finalize closes the writer and returns the wire form. Idempotent.
func (m *Multipart) finalize() ([]byte, string, error) {
	if !m.closed {
		if err := m.writer.Close(); err != nil {
			return nil, "", err
		}
		m.closed = true
	}

	return m.buf.Bytes(), m.writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
