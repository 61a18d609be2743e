package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync/atomic"
)

// Boundary separates the metadata and content parts. It is fixed so request
// bodies are reproducible.
const Boundary = "gopener_boundary_12345"

const metadataContentType = "application/json; charset=UTF-8"

// metadata is the first part of the upload body. Setting MimeType to a Google
// type makes Drive convert the content on import.
type metadata struct {
	Name     string   `json:"name"`
	MimeType string   `json:"mimeType"`
	Parents  []string `json:"parents,omitempty"`
}

// multipartBody is a streaming multipart/related body: the encoded prefix
// (metadata part plus content part header), the file content, and the
// closing delimiter. Only the prefix and suffix are held in memory.
type multipartBody struct {
	prefix []byte
	suffix []byte
}

// newMultipartBody renders everything but the content itself.
func newMultipartBody(meta metadata, contentType string) (*multipartBody, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(Boundary); err != nil {
		return nil, fmt.Errorf("upload: setting boundary: %w", err)
	}

	metaPart, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {metadataContentType}})
	if err != nil {
		return nil, fmt.Errorf("upload: writing metadata part: %w", err)
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("upload: encoding metadata: %w", err)
	}

	if _, err := metaPart.Write(data); err != nil {
		return nil, fmt.Errorf("upload: writing metadata part: %w", err)
	}

	if _, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {contentType}}); err != nil {
		return nil, fmt.Errorf("upload: writing content part: %w", err)
	}

	prefix := bytes.Clone(buf.Bytes())
	buf.Reset()

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("upload: closing body: %w", err)
	}

	return &multipartBody{prefix: prefix, suffix: bytes.Clone(buf.Bytes())}, nil
}

// Len is the total body length for a content part of contentSize bytes.
func (b *multipartBody) Len(contentSize int64) int64 {
	return int64(len(b.prefix)) + contentSize + int64(len(b.suffix))
}

// Reader streams the body around content.
func (b *multipartBody) Reader(content io.Reader) io.Reader {
	return io.MultiReader(bytes.NewReader(b.prefix), content, bytes.NewReader(b.suffix))
}

// countingReader adds every byte read to n.
type countingReader struct {
	r io.Reader
	n *atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.n.Add(int64(n))
	}

	return n, err
}
