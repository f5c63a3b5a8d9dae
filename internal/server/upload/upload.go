// Package upload walks a multipart avatar upload without buffering it.
//
// A request must carry exactly one field, named "avatar", holding a file
// whose name ends in a supported image extension. Next validates the first
// field and hands its body out as a Stream; ExpectEnd is called once the
// body has been consumed and rejects any trailing field.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/mnln/accounts/internal/common"
	"github.com/mnln/accounts/internal/imgformat"
	"github.com/mnln/accounts/internal/server/svcerr"
)

// Field is the validated avatar field.
type Field struct {
	Name     string
	FileName string
	Format   imgformat.Format
	Body     *Stream
}

// ReadError reports a failure while reading the field body. It is an I/O
// fault, never a validation error.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return "read avatar body: " + e.Err.Error() }

func (e *ReadError) Unwrap() error { return e.Err }

// Stream is the lazily read, single-pass body of a field.
type Stream struct {
	r io.Reader
	n int64
}

func newStream(r io.Reader) *Stream {
	return &Stream{r: r}
}

func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.n += int64(n)
	if err != nil && err != io.EOF {
		return n, &ReadError{Err: err}
	}
	return n, err
}

// BytesRead is the number of body bytes handed out so far.
func (s *Stream) BytesRead() int64 { return s.n }

// Next reads the first part of mr and checks it is a single supported
// avatar file. Validation failures are exposed 400s, multipart framing
// failures are opaque.
func Next(mr *multipart.Reader) (*Field, error) {
	part, err := mr.NextPart()
	// Only a bare io.EOF means the closing boundary was seen; the reader
	// wraps io.EOF for truncated bodies.
	if err == io.EOF {
		return nil, svcerr.BadRequest("missing field")
	}
	if err != nil {
		return nil, svcerr.ToOpaque(fmt.Errorf("next multipart field: %w", err))
	}

	name := part.FormName()
	switch {
	case name == "":
		return nil, svcerr.BadRequest("missing field name")
	case name != common.AvatarFieldName:
		return nil, svcerr.BadRequest("unexpected field name: " + name)
	}

	fileName := part.FileName()
	if fileName == "" {
		return nil, svcerr.BadRequest("missing file name")
	}

	format, ok := imgformat.Infer(fileName)
	if !ok {
		return nil, svcerr.BadRequest("unsupported image format for file: " + fileName)
	}

	return &Field{
		Name:     name,
		FileName: fileName,
		Format:   format,
		Body:     newStream(part),
	}, nil
}

// ExpectEnd succeeds only if mr has no further parts.
func ExpectEnd(mr *multipart.Reader) error {
	_, err := mr.NextPart()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return svcerr.ToOpaque(fmt.Errorf("next multipart field: %w", err))
	}
	return svcerr.BadRequest("unexpected extra form field")
}
