// Package upload buffers multipart file parts in memory and enforces the
// per-resource MIME, size and count limits before anything reaches storage.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"
)

var (
	ErrUnexpectedFile = errors.New("file must be an image")
	ErrFileTooLarge   = errors.New("file is too large")
	ErrFileLimit      = errors.New("file limit reached")
)

// AcceptedType is the MIME primary type every uploaded part must carry.
const AcceptedType = "image"

// Limits bounds a single request's uploads. Zero disables a limit.
type Limits struct {
	MaxFileSize int64
	MaxFiles    int
}

// FormOverhead is the room left for text fields and multipart framing on top of the files.
const FormOverhead = 1 << 20

// MaxBodySize is the largest request body that can still be a valid upload under l.
// Zero means unbounded.
func (l Limits) MaxBodySize() int64 {
	if l.MaxFileSize <= 0 {
		return 0
	}
	return l.MaxFileSize*int64(max(l.MaxFiles, 1)) + FormOverhead
}

// File is an uploaded part held in memory for the duration of the request.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the number of buffered bytes.
func (f File) Size() int64 { return int64(len(f.Data)) }

// Reader returns a fresh reader over the buffered bytes.
func (f File) Reader() io.Reader { return bytes.NewReader(f.Data) }

// IsConstraintError reports whether err is one of the user-facing intake errors.
func IsConstraintError(err error) bool {
	return errors.Is(err, ErrUnexpectedFile) || errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrFileLimit)
}

// Intake returns the parts under field as in-memory files.
// Parts under any other field, or whose MIME type is not image/*, are rejected.
func Intake(form *multipart.Form, field string, l Limits) ([]File, error) {
	if form == nil {
		return nil, nil
	}

	for name, headers := range form.File {
		if name != field && len(headers) > 0 {
			return nil, ErrUnexpectedFile
		}
	}

	headers := form.File[field]
	for _, fh := range headers {
		if primaryType(fh.Header.Get("Content-Type")) != AcceptedType {
			return nil, ErrUnexpectedFile
		}
	}
	if l.MaxFiles > 0 && len(headers) > l.MaxFiles {
		return nil, ErrFileLimit
	}
	if l.MaxFileSize > 0 {
		for _, fh := range headers {
			if fh.Size > l.MaxFileSize {
				return nil, ErrFileTooLarge
			}
		}
	}

	files := make([]File, 0, len(headers))
	for _, fh := range headers {
		f, err := read(fh)
		if err != nil {
			return nil, err
		}
		if l.MaxFileSize > 0 && f.Size() > l.MaxFileSize {
			return nil, ErrFileTooLarge
		}
		files = append(files, f)
	}
	return files, nil
}

func read(fh *multipart.FileHeader) (File, error) {
	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("open part %q: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return File{}, fmt.Errorf("read part %q: %w", fh.Filename, err)
	}
	return File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func primaryType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	primary, _, _ := strings.Cut(mediaType, "/")
	return primary
}
