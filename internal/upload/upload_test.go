package upload

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	field       string
	filename    string
	contentType string
	body        string
}

func buildForm(t *testing.T, parts ...part) *multipart.Form {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write([]byte(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form
}

func TestIntake(t *testing.T) {
	limits := Limits{MaxFileSize: 10, MaxFiles: 2}

	tests := []struct {
		name    string
		parts   []part
		wantErr error
		wantN   int
	}{
		{
			name:  "two images",
			parts: []part{{"images", "a.png", "image/png", "aaa"}, {"images", "b.jpg", "image/jpeg", "bbbb"}},
			wantN: 2,
		},
		{
			name:  "content type with parameters",
			parts: []part{{"images", "a.svg", "image/svg+xml; charset=utf-8", "<svg/>"}},
			wantN: 1,
		},
		{
			name:    "non image",
			parts:   []part{{"images", "a.txt", "text/plain", "hello"}},
			wantErr: ErrUnexpectedFile,
		},
		{
			name:    "unexpected field",
			parts:   []part{{"avatar", "a.png", "image/png", "aaa"}},
			wantErr: ErrUnexpectedFile,
		},
		{
			name: "too many files",
			parts: []part{
				{"images", "a.png", "image/png", "a"},
				{"images", "b.png", "image/png", "b"},
				{"images", "c.png", "image/png", "c"},
			},
			wantErr: ErrFileLimit,
		},
		{
			name:    "file over size limit",
			parts:   []part{{"images", "a.png", "image/png", strings.Repeat("x", 11)}},
			wantErr: ErrFileTooLarge,
		},
		{
			name:  "file at size limit",
			parts: []part{{"images", "a.png", "image/png", strings.Repeat("x", 10)}},
			wantN: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Intake(buildForm(t, tt.parts...), "images", limits)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsConstraintError(err))
				assert.Nil(t, files)
				return
			}
			require.NoError(t, err)
			assert.Len(t, files, tt.wantN)
		})
	}
}

func TestIntake_BuffersContent(t *testing.T) {
	form := buildForm(t, part{"image", "cat.png", "image/png", "meow"})

	files, err := Intake(form, "image", Limits{})
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files[0]
	assert.Equal(t, "cat.png", f.Name)
	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, int64(4), f.Size())

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(f.Reader())
	require.NoError(t, err)
	assert.Equal(t, "meow", buf.String())
}

func TestIntake_NilForm(t *testing.T) {
	files, err := Intake(nil, "image", Limits{MaxFiles: 1})
	assert.NoError(t, err)
	assert.Empty(t, files)
}

func TestLimits_MaxBodySize(t *testing.T) {
	assert.Equal(t, int64(4*1000+FormOverhead), Limits{MaxFileSize: 1000, MaxFiles: 4}.MaxBodySize())
	assert.Equal(t, int64(1000+FormOverhead), Limits{MaxFileSize: 1000}.MaxBodySize())
	assert.Zero(t, Limits{MaxFiles: 4}.MaxBodySize())
}
