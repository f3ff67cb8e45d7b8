package handlers

import (
	"mime"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentDisposition(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		filename string
		want     string
	}{
		{name: "plain", kind: "attachment", filename: "resume.pdf", want: "resume.pdf"},
		{name: "spaces", kind: "inline", filename: "My CV.pdf", want: "My CV.pdf"},
		{name: "header injection", kind: "attachment", filename: "cv.pdf\r\nSet-Cookie: a=b", want: "cv.pdfSet-Cookie: a=b"},
		{name: "quotes and paths", kind: "attachment", filename: `..\"evil"/cv.pdf`, want: `..__evil__cv.pdf`},
		{name: "unicode", kind: "attachment", filename: "Резюме.docx", want: "Резюме.docx"},
		{name: "empty", kind: "attachment", filename: "", want: "resume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := contentDisposition(tt.kind, tt.filename)
			assert.NotContains(t, v, "\r")
			assert.NotContains(t, v, "\n")
			kind, params, err := mime.ParseMediaType(v)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.want, params["filename"])
		})
	}
}

func TestContentDispositionASCIIFallback(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		plain    string
	}{
		{name: "diacritics", filename: `CV Ünïcödé "x".PDF`, plain: `filename="CV Unicode _x_.PDF"`},
		{name: "cyrillic", filename: "Резюме.docx", plain: "filename=resume.docx"},
		{name: "mixed", filename: "Иван Petrov.pdf", plain: `filename="____ Petrov.pdf"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := contentDisposition("attachment", tt.filename)
			assert.Contains(t, v, tt.plain)
			assert.Contains(t, v, "filename*=utf-8''")
			assert.Less(t, strings.Index(v, "filename="), strings.Index(v, "filename*="))
			for _, r := range v {
				assert.LessOrEqual(t, r, rune(unicode.MaxASCII))
			}

			_, params, err := mime.ParseMediaType(v)
			require.NoError(t, err)
			assert.Equal(t, sanitizeFilename(tt.filename), params["filename"], "extended form wins")
		})
	}

	assert.Equal(t, "attachment; filename=resume.pdf", contentDisposition("attachment", "resume.pdf"))
}
