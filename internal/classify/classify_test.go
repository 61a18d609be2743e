package classify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_Table(t *testing.T) {
	tests := []struct {
		exts []string
		want Family
	}{
		{[]string{"doc", "docx", "odt", "rtf", "txt"}, Document},
		{[]string{"xls", "xlsx", "ods", "csv", "tsv"}, Spreadsheet},
		{[]string{"ppt", "pptx", "odp"}, Presentation},
	}

	for _, tt := range tests {
		for _, ext := range tt.exts {
			t.Run(ext, func(t *testing.T) {
				got, ok := Detect("test." + ext)
				require.True(t, ok)
				assert.Equal(t, tt.want, got)

				upper, ok := Detect("TEST." + strings.ToUpper(ext))
				require.True(t, ok)
				assert.Equal(t, got, upper, "case-insensitive")
			})
		}
	}
}

func TestDetect_Unsupported(t *testing.T) {
	for _, name := range []string{"a.pdf", "a.jpg", "a.png", "a.zip", "a.exe", "a.mp4", "README", "archive.docx.gz", ".docx", ".csv", "/tmp/.docx", "dir.d/noext", "trailing."} {
		t.Run(name, func(t *testing.T) {
			_, ok := Detect(name)
			assert.False(t, ok)
		})
	}
}

func TestExt(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"report.DOCX", "docx"},
		{"/tmp/a.b/report.csv", "csv"},
		{".notes.csv", "csv"},
		{"/tmp/.csv", ""},
		{".docx", ""},
		{"README", ""},
		{"trailing.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Ext(tt.path))
		})
	}
}

func TestDetect_WithDirectories(t *testing.T) {
	got, ok := Detect("/home/user/documents/report.docx")
	require.True(t, ok)
	assert.Equal(t, Document, got)
}

func TestFamily_MappingIsInjective(t *testing.T) {
	mimes := make(map[string]bool)
	labels := make(map[string]bool)

	for _, f := range []Family{Document, Spreadsheet, Presentation} {
		assert.NotEmpty(t, f.MimeType())
		assert.NotEmpty(t, f.Label())
		assert.False(t, mimes[f.MimeType()])
		assert.False(t, labels[f.Label()])
		mimes[f.MimeType()] = true
		labels[f.Label()] = true
	}

	assert.Equal(t, "application/vnd.google-apps.spreadsheet", Spreadsheet.MimeType())
	assert.Equal(t, "Google Sheets", Spreadsheet.Label())
	assert.Equal(t, "Google Docs", Document.Label())
	assert.Equal(t, "Google Slides", Presentation.Label())
	assert.Empty(t, Family(0).MimeType())
	assert.Equal(t, "Family(0)", Family(0).String())
}

func TestSourceMimeType(t *testing.T) {
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", SourceMimeType("test.docx"))
	assert.Equal(t, "text/plain", SourceMimeType("test.TXT"))
	assert.Equal(t, "text/csv", SourceMimeType("test.csv"))
	assert.Equal(t, MimeOctetStream, SourceMimeType("test.unknownext"))
	assert.Equal(t, MimeOctetStream, SourceMimeType("Makefile"))
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	assert.Len(t, exts, 13)
	assert.IsIncreasing(t, exts)

	for _, e := range exts {
		assert.True(t, IsSupportedExtension(e))
		assert.True(t, IsSupportedExtension("."+strings.ToUpper(e)))
	}

	assert.False(t, IsSupportedExtension("pdf"))
}

func TestDescribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Report.CSV")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o600))

	d, err := Describe(path)
	require.NoError(t, err)
	assert.Equal(t, path, d.Path)
	assert.Equal(t, "Report.CSV", d.Name)
	assert.Equal(t, "csv", d.Extension)
	assert.Equal(t, int64(8), d.Size)
	assert.Equal(t, Spreadsheet, d.Family)
	assert.True(t, d.Supported())
}

func TestDescribe_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8}, 0o600))

	d, err := Describe(path)
	require.NoError(t, err)
	assert.False(t, d.Supported())
}

func TestDescribe_Errors(t *testing.T) {
	_, err := Describe("/nonexistent/file.docx")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Describe(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}
