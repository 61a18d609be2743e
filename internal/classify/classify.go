// Package classify maps local office files to the Google document family they
// convert into. Classification uses the file extension only; content is never
// sniffed, so the same name always yields the same family.
package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Family is a Google Workspace document family.
type Family int

const (
	// Document converts to Google Docs.
	Document Family = iota + 1
	// Spreadsheet converts to Google Sheets.
	Spreadsheet
	// Presentation converts to Google Slides.
	Presentation
)

// Google MIME types that trigger server-side conversion on upload.
const (
	MimeGoogleDocument     = "application/vnd.google-apps.document"
	MimeGoogleSpreadsheet  = "application/vnd.google-apps.spreadsheet"
	MimeGooglePresentation = "application/vnd.google-apps.presentation"
	MimeGoogleFolder       = "application/vnd.google-apps.folder"
)

// MimeOctetStream is the source type used when an extension is not in the table.
const MimeOctetStream = "application/octet-stream"

// MimeType returns the conversion target MIME type.
func (f Family) MimeType() string {
	switch f {
	case Document:
		return MimeGoogleDocument
	case Spreadsheet:
		return MimeGoogleSpreadsheet
	case Presentation:
		return MimeGooglePresentation
	default:
		return ""
	}
}

// Label returns the human display name of the family.
func (f Family) Label() string {
	switch f {
	case Document:
		return "Google Docs"
	case Spreadsheet:
		return "Google Sheets"
	case Presentation:
		return "Google Slides"
	default:
		return ""
	}
}

func (f Family) String() string {
	switch f {
	case Document:
		return "document"
	case Spreadsheet:
		return "spreadsheet"
	case Presentation:
		return "presentation"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// extension describes one supported extension: the family it converts to and
// the MIME type the source bytes are sent with.
type extension struct {
	family Family
	source string
}

var extensions = map[string]extension{
	"doc":  {Document, "application/msword"},
	"docx": {Document, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	"odt":  {Document, "application/vnd.oasis.opendocument.text"},
	"rtf":  {Document, "application/rtf"},
	"txt":  {Document, "text/plain"},
	"xls":  {Spreadsheet, "application/vnd.ms-excel"},
	"xlsx": {Spreadsheet, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	"ods":  {Spreadsheet, "application/vnd.oasis.opendocument.spreadsheet"},
	"csv":  {Spreadsheet, "text/csv"},
	"tsv":  {Spreadsheet, "text/tab-separated-values"},
	"ppt":  {Presentation, "application/vnd.ms-powerpoint"},
	"pptx": {Presentation, "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
	"odp":  {Presentation, "application/vnd.oasis.opendocument.presentation"},
}

// Ext returns the lowercased extension of path without the leading dot,
// or "" when the base name has none. A dot that starts the base name marks
// a hidden file, not an extension: ".csv" has none, ".notes.csv" has "csv".
func Ext(path string) string {
	base := filepath.Base(path)

	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}

	return strings.ToLower(base[i+1:])
}

// Detect classifies path by extension, case-insensitively. ok is false for
// unknown extensions and for names without one.
func Detect(path string) (Family, bool) {
	e, ok := extensions[Ext(path)]
	if !ok {
		return 0, false
	}

	return e.family, true
}

// SourceMimeType returns the MIME type of the file's own format, falling back
// to application/octet-stream.
func SourceMimeType(path string) string {
	if e, ok := extensions[Ext(path)]; ok {
		return e.source
	}

	return MimeOctetStream
}

// IsSupportedExtension reports whether ext (with or without a leading dot)
// is in the table.
func IsSupportedExtension(ext string) bool {
	_, ok := extensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

// SupportedExtensions returns every supported extension, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensions))
	for e := range extensions {
		exts = append(exts, e)
	}

	slices.Sort(exts)

	return exts
}

// FileDescriptor is what the upload pipeline knows about a local file.
type FileDescriptor struct {
	Path      string
	Name      string
	Extension string
	Size      int64
	Family    Family // zero when unsupported
}

// Supported reports whether the file has a conversion family.
func (d FileDescriptor) Supported() bool {
	return d.Family != 0
}

// Describe stats path and classifies it. Directories are rejected.
func Describe(path string) (FileDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileDescriptor{}, fmt.Errorf("classify: %w", err)
	}

	if info.IsDir() {
		return FileDescriptor{}, fmt.Errorf("classify: %q is a directory, not a file", path)
	}

	family, _ := Detect(path)

	return FileDescriptor{
		Path:      path,
		Name:      filepath.Base(path),
		Extension: Ext(path),
		Size:      info.Size(),
		Family:    family,
	}, nil
}
