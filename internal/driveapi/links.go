package driveapi

import "net/url"

// FileURL returns the browser URL for a Drive file: the matching editor for
// Google Docs, Sheets and Slides, the generic viewer for anything else.
func FileURL(fileID, mimeType string) string {
	id := url.PathEscape(fileID)

	switch mimeType {
	case "application/vnd.google-apps.document":
		return "https://docs.google.com/document/d/" + id + "/edit"
	case "application/vnd.google-apps.spreadsheet":
		return "https://docs.google.com/spreadsheets/d/" + id + "/edit"
	case "application/vnd.google-apps.presentation":
		return "https://docs.google.com/presentation/d/" + id + "/edit"
	case MimeFolder:
		return "https://drive.google.com/drive/folders/" + id
	default:
		return "https://drive.google.com/file/d/" + id + "/view"
	}
}
