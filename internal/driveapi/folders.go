package driveapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"google.golang.org/api/drive/v3"
)

// MimeFolder is the MIME type Drive uses for folders.
const MimeFolder = "application/vnd.google-apps.folder"

// RootFolderID is the alias for the user's My Drive root.
const RootFolderID = "root"

const (
	folderFields   = "id,name,mimeType"
	folderPageSize = "100"
)

// queryEscaper escapes a value placed inside single quotes in a Drive query.
var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// ListFolders returns the non-trashed folders directly under parentID (the
// My Drive root when empty), ordered by name. Only the first page of 100 is
// returned.
func (c *Client) ListFolders(ctx context.Context, parentID string) ([]*drive.File, error) {
	if parentID == "" {
		parentID = RootFolderID
	}

	q := fmt.Sprintf("mimeType='%s' and trashed=false and '%s' in parents",
		MimeFolder, queryEscaper.Replace(parentID))

	query := url.Values{
		"q":        {q},
		"fields":   {"files(" + folderFields + ")"},
		"orderBy":  {"name"},
		"pageSize": {folderPageSize},
	}

	var list drive.FileList
	if err := c.Get(ctx, "/files", query, &list); err != nil {
		return nil, fmt.Errorf("driveapi: listing folders in %s: %w", parentID, err)
	}

	c.logger.Debug("listed folders",
		slog.String("parent", parentID),
		slog.Int("count", len(list.Files)),
	)

	return list.Files, nil
}

// CreateFolder creates a folder named name under parentID (the My Drive root
// when empty).
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*drive.File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("driveapi: folder name is empty")
	}

	meta := &drive.File{
		Name:     name,
		MimeType: MimeFolder,
	}

	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	var created drive.File
	if err := c.Post(ctx, "/files", url.Values{"fields": {folderFields}}, meta, &created); err != nil {
		return nil, fmt.Errorf("driveapi: creating folder %q: %w", name, err)
	}

	c.logger.Info("created folder",
		slog.String("id", created.Id),
		slog.String("name", created.Name),
	)

	return &created, nil
}
