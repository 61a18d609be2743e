package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/gopener/internal/auth"
	"github.com/tonimelisma/gopener/internal/upload"
)

func writeUploadFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// uploadServer answers uploads and records the last request body.
func uploadServer(t *testing.T, body *atomic.Pointer[string]) string {
	t.Helper()

	return newDriveServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload/drive/v3/files", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		s := string(data)
		body.Store(&s)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"doc-1","name":"notes.docx","mimeType":"application/vnd.google-apps.document"}`))
	})
}

func TestUpload_JSONResult(t *testing.T) {
	var body atomic.Pointer[string]

	env := newTestEnv(t, uploadServer(t, &body))
	env.storeFreshToken(t, "tok")

	out, err := env.run(t, "upload", writeUploadFile(t, "notes.docx", "hello"), "--json")
	require.NoError(t, err)

	var res upload.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, upload.Result{
		FileID:      "doc-1",
		Name:        "notes.docx",
		WebViewLink: "https://docs.google.com/document/d/doc-1/edit",
		FileType:    "Google Docs",
	}, res)

	require.NotNil(t, body.Load())
	assert.Contains(t, *body.Load(), "hello")
	assert.NotContains(t, *body.Load(), "parents")
}

func TestUpload_FolderFromConfigAndFlag(t *testing.T) {
	var body atomic.Pointer[string]

	env := newTestEnv(t, uploadServer(t, &body))
	env.storeFreshToken(t, "tok")

	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("\n[upload]\ndefault_folder_id = \"cfg-folder\"\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	path := writeUploadFile(t, "notes.docx", "x")

	_, err = env.run(t, "upload", path, "--quiet")
	require.NoError(t, err)
	assert.Contains(t, *body.Load(), `"parents":["cfg-folder"]`)

	_, err = env.run(t, "upload", path, "--folder", "flag-folder", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, *body.Load(), `"parents":["flag-folder"]`)
}

func TestUpload_TextOutput(t *testing.T) {
	var body atomic.Pointer[string]

	env := newTestEnv(t, uploadServer(t, &body))
	env.storeFreshToken(t, "tok")

	out, err := env.run(t, "upload", writeUploadFile(t, "notes.docx", "x"))
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded notes.docx as Google Docs")
	assert.Contains(t, out, "ID:   doc-1")
}

func TestUpload_NotSignedIn(t *testing.T) {
	var calls atomic.Int32

	env := newTestEnv(t, newDriveServer(t, func(http.ResponseWriter, *http.Request) { calls.Add(1) }))

	_, err := env.run(t, "upload", writeUploadFile(t, "notes.docx", "x"))
	require.ErrorIs(t, err, auth.ErrNotAuthenticated)
	assert.Zero(t, calls.Load())
}

func TestUpload_UnsupportedType(t *testing.T) {
	env := newTestEnv(t, "")
	env.storeFreshToken(t, "tok")

	_, err := env.run(t, "upload", writeUploadFile(t, "photo.png", "x"))
	require.ErrorIs(t, err, upload.ErrUnsupportedFileType)
}

func TestUpload_RequiresOneArg(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.run(t, "upload")
	assert.Error(t, err)
}
