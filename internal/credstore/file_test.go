package credstore

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T) *File {
	t.Helper()

	return NewFile(filepath.Join(t.TempDir(), "state", "credentials.json"))
}

func TestFile_RetrieveMissingFile(t *testing.T) {
	f := newTestFile(t)

	value, ok, err := f.Retrieve(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestFile_StoreAndRetrieve(t *testing.T) {
	f := newTestFile(t)

	require.NoError(t, f.Store(KeyClientID, "abc.apps.googleusercontent.com"))
	require.NoError(t, f.Store(KeyPKCEVerifier, "verifier-1"))

	value, ok, err := f.Retrieve(KeyClientID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc.apps.googleusercontent.com", value)

	value, ok, err = f.Retrieve(KeyPKCEVerifier)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "verifier-1", value)
}

func TestFile_StoreOverwrites(t *testing.T) {
	f := newTestFile(t)

	require.NoError(t, f.Store(KeyPKCEVerifier, "first"))
	require.NoError(t, f.Store(KeyPKCEVerifier, "second"))

	value, ok, err := f.Retrieve(KeyPKCEVerifier)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)
}

func TestFile_DeleteIsIdempotent(t *testing.T) {
	f := newTestFile(t)

	require.NoError(t, f.Store(KeyToken, `{"access_token":"a"}`))
	require.NoError(t, f.Delete(KeyToken))
	require.NoError(t, f.Delete(KeyToken))

	_, ok, err := f.Retrieve(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFile_DeleteMissingFile(t *testing.T) {
	f := newTestFile(t)

	assert.NoError(t, f.Delete(KeyClientSecret))

	// Deleting from a store that was never written must not create the file.
	_, err := os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestFile_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permissions")
	}

	f := newTestFile(t)
	require.NoError(t, f.Store(KeyToken, "secret"))

	info, err := os.Stat(f.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePerms), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(f.Path()))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(DirPerms), dirInfo.Mode().Perm())
}

func TestFile_NoTempFilesLeftBehind(t *testing.T) {
	f := newTestFile(t)

	require.NoError(t, f.Store(KeyToken, "a"))
	require.NoError(t, f.Store(KeyPKCEVerifier, "b"))
	require.NoError(t, f.Delete(KeyPKCEVerifier))

	entries, err := os.ReadDir(filepath.Dir(f.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "credentials.json", entries[0].Name())
}

func TestFile_CorruptFileIsSerializationError(t *testing.T) {
	f := newTestFile(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.Path()), DirPerms))
	require.NoError(t, os.WriteFile(f.Path(), []byte(`{not json}`), FilePerms))

	_, _, err := f.Retrieve(KeyToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerialization)
	assert.NotErrorIs(t, err, ErrBackendUnavailable)
}

func TestFile_UnreadableIsBackendUnavailable(t *testing.T) {
	dir := t.TempDir()

	// A directory in place of the file makes ReadFile fail with something
	// other than ErrNotExist.
	f := NewFile(dir)

	_, _, err := f.Retrieve(KeyToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestFile_RereadsOnEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	writer := NewFile(path)
	reader := NewFile(path)

	require.NoError(t, writer.Store(KeyClientID, "one"))

	value, _, err := reader.Retrieve(KeyClientID)
	require.NoError(t, err)
	assert.Equal(t, "one", value)

	require.NoError(t, writer.Store(KeyClientID, "two"))

	value, _, err = reader.Retrieve(KeyClientID)
	require.NoError(t, err)
	assert.Equal(t, "two", value)
}

func TestFile_UnknownKey(t *testing.T) {
	f := newTestFile(t)

	err := f.Store(Key("access_tokne"), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKey)
}
