package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-accounts/internal/models"
)

func strPtr(s string) *string { return &s }

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	return s
}

func TestNew_SeedsEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "db.json")

	s, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"users": []}`, string(data))

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Users)
}

func TestNew_KeepsExistingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"users":[{"name":"Ana","email":"ana@x.com","password":"p1","activeUntil":null,"apiKey":null}]}`), 0o600))

	s, err := New(path)
	require.NoError(t, err)

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Users, 1)
	assert.Equal(t, "Ana", doc.Users[0].Name)
}

func TestNew_CorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{users:"},
		{name: "empty file", content: ""},
		{name: "missing users", content: `{"accounts": []}`},
		{name: "users is not a list", content: `{"users": {"a": 1}}`},
		{name: "users is null", content: `{"users": null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "db.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := New(path)
			assert.ErrorIs(t, err, ErrCorruptStore)
		})
	}
}

func TestLoad_CorruptAfterStart(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("garbage"), 0o600))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrCorruptStore)
}

func TestLoad_FileRemoved(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.Remove(s.Path()))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestSaveLoad_PreservesOrderAndNulls(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	in := &models.Document{Users: []models.User{
		{Name: "Ana", Email: "ana@x.com", Password: "p1"},
		{Name: "Bob", Email: "bob@x.com", Password: "p2", ActiveUntil: strPtr("2030-01-01"), APIKey: strPtr("abc")},
		{Name: "Cid", Email: "cid@x.com", Password: "p3"},
	}}
	require.NoError(t, s.Save(ctx, in))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"activeUntil": null`)
	assert.Contains(t, string(data), `"apiKey": null`)
	assert.Contains(t, string(data), "\n  \"users\": [")
}

func TestUpdate_KeepsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "settings": {"theme": "dark", "limits": [1, 2]},
  "users": [
    {"name": "Ana", "email": "ana@x.com", "password": "p1", "activeUntil": null, "apiKey": null, "role": "vip", "tags": ["a"]}
  ],
  "version": 3
}`), 0o600))

	s, err := New(path)
	require.NoError(t, err)
	ctx := context.Background()

	err = s.Update(ctx, func(doc *models.Document) error {
		doc.Users = append(doc.Users, models.User{Name: "Bob", Email: "bob@x.com", Password: "p2"})
		return nil
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
  "settings": {"theme": "dark", "limits": [1, 2]},
  "users": [
    {"name": "Ana", "email": "ana@x.com", "password": "p1", "activeUntil": null, "apiKey": null, "role": "vip", "tags": ["a"]},
    {"name": "Bob", "email": "bob@x.com", "password": "p2", "activeUntil": null, "apiKey": null}
  ],
  "version": 3
}`, string(data))
	assert.Contains(t, string(data), "\n  \"users\": [")

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `"vip"`, string(doc.Users[0].Extra["role"]))
	assert.Nil(t, doc.Users[1].Extra)
}

func TestSave_FilePermissions(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(context.Background(), &models.Document{Users: []models.User{{Email: "a"}}}))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Zero(t, info.Mode().Perm()&0o077, "document must not be readable by others")
}

func TestSave_ReplacesContentInFull(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.Document{Users: []models.User{{Email: "a"}, {Email: "b"}}}))
	require.NoError(t, s.Save(ctx, &models.Document{Users: []models.User{{Email: "c"}}}))

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Users, 1)
	assert.Equal(t, "c", doc.Users[0].Email)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSave_NilUsersWrittenAsEmptyList(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(context.Background(), &models.Document{}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"users": []}`, string(data))
}

func TestLoad_ReturnsPrivateCopy(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, &models.Document{Users: []models.User{{Email: "ana@x.com"}}}))

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	doc.Users[0].Email = "changed"

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", again.Users[0].Email)
}

func TestUpdate_PersistsMutation(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(doc *models.Document) error {
		doc.Users = append(doc.Users, models.User{Name: "Ana", Email: "ana@x.com"})
		return nil
	})
	require.NoError(t, err)

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Users, 1)
}

func TestUpdate_ErrorLeavesDocumentUnchanged(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, &models.Document{Users: []models.User{{Email: "ana@x.com"}}}))
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	errAbort := errors.New("abort")
	err = s.Update(ctx, func(doc *models.Document) error {
		doc.Users = nil
		return errAbort
	})
	assert.Same(t, errAbort, err)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdate_ConcurrentCallsLoseNothing(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			err := s.Update(ctx, func(doc *models.Document) error {
				doc.Users = append(doc.Users, models.User{Email: fmt.Sprintf("user%d@x.com", i)})
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Users, n)
}

func TestCanceledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Save(ctx, &models.Document{}), context.Canceled)
	assert.ErrorIs(t, s.Update(ctx, func(*models.Document) error { return nil }), context.Canceled)
}

func TestClose(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, s.Save(ctx, &models.Document{}), ErrStorageUnavailable)
	assert.ErrorIs(t, s.Update(ctx, func(*models.Document) error { return nil }), ErrStorageUnavailable)
}
