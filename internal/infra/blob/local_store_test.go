package blob

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelativePath(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"", ""},
		{"/uploads/orders/a.png", "orders/a.png"},
		{"uploads/orders/a.png", "orders/a.png"},
		{"https://cdn.example.com/uploads/orders/a.png", "orders/a.png"},
		{"\\uploads\\orders\\a.png", "orders/a.png"},
		{"orders/a.png", "orders/a.png"},
		{"/uploads/../../etc/passwd", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativePath(tt.ref))
		})
	}
}

func TestLocalStore_PutAndDelete(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := NewLocalStore(fsys, "/srv/uploads")
	ctx := context.Background()

	rel, err := store.Put(ctx, []byte("png"), "orders", "PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "orders/"))
	assert.True(t, strings.HasSuffix(rel, ".png"))

	data, err := afero.ReadFile(fsys, "/srv/uploads/"+rel)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	url := store.PublicURL(rel)
	assert.Equal(t, "/uploads/"+rel, url)

	require.NoError(t, store.Delete(ctx, url))
	exists, err := afero.Exists(fsys, "/srv/uploads/"+rel)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStore_DeleteMissingFile(t *testing.T) {
	store := NewLocalStore(afero.NewMemMapFs(), "/srv/uploads")

	assert.NoError(t, store.Delete(context.Background(), "/uploads/orders/gone.png"))
	assert.NoError(t, store.Delete(context.Background(), ""))
}

func TestLocalStore_PutKeepsFolderInsideRoot(t *testing.T) {
	store := NewLocalStore(afero.NewMemMapFs(), "/srv/uploads")

	rel, err := store.Put(context.Background(), []byte("x"), "../../tmp", ".jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "tmp/"))
}
