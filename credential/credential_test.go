package credential

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xxxsen/davsync/daverr"
)

func testProvider(t *testing.T, p IProvider) {
	ctx := context.Background()
	_, err := p.Get(ctx, "s1")
	assert.True(t, daverr.IsKind(err, daverr.KindNotFound))

	err = p.Put(ctx, "s1", "")
	assert.True(t, daverr.IsKind(err, daverr.KindConfig))
	assert.Contains(t, err.Error(), "Password cannot be empty")
	err = p.Put(ctx, "s1", "   ")
	assert.True(t, daverr.IsKind(err, daverr.KindConfig))
	err = p.Put(ctx, " ", "pwd")
	assert.True(t, daverr.IsKind(err, daverr.KindConfig))

	assert.NoError(t, p.Put(ctx, "s1", "pwd1"))
	assert.NoError(t, p.Put(ctx, "s2", "pwd2"))
	v, err := p.Get(ctx, "s1")
	assert.NoError(t, err)
	assert.Equal(t, "pwd1", v)

	assert.NoError(t, p.Put(ctx, "s1", "pwd1-new"))
	v, err = p.Get(ctx, "s1")
	assert.NoError(t, err)
	assert.Equal(t, "pwd1-new", v)

	assert.NoError(t, p.Delete(ctx, "s1"))
	_, err = p.Get(ctx, "s1")
	assert.True(t, daverr.IsKind(err, daverr.KindNotFound))
	err = p.Delete(ctx, "s1")
	assert.True(t, daverr.IsKind(err, daverr.KindNotFound))

	v, err = p.Get(ctx, "s2")
	assert.NoError(t, err)
	assert.Equal(t, "pwd2", v)
}

func TestMemProvider(t *testing.T) {
	testProvider(t, NewMemProvider())
}

func TestFileProvider(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sub", "secret.json")
	testProvider(t, NewFileProvider(file))

	st, err := os.Stat(file)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), st.Mode().Perm())

	// a new provider on the same file sees what the first one stored
	v, err := NewFileProvider(file).Get(context.Background(), "s2")
	assert.NoError(t, err)
	assert.Equal(t, "pwd2", v)
}

func TestFileProviderBroken(t *testing.T) {
	file := filepath.Join(t.TempDir(), "secret.json")
	assert.NoError(t, os.WriteFile(file, []byte("{not json"), 0600))
	_, err := NewFileProvider(file).Get(context.Background(), "s1")
	assert.True(t, daverr.IsKind(err, daverr.KindLocalIO))

	assert.NoError(t, os.WriteFile(file, []byte(""), 0600))
	_, err = NewFileProvider(file).Get(context.Background(), "s1")
	assert.True(t, daverr.IsKind(err, daverr.KindNotFound))
}
