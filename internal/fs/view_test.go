package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bazil.org/fuse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testView builds a view whose shadow tree mirrors a temp "real"
// directory. Returns the view, the real dir and the shadow dir.
func testView(t *testing.T, opts Options) (*ViewFS, string, string) {
	t.Helper()

	real := t.TempDir()
	shadow := t.TempDir()

	opts.Root = shadow
	v, err := NewViewFS(opts)
	require.NoError(t, err)
	return v, real, shadow
}

// shadowPath returns the shadow location of a host path.
func shadowPath(shadow, hostPath string) string {
	return filepath.Join(shadow, hostPath)
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func TestEffectivePrefersShadowEntry(t *testing.T) {
	v, real, shadow := testView(t, Options{})

	hostFile := filepath.Join(real, "hosts")
	writeFile(t, hostFile, "real")
	writeFile(t, shadowPath(shadow, hostFile), "tee hee")

	assert.Equal(t, shadowPath(shadow, hostFile), v.effective(hostFile, true))
}

func TestEffectiveFallsThroughWithoutShadowEntry(t *testing.T) {
	v, real, _ := testView(t, Options{})

	hostFile := filepath.Join(real, "passwd")
	writeFile(t, hostFile, "real")

	assert.Equal(t, hostFile, v.effective(hostFile, true))
}

func TestEffectiveRedirectMissing(t *testing.T) {
	v, real, shadow := testView(t, Options{RedirectMissing: true})

	hostFile := filepath.Join(real, "absent")
	assert.Equal(t, shadowPath(shadow, hostFile), v.effective(hostFile, true))
}

func TestListPathHonorsInterceptFlag(t *testing.T) {
	withDirs, real, shadow := testView(t, Options{InterceptDirs: true})
	require.NoError(t, os.MkdirAll(shadowPath(shadow, real), 0o755))
	assert.Equal(t, shadowPath(shadow, real), withDirs.listPath(real))

	withoutDirs, real2, shadow2 := testView(t, Options{})
	require.NoError(t, os.MkdirAll(shadowPath(shadow2, real2), 0o755))
	assert.Equal(t, real2, withoutDirs.listPath(real2))
}

func TestDirLookupFindsShadowedFile(t *testing.T) {
	v, real, shadow := testView(t, Options{})
	writeFile(t, shadowPath(shadow, filepath.Join(real, "hosts")), "tee hee")

	d := &Dir{fs: v, path: real}
	node, err := d.Lookup(context.Background(), "hosts")
	require.NoError(t, err)

	file, ok := node.(*File)
	require.True(t, ok, "expected a file node")

	var attr fuse.Attr
	require.NoError(t, file.Attr(context.Background(), &attr))
	assert.Equal(t, uint64(len("tee hee")), attr.Size)
}

func TestDirLookupFallsThroughToRealFile(t *testing.T) {
	v, real, _ := testView(t, Options{})
	writeFile(t, filepath.Join(real, "passwd"), "real contents")

	d := &Dir{fs: v, path: real}
	node, err := d.Lookup(context.Background(), "passwd")
	require.NoError(t, err)

	file, ok := node.(*File)
	require.True(t, ok)

	var attr fuse.Attr
	require.NoError(t, file.Attr(context.Background(), &attr))
	assert.Equal(t, uint64(len("real contents")), attr.Size)
}

func TestDirLookupMissingEntry(t *testing.T) {
	v, real, _ := testView(t, Options{})

	d := &Dir{fs: v, path: real}
	_, err := d.Lookup(context.Background(), "nope")
	assert.Error(t, err)
}

func TestReadDirAllListsShadowOnlyWhenIntercepting(t *testing.T) {
	v, real, shadow := testView(t, Options{InterceptDirs: true})

	writeFile(t, filepath.Join(real, "a"), "")
	writeFile(t, filepath.Join(real, "b"), "")
	writeFile(t, shadowPath(shadow, filepath.Join(real, "x")), "")

	d := &Dir{fs: v, path: real}
	entries, err := d.ReadDirAll(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name != "." && e.Name != ".." {
			names = append(names, e.Name)
		}
	}
	assert.Equal(t, []string{"x"}, names,
		"an intercepted listing shows exactly the shadow entries")
}

func TestReadDirAllListsRealWithoutInterception(t *testing.T) {
	v, real, shadow := testView(t, Options{})

	writeFile(t, filepath.Join(real, "a"), "")
	writeFile(t, shadowPath(shadow, filepath.Join(real, "x")), "")

	d := &Dir{fs: v, path: real}
	entries, err := d.ReadDirAll(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name != "." && e.Name != ".." {
			names = append(names, e.Name)
		}
	}
	assert.Equal(t, []string{"a"}, names)
}

func TestFileOpenReadsShadowContent(t *testing.T) {
	v, real, shadow := testView(t, Options{})

	hostFile := filepath.Join(real, "hosts")
	writeFile(t, hostFile, "real")
	writeFile(t, shadowPath(shadow, hostFile), "tee hee")

	f := &File{fs: v, path: hostFile}
	var resp fuse.OpenResponse
	handle, err := f.Open(context.Background(), &fuse.OpenRequest{Flags: fuse.OpenReadOnly}, &resp)
	require.NoError(t, err)

	fh, ok := handle.(*FileHandle)
	require.True(t, ok)
	defer func() {
		require.NoError(t, fh.Release(context.Background(), nil))
	}()

	var readResp fuse.ReadResponse
	require.NoError(t, fh.Read(context.Background(), &fuse.ReadRequest{Size: 64}, &readResp))
	assert.Equal(t, "tee hee", string(readResp.Data))
}

func TestFileOpenRefusesWrites(t *testing.T) {
	v, real, shadow := testView(t, Options{})

	hostFile := filepath.Join(real, "hosts")
	writeFile(t, shadowPath(shadow, hostFile), "tee hee")

	f := &File{fs: v, path: hostFile}
	var resp fuse.OpenResponse
	_, err := f.Open(context.Background(), &fuse.OpenRequest{Flags: fuse.OpenReadWrite}, &resp)
	assert.Error(t, err)
}

func TestNewViewFSRejectsRelativeRoot(t *testing.T) {
	_, err := NewViewFS(Options{Root: "relative/root"})
	assert.Error(t, err)
}

func TestNewViewFSRejectsMissingRoot(t *testing.T) {
	_, err := NewViewFS(Options{Root: "/no/such/shadow/root"})
	assert.Error(t, err)
}
