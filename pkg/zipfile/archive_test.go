package zipfile

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	awssdk "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alec-rabold/zipview/pkg/aws"
	"github.com/alec-rabold/zipview/pkg/reader"
)

type testFile struct {
	name   string
	body   []byte
	method uint16
	dir    bool
}

func buildArchive(t *testing.T, files []testFile) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range files {
		fh := &zip.FileHeader{Name: f.name, Method: f.method}
		if f.dir {
			fh.SetMode(os.ModeDir | 0o755)
		}
		fw, err := w.CreateHeader(fh)
		require.NoError(t, err)
		if len(f.body) > 0 {
			_, err = fw.Write(f.body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeArchive(t *testing.T, files []testFile) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "photos.zip")
	require.NoError(t, ioutil.WriteFile(p, buildArchive(t, files), 0o644))
	return p
}

var photos = []testFile{
	{name: "album/", dir: true},
	{name: "album/a.jpg", body: bytes.Repeat([]byte{0xff, 0xd8}, 40)},
	{name: "album/b.JPG", body: []byte("second image")},
	{name: "album/notes.txt", body: []byte("not an image")},
	{name: "album/c.jpg", body: bytes.Repeat([]byte("deflated "), 50), method: zip.Deflate},
}

// countingOpener tracks how many handles are open.
type countingOpener struct {
	open  Opener
	opens int
	live  int
}

type countedSource struct {
	Source
	c *countingOpener
}

func (s *countedSource) Close() error {
	s.c.live--
	return s.Source.Close()
}

func (c *countingOpener) Open() (Source, error) {
	src, err := c.open()
	if err != nil {
		return nil, err
	}
	c.opens++
	c.live++
	return &countedSource{Source: src, c: c}, nil
}

func TestOpenAndReadEntry(t *testing.T) {
	path := writeArchive(t, photos)
	c := &countingOpener{open: FileOpener(path)}

	a, err := Open("photos.zip", c.Open, All(Extensions(".jpg"), NotDirectory, StoredOnly))
	require.NoError(t, err)
	assert.Equal(t, 0, c.live)

	var names []string
	for _, e := range a.Entries() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"album/a.jpg", "album/b.JPG"}, names)

	got, err := a.ReadEntry(a.Entries()[1], true)
	require.NoError(t, err)
	assert.Equal(t, []byte("second image"), got)
	assert.Equal(t, 0, c.live)
	assert.Equal(t, 2, c.opens)
}

func TestOpenEntryIndependentHandles(t *testing.T) {
	path := writeArchive(t, photos)
	a, err := Open("photos.zip", FileOpener(path), StoredOnly)
	require.NoError(t, err)

	first, err := a.Find("album/a.jpg")
	require.NoError(t, err)
	second, err := a.Find("album/notes.txt")
	require.NoError(t, err)

	r1, err := a.OpenEntry(first)
	require.NoError(t, err)
	defer r1.Close()
	r2, err := a.OpenEntry(second)
	require.NoError(t, err)
	defer r2.Close()

	// interleave reads; each payload keeps its own cursor
	var got1, got2 []byte
	buf := make([]byte, 3)
	for {
		n1, err1 := r1.Read(buf)
		got1 = append(got1, buf[:n1]...)
		n2, err2 := r2.Read(buf)
		got2 = append(got2, buf[:n2]...)
		if err1 == io.EOF && err2 == io.EOF {
			break
		}
	}
	assert.Equal(t, photos[1].body, got1)
	assert.Equal(t, photos[3].body, got2)

	pos, err := r1.Seek(-2, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(len(photos[1].body)-2), pos)
	tail, err := ioutil.ReadAll(r1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, tail)
}

func TestOpenEntryRefusesCompressedAndDirectories(t *testing.T) {
	path := writeArchive(t, photos)
	c := &countingOpener{open: FileOpener(path)}
	a, err := Open("photos.zip", c.Open, nil)
	require.NoError(t, err)
	require.Len(t, a.Entries(), len(photos))

	dir, err := a.Find("album/")
	require.NoError(t, err)
	_, err = a.OpenEntry(dir)
	assert.True(t, errors.Is(err, ErrIsDir))

	deflated, err := a.Find("album/c.jpg")
	require.NoError(t, err)
	_, err = a.OpenEntry(deflated)
	assert.True(t, errors.Is(err, ErrNotStored))
	_, err = a.ReadEntry(deflated, false)
	assert.True(t, errors.Is(err, ErrNotStored))

	assert.Equal(t, 1, c.opens)
	assert.Equal(t, 0, c.live)
}

func TestReadEntryChecksumMismatch(t *testing.T) {
	path := writeArchive(t, photos)
	a, err := Open("photos.zip", FileOpener(path), nil)
	require.NoError(t, err)

	e, err := a.Find("album/notes.txt")
	require.NoError(t, err)
	bad := *e
	bad.CRC32 ^= 1

	_, err = a.ReadEntry(&bad, true)
	assert.True(t, errors.Is(err, ErrChecksum))

	got, err := a.ReadEntry(&bad, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("not an image"), got)
}

func TestOpenEntryCorruptLocalHeader(t *testing.T) {
	path := writeArchive(t, photos)
	c := &countingOpener{open: FileOpener(path)}
	a, err := Open("photos.zip", c.Open, nil)
	require.NoError(t, err)

	e, err := a.Find("album/a.jpg")
	require.NoError(t, err)
	bad := *e
	bad.Position += 2

	_, err = a.OpenEntry(&bad)
	assert.True(t, errors.Is(err, reader.ErrFormat))
	assert.Equal(t, 0, c.live)
}

func TestOpenNotAnArchive(t *testing.T) {
	p := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, ioutil.WriteFile(p, bytes.Repeat([]byte{0xff}, 300), 0o644))
	c := &countingOpener{open: FileOpener(p)}

	_, err := Open("photo.jpg", c.Open, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, reader.ErrFormat))
	assert.Equal(t, 0, c.live)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("missing.zip", FileOpener(filepath.Join(t.TempDir(), "missing.zip")), nil)
	assert.True(t, os.IsNotExist(err))
}

func TestFindNotFound(t *testing.T) {
	a, err := Open("photos.zip", FileOpener(writeArchive(t, photos)), Extensions("jpg"))
	require.NoError(t, err)
	_, err = a.Find("album/notes.txt")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "photos.zip", a.Name())
}

// fakeS3 serves one in-memory object.
type fakeS3 struct {
	s3iface.S3API
	data []byte
	gets int
}

func (f *fakeS3) HeadObjectWithContext(context.Context, *s3.HeadObjectInput, ...request.Option) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{ContentLength: awssdk.Int64(int64(len(f.data)))}, nil
}

func (f *fakeS3) GetObjectWithContext(_ context.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.gets++
	var start, end int
	if _, err := fmt.Sscanf(awssdk.StringValue(in.Range), "bytes=%d-%d", &start, &end); err != nil {
		return nil, err
	}
	return &s3.GetObjectOutput{Body: ioutil.NopCloser(bytes.NewReader(f.data[start : end+1]))}, nil
}

func TestS3Archive(t *testing.T) {
	api := &fakeS3{data: buildArchive(t, photos)}
	client := aws.NewClientWithAPI(api)

	a, err := Open("s3://bucket/photos.zip", S3Opener(context.Background(), client, "bucket", "photos.zip"), All(Extensions(".jpg", ".jpeg"), StoredOnly))
	require.NoError(t, err)
	require.Len(t, a.Entries(), 2)

	got, err := a.ReadEntry(a.Entries()[0], true)
	require.NoError(t, err)
	assert.Equal(t, photos[1].body, got)
	assert.NotZero(t, api.gets)
}
