package reader

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

type testFile struct {
	name   string
	body   []byte
	method uint16
	dir    bool
}

// buildArchive writes files into an in-memory zip using archive/zip.
func buildArchive(t *testing.T, files []testFile, comment string) []byte {
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
	if comment != "" {
		require.NoError(t, w.SetComment(comment))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func seq(n int, start byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = start + byte(i)
	}
	return b
}

// oneByteReader returns at most one byte per Read.
type oneByteReader struct {
	*bytes.Reader
}

func (r oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return r.Reader.Read(p[:1])
}

var errBroken = errors.New("broken source")

// failingSource behaves like data until failAt reads, then fails.
type failingSource struct {
	*bytes.Reader
	reads  int
	failAt int
}

func (f *failingSource) Read(p []byte) (int, error) {
	f.reads++
	if f.reads >= f.failAt {
		return 0, errBroken
	}
	return f.Reader.Read(p)
}

var _ io.ReadSeeker = (*failingSource)(nil)
