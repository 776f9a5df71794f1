package reader

import (
	"errors"
	"io"
)

// SubStream is a read/seek window of a fixed length over another stream,
// anchored where that stream was positioned when the window was created.
//
// It does not own the underlying stream. Reads and seeks move the
// underlying cursor, so only one SubStream should be active per stream.
type SubStream struct {
	s      io.ReadSeeker
	start  int64
	length int64
	pos    int64
}

// NewSubStream returns a window of length bytes starting at the current
// position of s.
func NewSubStream(s io.ReadSeeker, length int64) (*SubStream, error) {
	start, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, &IOError{Op: "seek", Err: err}
	}
	return &SubStream{s: s, start: start, length: length}, nil
}

// Size returns the length of the window.
func (r *SubStream) Size() int64 { return r.length }

// Len returns the number of unread bytes left in the window.
func (r *SubStream) Len() int64 {
	if r.pos >= r.length {
		return 0
	}
	return r.length - r.pos
}

// Read reads up to len(p) bytes without crossing the end of the window.
// Short reads are not errors.
func (r *SubStream) Read(p []byte) (int, error) {
	if r.pos >= r.length {
		return 0, io.EOF
	}
	if remaining := r.length - r.pos; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := r.s.Read(p)
	r.pos += int64(n)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		if n > 0 {
			return n, nil
		}
		return 0, io.ErrUnexpectedEOF
	default:
		return n, &IOError{Op: "read", Err: err}
	}
}

// Seek implements io.Seeker relative to the window. Positions past the end
// are allowed and read as EOF.
func (r *SubStream) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += r.pos
	case io.SeekEnd:
		offset += r.length
	default:
		return r.pos, ErrWhence
	}
	if offset < 0 {
		return r.pos, ErrNegativeOffset
	}
	if _, err := r.s.Seek(r.start+offset, io.SeekStart); err != nil {
		return r.pos, &IOError{Op: "seek", Err: err}
	}
	r.pos = offset
	return r.pos, nil
}

// Write always fails; the window is read-only.
func (r *SubStream) Write([]byte) (int, error) { return 0, ErrUnsupported }

// Truncate always fails; the window length is fixed.
func (r *SubStream) Truncate(int64) error { return ErrUnsupported }
