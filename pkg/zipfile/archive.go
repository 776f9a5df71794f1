package zipfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alec-rabold/zipview/pkg/aws"
	"github.com/alec-rabold/zipview/pkg/reader"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrNotStored indicates an entry whose payload is compressed
	ErrNotStored = errors.New("zipfile: entry is not stored")
	// ErrIsDir indicates a directory entry, which has no payload
	ErrIsDir = errors.New("zipfile: entry is a directory")
	// ErrChecksum indicates a payload whose CRC-32 does not match its header
	ErrChecksum = errors.New("zipfile: checksum mismatch")
	// ErrNotFound indicates no listed entry has the requested name
	ErrNotFound = errors.New("zipfile: entry not found")
)

// Source is a random-access byte source that the archive owns and closes.
type Source interface {
	io.ReadSeeker
	io.Closer
}

// Opener returns a fresh, independently positioned handle on the archive bytes.
type Opener func() (Source, error)

// FileOpener opens the local file at path.
func FileOpener(path string) Opener {
	return func() (Source, error) {
		return os.Open(path)
	}
}

// S3Opener opens bucket/key through ranged GETs.
func S3Opener(ctx context.Context, client *aws.Client, bucket, key string) Opener {
	return func() (Source, error) {
		return client.OpenObject(ctx, bucket, key)
	}
}

// Archive is the filtered listing of a zip archive. Every payload is read
// through its own handle, so payloads never share a cursor with each other
// or with the listing.
type Archive struct {
	name    string
	open    Opener
	entries []*reader.DirectoryHeader
}

// Open lists the entries of the archive accepted by filter.
func Open(name string, open Opener, filter reader.Filter) (*Archive, error) {
	src, err := open()
	if err != nil {
		log.Errorf("error opening archive (name: %s), err: %v", name, err)
		return nil, err
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Errorf("error closing archive (name: %s), err: %v", name, err)
		}
	}()

	entries, err := reader.ListEntries(src, filter)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", name, err)
	}
	log.WithFields(log.Fields{"archive": name, "entries": len(entries)}).Debug("listed central directory")
	return &Archive{name: name, open: open, entries: entries}, nil
}

// Name returns the name the archive was opened with.
func (a *Archive) Name() string { return a.name }

// Entries returns the accepted entries in central directory order.
func (a *Archive) Entries() []*reader.DirectoryHeader { return a.entries }

// Find returns the first entry whose raw name equals name.
func (a *Archive) Find(name string) (*reader.DirectoryHeader, error) {
	for _, e := range a.entries {
		if e.Name() == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%s in %s: %w", name, a.name, ErrNotFound)
}

// OpenEntry returns the payload of a stored entry. Closing it closes the
// handle opened for it.
func (a *Archive) OpenEntry(e *reader.DirectoryHeader) (io.ReadSeekCloser, error) {
	if e.IsDir() {
		return nil, fmt.Errorf("%s: %w", e.Name(), ErrIsDir)
	}
	if !e.IsStored() {
		return nil, fmt.Errorf("%s (method %d): %w", e.Name(), e.Method, ErrNotStored)
	}
	src, err := a.open()
	if err != nil {
		log.Errorf("error opening archive (name: %s), err: %v", a.name, err)
		return nil, err
	}
	s, err := reader.OpenPayload(e, src)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("opening %s in %s: %w", e.Name(), a.name, err)
	}
	return &payload{SubStream: s, src: src}, nil
}

// ReadEntry reads the whole payload of a stored entry. With verify set, the
// bytes are checked against the CRC-32 recorded in the central directory.
func (a *Archive) ReadEntry(e *reader.DirectoryHeader, verify bool) ([]byte, error) {
	rc, err := a.OpenEntry(e)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buf := make([]byte, e.DataSize())
	if _, err := io.ReadFull(rc, buf); err != nil {
		return nil, fmt.Errorf("reading %s in %s: %w", e.Name(), a.name, err)
	}
	if verify {
		if sum := reader.Checksum(buf); sum != e.CRC32 {
			log.WithFields(log.Fields{"archive": a.name, "entry": e.Name()}).
				Warnf("crc32 %08x, header says %08x", sum, e.CRC32)
			return nil, fmt.Errorf("%s: %w", e.Name(), ErrChecksum)
		}
	}
	return buf, nil
}

// payload ties a SubStream to the handle it was opened on.
type payload struct {
	*reader.SubStream
	src Source
}

func (p *payload) Close() error { return p.src.Close() }
