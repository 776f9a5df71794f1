package reader

import (
	"encoding/binary"
	"errors"
	"io"
)

// ListEntries walks the central directory of the archive in src and returns
// the entries accepted by filter, in directory order. A nil filter accepts
// every entry. Any malformed record aborts the whole listing.
//
// The cursor of src is moved as a side effect.
func ListEntries(src io.ReadSeeker, filter Filter) ([]*DirectoryHeader, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &IOError{Op: "seek", Err: err}
	}
	dir, err := ReadDirectoryEnd(src, size)
	if err != nil {
		return nil, err
	}
	if err := seekTo(src, int64(dir.DirectoryOffset)); err != nil {
		return nil, err
	}

	var entries []*DirectoryHeader
	for i := 0; i < int(dir.Records); i++ {
		h, err := ReadDirectoryHeader(src)
		if err != nil {
			return nil, err
		}
		if filter == nil || filter(h) {
			entries = append(entries, h)
		}
	}
	return entries, nil
}

// OpenPayload positions src at the payload of entry and returns a window of
// entry.CompressedSize bytes over it. The compression method is not checked:
// for anything other than Store the window holds compressed bytes.
//
// The returned stream shares the cursor of src and does not close it.
func OpenPayload(entry *DirectoryHeader, src io.ReadSeeker) (*SubStream, error) {
	if err := seekTo(src, int64(entry.Position)); err != nil {
		return nil, err
	}
	var buf [fileHeaderLen]byte
	if err := readFull(src, buf[:], "corrupt local file header"); err != nil {
		return nil, err
	}
	b := readBuf(buf[:])
	if sig := b.uint32(); sig != fileHeaderSignature {
		return nil, FormatError("corrupt local file header")
	}
	h := b.fileHeader()
	skip := int64(h.FilenameLength) + int64(h.ExtraFieldLength)
	if _, err := src.Seek(skip, io.SeekCurrent); err != nil {
		return nil, &IOError{Op: "seek", Err: err}
	}
	return NewSubStream(src, entry.DataSize())
}

// ReadDirectoryEnd locates and decodes the end of central directory record
// of a source of totalSize bytes. The record is expected in the last 22
// bytes; when an archive comment pushes it earlier, the tail of the source
// is scanned backward for it.
func ReadDirectoryEnd(r io.ReadSeeker, totalSize int64) (*DirectoryEnd, error) {
	if totalSize < directoryEndLen {
		return nil, FormatError("source too small")
	}
	if err := seekTo(r, totalSize-directoryEndLen); err != nil {
		return nil, err
	}
	var rec [directoryEndLen]byte
	if err := readFull(r, rec[:], "truncated end of central directory"); err != nil {
		return nil, err
	}
	offset := totalSize - directoryEndLen
	buf := rec[:]
	if binary.LittleEndian.Uint32(buf) != directoryEndSignature {
		tail, p, err := scanDirectoryEnd(r, totalSize)
		if err != nil {
			return nil, err
		}
		buf = tail[p : p+directoryEndLen]
		offset = totalSize - int64(len(tail)) + int64(p)
	}

	b := readBuf(buf[10:]) // skip signature & disk numbers & this-disk count
	d := &DirectoryEnd{
		Records:            b.uint16(),
		DirectorySize:      b.uint32(),
		DirectoryOffset:    b.uint32(),
		DirectoryEndOffset: offset,
		CommentLength:      b.uint16(),
	}
	// Make sure directoryOffset points to somewhere in our file.
	if int64(d.DirectoryOffset) > offset {
		return nil, FormatError("central directory offset out of range")
	}
	return d, nil
}

// scanDirectoryEnd reads the last 22+65535 bytes of r and returns them with
// the index of the EOCD record whose comment runs exactly to the end.
func scanDirectoryEnd(r io.ReadSeeker, totalSize int64) ([]byte, int, error) {
	n := int64(directoryEndLen + maxCommentLen)
	if n > totalSize {
		n = totalSize
	}
	if err := seekTo(r, totalSize-n); err != nil {
		return nil, 0, err
	}
	buf := make([]byte, n)
	if err := readFull(r, buf, "truncated end of central directory"); err != nil {
		return nil, 0, err
	}
	if p := findEOCDSignatureInBlock(buf); p >= 0 {
		return buf, p, nil
	}
	return nil, 0, FormatError("end-of-central-directory signature not found")
}

func findEOCDSignatureInBlock(b []byte) int {
	for i := len(b) - directoryEndLen; i >= 0; i-- {
		if binary.LittleEndian.Uint32(b[i:i+4]) == directoryEndSignature {
			commentLength := int(b[i+directoryEndLen-2]) | int(b[i+directoryEndLen-1])<<8
			if commentLength+directoryEndLen+i == len(b) {
				return i
			}
		}
	}
	return -1
}

// ReadDirectoryHeader decodes one central directory entry at the current
// position of r and leaves r just past its trailing comment.
func ReadDirectoryHeader(r io.ReadSeeker) (*DirectoryHeader, error) {
	var buf [directoryHeaderLen]byte
	if err := readFull(r, buf[:], "corrupt central directory entry"); err != nil {
		return nil, err
	}
	b := readBuf(buf[:])
	if sig := b.uint32(); sig != directoryHeaderSignature {
		return nil, FormatError("corrupt central directory entry")
	}

	h := &DirectoryHeader{VersionMadeBy: b.uint16()}
	h.FileHeader = b.fileHeader()
	h.CommentLength = b.uint16()
	h.DiskNumberStart = b.uint16()
	h.InternalAttrs = b.uint16()
	h.ExternalAttrs = b.uint32()
	h.Position = b.uint32()

	h.Filename = make([]byte, h.FilenameLength)
	if err := readFull(r, h.Filename, "truncated filename"); err != nil {
		return nil, err
	}
	skip := int64(h.ExtraFieldLength) + int64(h.CommentLength)
	if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
		return nil, &IOError{Op: "seek", Err: err}
	}
	return h, nil
}

func seekTo(r io.Seeker, offset int64) error {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return &IOError{Op: "seek", Err: err}
	}
	return nil
}

// readFull fills buf, reporting a short source as a FormatError with msg.
func readFull(r io.Reader, buf []byte, msg string) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return FormatError(msg)
		}
		return &IOError{Op: "read", Err: err}
	}
	return nil
}

type readBuf []byte

func (b *readBuf) uint16() uint16 {
	v := binary.LittleEndian.Uint16(*b)
	*b = (*b)[2:]
	return v
}

func (b *readBuf) uint32() uint32 {
	v := binary.LittleEndian.Uint32(*b)
	*b = (*b)[4:]
	return v
}

func (b *readBuf) fileHeader() FileHeader {
	return FileHeader{
		VersionNeeded:    b.uint16(),
		Flags:            b.uint16(),
		Method:           b.uint16(),
		ModifiedTime:     b.uint16(),
		ModifiedDate:     b.uint16(),
		CRC32:            b.uint32(),
		CompressedSize:   b.uint32(),
		UncompressedSize: b.uint32(),
		FilenameLength:   b.uint16(),
		ExtraFieldLength: b.uint16(),
	}
}
