package reader

import (
	"errors"
	"strings"
)

var (
	// ErrFormat is matched by every FormatError via errors.Is
	ErrFormat = errors.New("zip: not a valid zip file")
	// ErrUnsupported indicates a write or resize attempted on a read-only stream
	ErrUnsupported = errors.New("zip: unsupported operation")
	// ErrWhence indicates an unknown seek origin
	ErrWhence = errors.New("zip: invalid whence")
	// ErrNegativeOffset indicates a seek to a position before the start of a stream
	ErrNegativeOffset = errors.New("zip: negative position")
)

// FormatError reports a structural violation of the zip format, or of the
// subset of it this package supports.
type FormatError string

func (e FormatError) Error() string { return "zip: " + string(e) }

// Is lets errors.Is(err, ErrFormat) match any FormatError.
func (e FormatError) Is(target error) bool { return target == ErrFormat }

// IOError wraps a failure of the underlying byte source.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return "zip: " + e.Op + ": " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }

const (
	directoryEndLen    = 22
	directoryHeaderLen = 46
	fileHeaderLen      = 30 // + filename + extra

	directoryEndSignature    = 0x06054b50
	directoryHeaderSignature = 0x02014b50
	fileHeaderSignature      = 0x04034b50

	maxCommentLen = 1<<16 - 1

	// MS-DOS directory attribute, low byte of the external attributes
	attrDirectory = 0x10
	// unix S_IFMT / S_IFDIR, high 16 bits of the external attributes
	unixTypeMask = 0xf000
	unixTypeDir  = 0x4000
)

// Compression methods.
const (
	Store   uint16 = 0 // no compression
	Deflate uint16 = 8 // DEFLATE compressed
)

// FileHeader holds the fixed fields shared by the local file header and
// the central directory entry.
type FileHeader struct {
	VersionNeeded    uint16
	Flags            uint16
	Method           uint16
	ModifiedTime     uint16
	ModifiedDate     uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	FilenameLength   uint16
	ExtraFieldLength uint16
}

// DirectoryHeader describes one central directory entry.
// See the zip spec for details.
type DirectoryHeader struct {
	VersionMadeBy uint16
	FileHeader
	CommentLength   uint16
	DiskNumberStart uint16
	InternalAttrs   uint16
	ExternalAttrs   uint32

	// Position is the offset of the entry's local file header.
	Position uint32

	// Filename is the raw name as stored in the archive. No character
	// encoding is assumed.
	Filename []byte
}

// Name returns the raw filename bytes as a string, without decoding.
func (h *DirectoryHeader) Name() string { return string(h.Filename) }

// IsDir reports whether the entry is a directory placeholder.
func (h *DirectoryHeader) IsDir() bool {
	if h.ExternalAttrs&attrDirectory != 0 {
		return true
	}
	if (h.ExternalAttrs>>16)&unixTypeMask == unixTypeDir {
		return true
	}
	return strings.HasSuffix(h.Name(), "/")
}

// IsStored reports whether the payload is stored without compression.
func (h *DirectoryHeader) IsStored() bool { return h.Method == Store }

// DataSize is the number of payload bytes following the local header.
func (h *DirectoryHeader) DataSize() int64 { return int64(h.CompressedSize) }

// DirectoryEnd describes an EOCD record
type DirectoryEnd struct {
	Records            uint16
	DirectorySize      uint32
	DirectoryOffset    uint32 // relative to file
	DirectoryEndOffset int64
	CommentLength      uint16
}

// Filter decides whether a parsed central directory entry is kept.
type Filter func(*DirectoryHeader) bool
