package aws

import (
	"context"
	"errors"
	"io"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrClosed is returned by operations on a closed Object
	ErrClosed = errors.New("s3: object closed")
	// ErrSeek is returned for an invalid whence or a negative position
	ErrSeek = errors.New("s3: invalid seek")
)

// Object is a random-access view of a single S3 object. Every Read becomes a
// ranged GET at the current offset. Each Object keeps its own cursor.
type Object struct {
	client *Client
	ctx    context.Context
	bucket string
	key    string
	size   int64
	offset int64
	closed bool
}

// OpenObject looks up the size of bucket/key and returns an Object positioned at 0.
func (c *Client) OpenObject(ctx context.Context, bucket, key string) (*Object, error) {
	size, err := c.ObjectSize(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"bucket": bucket, "key": key, "size": size}).Debug("opened S3 object")
	return &Object{client: c, ctx: ctx, bucket: bucket, key: key, size: size}, nil
}

// Size returns the content length of the object.
func (o *Object) Size() int64 { return o.size }

// Read fetches up to len(p) bytes starting at the current offset.
func (o *Object) Read(p []byte) (int, error) {
	if o.closed {
		return 0, ErrClosed
	}
	if o.offset >= o.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	if remaining := o.size - o.offset; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	body, err := o.client.GetObjectRange(o.ctx, o.bucket, o.key, o.offset, o.offset+int64(len(p))-1)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	n, err := io.ReadFull(body, p)
	o.offset += int64(n)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		// a short range response is a short read
		if n > 0 {
			return n, nil
		}
		return 0, io.ErrUnexpectedEOF
	}
	return n, err
}

// Seek implements io.Seeker. No request is made until the next Read.
func (o *Object) Seek(offset int64, whence int) (int64, error) {
	if o.closed {
		return 0, ErrClosed
	}
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += o.offset
	case io.SeekEnd:
		offset += o.size
	default:
		return o.offset, ErrSeek
	}
	if offset < 0 {
		return o.offset, ErrSeek
	}
	o.offset = offset
	return o.offset, nil
}

// Close releases the object. Further reads and seeks fail.
func (o *Object) Close() error {
	o.closed = true
	return nil
}
