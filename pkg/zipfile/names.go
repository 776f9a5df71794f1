package zipfile

import (
	"fmt"

	"golang.org/x/text/encoding/ianaindex"
)

// DecodeName converts a raw entry name from charset (an IANA name such as
// "shift_jis" or "ibm437") to UTF-8. An empty charset returns raw as is.
func DecodeName(raw []byte, charset string) (string, error) {
	if charset == "" {
		return string(raw), nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return "", fmt.Errorf("charset %q: %w", charset, err)
	}
	if enc == nil {
		return "", fmt.Errorf("charset %q is not supported", charset)
	}
	b, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding name as %s: %w", charset, err)
	}
	return string(b), nil
}
