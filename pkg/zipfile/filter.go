package zipfile

import (
	"path"
	"strings"

	"github.com/alec-rabold/zipview/pkg/reader"
)

// All accepts an entry only if every filter does.
func All(filters ...reader.Filter) reader.Filter {
	return func(h *reader.DirectoryHeader) bool {
		for _, f := range filters {
			if !f(h) {
				return false
			}
		}
		return true
	}
}

// Any accepts an entry if at least one filter does.
func Any(filters ...reader.Filter) reader.Filter {
	return func(h *reader.DirectoryHeader) bool {
		for _, f := range filters {
			if f(h) {
				return true
			}
		}
		return false
	}
}

// Extensions accepts names ending in one of exts, ignoring case. A missing
// leading dot is added.
func Extensions(exts ...string) reader.Filter {
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		want[e] = true
	}
	return func(h *reader.DirectoryHeader) bool {
		return want[strings.ToLower(path.Ext(h.Name()))]
	}
}

// NotDirectory rejects directory placeholders.
func NotDirectory(h *reader.DirectoryHeader) bool { return !h.IsDir() }

// StoredOnly rejects compressed entries.
func StoredOnly(h *reader.DirectoryHeader) bool { return h.IsStored() }

// Contains accepts names containing any of terms.
func Contains(terms ...string) reader.Filter {
	return func(h *reader.DirectoryHeader) bool {
		for _, a := range terms {
			if strings.Contains(h.Name(), a) {
				return true
			}
		}
		return false
	}
}
