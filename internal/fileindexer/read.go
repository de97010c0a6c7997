package fileindexer

import (
	"os"
	"strings"

	"golang.org/x/exp/mmap"

	"github.com/anortham/codesearch-mcp/internal/analyzer"
	"github.com/anortham/codesearch-mcp/internal/cserrors"
)

// readContent reads a file's bytes, using a memory-mapped reader above
// mmapThreshold to avoid a full heap copy for large files -- the same
// tradeoff golang.org/x/exp/mmap exists for, confirmed as a pack-wide
// idiom by its presence in this corpus's dependency surface. Below the
// threshold a plain os.ReadFile is simpler and just as fast.
func readContent(path string, size int64, mmapThreshold int64) ([]byte, error) {
	if size < mmapThreshold {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, cserrors.Wrap("read file", err)
		}
		return b, nil
	}

	r, err := mmap.Open(path)
	if err != nil {
		// Some filesystems (network mounts, certain container overlays)
		// don't support mmap; fall back to a regular read rather than
		// failing the whole file.
		b, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, cserrors.Wrap("read file", rerr)
		}
		return b, nil
	}
	defer r.Close()

	buf := make([]byte, r.Len())
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, cserrors.Wrap("mmap read file", err)
	}
	return buf, nil
}

// decodeLossy converts raw bytes to a valid UTF-8 string, replacing any
// invalid byte sequences with the Unicode replacement character per
// spec §4.6's "read content as UTF-8 with lossy replacement."
func decodeLossy(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "�")
}

// isBinary reports whether raw looks like non-text content, per
// internal/analyzer's null-byte heuristic.
func isBinary(raw []byte) bool {
	return analyzer.LooksBinary(raw)
}
