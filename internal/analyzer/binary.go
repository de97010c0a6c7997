package analyzer

// binarySniffWindow bounds how much of a file LooksBinary inspects, so a
// multi-gigabyte binary doesn't get fully scanned just to be rejected.
const binarySniffWindow = 8 * 1024

// LooksBinary reports whether content appears to be non-text, using the
// Open Question decision recorded in DESIGN.md: a null-byte heuristic
// over the first binarySniffWindow bytes, with no extension sniffing --
// the extension allow-list in internal/config already gates which files
// reach this check at all.
func LooksBinary(content []byte) bool {
	window := content
	if len(window) > binarySniffWindow {
		window = window[:binarySniffWindow]
	}
	for _, b := range window {
		if b == 0 {
			return true
		}
	}
	return false
}
