package badger

// Key prefixes for different data types
const (
	summaryPrefix = "sum"
	metaPrefix    = "meta"
)

// makeSummaryKey generates a key for a cached summary by absolute file path.
// Format: prefix:path
func makeSummaryKey(path string) []byte {
	return makeKey(summaryPrefix, path)
}

// makeMetaKey generates a key for a metadata entry.
// Format: prefix:name
func makeMetaKey(name string) []byte {
	return makeKey(metaPrefix, name)
}

func makeKey(prefix, name string) []byte {
	buf := make([]byte, len(prefix)+1+len(name))
	offset := copy(buf, prefix)
	buf[offset] = ':'
	copy(buf[offset+1:], name)
	return buf
}
