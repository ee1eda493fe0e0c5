package remote

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// isGzipEncoded checks if the content encoding includes gzip.
func isGzipEncoded(contentEncoding string) bool {
	return strings.Contains(contentEncoding, "gzip")
}

// decompressGzip decompresses gzip-compressed data.
func decompressGzip(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return io.ReadAll(gr)
}
