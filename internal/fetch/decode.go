package fetch

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// readBody reads and decodes resp.Body according to Content-Encoding.
// It fails with ErrBodyTooLarge when the decoded body exceeds limit.
func readBody(resp *http.Response, limit int64) ([]byte, error) {
	reader, closer, err := decodedReader(resp)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer.Close()
	}

	body, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, limit)
	}
	return body, nil
}

// decodedReader wraps resp.Body with a decompressor for gzip, deflate or br.
// The returned closer, if any, closes the decompressor only.
func decodedReader(resp *http.Response) (io.Reader, io.Closer, error) {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip decode: %w", err)
		}
		return gz, gz, nil
	case "deflate":
		return deflateReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil, nil
	default:
		return resp.Body, nil, nil
	}
}

// deflateReader decodes an HTTP deflate body. The format is zlib-wrapped
// deflate; servers that send raw deflate streams are accepted too.
func deflateReader(body io.Reader) (io.Reader, io.Closer, error) {
	buffered := bufio.NewReader(body)
	header, err := buffered.Peek(2)
	if err == nil && isZlibHeader(header[0], header[1]) {
		zr, err := zlib.NewReader(buffered)
		if err != nil {
			return nil, nil, fmt.Errorf("deflate decode: %w", err)
		}
		return zr, zr, nil
	}
	fl := flate.NewReader(buffered)
	return fl, fl, nil
}

// isZlibHeader reports whether cmf and flg form a valid zlib header
// (RFC 1950) for the deflate method.
func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
