package dbclient

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
)

// decodeBody wraps resp.Body with a transparent Brotli decoder when the
// server sent Content-Encoding: br. The document store occasionally sits
// behind a reverse proxy that compresses large _all_docs/_changes bodies
// this way.
func decodeBody(resp *http.Response) io.ReadCloser {
	if resp.Header.Get("Content-Encoding") != "br" {
		return resp.Body
	}
	return &brotliBody{r: brotli.NewReader(resp.Body), underlying: resp.Body}
}

type brotliBody struct {
	r          io.Reader
	underlying io.Closer
}

func (b *brotliBody) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *brotliBody) Close() error                { return b.underlying.Close() }
