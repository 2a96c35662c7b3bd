package httpx

import (
	"bytes"
	"net/http"
)

// ResponseBuffer holds a response so a middleware can inspect it before
// deciding whether to send it.
type ResponseBuffer interface {
	http.ResponseWriter
	// Status is 0 until WriteHeader is called.
	Status() int
	Body() []byte
	Flush(w http.ResponseWriter) error
}

type responseBuffer struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func NewResponseBuffer() ResponseBuffer {
	return &responseBuffer{header: http.Header{}}
}

func (resp *responseBuffer) Status() int { return resp.status }
func (resp *responseBuffer) Header() http.Header { return resp.header }
func (resp *responseBuffer) Body() []byte { return resp.body.Bytes() }
func (resp *responseBuffer) WriteHeader(status int) {
	if resp.status == 0 {
		resp.status = status
	}
}

func (resp *responseBuffer) Write(body []byte) (int, error) {
	return resp.body.Write(body)
}

func (resp *responseBuffer) Flush(w http.ResponseWriter) error {
	header := w.Header()
	for key, value := range resp.header {
		header[key] = value
	}
	if resp.status != 0 {
		w.WriteHeader(resp.status)
	}
	_, err := w.Write(resp.body.Bytes())
	return err
}
