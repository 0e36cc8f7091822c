package log

import (
	"net/http"
	"time"
)

// Transport wraps an http.RoundTripper and logs every outgoing request
// through the logger found in the request context. Headers are never
// logged, so bearer tokens stay out of the output.
type Transport struct {
	Base http.RoundTripper
}

// NewTransport returns a logging transport around base.
// A nil base means http.DefaultTransport.
func NewTransport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	l := Ctx(req.Context())

	resp, err := t.Base.RoundTrip(req)

	evt := l.Debug()
	if err != nil {
		evt = l.Warn().Err(err)
	} else if resp.StatusCode >= http.StatusInternalServerError {
		evt = l.Warn()
	}
	evt = evt.
		Str(FieldBackendHost, req.URL.Host).
		Str(FieldMethod, req.Method).
		Str(FieldPath, req.URL.Path).
		Float64(FieldLatency, float64(time.Since(start).Milliseconds()))
	if resp != nil {
		evt = evt.Int(FieldStatus, resp.StatusCode)
	}
	evt.Msg("backend call completed")

	return resp, err
}
