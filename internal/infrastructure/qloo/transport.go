package qloo

import (
	"net/http"
	"time"
)

// RetryTransport is an http.RoundTripper that retries idempotent requests on
// transport errors with a short fixed backoff. It never retries on HTTP error
// statuses; those are classified by the client into the error taxonomy.
type RetryTransport struct {
	MaxRetries int
	Backoff    time.Duration
	Base       http.RoundTripper
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	backoff := t.Backoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	var resp *http.Response
	var err error
	for attempt := 0; attempt <= t.MaxRetries; attempt++ {
		resp, err = base.RoundTrip(req)
		if err == nil {
			return resp, nil
		}
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			return resp, err
		}
		if req.Context().Err() != nil {
			return resp, err
		}
		select {
		case <-req.Context().Done():
			return resp, err
		case <-time.After(backoff):
		}
	}
	return resp, err
}
