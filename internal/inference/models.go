// internal/inference/models.go
package inference

import (
	"net/url"
	"time"

	"interview-analyzer/internal/common/errors"
)

// Request describes one inference call. It is immutable per attempt; the
// attempt counter lives in the client's retry loop, not here.
type Request struct {
	Endpoint    string // stable identifier used in logs and metrics
	URL         string
	Body        []byte // JSON prompt payload or raw audio bytes
	ContentType string
	Query       url.Values
	Timeout     time.Duration
}

// Outcome is the result of an inference call. Err nil means success; the
// client never lets a raw transport error escape as anything other than a
// populated Err.
type Outcome struct {
	Body []byte
	Err  *errors.StandardError
}

// Success reports whether the call produced a usable body.
func (o Outcome) Success() bool {
	return o.Err == nil
}

func failure(err *errors.StandardError) Outcome {
	return Outcome{Err: err}
}
