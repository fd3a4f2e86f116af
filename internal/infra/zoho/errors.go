package zoho

import (
	"fmt"
	"net/http"

	"github.com/vietddude/nexus/internal/resilience/classify"
)

// HTTPError is a non-2xx response from a Zoho endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// StatusKind maps an HTTP status to a failure kind.
func StatusKind(status int) classify.Kind {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return classify.KindTransient
	case status >= 500:
		return classify.KindTransient
	case status >= 400:
		// 400, 401, 403, 404, 409, 422 and the rest of the client errors
		return classify.KindPermanent
	default:
		return classify.KindOperational
	}
}

func tagStatus(op string, status int, err error) error {
	switch StatusKind(status) {
	case classify.KindTransient:
		return classify.Transient(op, err)
	case classify.KindPermanent:
		return classify.Permanent(op, err)
	default:
		return classify.Operational(op, err)
	}
}
