package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"quiz-forge/internal/domain"
)

// classifyTransportError maps a failed round trip onto the completion error codes.
// ctx is the bounded request context, so an expired deadline there means our own timeout fired.
func classifyTransportError(ctx context.Context, err error) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return domain.NewUpstreamStatusError(statusErr.StatusCode, statusErr.Body)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewUpstreamTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewUpstreamTimeoutError(err)
	}

	return domain.NewTransportFailureError(err)
}

// statusError carries a non-2xx upstream reply through libraries that only surface errors
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("completion API returned status %d", e.StatusCode)
}

// statusCapturingDoer turns non-2xx responses into *statusError before the
// wrapped library gets a chance to flatten them into plain strings.
type statusCapturingDoer struct {
	client *http.Client
}

func (d *statusCapturingDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, readErr
	}
	return nil, &statusError{StatusCode: resp.StatusCode, Body: string(body)}
}
