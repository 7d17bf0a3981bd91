package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cidadaoai/sentinela/pkg/models"
)

// HTTPClient is the reference APIClient implementation: it issues a plain
// JSON-over-HTTP GET (capability and params become query parameters) to
// endpoint.ID's configured base URL and classifies the response into the
// spec's ErrorKind taxonomy (spec §4.2/§7).
//
// BaseURLs maps endpoint id to its network address. It is separate from
// models.APIEndpoint so the registry (which is shipped in config and may be
// version-controlled) never needs to carry secrets or environment-specific
// hosts.
type HTTPClient struct {
	HTTPDo   func(*http.Request) (*http.Response, error)
	BaseURLs map[string]string
	// AuthHeader, when set, is added as "Authorization" to every request.
	AuthHeader string
}

// NewHTTPClient builds an HTTPClient using http.DefaultClient.
func NewHTTPClient(baseURLs map[string]string) *HTTPClient {
	return &HTTPClient{HTTPDo: http.DefaultClient.Do, BaseURLs: baseURLs}
}

func (c *HTTPClient) Invoke(ctx context.Context, endpoint models.APIEndpoint, capability models.Capability, params map[string]any) (models.RawResult, error) {
	base, ok := c.BaseURLs[endpoint.ID]
	if !ok {
		return models.RawResult{}, models.NewClassifiedError(models.ErrorKindInvalidRequest,
			fmt.Sprintf("no base URL configured for endpoint %q", endpoint.ID), nil)
	}

	u, err := url.Parse(base)
	if err != nil {
		return models.RawResult{}, models.NewClassifiedError(models.ErrorKindInvalidRequest, "invalid base URL", err)
	}
	q := u.Query()
	q.Set("capability", string(capability))
	for k, v := range params {
		q.Set(k, fmt.Sprintf("%v", v))
	}
	u.RawQuery = q.Encode()

	reqCtx := ctx
	if endpoint.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, endpoint.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.RawResult{}, models.NewClassifiedError(models.ErrorKindInvalidRequest, "malformed request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.AuthHeader != "" {
		req.Header.Set("Authorization", c.AuthHeader)
	}

	resp, err := c.HTTPDo(req)
	if err != nil {
		return models.RawResult{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return models.RawResult{}, models.NewClassifiedError(models.ErrorKindTransientFailure, "failed reading response body", err)
	}

	if kind, ok := classifyStatus(resp.StatusCode); !ok {
		return models.RawResult{}, models.NewClassifiedError(kind, fmt.Sprintf("HTTP %d", resp.StatusCode), errors.New(string(body)))
	}

	var payload map[string]any
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return models.RawResult{}, models.NewClassifiedError(models.ErrorKindInternalError, "malformed JSON response", err)
		}
	}

	return models.RawResult{SourceEndpointID: endpoint.ID, FetchedAt: time.Now(), Payload: payload}, nil
}

// classifyStatus maps an HTTP status code to the spec's ErrorKind taxonomy.
// ok is true for 2xx; the ErrorKind in that case is meaningless.
func classifyStatus(status int) (models.ErrorKind, bool) {
	switch {
	case status >= 200 && status < 300:
		return "", true
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return models.ErrorKindAuthenticationFail, false
	case status == http.StatusNotFound:
		return models.ErrorKindNotFound, false
	case status == http.StatusTooManyRequests:
		return models.ErrorKindRateLimited, false
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return models.ErrorKindInvalidRequest, false
	case status >= 500:
		return models.ErrorKindTransientFailure, false
	default:
		return models.ErrorKindInternalError, false
	}
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewClassifiedError(models.ErrorKindTimeout, "", err)
	}
	if errors.Is(err, context.Canceled) {
		return models.NewClassifiedError(models.ErrorKindCancelled, "", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.NewClassifiedError(models.ErrorKindTimeout, "", err)
	}
	return models.NewClassifiedError(models.ErrorKindTransientFailure, "", err)
}
