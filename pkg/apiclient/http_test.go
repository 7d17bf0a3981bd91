package apiclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidadaoai/sentinela/pkg/models"
)

func roundTrip(status int, body string) func(*http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Header:     make(http.Header),
		}, nil
	}
}

func testEndpoint() models.APIEndpoint {
	return models.APIEndpoint{ID: "ep1", Timeout: time.Second}
}

func TestHTTPClient_SuccessParsesJSON(t *testing.T) {
	c := &HTTPClient{
		HTTPDo:   roundTrip(http.StatusOK, `{"hits":[1,2,3]}`),
		BaseURLs: map[string]string{"ep1": "https://api.example.gov.br/contracts"},
	}
	result, err := c.Invoke(context.Background(), testEndpoint(), models.CapabilitySearchContracts, map[string]any{"uf": "SP"})
	require.NoError(t, err)
	assert.Equal(t, "ep1", result.SourceEndpointID)
	assert.NotNil(t, result.Payload["hits"])
}

func TestHTTPClient_MissingBaseURL(t *testing.T) {
	c := &HTTPClient{HTTPDo: roundTrip(http.StatusOK, `{}`), BaseURLs: map[string]string{}}
	_, err := c.Invoke(context.Background(), testEndpoint(), models.CapabilitySearchContracts, nil)
	require.Error(t, err)
	var ce *models.ClassifiedError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, models.ErrorKindInvalidRequest, ce.Kind)
}

func TestHTTPClient_StatusClassification(t *testing.T) {
	cases := map[int]models.ErrorKind{
		http.StatusUnauthorized:         models.ErrorKindAuthenticationFail,
		http.StatusForbidden:            models.ErrorKindAuthenticationFail,
		http.StatusNotFound:             models.ErrorKindNotFound,
		http.StatusTooManyRequests:      models.ErrorKindRateLimited,
		http.StatusBadRequest:           models.ErrorKindInvalidRequest,
		http.StatusInternalServerError:  models.ErrorKindTransientFailure,
		http.StatusServiceUnavailable:   models.ErrorKindTransientFailure,
	}
	for status, wantKind := range cases {
		c := &HTTPClient{
			HTTPDo:   roundTrip(status, `error body`),
			BaseURLs: map[string]string{"ep1": "https://api.example.gov.br"},
		}
		_, err := c.Invoke(context.Background(), testEndpoint(), models.CapabilitySearchContracts, nil)
		require.Error(t, err)
		var ce *models.ClassifiedError
		require.True(t, errors.As(err, &ce))
		assert.Equalf(t, wantKind, ce.Kind, "status %d", status)
	}
}

func TestHTTPClient_TransportTimeoutClassifiesAsTimeout(t *testing.T) {
	c := &HTTPClient{
		HTTPDo: func(*http.Request) (*http.Response, error) {
			return nil, context.DeadlineExceeded
		},
		BaseURLs: map[string]string{"ep1": "https://api.example.gov.br"},
	}
	_, err := c.Invoke(context.Background(), testEndpoint(), models.CapabilitySearchContracts, nil)
	require.Error(t, err)
	var ce *models.ClassifiedError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, models.ErrorKindTimeout, ce.Kind)
}

func TestHTTPClient_MalformedJSONIsInternalError(t *testing.T) {
	c := &HTTPClient{
		HTTPDo:   roundTrip(http.StatusOK, `not json`),
		BaseURLs: map[string]string{"ep1": "https://api.example.gov.br"},
	}
	_, err := c.Invoke(context.Background(), testEndpoint(), models.CapabilitySearchContracts, nil)
	require.Error(t, err)
	var ce *models.ClassifiedError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, models.ErrorKindInternalError, ce.Kind)
}
