package client

import (
	"fmt"
	"time"

	"github.com/sevasetu/assistant/internal/domain"
)

// Provider constants
const (
	ProviderHTTP = "http"
	ProviderMock = "mock"
)

// New creates a scheme service client based on the provider name.
// Returns an error if the provider is unknown or the base URL is empty
// (except for mock).
func New(provider, baseURL string, timeout time.Duration) (domain.ServiceClient, error) {
	switch provider {
	case ProviderHTTP:
		if baseURL == "" {
			return nil, fmt.Errorf("SERVICE_BASE_URL is required for the http provider")
		}
		return NewHTTPClient(baseURL, timeout), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown service provider: %s (valid options: http, mock)", provider)
	}
}
