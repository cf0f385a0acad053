package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dharmasatrya/farecalendar/internal/ratelimit"
)

const (
	DefaultBaseURL = "https://serpapi.com/search"

	engineGoogleFlights = "google_flights"
	currencyUSD         = "USD"
	languageEN          = "en"
)

type SerpAPIConfig struct {
	APIKey  string
	BaseURL string
	// Timeout bounds a single call. Zero leaves it to the transport.
	Timeout time.Duration
	Limiter *ratelimit.Limiter
}

// SerpAPI queries Google Flights through SerpApi.
type SerpAPI struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
}

func NewSerpAPI(cfg SerpAPIConfig) *SerpAPI {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &SerpAPI{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    cfg.Limiter,
	}
}

func (p *SerpAPI) Name() string {
	return "serpapi"
}

func (p *SerpAPI) Search(ctx context.Context, q Query) (*Response, error) {
	if p.apiKey == "" {
		return nil, NewProviderError(p.Name(), ErrMissingAPIKey)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.searchURL(q), nil)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the API key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, NewProviderError(p.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError(p.Name(), fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body, resp.StatusCode),
			Body:       body,
		}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &ProviderError{
			Provider: p.Name(),
			Message:  "malformed response body: " + err.Error(),
			Body:     body,
			Err:      err,
		}
	}

	return &out, nil
}

func (p *SerpAPI) searchURL(q Query) string {
	params := url.Values{}
	params.Set("engine", engineGoogleFlights)
	params.Set("departure_id", q.DepartureID)
	params.Set("arrival_id", q.ArrivalID)
	params.Set("outbound_date", q.OutboundDate)
	params.Set("return_date", q.ReturnDate)
	params.Set("currency", currencyUSD)
	params.Set("hl", languageEN)
	params.Set("api_key", p.apiKey)

	sep := "?"
	if strings.Contains(p.baseURL, "?") {
		sep = "&"
	}
	return p.baseURL + sep + params.Encode()
}

// errorMessage prefers the provider's own "error" field.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fmt.Sprintf("request failed with status code %d", status)
}
