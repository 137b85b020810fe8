package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	retry "github.com/avast/retry-go"
	"github.com/rs/zerolog"
)

// Source provides FX observations for a base currency: a rate map keyed by
// target currency. Absence of a target in the map is the resolver's problem,
// not a transport error.
type Source interface {
	Historical(ctx context.Context, base string, date civil.Date) (map[string]float64, error)
	Latest(ctx context.Context, base string) (map[string]float64, error)
}

// DefaultBaseURL is the public v4 rates endpoint the original deployment
// talks to.
const DefaultBaseURL = "https://api.exchangerate-api.com/v4"

// HTTPSource fetches rates from an exchangerate-api style v4 endpoint, with a
// bounded per-call timeout and a small retry budget on transport failures.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewHTTPSource creates a source against baseURL. A non-positive timeout
// defaults to 5 seconds.
func NewHTTPSource(baseURL string, timeout time.Duration, log zerolog.Logger) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Historical returns the rate map for base on the exact calendar date.
func (s *HTTPSource) Historical(ctx context.Context, base string, date civil.Date) (map[string]float64, error) {
	url := fmt.Sprintf("%s/history/%s/%04d/%02d/%02d", s.baseURL, base, date.Year, int(date.Month), date.Day)
	return s.fetch(ctx, url)
}

// Latest returns the current rate map for base.
func (s *HTTPSource) Latest(ctx context.Context, base string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/latest/%s", s.baseURL, base)
	return s.fetch(ctx, url)
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func (s *HTTPSource) fetch(ctx context.Context, url string) (map[string]float64, error) {
	var rates map[string]float64

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			resp, err := s.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("fx: rates endpoint returned %d", resp.StatusCode)
			}

			var body ratesResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return fmt.Errorf("fx: decode rates response: %w", err)
			}
			if len(body.Rates) == 0 {
				return fmt.Errorf("fx: rates response carried no rates")
			}
			rates = body.Rates
			return nil
		},
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		s.log.Debug().Err(err).Str("url", url).Msg("rates fetch failed")
		return nil, err
	}
	return rates, nil
}
