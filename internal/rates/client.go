// Package rates fetches currency exchange rates from an exchangerate-api
// compatible service and keeps the last known values for conversion.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultBaseURL is the public exchangerate-api v4 endpoint.
const DefaultBaseURL = "https://api.exchangerate-api.com/v4"

// HistoryPoints is how many of the most recent history entries are kept.
const HistoryPoints = 5

var (
	ErrUnavailable     = errors.New("rates service unavailable")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrInvalidAmount   = errors.New("amount out of range")
)

// Snapshot is the set of rates for one base currency at a point in time.
type Snapshot struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	UpdatedAt time.Time          `json:"updatedAt"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// Rate returns the rate from the snapshot's base to code.
func (s Snapshot) Rate(code string) (float64, bool) {
	r, ok := s.Rates[strings.ToUpper(code)]
	return r, ok
}

// Point is one day of history for a currency pair.
type Point struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

type latestResponse struct {
	Base            string             `json:"base"`
	Rates           map[string]float64 `json:"rates"`
	TimeLastUpdated int64              `json:"time_last_updated"`
}

type historyResponse struct {
	Rates map[string]map[string]float64 `json:"rates"`
}

// Client calls the rates service through a circuit breaker so a failing
// upstream is not hammered by every session.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	now     func() time.Time
}

// NewClient creates a client for baseURL. A nil httpClient gets a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "rates",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("Circuit breaker state changed",
					"component", "rates", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
		now: time.Now,
	}
}

// Latest returns the current rates for base.
func (c *Client) Latest(ctx context.Context, base string) (Snapshot, error) {
	base = strings.ToUpper(base)
	var body latestResponse
	if err := c.get(ctx, "/latest/"+url.PathEscape(base), &body); err != nil {
		return Snapshot{}, fmt.Errorf("latest %s: %w", base, err)
	}
	if body.Base == "" {
		body.Base = base
	}
	return Snapshot{
		Base:      body.Base,
		Rates:     body.Rates,
		UpdatedAt: time.Unix(body.TimeLastUpdated, 0).UTC(),
		FetchedAt: c.now(),
	}, nil
}

// History returns up to the last HistoryPoints daily rates from base to
// target between from and to, oldest first. Days missing the target are skipped.
func (c *Client) History(ctx context.Context, base, target string, from, to time.Time) ([]Point, error) {
	base, target = strings.ToUpper(base), strings.ToUpper(target)
	path := fmt.Sprintf("/history/%s/%s/%s", url.PathEscape(base), from.Format(time.DateOnly), to.Format(time.DateOnly))
	var body historyResponse
	if err := c.get(ctx, path, &body); err != nil {
		return nil, fmt.Errorf("history %s/%s: %w", base, target, err)
	}

	dates := make([]string, 0, len(body.Rates))
	for d := range body.Rates {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	points := make([]Point, 0, len(dates))
	for _, d := range dates {
		if r, ok := body.Rates[d][target]; ok {
			points = append(points, Point{Date: d, Rate: r})
		}
	}
	if len(points) > HistoryPoints {
		points = points[len(points)-HistoryPoints:]
	}
	return points, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
