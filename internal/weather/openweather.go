// Package weather fetches current outdoor conditions from OpenWeather.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultEndpoint = "https://api.openweathermap.org/data/2.5/weather"
	requestTimeout  = 10 * time.Second
	maxRetries      = 3
	retryDelay      = 2 * time.Second
	userAgent       = "gardenbot/1.0"
)

// Snapshot is the slice of a weather report the bot cares about.
type Snapshot struct {
	Temp        int       `json:"temp"` // °C, rounded
	Humidity    int       `json:"hum"`
	Description string    `json:"desc"`
	Wind        float64   `json:"wind"` // m/s
	ObservedAt  time.Time `json:"observed_at"`
}

// Neutral is the degraded snapshot used when the provider is unreachable
// or unconfigured. A run never aborts on weather failure.
func Neutral() Snapshot {
	return Snapshot{Temp: 0, Humidity: 50, Description: "нет данных", Wind: 0, ObservedAt: time.Now()}
}

type owResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Dt int64 `json:"dt"`
}

type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: requestTimeout},
	}
}

// Current returns the city's current conditions. Transient failures are
// retried a bounded number of times; callers are expected to fall back to
// Neutral() on error.
func (c *Client) Current(ctx context.Context, city string) (Snapshot, error) {
	if c.apiKey == "" {
		return Snapshot{}, fmt.Errorf("openweather api key not configured")
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	q.Set("lang", "ru")

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Snapshot{}, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), http.NoBody)
		if err != nil {
			return Snapshot{}, fmt.Errorf("building weather request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("fetching weather: %w", err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading weather response: %w", err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("weather provider returned status %d", resp.StatusCode)
			continue
		}

		var ow owResponse
		if err := json.Unmarshal(body, &ow); err != nil {
			return Snapshot{}, fmt.Errorf("decoding weather response: %w", err)
		}
		desc := ""
		if len(ow.Weather) > 0 {
			desc = ow.Weather[0].Description
		}
		return Snapshot{
			Temp:        int(math.Round(ow.Main.Temp)),
			Humidity:    ow.Main.Humidity,
			Description: desc,
			Wind:        ow.Wind.Speed,
			ObservedAt:  time.Unix(ow.Dt, 0),
		}, nil
	}
	return Snapshot{}, lastErr
}
