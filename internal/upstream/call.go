package upstream

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Hzrr97/open-weather-router-api/internal/credential"
)

// BaseURL is OpenWeatherMap's onecall endpoint (spec.md §6).
const BaseURL = "https://api.openweathermap.org/data/3.0/onecall"

// Params is the set of query parameters forwarded to OpenWeatherMap,
// already validated by the HTTP layer.
type Params struct {
	Lat     float64
	Lon     float64
	Exclude string
	Units   string
	Lang    string
}

// Call issues one attempt against OpenWeatherMap using cred, bounded by
// ctx. On a 2xx response it returns the response body. On any other status
// it returns *HTTPError; on any failure that never produced a response it
// returns *TransportError.
func Call(ctx context.Context, client *http.Client, cred credential.Credential, p Params) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, BaseURL, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.URL.RawQuery = buildQuery(cred, p).Encode()

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}

func buildQuery(cred credential.Credential, p Params) url.Values {
	q := url.Values{}
	q.Set("lat", formatFloat(p.Lat))
	q.Set("lon", formatFloat(p.Lon))
	q.Set("appid", cred.Secret)
	if p.Exclude != "" {
		q.Set("exclude", p.Exclude)
	}
	if p.Units != "" {
		q.Set("units", p.Units)
	}
	if p.Lang != "" {
		q.Set("lang", p.Lang)
	}
	return q
}

func formatFloat(f float64) string {
	// -1 precision round-trips exactly what the caller supplied.
	return strconv.FormatFloat(f, 'f', -1, 64)
}
