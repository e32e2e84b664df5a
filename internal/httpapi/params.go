package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Hzrr97/open-weather-router-api/internal/fetch"
)

var validExcludeTerms = map[string]bool{
	"current": true, "minutely": true, "hourly": true, "daily": true, "alerts": true,
}

var validUnits = map[string]bool{
	"standard": true, "metric": true, "imperial": true,
}

// parseError is a 400-worthy problem with a request's query parameters.
type parseError struct {
	msg string
}

func (e *parseError) Error() string { return e.msg }

// ParseOnecallParams validates and extracts GET /data/3.0/onecall's query
// parameters per spec.md §6: lat/lon required and range-checked, exclude an
// optional CSV subset of the five known terms, units one of three values,
// lang a 2-5 character code.
func ParseOnecallParams(r *http.Request) (fetch.Request, error) {
	q := r.URL.Query()

	lat, err := parseRangedFloat(q.Get("lat"), "lat", -90, 90)
	if err != nil {
		return fetch.Request{}, err
	}
	lon, err := parseRangedFloat(q.Get("lon"), "lon", -180, 180)
	if err != nil {
		return fetch.Request{}, err
	}

	exclude := q.Get("exclude")
	if exclude != "" {
		for _, term := range strings.Split(exclude, ",") {
			if !validExcludeTerms[strings.TrimSpace(term)] {
				return fetch.Request{}, &parseError{msg: fmt.Sprintf("exclude contains unknown term %q", term)}
			}
		}
	}

	units := q.Get("units")
	if units != "" && !validUnits[units] {
		return fetch.Request{}, &parseError{msg: fmt.Sprintf("units must be one of standard, metric, imperial, got %q", units)}
	}

	lang := q.Get("lang")
	if lang != "" && (len(lang) < 2 || len(lang) > 5) {
		return fetch.Request{}, &parseError{msg: "lang must be 2-5 characters"}
	}

	return fetch.Request{
		Lat:     lat,
		Lon:     lon,
		Exclude: exclude,
		Units:   units,
		Lang:    lang,
	}, nil
}

func parseRangedFloat(raw, name string, min, max float64) (float64, error) {
	if raw == "" {
		return 0, &parseError{msg: name + " is required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &parseError{msg: name + " must be a number"}
	}
	if v < min || v > max {
		return 0, &parseError{msg: fmt.Sprintf("%s must be between %v and %v", name, min, max)}
	}
	return v, nil
}
