package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Hzrr97/open-weather-router-api/internal/upstream"
)

// Request holds the parameters that affect a weather response's content:
// lat, lon, exclude, units, lang. appid is deliberately absent — it never
// changes the upstream response shape, only which caller is authorized to
// ask for it — so Fingerprint takes this caller-visible shape directly
// rather than upstream.Params, making that exclusion structural rather than
// a convention callers have to remember.
type Request struct {
	Lat     float64
	Lon     float64
	Exclude string
	Units   string
	Lang    string
}

// Fingerprint returns a stable identifier for r: identical fields produce
// an identical fingerprint, and any field differing produces a different one.
func Fingerprint(r Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "lat=%v|lon=%v|exclude=%s|units=%s|lang=%s",
		r.Lat, r.Lon, r.Exclude, r.Units, r.Lang)
	return hex.EncodeToString(h.Sum(nil))
}

// ToUpstreamParams converts r into the parameters Call forwards upstream.
func (r Request) ToUpstreamParams() upstream.Params {
	return upstream.Params{
		Lat:     r.Lat,
		Lon:     r.Lon,
		Exclude: r.Exclude,
		Units:   r.Units,
		Lang:    r.Lang,
	}
}
