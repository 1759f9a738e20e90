package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"searoute/internal/port"
)

// Fingerprint computes the canonical cache key for a route request (spec
// §3): every input that can change the computed route, rounded to coarse
// buckets so near-identical requests collapse onto the same cache entry.
// RequestID and the client-supplied timeout never participate — neither
// affects the route itself.
func Fingerprint(req *port.Request) string {
	data := canonicalRequest(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// canonicalRequest builds a deterministic byte representation of req.
func canonicalRequest(req *port.Request) []byte {
	v := req.Vessel
	var buf []byte
	buf = append(buf, []byte(fmt.Sprintf("o:%s;d:%s;crit:%s;", req.Origin, req.Destination, req.Criterion))...)
	buf = append(buf, []byte(fmt.Sprintf("len:%.1f;beam:%.1f;draft:%.1f;speed:%.1f;",
		roundTo(v.LengthM, 0.5), roundTo(v.BeamM, 0.5), roundTo(v.DraftM, 0.5), roundTo(v.CruiseSpeedKn, 0.5)))...)
	buf = append(buf, []byte(fmt.Sprintf("fuel:%s;type:%s;suez:%t;panama:%t;",
		v.FuelType, v.Type, v.SuezCompatible, v.PanamaCompatible))...)
	buf = append(buf, []byte(fmt.Sprintf("alts:%d;hops:%d;", req.MaxAlternativeRoutes, req.MaxConnectingPorts))...)
	buf = append(buf, []byte(fmt.Sprintf("hour:%d;", hourBucket(req.DepartureTime)))...)
	return buf
}

// roundTo snaps v to the nearest multiple of step (spec §3: "rounded vessel
// dimensions ... to 0.5 m, speed to 0.5 kn").
func roundTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// hourBucket truncates t to the hour it falls within, or 0 for a zero time
// (spec §3: "departure time bucketed to the hour").
func hourBucket(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Truncate(time.Hour).Unix()
}

// RouteCacheKey returns the storage key for a fingerprint, per spec §6's
// cache key-value contract: "routes:v1:<fingerprint-hex>".
func RouteCacheKey(fingerprint string) string {
	return fmt.Sprintf("routes:v1:%s", fingerprint)
}
