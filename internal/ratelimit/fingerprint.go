package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

const unknown = "unknown"

// Fingerprint derives a short, stable client identifier from browser
// signals. It is best effort: not unique, not tamper proof.
func Fingerprint(s model.ClientSignals) string {
	parts := []string{
		orUnknown(s.UserAgent),
		orUnknown(s.Language),
		orUnknown(s.Platform),
		orUnknown(s.Screen),
		intOrUnknown(s.TimezoneOffset),
		intOrUnknown(s.HardwareConcurrency),
		floatOrUnknown(s.DeviceMemory),
		orUnknown(s.Canvas),
		floatOrUnknown(s.PixelRatio),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func intOrUnknown(v *int) string {
	if v == nil {
		return unknown
	}
	return strconv.Itoa(*v)
}

func floatOrUnknown(v *float64) string {
	if v == nil {
		return unknown
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
