package provider

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"math"
	"strconv"
	"time"
)

// SeedLayout is the ISO-8601 layout (UTC, milliseconds) used for the auth seed
const SeedLayout = "2006-01-02T15:04:05.000Z"

// MaxTimeOffset bounds the clock correction accepted from the environment
const MaxTimeOffset = 30 * time.Minute

// Auth is the authentication block sent with every PlacetoPay request
type Auth struct {
	Login   string `json:"login"`
	TranKey string `json:"tranKey"`
	Nonce   string `json:"nonce"`
	Seed    string `json:"seed"`
}

// TimeProvider supplies the current time used for signing and expiration checks
type TimeProvider interface {
	Now() time.Time
}

// SystemTimeProvider reads the real clock
type SystemTimeProvider struct{}

func (SystemTimeProvider) Now() time.Time {
	return time.Now()
}

// OffsetTimeProvider shifts the real clock by a fixed offset, positive or negative
type OffsetTimeProvider struct {
	Offset time.Duration
}

func (p OffsetTimeProvider) Now() time.Time {
	return time.Now().Add(p.Offset)
}

// FixedTimeProvider always returns the same instant
type FixedTimeProvider struct {
	At time.Time
}

func (p FixedTimeProvider) Now() time.Time {
	return p.At
}

// NonceGenerator returns the raw nonce bytes for one auth block
type NonceGenerator func() []byte

// RandomNonce returns 16 cryptographically random bytes
func RandomNonce() []byte {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("placetopay: crypto/rand unavailable: " + err.Error())
	}
	return b
}

// BuildAuth builds a fresh auth block.
// tranKey = base64(SHA-256(nonceBytes + seed + secretKey)), computed over the raw nonce bytes.
func BuildAuth(login, secretKey string, tp TimeProvider, nonce NonceGenerator) Auth {
	if tp == nil {
		tp = SystemTimeProvider{}
	}
	if nonce == nil {
		nonce = RandomNonce
	}

	seed := tp.Now().UTC().Format(SeedLayout)
	nonceBytes := nonce()

	h := sha256.New()
	h.Write(nonceBytes)
	h.Write([]byte(seed))
	h.Write([]byte(secretKey))

	return Auth{
		Login:   login,
		TranKey: base64.StdEncoding.EncodeToString(h.Sum(nil)),
		Nonce:   base64.StdEncoding.EncodeToString(nonceBytes),
		Seed:    seed,
	}
}

// Signer builds auth blocks for one set of credentials
type Signer struct {
	Login        string
	SecretKey    string
	TimeProvider TimeProvider
	Nonce        NonceGenerator
}

// Auth returns a new auth block; it is never cached
func (s Signer) Auth() Auth {
	return BuildAuth(s.Login, s.SecretKey, s.TimeProvider, s.Nonce)
}

// Now returns the signer's notion of the current time
func (s Signer) Now() time.Time {
	if s.TimeProvider == nil {
		return time.Now()
	}
	return s.TimeProvider.Now()
}

// TimeProviderFromEnv resolves a time provider from <prefix>TIME_OFFSET_MS or
// <prefix>TIME_OFFSET_MINUTES. Unparsable values are ignored.
func TimeProviderFromEnv(lookup func(string) string, prefix string) (TimeProvider, error) {
	var offset time.Duration
	found := false

	if ms, ok := parseOffset(lookup(prefix + "TIME_OFFSET_MS")); ok {
		offset = time.Duration(ms * float64(time.Millisecond))
		found = true
	} else if minutes, ok := parseOffset(lookup(prefix + "TIME_OFFSET_MINUTES")); ok {
		offset = time.Duration(minutes * float64(time.Minute))
		found = true
	}

	if !found {
		return SystemTimeProvider{}, nil
	}

	if offset > MaxTimeOffset || offset < -MaxTimeOffset {
		return nil, NewValidationError("%sTIME_OFFSET_MS/MINUTES is too large (max +/-30 minutes), got %dms",
			prefix, offset.Milliseconds())
	}

	return OffsetTimeProvider{Offset: offset}, nil
}

func parseOffset(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
