// Package throttle gates outbound calls with a blocking token bucket.
package throttle

const (
	MinCapacity = 1
	MinRate     = 0.1
)

// Config holds rate limiter settings.
type Config struct {
	// Rate is the steady refill rate in tokens per second.
	Rate float64 `yaml:"rate_limit"`

	// Burst is the bucket capacity: how many calls pass without waiting when the bucket is full.
	Burst int `yaml:"burst"`
}

// DefaultConfig returns 2 requests per second with no burst beyond one call.
func DefaultConfig() Config {
	return Config{
		Rate:  2.0,
		Burst: 1,
	}
}
