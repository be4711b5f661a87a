package backoff

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Strategy names accepted by PolicyConfig.
const (
	StrategyImmediate   = "immediate"
	StrategyConstant    = "constant"
	StrategyExponential = "exponential"
)

// ErrUnknownStrategy is returned by Build for an unrecognized strategy name.
var ErrUnknownStrategy = errors.New("unknown backoff strategy")

// Duration wraps time.Duration so policies can carry human-readable
// duration strings ("300ms", "1h30m") in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// PolicyConfig is the serialized form of a backoff policy.
//
// Example:
//
//	strategy: exponential
//	base: 100ms
//	max: 10s
//	multiplier: 2
//	maxAttempts: 5
//	jitter: 0.25
type PolicyConfig struct {
	Strategy    string   `yaml:"strategy"`
	Delay       Duration `yaml:"delay,omitempty"`
	Base        Duration `yaml:"base,omitempty"`
	Max         Duration `yaml:"max,omitempty"`
	Multiplier  float64  `yaml:"multiplier,omitempty"`
	MaxAttempts int      `yaml:"maxAttempts,omitempty"`
	Jitter      float64  `yaml:"jitter,omitempty"`
}

// ParsePolicy parses a YAML policy document.
func ParsePolicy(data []byte) (*PolicyConfig, error) {
	var cfg PolicyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse backoff policy: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the policy for consistency.
func (c *PolicyConfig) Validate() error {
	switch c.Strategy {
	case StrategyImmediate, StrategyConstant, StrategyExponential:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}
	if c.Jitter < 0 {
		return fmt.Errorf("jitter must not be negative, got %v", c.Jitter)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("maxAttempts must not be negative, got %d", c.MaxAttempts)
	}
	return nil
}

// Build constructs the strategy the policy describes. MaxAttempts wraps
// immediate and constant strategies with Limit; the exponential strategy
// enforces its own cap. A positive Jitter wraps the result.
func (c *PolicyConfig) Build() (Strategy, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var s Strategy
	switch c.Strategy {
	case StrategyImmediate:
		s = Immediate()
	case StrategyConstant:
		s = Constant(c.Delay.Duration())
	case StrategyExponential:
		s = NewExponential(ExponentialConfig{
			Base:        c.Base.Duration(),
			Max:         c.Max.Duration(),
			Multiplier:  c.Multiplier,
			MaxAttempts: c.MaxAttempts,
		})
	}

	if c.MaxAttempts > 0 && c.Strategy != StrategyExponential {
		s = Limit(c.MaxAttempts, s)
	}
	if c.Jitter > 0 {
		s = Jitter(s, c.Jitter)
	}

	return s, nil
}
