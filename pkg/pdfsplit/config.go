package pdfsplit

import (
	"fmt"
)

// Policy selects how pages without enough text are classified.
type Policy string

const (
	// PolicyImageCheck marks a page scanned only if it embeds a raster image.
	PolicyImageCheck Policy = "image"
	// PolicyFallback marks every page that is not a text page as scanned.
	PolicyFallback Policy = "fallback"
)

// UnclassifiedAction decides where pages that are neither text nor scanned end up.
type UnclassifiedAction string

const (
	UnclassifiedDrop    UnclassifiedAction = "drop"    // listed, but in neither output
	UnclassifiedText    UnclassifiedAction = "text"    // added to the text pages
	UnclassifiedScanned UnclassifiedAction = "scanned" // added to the scanned pages
)

// DefaultTextThreshold is the number of trimmed characters a page must exceed
// to count as a text page.
const DefaultTextThreshold = 100

// Config holds the classification options.
type Config struct {
	Policy        Policy             // Classification policy for low-text pages
	TextThreshold int                // Exclusive lower bound on trimmed text length
	Unclassified  UnclassifiedAction // What to do with unclassified pages
}

// DefaultConfig returns the reference classification settings.
func DefaultConfig() Config {
	return Config{
		Policy:        PolicyImageCheck,
		TextThreshold: DefaultTextThreshold,
		Unclassified:  UnclassifiedDrop,
	}
}

// Validate checks that every field holds a known value.
func (c Config) Validate() error {
	switch c.Policy {
	case PolicyImageCheck, PolicyFallback:
	default:
		return fmt.Errorf("unknown classification policy %q", c.Policy)
	}
	switch c.Unclassified {
	case UnclassifiedDrop, UnclassifiedText, UnclassifiedScanned:
	default:
		return fmt.Errorf("unknown unclassified action %q", c.Unclassified)
	}
	if c.TextThreshold < 0 {
		return fmt.Errorf("text threshold must not be negative, got %d", c.TextThreshold)
	}
	return nil
}

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyImageCheck, PolicyFallback:
		return p, nil
	}
	return "", fmt.Errorf("unknown classification policy %q (want %q or %q)", s, PolicyImageCheck, PolicyFallback)
}
