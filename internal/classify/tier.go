package classify

import "fmt"

// Tier is a discrete severity bucket. Higher values are more severe.
type Tier int

const (
	TierGood Tier = iota
	TierModerate
	TierWarning
	TierCritical
)

var tierNames = [...]string{
	TierGood:     "good",
	TierModerate: "moderate",
	TierWarning:  "warning",
	TierCritical: "critical",
}

func (t Tier) String() string {
	if t < TierGood || t > TierCritical {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// MarshalText encodes the tier by name so JSON carries "warning" rather than 2.
func (t Tier) MarshalText() ([]byte, error) {
	if t < TierGood || t > TierCritical {
		return nil, fmt.Errorf("invalid tier %d", int(t))
	}
	return []byte(tierNames[t]), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTier returns the tier named s.
func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if name == s {
			return Tier(i), nil
		}
	}
	return TierGood, fmt.Errorf("unknown tier %q", s)
}
