package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedIdentifier is returned when a VID_xxxx&PID_yyyy token cannot be parsed.
var ErrMalformedIdentifier = errors.New("malformed device identifier")

// Identifier is a USB vendor/product pair.
type Identifier struct {
	VendorID  uint16
	ProductID uint16
}

// String formats the identifier the way it is written in config files.
func (id Identifier) String() string {
	return fmt.Sprintf("VID_%04X&PID_%04X", id.VendorID, id.ProductID)
}

// Matches reports whether the inventory entry has the same vendor and product.
func (id Identifier) Matches(info Info) bool {
	return info.VendorID == id.VendorID && info.ProductID == id.ProductID
}

// ParseIdentifier parses a token such as "VID_046D&PID_085C".
// The parts may appear in either order; prefixes and hex digits are case-insensitive.
func ParseIdentifier(token string) (Identifier, error) {
	var (
		vid, pid       uint16
		hasVID, hasPID bool
	)

	for _, part := range strings.Split(strings.TrimSpace(token), "&") {
		upper := strings.ToUpper(strings.TrimSpace(part))
		switch {
		case strings.HasPrefix(upper, "VID_") && !hasVID:
			v, err := parseHex16(upper[4:])
			if err != nil {
				return Identifier{}, fmt.Errorf("%w: %q: vendor id: %v", ErrMalformedIdentifier, token, err)
			}
			vid, hasVID = v, true
		case strings.HasPrefix(upper, "PID_") && !hasPID:
			v, err := parseHex16(upper[4:])
			if err != nil {
				return Identifier{}, fmt.Errorf("%w: %q: product id: %v", ErrMalformedIdentifier, token, err)
			}
			pid, hasPID = v, true
		}
	}

	if !hasVID {
		return Identifier{}, fmt.Errorf("%w: %q: missing VID_ part", ErrMalformedIdentifier, token)
	}
	if !hasPID {
		return Identifier{}, fmt.Errorf("%w: %q: missing PID_ part", ErrMalformedIdentifier, token)
	}
	return Identifier{VendorID: vid, ProductID: pid}, nil
}

func parseHex16(s string) (uint16, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// MonitoredSet is the ordered list of identifiers whose presence is tracked.
// Presence is a disjunction: any single match counts.
type MonitoredSet []Identifier

// ParseSet parses every token. Malformed tokens are skipped and reported;
// they never prevent the remaining tokens from being monitored.
func ParseSet(tokens []string) (MonitoredSet, []error) {
	set := make(MonitoredSet, 0, len(tokens))
	var errs []error
	for _, tok := range tokens {
		id, err := ParseIdentifier(tok)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		set = append(set, id)
	}
	return set, errs
}

// Contains reports whether any identifier in the set matches info.
func (s MonitoredSet) Contains(info Info) bool {
	for _, id := range s {
		if id.Matches(info) {
			return true
		}
	}
	return false
}
