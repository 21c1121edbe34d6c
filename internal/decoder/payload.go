package decoder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xelth-com/qrcatalog/internal/identifier"
)

// ErrInvalidPayload matches every *InvalidPayloadError.
var ErrInvalidPayload = errors.New("payload is not a valid identifier")

// InvalidPayloadError means a code was read but it is not one of ours.
type InvalidPayloadError struct {
	Raw    string
	Scheme identifier.Scheme
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("payload %q is not a valid %s identifier", e.Raw, e.Scheme)
}

func (e *InvalidPayloadError) Is(target error) bool { return target == ErrInvalidPayload }

// ParseSequential parses a trimmed, positive base-10 identifier.
func ParseSequential(payload string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil || n <= 0 {
		return 0, &InvalidPayloadError{Raw: payload, Scheme: identifier.SchemeSequential}
	}
	return n, nil
}

// ParseIdentifier checks a decoded payload against the identifier scheme
// and returns the identifier in the form it is stored under.
func ParseIdentifier(payload string, scheme identifier.Scheme) (string, error) {
	switch scheme {
	case identifier.SchemeSequential:
		n, err := ParseSequential(payload)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	case identifier.SchemeRandom:
		// only the canonical 8-4-4-4-12 form we print; uuid.Parse also takes urn and brace wrappings
		raw := strings.TrimSpace(payload)
		id, err := uuid.Parse(raw)
		if err != nil || len(raw) != 36 {
			return "", &InvalidPayloadError{Raw: payload, Scheme: scheme}
		}
		return id.String(), nil
	}
	return "", fmt.Errorf("%w: %q", identifier.ErrUnknownScheme, scheme)
}
