package identifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Scheme selects how product identifiers are issued and what a scanned payload must look like.
type Scheme string

const (
	SchemeRandom     Scheme = "uuid"
	SchemeSequential Scheme = "sequential"
)

// RangeWidth is the number of identifiers reserved for each category.
const RangeWidth = 50000

var (
	ErrUnknownScheme     = errors.New("unknown identifier scheme")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrCategoryRequired  = errors.New("category is required for sequential identifiers")
	ErrCategoryExhausted = errors.New("category identifier range exhausted")
)

// Categories maps a category label to the first identifier of its range.
var Categories = map[string]int64{
	"nexthub":       100001,
	"nextonline":    150001,
	"nextevents":    200001,
	"federação":     250001,
	"nexttech":      300001,
	"nextmedia":     350001,
	"nexteducation": 400001,
}

// ParseScheme accepts "uuid"/"random" and "sequential"/"seq".
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uuid", "random":
		return SchemeRandom, nil
	case "sequential", "seq":
		return SchemeSequential, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
}

// Lookup returns the base identifier of a category.
func Lookup(category string) (int64, bool) {
	base, ok := Categories[strings.ToLower(strings.TrimSpace(category))]
	return base, ok
}

// Names lists category labels ordered by their base.
func Names() []string {
	names := make([]string, 0, len(Categories))
	for name := range Categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return Categories[names[i]] < Categories[names[j]] })
	return names
}

// Allocator issues a new unique product identifier.
type Allocator interface {
	Allocate(ctx context.Context, category string) (string, error)
	Scheme() Scheme
}

// Counter hands out 1, 2, 3... per category. Implementations must be atomic:
// two concurrent callers for the same category never receive the same value.
type Counter interface {
	Next(ctx context.Context, category string) (uint64, error)
}

// New builds the allocator for a scheme. counter is only used by the sequential scheme.
func New(scheme Scheme, counter Counter) (Allocator, error) {
	switch scheme {
	case SchemeRandom:
		return RandomAllocator{}, nil
	case SchemeSequential:
		if counter == nil {
			return nil, errors.New("sequential identifiers need a counter")
		}
		return &SequentialAllocator{counter: counter}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
}

// RandomAllocator issues opaque UUIDv4 tokens. The category is optional.
type RandomAllocator struct{}

func (RandomAllocator) Scheme() Scheme { return SchemeRandom }

func (RandomAllocator) Allocate(_ context.Context, category string) (string, error) {
	if category != "" {
		if _, ok := Lookup(category); !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
		}
	}
	return uuid.New().String(), nil
}

// SequentialAllocator issues base+offset integers inside the category's range.
type SequentialAllocator struct {
	counter Counter
}

func NewSequentialAllocator(counter Counter) *SequentialAllocator {
	return &SequentialAllocator{counter: counter}
}

func (a *SequentialAllocator) Scheme() Scheme { return SchemeSequential }

func (a *SequentialAllocator) Allocate(ctx context.Context, category string) (string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return "", ErrCategoryRequired
	}
	base, ok := Categories[category]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	n, err := a.counter.Next(ctx, category)
	if err != nil {
		return "", fmt.Errorf("allocate identifier for %s: %w", category, err)
	}
	if n == 0 || n > RangeWidth {
		return "", fmt.Errorf("%w: %s", ErrCategoryExhausted, category)
	}
	return strconv.FormatInt(base+int64(n)-1, 10), nil
}
