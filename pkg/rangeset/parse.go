package rangeset

import (
	"fmt"
	"strconv"
	"strings"
)

var (
	lowerInfinity = []string{"-∞", "-inf", ""}
	upperInfinity = []string{"+∞", "∞", "+inf", "inf", ""}
)

// Parse parses a range written in interval notation, as produced by
// Range.String: "[1‥3]", "(4‥+∞)", "(-∞‥5]". ".." may be used in place of
// "‥" and "inf" in place of "∞". The shorthand "a-b" is read as [a‥b] and a
// lone value as [v‥v].
func (o Order[C]) Parse(s string, parseValue func(string) (C, error)) (Range[C], error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range[C]{}, fmt.Errorf("empty range")
	}
	if s[0] != '[' && s[0] != '(' {
		return o.parseShorthand(s, parseValue)
	}

	last := s[len(s)-1]
	if last != ']' && last != ')' {
		return Range[C]{}, fmt.Errorf("no closing bracket in range %q", s)
	}
	body := s[1 : len(s)-1]
	from, to, ok := strings.Cut(body, "‥")
	if !ok {
		from, to, ok = strings.Cut(body, "..")
	}
	if !ok {
		return Range[C]{}, fmt.Errorf("no separator in range %q", s)
	}
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)

	r := Range[C]{lower: bottom[C](), upper: top[C](), order: o}
	if !isOneOf(from, lowerInfinity) {
		v, err := parseValue(from)
		if err != nil {
			return Range[C]{}, fmt.Errorf("invalid lower endpoint %q in range %q: %w", from, s, err)
		}
		r.lower = lowerCut(v, boundTypeOf(s[0] == '['))
	} else if s[0] == '[' {
		return Range[C]{}, fmt.Errorf("unbounded lower endpoint cannot be closed in range %q", s)
	}
	if !isOneOf(to, upperInfinity) {
		v, err := parseValue(to)
		if err != nil {
			return Range[C]{}, fmt.Errorf("invalid upper endpoint %q in range %q: %w", to, s, err)
		}
		r.upper = upperCut(v, boundTypeOf(last == ']'))
	} else if last == ']' {
		return Range[C]{}, fmt.Errorf("unbounded upper endpoint cannot be closed in range %q", s)
	}
	if !r.IsValid() {
		return Range[C]{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return r, nil
}

func (o Order[C]) parseShorthand(s string, parseValue func(string) (C, error)) (Range[C], error) {
	// skip a leading sign so "-5-3" splits after -5
	h := strings.IndexByte(s[1:], '-')
	if h == -1 {
		v, err := parseValue(s)
		if err != nil {
			return Range[C]{}, fmt.Errorf("invalid value %q: %w", s, err)
		}
		return o.Singleton(v), nil
	}
	from, to := s[:h+1], s[h+2:]
	lower, err := parseValue(strings.TrimSpace(from))
	if err != nil {
		return Range[C]{}, fmt.Errorf("invalid from %q in range %q: %w", from, s, err)
	}
	upper, err := parseValue(strings.TrimSpace(to))
	if err != nil {
		return Range[C]{}, fmt.Errorf("invalid to %q in range %q: %w", to, s, err)
	}
	r := o.Closed(lower, upper)
	if !r.IsValid() {
		return Range[C]{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return r, nil
}

// ParseInt parses an int64 range, see Order.Parse.
func ParseInt(s string) (Range[int64], error) {
	return Ordered[int64]().Parse(s, func(v string) (int64, error) {
		return strconv.ParseInt(v, 10, 64)
	})
}

func boundTypeOf(closed bool) BoundType {
	if closed {
		return BoundTypeClosed
	}
	return BoundTypeOpen
}

func isOneOf(s string, candidates []string) bool {
	for _, c := range candidates {
		if strings.EqualFold(s, c) {
			return true
		}
	}
	return false
}
