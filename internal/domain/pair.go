package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var codeRe = regexp.MustCompile(`^[A-Z]{3}$`)

type Pair struct {
	Source string
	Target string
}

func NewPair(source, target string) Pair {
	return Pair{Source: strings.ToUpper(strings.TrimSpace(source)), Target: strings.ToUpper(strings.TrimSpace(target))}
}

// ParsePair accepts "EUR/USD" and "EURUSD".
func ParsePair(s string) (Pair, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if base, quote, ok := strings.Cut(s, "/"); ok {
		p := Pair{Source: base, Target: quote}
		return p, p.Validate()
	}
	if len(s) != 6 {
		return Pair{}, fmt.Errorf("%w: %q", ErrUnsupportedPair, s)
	}
	p := Pair{Source: s[:3], Target: s[3:]}
	return p, p.Validate()
}

// Key is the concatenated source and target codes, e.g. "EURUSD".
func (p Pair) Key() string { return p.Source + p.Target }

func (p Pair) Reversed() Pair { return Pair{Source: p.Target, Target: p.Source} }

func (p Pair) String() string { return p.Source + "/" + p.Target }

func (p Pair) Validate() error {
	if !ValidCode(p.Source) || !ValidCode(p.Target) {
		return fmt.Errorf("%w: %s", ErrUnsupportedPair, p)
	}
	return nil
}

func ValidCode(code string) bool {
	return codeRe.MatchString(code)
}
