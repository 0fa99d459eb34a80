package domain

import "sort"

// Symbols maps a currency code to its display name. A nil value means the
// list could not be loaded.
type Symbols map[string]string

func (s Symbols) Codes() []string {
	codes := make([]string, 0, len(s))
	for c := range s {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
