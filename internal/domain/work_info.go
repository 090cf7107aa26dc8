package domain

import (
	"sort"
	"strings"
)

// WorkInfo lists the pay rates used at one workplace.
type WorkInfo struct {
	Workplace string    `json:"workplace" yaml:"workplace"`
	PayRates  []float64 `json:"payRates" yaml:"payRates"`
}

// WorkInfos is the catalog of workplaces and the distinct pay rates seen at each.
// The zero value is ready to use.
type WorkInfos struct {
	rates map[string]map[float64]struct{}
}

// NewWorkInfos builds a catalog from entries, merging duplicate workplaces.
func NewWorkInfos(entries []WorkInfo) WorkInfos {
	var w WorkInfos
	for _, e := range entries {
		for _, rate := range e.PayRates {
			w.Add(e.Workplace, rate)
		}
	}
	return w
}

// Add records rate for workplace. The workplace is trimmed; callers validate it.
func (w *WorkInfos) Add(workplace string, rate float64) {
	workplace = strings.TrimSpace(workplace)
	if w.rates == nil {
		w.rates = make(map[string]map[float64]struct{})
	}
	set, ok := w.rates[workplace]
	if !ok {
		set = make(map[float64]struct{})
		w.rates[workplace] = set
	}
	set[rate] = struct{}{}
}

// Remove drops one rate, or the whole workplace when rate is nil. A workplace
// whose last rate is removed disappears. It reports whether anything changed.
func (w *WorkInfos) Remove(workplace string, rate *float64) bool {
	workplace = strings.TrimSpace(workplace)
	set, ok := w.rates[workplace]
	if !ok {
		return false
	}
	if rate == nil {
		delete(w.rates, workplace)
		return true
	}
	if _, ok := set[*rate]; !ok {
		return false
	}
	delete(set, *rate)
	if len(set) == 0 {
		delete(w.rates, workplace)
	}
	return true
}

// Has reports whether workplace is in the catalog.
func (w WorkInfos) Has(workplace string) bool {
	_, ok := w.rates[strings.TrimSpace(workplace)]
	return ok
}

// Len is the number of workplaces.
func (w WorkInfos) Len() int { return len(w.rates) }

// Workplaces returns the workplace names sorted.
func (w WorkInfos) Workplaces() []string {
	names := make([]string, 0, len(w.rates))
	for name := range w.rates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rates returns the pay rates for workplace in ascending order.
func (w WorkInfos) Rates(workplace string) []float64 {
	set := w.rates[strings.TrimSpace(workplace)]
	rates := make([]float64, 0, len(set))
	for r := range set {
		rates = append(rates, r)
	}
	sort.Float64s(rates)
	return rates
}

// Entries lists the catalog sorted by workplace; this is the persisted shape.
func (w WorkInfos) Entries() []WorkInfo {
	entries := make([]WorkInfo, 0, len(w.rates))
	for _, name := range w.Workplaces() {
		entries = append(entries, WorkInfo{Workplace: name, PayRates: w.Rates(name)})
	}
	return entries
}

// Clone returns an independent copy.
func (w WorkInfos) Clone() WorkInfos {
	return NewWorkInfos(w.Entries())
}
