package evidence

import "math"

// Polarity marks whether an entry raises or lowers risk.
type Polarity int

const (
	PolarityRisk Polarity = iota
	PolarityTrust
)

// Entry is one scored finding: a delta applied to the running score and the
// human-readable label that justifies it.
type Entry struct {
	Delta    float64
	Label    string
	Polarity Polarity
}

// Ledger folds scored findings into a clamped 0-100 score while keeping the
// labels partitioned by polarity. The zero value is ready to use.
type Ledger struct {
	entries []Entry
}

// Risk records a finding that raises the score by points.
func (l *Ledger) Risk(points float64, label string) {
	l.entries = append(l.entries, Entry{Delta: points, Label: label, Polarity: PolarityRisk})
}

// Trust records a finding that lowers the score by points. Zero-point trust
// entries are allowed; they surface as positive indicators without moving
// the score.
func (l *Ledger) Trust(points float64, label string) {
	l.entries = append(l.entries, Entry{Delta: -points, Label: label, Polarity: PolarityTrust})
}

// Score returns base plus every delta, clamped to [0, 100].
func (l *Ledger) Score(base float64) float64 {
	total := base
	for _, entry := range l.entries {
		total += entry.Delta
	}
	return clamp(total)
}

// Warnings returns the risk labels in insertion order.
func (l *Ledger) Warnings() []string {
	return l.labels(PolarityRisk)
}

// Positives returns the trust labels in insertion order.
func (l *Ledger) Positives() []string {
	return l.labels(PolarityTrust)
}

// Evidence returns every label in insertion order regardless of polarity.
func (l *Ledger) Evidence() []string {
	out := make([]string, 0, len(l.entries))
	for _, entry := range l.entries {
		out = append(out, entry.Label)
	}
	return out
}

// Entries returns a copy of the recorded findings.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports how many findings have been recorded.
func (l *Ledger) Len() int {
	return len(l.entries)
}

func (l *Ledger) labels(p Polarity) []string {
	var out []string
	for _, entry := range l.entries {
		if entry.Polarity == p {
			out = append(out, entry.Label)
		}
	}
	return out
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
