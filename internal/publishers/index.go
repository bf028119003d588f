package publishers

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Lists is the on-disk shape of publisher_lists.json.
type Lists struct {
	Publishers           []string `json:"publishers"`
	SuspiciousTLDs       []string `json:"suspicious_tlds"`
	AcademicTLDs         []string `json:"academic_tlds"`
	SuspiciousRegistrars []string `json:"suspicious_registrars"`
	PrivacyServices      []string `json:"privacy_services"`
	DisposableMailHosts  []string `json:"disposable_mail_hosts"`
}

// Index answers allowlist and reputation-list questions about domains,
// registrars and mail hosts. Merge must finish before the index is shared
// with the analyzer; all lookups afterwards are read-only.
type Index struct {
	publishers           []string
	publisherSet         map[string]struct{}
	suspiciousTLDs       map[string]struct{}
	academicTLDs         []string
	suspiciousRegistrars []string
	privacyServices      []string
	disposableMailHosts  []string
}

// Load reads a lists file and builds a validated Index.
func Load(path string) (*Index, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publisher lists: %w", err)
	}
	var lists Lists
	if err := json.Unmarshal(payload, &lists); err != nil {
		return nil, fmt.Errorf("parse publisher lists: %w", err)
	}
	idx := NewIndex(lists)
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx, nil
}

// NewIndex builds an Index from in-memory lists without validation.
func NewIndex(lists Lists) *Index {
	idx := &Index{
		publisherSet:   make(map[string]struct{}),
		suspiciousTLDs: make(map[string]struct{}),
	}
	for _, pub := range lists.Publishers {
		idx.addPublisher(pub)
	}
	for _, tld := range lists.SuspiciousTLDs {
		if cleaned := cleanToken(tld); cleaned != "" {
			idx.suspiciousTLDs[cleaned] = struct{}{}
		}
	}
	for _, tld := range lists.AcademicTLDs {
		if cleaned := cleanToken(tld); cleaned != "" {
			idx.academicTLDs = append(idx.academicTLDs, cleaned)
		}
	}
	idx.suspiciousRegistrars = cleanAll(lists.SuspiciousRegistrars)
	idx.privacyServices = cleanAll(lists.PrivacyServices)
	idx.disposableMailHosts = cleanAll(lists.DisposableMailHosts)
	return idx
}

// Validate checks the invariants the analyzer relies on: a non-empty
// allowlist and disjoint suspicious/academic TLD sets.
func (ix *Index) Validate() error {
	if len(ix.publishers) == 0 {
		return fmt.Errorf("publisher lists: no publisher domains configured")
	}
	for _, academic := range ix.academicTLDs {
		if _, dup := ix.suspiciousTLDs[academic]; dup {
			return fmt.Errorf("publisher lists: tld %q listed as both suspicious and academic", academic)
		}
	}
	return nil
}

// Merge adds publisher domains gathered from the store and reports how many
// were new. It must run before the index is handed to the analyzer.
func (ix *Index) Merge(domains []string) int {
	added := 0
	for _, domain := range domains {
		if ix.addPublisher(domain) {
			added++
		}
	}
	return added
}

// PublisherCount reports the number of allowlisted publisher domains.
func (ix *Index) PublisherCount() int {
	return len(ix.publishers)
}

// MatchPublisher reports the allowlisted publisher domain matching host,
// by exact or substring match (journals.springer.com matches springer.com).
func (ix *Index) MatchPublisher(host string) (string, bool) {
	host = cleanToken(host)
	if host == "" {
		return "", false
	}
	if _, ok := ix.publisherSet[host]; ok {
		return host, true
	}
	for _, pub := range ix.publishers {
		if strings.Contains(host, pub) {
			return pub, true
		}
	}
	return "", false
}

// NearestPublisher returns the allowlisted publisher domain with the highest
// character-set Jaccard similarity to domain, along with that similarity.
func (ix *Index) NearestPublisher(domain string) (string, float64) {
	domain = cleanToken(domain)
	best := ""
	bestSim := 0.0
	for _, pub := range ix.publishers {
		if sim := Jaccard(domain, pub); sim > bestSim {
			best, bestSim = pub, sim
		}
	}
	return best, bestSim
}

// IsSuspiciousTLD reports whether the resolved public suffix is on the
// suspicious list.
func (ix *Index) IsSuspiciousTLD(tld string) bool {
	_, ok := ix.suspiciousTLDs[cleanToken(tld)]
	return ok
}

// IsAcademicTLD reports whether host sits under an academic suffix
// such as .edu or .ac.uk.
func (ix *Index) IsAcademicTLD(host string) bool {
	host = cleanToken(host)
	for _, tld := range ix.academicTLDs {
		if host == tld || strings.HasSuffix(host, "."+tld) {
			return true
		}
	}
	return false
}

// MatchSuspiciousRegistrar reports the suspicious-registrar entry contained
// in the registrar name, case-insensitively.
func (ix *Index) MatchSuspiciousRegistrar(registrar string) (string, bool) {
	registrar = strings.ToLower(strings.TrimSpace(registrar))
	if registrar == "" {
		return "", false
	}
	for _, entry := range ix.suspiciousRegistrars {
		if strings.Contains(registrar, entry) {
			return entry, true
		}
	}
	return "", false
}

// IsPrivacyService reports whether the WHOIS contact text names a known
// privacy or proxy service.
func (ix *Index) IsPrivacyService(text string) bool {
	text = strings.ToLower(text)
	if text == "" {
		return false
	}
	for _, marker := range ix.privacyServices {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// MatchDisposableMailHost reports the disposable-mail provider contained in
// the MX host name.
func (ix *Index) MatchDisposableMailHost(mx string) (string, bool) {
	mx = cleanToken(mx)
	if mx == "" {
		return "", false
	}
	for _, provider := range ix.disposableMailHosts {
		if strings.Contains(mx, provider) {
			return provider, true
		}
	}
	return "", false
}

// Jaccard computes the character-set Jaccard similarity of two strings,
// case-insensitively: intersection size over union size of their rune sets.
func Jaccard(a, b string) float64 {
	setA := runeSet(a)
	setB := runeSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range strings.ToLower(s) {
		set[r] = struct{}{}
	}
	return set
}

func (ix *Index) addPublisher(domain string) bool {
	domain = strings.TrimPrefix(cleanToken(domain), "www.")
	if domain == "" {
		return false
	}
	if _, dup := ix.publisherSet[domain]; dup {
		return false
	}
	ix.publishers = append(ix.publishers, domain)
	ix.publisherSet[domain] = struct{}{}
	return true
}

func cleanToken(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), "."))
}

func cleanAll(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
