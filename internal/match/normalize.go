package match

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidDomain is returned when an input cannot be reduced to a usable
// host name. This is the only fatal condition in the assessment pipeline;
// every other failure degrades.
var ErrInvalidDomain = errors.New("invalid domain")

var (
	protocolStripper = regexp.MustCompile(`^[a-z][a-z0-9+.-]*://`)
	labelPattern     = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
	alphaTLD         = regexp.MustCompile(`^[a-z]{2,}$`)
)

// Name captures the normalization output for a domain string.
type Name struct {
	Original    string
	Host        string
	Registrable string
	SLD         string
	TLD         string
	Labels      []string
}

// multiPartSuffixes lists common two-part public suffixes so registrable
// extraction keeps names like example.co.uk intact.
var multiPartSuffixes = map[string]struct{}{
	"co.uk": {}, "org.uk": {}, "ac.uk": {}, "gov.uk": {}, "me.uk": {},
	"co.in": {}, "ac.in": {}, "edu.in": {}, "net.in": {},
	"com.au": {}, "edu.au": {}, "org.au": {}, "net.au": {},
	"co.jp": {}, "ac.jp": {}, "or.jp": {}, "ne.jp": {},
	"com.cn": {}, "edu.cn": {}, "org.cn": {}, "net.cn": {},
	"com.br": {}, "org.br": {}, "edu.br": {},
	"co.za": {}, "ac.za": {}, "org.za": {},
	"com.mx": {}, "edu.mx": {},
	"com.sg": {}, "edu.sg": {},
	"co.kr": {}, "ac.kr": {},
	"com.tw": {}, "edu.tw": {},
	"com.hk": {}, "edu.hk": {},
	"co.nz": {}, "ac.nz": {},
	"com.my": {}, "edu.my": {},
	"co.th": {}, "ac.th": {},
	"com.pk": {}, "edu.pk": {},
	"com.ng": {}, "edu.ng": {},
	"com.eg": {}, "edu.eg": {},
	"com.sa": {}, "edu.sa": {},
	"ac.ir": {}, "co.il": {}, "ac.il": {},
}

// NormalizeDomain lowercases and strips the supplied domain or URL down to a
// bare host, then splits out the registrable domain, second-level name and
// public suffix. An empty or malformed input returns ErrInvalidDomain.
func NormalizeDomain(input string) (Name, error) {
	lower := strings.ToLower(strings.TrimSpace(input))
	lower = protocolStripper.ReplaceAllString(lower, "")

	// Trim path, query, fragment
	for _, sep := range []string{"/", "?", "#"} {
		if idx := strings.Index(lower, sep); idx >= 0 {
			lower = lower[:idx]
		}
	}

	// Drop credentials if present (user:pass@)
	if idx := strings.LastIndex(lower, "@"); idx >= 0 {
		lower = lower[idx+1:]
	}

	lower = strings.Trim(lower, ".")
	lower = strings.TrimPrefix(lower, "www.")

	host := lower
	if idx := strings.IndexRune(host, ':'); idx >= 0 {
		host = host[:idx]
	}

	if host == "" || len(host) > 253 {
		return Name{}, ErrInvalidDomain
	}

	labels := compactLabels(strings.Split(host, "."))
	if len(labels) < 2 {
		return Name{}, ErrInvalidDomain
	}
	for _, label := range labels {
		if len(label) > 63 || !labelPattern.MatchString(label) {
			return Name{}, ErrInvalidDomain
		}
	}
	if !alphaTLD.MatchString(labels[len(labels)-1]) {
		return Name{}, ErrInvalidDomain
	}

	host = strings.Join(labels, ".")

	tld := labels[len(labels)-1]
	sld := labels[len(labels)-2]
	if len(labels) >= 3 {
		twoPart := labels[len(labels)-2] + "." + labels[len(labels)-1]
		if _, ok := multiPartSuffixes[twoPart]; ok {
			tld = twoPart
			sld = labels[len(labels)-3]
		}
	}

	return Name{
		Original:    input,
		Host:        host,
		Registrable: sld + "." + tld,
		SLD:         sld,
		TLD:         tld,
		Labels:      labels,
	}, nil
}

// ParentOf returns the registrable domain when host carries extra subdomain
// labels, or an empty string when host is already the registrable name.
// Used for the WHOIS parent-domain fallback.
func ParentOf(name Name) string {
	if name.Host == name.Registrable {
		return ""
	}
	return name.Registrable
}

func compactLabels(in []string) []string {
	var out []string
	for _, label := range in {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
