package domaintrust

import (
	"context"
	"strings"
	"time"

	whoisparser "github.com/likexian/whois-parser"
	"github.com/sirupsen/logrus"

	"journal-risk-eval/backend/internal/match"
)

// WHOIS servers disagree wildly on date formats.
var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"2006/01/02",
	"01/02/2006",
	"20060102",
	"2006. 01. 02.",
	"02.01.2006",
}

// lookupRegistration resolves creation date and registrar for the domain,
// trying WHOIS on the host, then WHOIS on the registrable parent, then RDAP.
func (a *Analyzer) lookupRegistration(ctx context.Context, name match.Name) registrationFacts {
	facts := a.whoisLookup(ctx, name.Host)
	if !facts.ageKnown {
		if parent := match.ParentOf(name); parent != "" {
			if parentFacts := a.whoisLookup(ctx, parent); parentFacts.ageKnown {
				facts = parentFacts
			}
		}
	}
	if !facts.ageKnown && a.rdap != nil {
		reg, err := a.rdap.Lookup(ctx, name.Registrable)
		switch {
		case err != nil:
			logrus.WithError(err).WithField("domain", name.Registrable).Debug("rdap fallback failed")
		case !reg.Created.IsZero():
			facts.ageKnown = true
			facts.ageDays = ageInDays(reg.Created)
			facts.failed = false
			if facts.registrar == "" {
				facts.registrar = reg.Registrar
			}
		}
	}
	return facts
}

func (a *Analyzer) whoisLookup(ctx context.Context, host string) registrationFacts {
	raw, err := a.whoisQuery(ctx, host)
	if err != nil {
		logrus.WithError(err).WithField("domain", host).Debug("whois lookup failed")
		return registrationFacts{failed: true}
	}

	parsed, err := whoisparser.Parse(raw)
	if err != nil {
		logrus.WithError(err).WithField("domain", host).Debug("whois parse failed")
		return registrationFacts{failed: true}
	}

	facts := registrationFacts{}
	if parsed.Registrar != nil {
		facts.registrar = strings.TrimSpace(parsed.Registrar.Name)
	}
	if parsed.Registrant != nil {
		facts.contactText = strings.TrimSpace(parsed.Registrant.Organization + " " + parsed.Registrant.Name)
	}
	if parsed.Domain != nil {
		if parsed.Domain.CreatedDateInTime != nil && !parsed.Domain.CreatedDateInTime.IsZero() {
			facts.ageKnown = true
			facts.ageDays = ageInDays(*parsed.Domain.CreatedDateInTime)
		} else if created, ok := parseWhoisDate(parsed.Domain.CreatedDate); ok {
			facts.ageKnown = true
			facts.ageDays = ageInDays(created)
		}
	}
	return facts
}

// whoisQuery runs the query in a goroutine so ctx cancellation holds even
// when an upstream WHOIS server stalls past its dial timeout.
func (a *Analyzer) whoisQuery(ctx context.Context, host string) (string, error) {
	type outcome struct {
		raw string
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		raw, err := a.whoisClient.Whois(host)
		ch <- outcome{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case out := <-ch:
		return out.raw, out.err
	}
}

func parseWhoisDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range whoisDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func ageInDays(created time.Time) int {
	days := int(time.Since(created).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
