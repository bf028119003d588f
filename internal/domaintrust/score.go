package domaintrust

import (
	"fmt"
	"strings"

	"journal-risk-eval/backend/internal/evidence"
	"journal-risk-eval/backend/internal/match"
	"journal-risk-eval/backend/internal/publishers"
)

// facts aggregates the raw lookup outputs before scoring.
type facts struct {
	registration registrationFacts
	mail         mailFacts
	certificate  certificateFacts
}

type registrationFacts struct {
	ageDays     int
	ageKnown    bool
	registrar   string
	contactText string
	failed      bool
}

type mailFacts struct {
	hasMX   bool
	mxHosts []string
	hasSPF  bool
	failed  bool
}

type certificateFacts struct {
	present    bool
	selfSigned bool
	issuer     string
	failed     bool
}

// score folds the gathered facts into an Analysis. It is a pure function of
// its inputs so the scoring table is testable without any network access.
func score(name match.Name, f facts, index *publishers.Index, policy Policy) *Analysis {
	led := &evidence.Ledger{}

	analysis := &Analysis{
		Domain:      name.Host,
		Registrable: name.Registrable,
		TLD:         name.TLD,
		AgeDays:     -1,
	}

	// Registration age: unknown counts the same as brand new.
	switch {
	case !f.registration.ageKnown:
		led.Risk(policy.YoungDomainPoints, "Domain registration age unknown")
	case f.registration.ageDays < brandNewAgeDays:
		analysis.AgeKnown = true
		analysis.AgeDays = f.registration.ageDays
		led.Risk(policy.YoungDomainPoints, fmt.Sprintf("Domain registered only %d days ago", f.registration.ageDays))
	case f.registration.ageDays < oneYearDays:
		analysis.AgeKnown = true
		analysis.AgeDays = f.registration.ageDays
		led.Risk(policy.UnderOneYearPoints, "Domain registered less than a year ago")
	case f.registration.ageDays < twoYearsDays:
		analysis.AgeKnown = true
		analysis.AgeDays = f.registration.ageDays
		led.Risk(policy.UnderTwoYearsPoints, "Domain registered less than two years ago")
	default:
		analysis.AgeKnown = true
		analysis.AgeDays = f.registration.ageDays
		led.Trust(0, fmt.Sprintf("Domain registered %.1f years ago", float64(f.registration.ageDays)/365.0))
	}

	if index.IsSuspiciousTLD(name.TLD) {
		analysis.SuspiciousTLD = true
		led.Risk(policy.SuspiciousTLDPoints, fmt.Sprintf("Suspicious top-level domain .%s", name.TLD))
	}
	if index.IsAcademicTLD(name.Host) {
		analysis.AcademicDomain = true
		led.Trust(policy.AcademicTLDCredit, "Hosted under an academic domain suffix")
	}

	if pub, ok := index.MatchPublisher(name.Host); ok {
		analysis.KnownPublisher = pub
		led.Trust(policy.KnownPublisherCredit, fmt.Sprintf("Matches known publisher domain %s", pub))
	} else if nearest, sim := index.NearestPublisher(name.Registrable); sim > policy.TyposquatThreshold {
		analysis.TyposquatOf = nearest
		led.Risk(policy.TyposquatPoints, fmt.Sprintf("Domain closely resembles known publisher %s", nearest))
	}

	switch {
	case !f.certificate.present:
		led.Risk(policy.NoCertificatePoints, "No TLS certificate on port 443")
	case f.certificate.selfSigned:
		analysis.HasCertificate = true
		analysis.SelfSignedCert = true
		analysis.CertIssuer = f.certificate.issuer
		led.Risk(policy.SelfSignedPoints, "TLS certificate is self-signed")
	default:
		analysis.HasCertificate = true
		analysis.CertIssuer = f.certificate.issuer
		if f.certificate.issuer != "" {
			led.Trust(0, fmt.Sprintf("TLS certificate issued by %s", f.certificate.issuer))
		} else {
			led.Trust(0, "TLS certificate present")
		}
	}

	if index.IsPrivacyService(f.registration.contactText) || index.IsPrivacyService(f.registration.registrar) {
		analysis.RegistrarPrivacy = true
		led.Risk(policy.PrivacyServicePoints, "Registrant hidden behind a WHOIS privacy service")
	}

	if strings.ContainsAny(name.SLD, "0123456789") {
		analysis.ContainsDigits = true
		led.Risk(policy.DigitPoints, "Domain name contains digits")
	}
	if strings.Contains(name.SLD, "-") {
		analysis.ContainsHyphens = true
		led.Risk(policy.HyphenPoints, "Domain name contains hyphens")
	}

	analysis.HasMX = f.mail.hasMX
	analysis.MXHosts = f.mail.mxHosts
	if f.mail.hasSPF {
		analysis.HasSPF = true
		led.Trust(0, "SPF record configured")
	} else {
		led.Risk(policy.NoSPFPoints, "No SPF record")
	}
	for _, mx := range f.mail.mxHosts {
		if provider, ok := index.MatchDisposableMailHost(mx); ok {
			analysis.DisposableMailMX = true
			led.Risk(policy.DisposableMailPoints, fmt.Sprintf("Mail routed through disposable provider %s", provider))
			break
		}
	}

	analysis.Registrar = f.registration.registrar
	if entry, ok := index.MatchSuspiciousRegistrar(f.registration.registrar); ok {
		analysis.SuspiciousRegistrar = true
		led.Risk(policy.SuspiciousRegistrarPoints, fmt.Sprintf("Registrar flagged for abuse: %s", entry))
	}

	if f.registration.failed {
		analysis.FailedLookups = append(analysis.FailedLookups, "registration")
	}
	if f.mail.failed {
		analysis.FailedLookups = append(analysis.FailedLookups, "mail")
	}
	if f.certificate.failed {
		analysis.FailedLookups = append(analysis.FailedLookups, "certificate")
	}

	analysis.RiskScore = led.Score(0)
	analysis.Suspicious = analysis.RiskScore > policy.SuspiciousThreshold
	analysis.WarningFlags = led.Warnings()
	analysis.LegitimacyIndicators = led.Positives()

	return analysis
}
