package domaintrust

import (
	"context"
	"errors"
	"fmt"

	"github.com/likexian/whois"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"journal-risk-eval/backend/internal/match"
	"journal-risk-eval/backend/internal/publishers"
	"journal-risk-eval/backend/internal/rdap"
	"journal-risk-eval/backend/internal/util"
)

var defaultDNSServers = []string{"8.8.8.8:53", "1.1.1.1:53"}

// Analysis is the domain trust report for one domain.
type Analysis struct {
	Domain      string `json:"domain"`
	Registrable string `json:"registrable"`

	AgeDays             int    `json:"age_days"`
	AgeKnown            bool   `json:"age_known"`
	Registrar           string `json:"registrar,omitempty"`
	RegistrarPrivacy    bool   `json:"registrar_privacy"`
	SuspiciousRegistrar bool   `json:"suspicious_registrar"`

	TLD            string `json:"tld"`
	SuspiciousTLD  bool   `json:"suspicious_tld"`
	AcademicDomain bool   `json:"academic_domain"`
	KnownPublisher string `json:"known_publisher,omitempty"`
	TyposquatOf    string `json:"typosquat_of,omitempty"`

	HasCertificate bool   `json:"has_certificate"`
	SelfSignedCert bool   `json:"self_signed_cert"`
	CertIssuer     string `json:"cert_issuer,omitempty"`

	HasMX            bool     `json:"has_mx"`
	HasSPF           bool     `json:"has_spf"`
	DisposableMailMX bool     `json:"disposable_mail_mx"`
	MXHosts          []string `json:"mx_hosts,omitempty"`

	ContainsDigits  bool `json:"contains_digits"`
	ContainsHyphens bool `json:"contains_hyphens"`

	RiskScore  float64 `json:"domain_risk_score"`
	Suspicious bool    `json:"is_suspicious"`

	WarningFlags         []string `json:"warning_flags"`
	LegitimacyIndicators []string `json:"legitimacy_indicators"`
	FailedLookups        []string `json:"failed_lookups,omitempty"`

	ElapsedMs int64 `json:"elapsed_ms"`
}

// Config wires the analyzer's collaborators.
type Config struct {
	Index      *publishers.Index
	RDAP       *rdap.Client // optional registration fallback
	Policy     Policy
	DNSServers []string
}

// Analyzer turns a raw domain into an Analysis. It is the only component in
// the assessment pipeline that performs network I/O; every lookup failure
// degrades into the corresponding worst-case signal instead of an error.
type Analyzer struct {
	index       *publishers.Index
	rdap        *rdap.Client
	policy      Policy
	dnsServers  []string
	whoisClient *whois.Client
}

// NewAnalyzer validates the configuration and builds an Analyzer.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.Index == nil {
		return nil, errors.New("domain trust analyzer requires a publisher index")
	}

	policy := cfg.Policy
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	if policy.LookupTimeout <= 0 {
		policy.LookupTimeout = DefaultPolicy().LookupTimeout
	}
	if policy.TyposquatThreshold <= 0 {
		policy.TyposquatThreshold = DefaultPolicy().TyposquatThreshold
	}

	servers := cfg.DNSServers
	if len(servers) == 0 {
		servers = defaultDNSServers
	}

	return &Analyzer{
		index:       cfg.Index,
		rdap:        cfg.RDAP,
		policy:      policy,
		dnsServers:  servers,
		whoisClient: whois.NewClient().SetTimeout(policy.LookupTimeout),
	}, nil
}

// Analyze runs the registration, mail and certificate lookups concurrently,
// each under its own timeout, and scores the gathered facts. The only error
// it can return is an invalid domain; lookups never fail the analysis.
func (a *Analyzer) Analyze(ctx context.Context, rawDomain string) (*Analysis, error) {
	name, err := match.NormalizeDomain(rawDomain)
	if err != nil {
		return nil, fmt.Errorf("normalize domain %q: %w", rawDomain, err)
	}

	timer := util.StartTimer()

	var (
		reg  registrationFacts
		mail mailFacts
		cert certificateFacts
	)

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lookupCtx, cancel := context.WithTimeout(groupCtx, a.policy.LookupTimeout)
		defer cancel()
		reg = a.lookupRegistration(lookupCtx, name)
		return nil
	})
	g.Go(func() error {
		lookupCtx, cancel := context.WithTimeout(groupCtx, a.policy.LookupTimeout)
		defer cancel()
		mail = a.lookupMail(lookupCtx, name.Host)
		return nil
	})
	g.Go(func() error {
		lookupCtx, cancel := context.WithTimeout(groupCtx, a.policy.LookupTimeout)
		defer cancel()
		cert = a.lookupCertificate(lookupCtx, name.Host)
		return nil
	})
	_ = g.Wait()

	analysis := score(name, facts{registration: reg, mail: mail, certificate: cert}, a.index, a.policy)
	analysis.ElapsedMs = timer.ElapsedMs()

	logrus.WithFields(logrus.Fields{
		"domain":         name.Host,
		"risk_score":     analysis.RiskScore,
		"suspicious":     analysis.Suspicious,
		"failed_lookups": len(analysis.FailedLookups),
		"duration_ms":    analysis.ElapsedMs,
	}).Debug("domain trust analysis complete")

	return analysis, nil
}
