package domaintrust

import (
	"context"
	"errors"
	"strings"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
)

// lookupMail queries MX and TXT records to establish mail posture: whether
// mail is configured at all, whether SPF is published, and which hosts
// receive mail (checked against the disposable-provider list later).
func (a *Analyzer) lookupMail(ctx context.Context, host string) mailFacts {
	facts := mailFacts{}

	mxHosts, err := a.queryMX(ctx, host)
	if err != nil {
		logrus.WithError(err).WithField("domain", host).Debug("mx lookup failed")
		facts.failed = true
	} else {
		facts.mxHosts = mxHosts
		facts.hasMX = len(mxHosts) > 0
	}

	txtRecords, err := a.queryTXT(ctx, host)
	if err != nil {
		logrus.WithError(err).WithField("domain", host).Debug("txt lookup failed")
		facts.failed = true
		return facts
	}
	for _, record := range txtRecords {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(record)), "v=spf1") {
			facts.hasSPF = true
			break
		}
	}
	return facts
}

func (a *Analyzer) queryMX(ctx context.Context, host string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeMX)

	resp, err := a.exchange(ctx, msg)
	if err != nil {
		return nil, err
	}

	var hosts []string
	for _, answer := range resp.Answer {
		if mx, ok := answer.(*dns.MX); ok {
			if target := strings.TrimSuffix(strings.TrimSpace(mx.Mx), "."); target != "" {
				hosts = append(hosts, target)
			}
		}
	}
	return hosts, nil
}

func (a *Analyzer) queryTXT(ctx context.Context, host string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeTXT)

	resp, err := a.exchange(ctx, msg)
	if err != nil {
		return nil, err
	}

	var records []string
	for _, answer := range resp.Answer {
		if txt, ok := answer.(*dns.TXT); ok {
			records = append(records, strings.Join(txt.Txt, ""))
		}
	}
	return records, nil
}

// exchange tries each configured resolver in order until one answers.
func (a *Analyzer) exchange(ctx context.Context, msg *dns.Msg) (*dns.Msg, error) {
	client := &dns.Client{Timeout: a.policy.LookupTimeout}

	var lastErr error
	for _, server := range a.dnsServers {
		resp, _, err := client.ExchangeContext(ctx, msg, server)
		if err == nil && resp != nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no dns answer")
	}
	return nil, lastErr
}
