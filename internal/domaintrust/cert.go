package domaintrust

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"

	"github.com/sirupsen/logrus"
)

// lookupCertificate retrieves the leaf certificate on port 443. A failed
// dial counts as no certificate; trust is scored, not enforced, so chain
// verification is skipped and self-signed leaves are inspected directly.
func (a *Analyzer) lookupCertificate(ctx context.Context, host string) certificateFacts {
	dialer := &net.Dialer{Timeout: a.policy.LookupTimeout}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}

	conn, err := tls.DialWithDialer(dialer, "tcp", host+":443", &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: true,
	})
	if err != nil {
		logrus.WithError(err).WithField("domain", host).Debug("certificate probe failed")
		return certificateFacts{failed: true}
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return certificateFacts{failed: true}
	}

	leaf := certs[0]
	return certificateFacts{
		present:    true,
		selfSigned: isSelfSigned(leaf),
		issuer:     leaf.Issuer.CommonName,
	}
}

// isSelfSigned compares issuer and subject identity on the leaf: matching
// common name and organization means nobody else vouched for the cert.
func isSelfSigned(cert *x509.Certificate) bool {
	return cert.Issuer.CommonName == cert.Subject.CommonName &&
		firstOrEmpty(cert.Issuer.Organization) == firstOrEmpty(cert.Subject.Organization)
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
