package domaintrust

import "time"

// Age thresholds for the registration-age contribution.
const (
	brandNewAgeDays = 30
	oneYearDays     = 365
	twoYearsDays    = 730
)

// Policy holds the tunable scoring constants. The additive-then-clamp shape
// and the signal set are fixed; deployments tune the numbers.
type Policy struct {
	LookupTimeout       time.Duration
	SuspiciousThreshold float64
	TyposquatThreshold  float64

	YoungDomainPoints         float64
	UnderOneYearPoints        float64
	UnderTwoYearsPoints       float64
	SuspiciousTLDPoints       float64
	AcademicTLDCredit         float64
	KnownPublisherCredit      float64
	TyposquatPoints           float64
	NoCertificatePoints       float64
	SelfSignedPoints          float64
	PrivacyServicePoints      float64
	DigitPoints               float64
	HyphenPoints              float64
	NoSPFPoints               float64
	DisposableMailPoints      float64
	SuspiciousRegistrarPoints float64
}

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{
		LookupTimeout:       10 * time.Second,
		SuspiciousThreshold: 50,
		TyposquatThreshold:  0.7,

		YoungDomainPoints:         30,
		UnderOneYearPoints:        15,
		UnderTwoYearsPoints:       5,
		SuspiciousTLDPoints:       25,
		AcademicTLDCredit:         20,
		KnownPublisherCredit:      30,
		TyposquatPoints:           25,
		NoCertificatePoints:       20,
		SelfSignedPoints:          15,
		PrivacyServicePoints:      10,
		DigitPoints:               5,
		HyphenPoints:              5,
		NoSPFPoints:               5,
		DisposableMailPoints:      15,
		SuspiciousRegistrarPoints: 10,
	}
}
