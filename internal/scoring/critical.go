package scoring

import (
	"fmt"

	"journal-risk-eval/backend/internal/domaintrust"
)

// CriticalIssue is a hallmark predatory practice that on its own forces the
// overall score up to Floor, whatever the weighted sum says.
type CriticalIssue struct {
	Label string
	Floor float64
}

// DetectCriticalIssues scans the extracted features and the domain analysis
// for practices that individually mark a journal as predatory.
func DetectCriticalIssues(features FeatureSet, analysis *domaintrust.Analysis, policy CriticalPolicy) []CriticalIssue {
	var issues []CriticalIssue

	if features.Content.GuaranteedAcceptance {
		issues = append(issues, CriticalIssue{
			Label: "Guarantees acceptance of submissions",
			Floor: policy.GuaranteedAcceptanceFloor,
		})
	}
	if features.Fees.PaymentBeforeReview {
		issues = append(issues, CriticalIssue{
			Label: "Requires payment before peer review",
			Floor: policy.PaymentBeforeReviewFloor,
		})
	}
	b := features.Bibliometric
	if b.ClaimsImpactFactor && !b.HasISSN && !b.MentionsIndexing {
		issues = append(issues, CriticalIssue{
			Label: "Claims an impact factor that cannot be verified",
			Floor: policy.UnverifiableImpactFactorFloor,
		})
	}
	if analysis != nil && analysis.TyposquatOf != "" {
		issues = append(issues, CriticalIssue{
			Label: fmt.Sprintf("Domain imitates established publisher %s", analysis.TyposquatOf),
			Floor: policy.TyposquatFloor,
		})
	}

	return issues
}
