package scoring

import (
	"fmt"
	"math"

	"journal-risk-eval/backend/internal/domaintrust"
	"journal-risk-eval/backend/internal/evidence"
)

// newDimensionScore folds a ledger into the DimensionScore for cat.
func newDimensionScore(cat Category, led *evidence.Ledger) DimensionScore {
	return DimensionScore{
		Category:  cat,
		Score:     led.Score(0),
		Weight:    WeightFor(cat),
		Evidence:  led.Evidence(),
		warnings:  led.Warnings(),
		positives: led.Positives(),
	}
}

// ScoreAll runs every dimension scorer and returns the scores in canonical
// order. The domain dimension is skipped when no analysis is available; the
// aggregator renormalizes the remaining weights.
func ScoreAll(features FeatureSet, analysis *domaintrust.Analysis, policy Policy) []DimensionScore {
	scores := []DimensionScore{
		ScoreEditorialBoard(features, policy),
		ScoreWebsiteQuality(features, policy),
		ScoreSubmissionProcess(features, policy),
		ScorePublicationFees(features, policy),
		ScoreContentQuality(features, policy),
		ScoreContactInformation(features, policy),
	}
	if analysis != nil {
		scores = append(scores, ScoreDomainAnalysis(analysis))
	}
	scores = append(scores, ScoreBibliometric(features, policy))
	return scores
}

// ScoreEditorialBoard judges the editorial board: predatory journals
// typically list no board, a handful of names, or no identifiable
// editor-in-chief.
func ScoreEditorialBoard(features FeatureSet, policy Policy) DimensionScore {
	led := &evidence.Ledger{}
	p := policy.Editorial
	f := features.Editorial

	switch {
	case f.BoardSize == 0:
		led.Risk(p.NoBoardPoints, "No editorial board information found")
	case f.BoardSize <= p.TinyBoardMax:
		led.Risk(p.TinyBoardPoints, fmt.Sprintf("Editorial board lists only %d members", f.BoardSize))
	case f.BoardSize <= p.SmallBoardMax:
		led.Risk(p.SmallBoardPoints, fmt.Sprintf("Editorial board lists just %d members", f.BoardSize))
	default:
		led.Trust(p.LargeBoardCredit, fmt.Sprintf("Editorial board lists %d members", f.BoardSize))
	}

	if f.HasChiefEditor {
		led.Trust(0, "Editor-in-chief identified")
	} else {
		led.Risk(p.NoChiefEditorPoints, "No editor-in-chief identified")
	}

	return newDimensionScore(CategoryEditorialBoard, led)
}

// ScoreWebsiteQuality judges the technical presentation of the site.
func ScoreWebsiteQuality(features FeatureSet, policy Policy) DimensionScore {
	led := &evidence.Ledger{}
	p := policy.Website
	f := features.Technical

	if f.HasSSL {
		led.Trust(0, "Site served over HTTPS")
	} else {
		led.Risk(p.NoSSLPoints, "Site not served over HTTPS")
	}

	if f.StatusCode != 0 && (f.StatusCode < 200 || f.StatusCode >= 400) {
		led.Risk(p.ErrorStatusPoints, fmt.Sprintf("Page responded with HTTP %d", f.StatusCode))
	}

	switch f.ResponseTimeBucket {
	case "slow":
		led.Risk(p.SlowPoints, "Slow page response")
	case "very_slow":
		led.Risk(p.VerySlowPoints, "Very slow page response")
	case "fast":
		led.Trust(0, "Fast page response")
	}

	switch {
	case f.PageWords == 0:
		led.Risk(p.ThinPagePoints, "No page text captured")
	case f.PageWords < p.ThinPageWords:
		led.Risk(p.ThinPagePoints, fmt.Sprintf("Page has very little content (%d words)", f.PageWords))
	}

	return newDimensionScore(CategoryWebsiteQuality, led)
}

// ScoreSubmissionProcess judges how the journal describes its intake:
// missing guidelines, no mention of peer review, or promises of
// unrealistically fast turnaround.
func ScoreSubmissionProcess(features FeatureSet, policy Policy) DimensionScore {
	led := &evidence.Ledger{}
	p := policy.Submission
	f := features.Submission

	if f.HasGuidelines {
		led.Trust(0, "Submission guidelines published")
	} else {
		led.Risk(p.NoGuidelinesPoints, "No submission guidelines found")
	}

	if f.MentionsPeerReview {
		led.Trust(0, "Peer review process described")
	} else {
		led.Risk(p.NoPeerReviewPoints, "No mention of peer review")
	}

	if f.PromisesFastReview {
		led.Risk(p.FastReviewPoints, "Promises unrealistically fast review or publication")
	}

	return newDimensionScore(CategorySubmissionProcess, led)
}

// ScorePublicationFees judges fee transparency and payment channels.
func ScorePublicationFees(features FeatureSet, policy Policy) DimensionScore {
	led := &evidence.Ledger{}
	p := policy.Fees
	f := features.Fees

	if f.CryptoPayment {
		led.Risk(p.CryptoPoints, "Accepts cryptocurrency payment")
	}
	if f.WireOnly {
		led.Risk(p.WireOnlyPoints, "Requests payment through wire services")
	}
	if f.PaymentBeforeReview {
		led.Risk(p.PaymentBeforeReviewPoints, "Requires payment before peer review")
	}

	switch {
	case !f.Disclosed:
		led.Risk(p.HiddenFeesPoints, "No publication fee information disclosed")
	case f.AmountUSD > p.HighFeeUSD:
		led.Risk(p.HighFeePoints, fmt.Sprintf("Unusually high publication fee (USD %.0f)", f.AmountUSD))
	default:
		led.Trust(p.DisclosedCredit, "Publication fees disclosed")
	}

	return newDimensionScore(CategoryPublicationFees, led)
}

// ScoreContentQuality judges the page text itself: predatory marketing
// language, thin content, and language that does not read like prose.
func ScoreContentQuality(features FeatureSet, policy Policy) DimensionScore {
	led := &evidence.Ledger{}
	p := policy.Content
	f := features.Content

	if count := len(f.PredatoryPhrases); count > 0 {
		points := math.Min(p.PerPhrasePoints*float64(count), p.PhrasePointsCap)
		led.Risk(points, fmt.Sprintf("Predatory marketing language detected (%d phrases)", count))
		for _, phrase := range f.PredatoryPhrases {
			led.Risk(0, fmt.Sprintf("Contains phrase %q", phrase))
		}
	}

	switch {
	case f.WordCount == 0:
		led.Risk(p.ThinContentPoints, "No readable content captured")
	case f.WordCount < p.ThinContentWords:
		led.Risk(p.ThinContentPoints, fmt.Sprintf("Thin content (%d words)", f.WordCount))
	default:
		led.Trust(0, "Substantial page content")
	}

	if f.LanguageUnclear {
		led.Risk(p.LanguageUnclearPoints, "Page text does not read like standard prose")
	}

	return newDimensionScore(CategoryContentQuality, led)
}

// ScoreContactInformation judges reachability: journals that cannot be
// contacted cannot be held accountable.
func ScoreContactInformation(features FeatureSet, policy Policy) DimensionScore {
	led := &evidence.Ledger{}
	p := policy.Contact
	f := features.Contact

	methods := f.MethodCount
	if methods == 0 && (f.EmailCount > 0 || f.PhoneCount > 0) {
		methods = 1
	}

	switch {
	case methods == 0:
		led.Risk(p.NoContactPoints, "No contact information found")
	case methods == 1:
		led.Risk(p.SingleContactPoints, "Only one contact method listed")
	default:
		led.Trust(p.MultiChannelCredit, fmt.Sprintf("%d contact methods listed", methods))
	}

	if methods > 0 && f.EmailCount == 0 {
		led.Risk(p.NoEmailPoints, "No email address found")
	}
	if f.HasAddress {
		led.Trust(0, "Physical address provided")
	}

	return newDimensionScore(CategoryContactInformation, led)
}

// ScoreDomainAnalysis folds the domain trust analysis into its dimension.
// The analyzer's 0-100 risk score is used directly; its warnings and
// legitimacy indicators become the evidence.
func ScoreDomainAnalysis(analysis *domaintrust.Analysis) DimensionScore {
	evidenceList := append([]string{}, analysis.WarningFlags...)
	evidenceList = append(evidenceList, analysis.LegitimacyIndicators...)

	return DimensionScore{
		Category:  CategoryDomainAnalysis,
		Score:     analysis.RiskScore,
		Weight:    WeightFor(CategoryDomainAnalysis),
		Evidence:  evidenceList,
		warnings:  analysis.WarningFlags,
		positives: analysis.LegitimacyIndicators,
	}
}

// ScoreBibliometric judges verifiability of the journal's impact claims.
func ScoreBibliometric(features FeatureSet, policy Policy) DimensionScore {
	led := &evidence.Ledger{}
	p := policy.Bibliometric
	f := features.Bibliometric

	switch {
	case f.ClaimsImpactFactor && !f.HasISSN && !f.MentionsIndexing:
		led.Risk(p.UnverifiedImpactFactorPoints, "Claims an impact factor with no ISSN or indexing to verify it")
	case f.ClaimsImpactFactor && !f.MentionsIndexing:
		led.Risk(p.UnindexedImpactFactorPoints, "Claims an impact factor without naming any index")
	case f.ClaimsImpactFactor:
		led.Trust(0, "Impact factor claim accompanied by indexing details")
	}

	if f.HasISSN {
		led.Trust(p.ISSNCredit, "ISSN present")
	} else {
		led.Risk(p.NoISSNPoints, "No ISSN found")
	}

	return newDimensionScore(CategoryBibliometric, led)
}
