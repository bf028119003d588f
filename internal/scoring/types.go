package scoring

// Category identifies one scoring dimension. The value doubles as the JSON
// key inside dimension_scores.
type Category string

const (
	CategoryEditorialBoard     Category = "editorial_board"
	CategoryWebsiteQuality     Category = "website_quality"
	CategorySubmissionProcess  Category = "submission_process"
	CategoryPublicationFees    Category = "publication_fees"
	CategoryContentQuality     Category = "content_quality"
	CategoryContactInformation Category = "contact_information"
	CategoryDomainAnalysis     Category = "domain_analysis"
	CategoryBibliometric       Category = "bibliometric"
)

// Categories returns the canonical report ordering.
func Categories() []Category {
	return []Category{
		CategoryEditorialBoard,
		CategoryWebsiteQuality,
		CategorySubmissionProcess,
		CategoryPublicationFees,
		CategoryContentQuality,
		CategoryContactInformation,
		CategoryDomainAnalysis,
		CategoryBibliometric,
	}
}

// categoryWeights is the fixed weighting contract. The weights sum to 1.0;
// tuning them is a breaking change to the report, unlike the point values
// in Policy.
var categoryWeights = map[Category]float64{
	CategoryEditorialBoard:     0.20,
	CategoryWebsiteQuality:     0.15,
	CategorySubmissionProcess:  0.15,
	CategoryPublicationFees:    0.15,
	CategoryContentQuality:     0.10,
	CategoryContactInformation: 0.10,
	CategoryDomainAnalysis:     0.10,
	CategoryBibliometric:       0.05,
}

// WeightFor returns the fixed weight of a category.
func WeightFor(cat Category) float64 {
	return categoryWeights[cat]
}

// RiskLevel is the tier derived from the overall score.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "Very Low"
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

// ClassifyRisk maps an overall score onto its tier. Boundaries are
// inclusive at the bottom of each band.
func ClassifyRisk(score float64) RiskLevel {
	switch {
	case score < 20:
		return RiskVeryLow
	case score < 40:
		return RiskLow
	case score < 60:
		return RiskModerate
	case score < 80:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

var recommendations = map[RiskLevel]string{
	RiskVeryLow:  "No significant predatory indicators found. Standard due diligence is still advised.",
	RiskLow:      "Minor concerns detected. Verify the editorial board and indexing claims before submitting.",
	RiskModerate: "Several concerning signals detected. Request clarification on peer review and fees before proceeding.",
	RiskHigh:     "Strong predatory indicators. Submission is not recommended without independent verification.",
	RiskVeryHigh: "Hallmark predatory characteristics detected. Do not submit to this journal.",
}

// RecommendationFor returns the fixed guidance string for a tier.
func RecommendationFor(level RiskLevel) string {
	return recommendations[level]
}

// DimensionScore is one dimension's verdict: a 0-100 risk score, the weight
// it carries in the overall score, and the evidence behind it.
type DimensionScore struct {
	Category Category `json:"-"`
	Score    float64  `json:"score"`
	Weight   float64  `json:"weight"`
	Evidence []string `json:"evidence"`

	warnings  []string
	positives []string
}

// Warnings returns the dimension's risk-raising evidence.
func (d DimensionScore) Warnings() []string {
	return d.warnings
}

// Positives returns the dimension's trust evidence.
func (d DimensionScore) Positives() []string {
	return d.positives
}

// Result is the assessment report contract returned to API clients.
type Result struct {
	OverallScore       float64                     `json:"overall_score"`
	RiskLevel          RiskLevel                   `json:"risk_level"`
	Confidence         float64                     `json:"confidence"`
	Recommendation     string                      `json:"recommendation"`
	DimensionScores    map[Category]DimensionScore `json:"dimension_scores"`
	WarningFlags       []string                    `json:"warning_flags"`
	PositiveIndicators []string                    `json:"positive_indicators"`
	CriticalIssues     []string                    `json:"critical_issues"`
	ML                 *Prediction                 `json:"ml_prediction,omitempty"`
}
