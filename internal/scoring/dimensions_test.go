package scoring

import (
	"math"
	"reflect"
	"testing"

	"journal-risk-eval/backend/internal/domaintrust"
)

func TestCategoryWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, cat := range Categories() {
		weight := WeightFor(cat)
		if weight <= 0 {
			t.Fatalf("weight for %s = %v, want positive", cat, weight)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Fatalf("weights sum to %v, want 1.0", sum)
	}
}

func TestScoreEditorialBoard(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name     string
		features EditorialFeatures
		want     float64
	}{
		{name: "no board no chief", features: EditorialFeatures{}, want: 55},
		{name: "tiny board", features: EditorialFeatures{BoardSize: 3}, want: 35},
		{name: "small board with chief", features: EditorialFeatures{BoardSize: 7, HasChiefEditor: true}, want: 10},
		{name: "healthy board", features: EditorialFeatures{BoardSize: 25, HasChiefEditor: true}, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreEditorialBoard(FeatureSet{Editorial: tc.features}, policy)
			if got.Score != tc.want {
				t.Fatalf("score = %v, want %v", got.Score, tc.want)
			}
			if got.Weight != WeightFor(CategoryEditorialBoard) {
				t.Fatalf("weight = %v, want %v", got.Weight, WeightFor(CategoryEditorialBoard))
			}
		})
	}

	healthy := ScoreEditorialBoard(FeatureSet{Editorial: EditorialFeatures{BoardSize: 25, HasChiefEditor: true}}, policy)
	if len(healthy.Positives()) != 2 {
		t.Fatalf("positives = %v, want board size and chief editor noted", healthy.Positives())
	}
}

func TestScoreWebsiteQuality(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name     string
		features TechnicalFeatures
		want     float64
	}{
		{
			name:     "healthy site",
			features: TechnicalFeatures{HasSSL: true, StatusCode: 200, ResponseTimeBucket: "fast", PageWords: 500},
			want:     0,
		},
		{
			name:     "no ssl and no text",
			features: TechnicalFeatures{StatusCode: 200, ResponseTimeBucket: "normal"},
			want:     55,
		},
		{
			name:     "error page",
			features: TechnicalFeatures{HasSSL: true, StatusCode: 404, ResponseTimeBucket: "fast", PageWords: 500},
			want:     25,
		},
		{
			name:     "everything wrong",
			features: TechnicalFeatures{StatusCode: 503, ResponseTimeBucket: "very_slow"},
			want:     100,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreWebsiteQuality(FeatureSet{Technical: tc.features}, policy)
			if got.Score != tc.want {
				t.Fatalf("score = %v, want %v", got.Score, tc.want)
			}
		})
	}
}

func TestScoreSubmissionProcess(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name     string
		features SubmissionFeatures
		want     float64
	}{
		{name: "documented process", features: SubmissionFeatures{HasGuidelines: true, MentionsPeerReview: true}, want: 0},
		{name: "nothing documented", features: SubmissionFeatures{}, want: 60},
		{name: "fast track promises", features: SubmissionFeatures{PromisesFastReview: true}, want: 85},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreSubmissionProcess(FeatureSet{Submission: tc.features}, policy)
			if got.Score != tc.want {
				t.Fatalf("score = %v, want %v", got.Score, tc.want)
			}
		})
	}
}

func TestScorePublicationFees(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name     string
		features FeeFeatures
		want     float64
	}{
		{name: "disclosed and reasonable", features: FeeFeatures{Disclosed: true, AmountUSD: 1500}, want: 0},
		{name: "hidden", features: FeeFeatures{}, want: 15},
		{name: "excessive fee", features: FeeFeatures{Disclosed: true, AmountUSD: 5000}, want: 15},
		{name: "crypto wire prepay", features: FeeFeatures{CryptoPayment: true, WireOnly: true, PaymentBeforeReview: true}, want: 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScorePublicationFees(FeatureSet{Fees: tc.features}, policy)
			if got.Score != tc.want {
				t.Fatalf("score = %v, want %v", got.Score, tc.want)
			}
		})
	}
}

func TestScoreContentQuality(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name     string
		features ContentFeatures
		want     float64
	}{
		{name: "clean prose", features: ContentFeatures{WordCount: 500}, want: 0},
		{name: "two phrases", features: ContentFeatures{WordCount: 500, PredatoryPhrases: []string{"bitcoin", "fast track"}}, want: 30},
		{
			name: "phrase points capped",
			features: ContentFeatures{WordCount: 500, PredatoryPhrases: []string{
				"guaranteed acceptance", "within 24 hours", "bitcoin", "fast track", "nominal fee",
			}},
			want: 60,
		},
		{name: "thin and unclear", features: ContentFeatures{WordCount: 100, LanguageUnclear: true}, want: 25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreContentQuality(FeatureSet{Content: tc.features}, policy)
			if got.Score != tc.want {
				t.Fatalf("score = %v, want %v", got.Score, tc.want)
			}
		})
	}

	flagged := ScoreContentQuality(FeatureSet{Content: ContentFeatures{
		WordCount:        500,
		PredatoryPhrases: []string{"bitcoin", "fast track"},
	}}, policy)
	if len(flagged.Warnings()) != 3 {
		t.Fatalf("warnings = %v, want the summary plus one per phrase", flagged.Warnings())
	}
}

func TestScoreContactInformation(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name     string
		features ContactFeatures
		want     float64
	}{
		{name: "unreachable", features: ContactFeatures{}, want: 40},
		{name: "single channel with email", features: ContactFeatures{MethodCount: 1, EmailCount: 1}, want: 20},
		{name: "single channel no email", features: ContactFeatures{MethodCount: 1}, want: 35},
		{name: "email found without method count", features: ContactFeatures{EmailCount: 2}, want: 20},
		{name: "well connected", features: ContactFeatures{MethodCount: 3, EmailCount: 2, HasAddress: true}, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreContactInformation(FeatureSet{Contact: tc.features}, policy)
			if got.Score != tc.want {
				t.Fatalf("score = %v, want %v", got.Score, tc.want)
			}
		})
	}
}

func TestScoreBibliometric(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name     string
		features BibliometricFeatures
		want     float64
	}{
		{name: "unverifiable impact factor", features: BibliometricFeatures{ClaimsImpactFactor: true}, want: 65},
		{name: "issn but no index", features: BibliometricFeatures{ClaimsImpactFactor: true, HasISSN: true}, want: 20},
		{name: "fully verifiable", features: BibliometricFeatures{ClaimsImpactFactor: true, HasISSN: true, MentionsIndexing: true}, want: 0},
		{name: "no claims no issn", features: BibliometricFeatures{}, want: 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreBibliometric(FeatureSet{Bibliometric: tc.features}, policy)
			if got.Score != tc.want {
				t.Fatalf("score = %v, want %v", got.Score, tc.want)
			}
		})
	}
}

func TestScoreDomainAnalysis(t *testing.T) {
	analysis := &domaintrust.Analysis{
		Domain:               "quick-journal.xyz",
		RiskScore:            80,
		WarningFlags:         []string{"Suspicious top-level domain .xyz"},
		LegitimacyIndicators: []string{"SPF record present"},
	}

	got := ScoreDomainAnalysis(analysis)
	if got.Score != 80 {
		t.Fatalf("score = %v, want the analyzer's 80", got.Score)
	}
	if got.Weight != WeightFor(CategoryDomainAnalysis) {
		t.Fatalf("weight = %v, want %v", got.Weight, WeightFor(CategoryDomainAnalysis))
	}
	wantEvidence := []string{"Suspicious top-level domain .xyz", "SPF record present"}
	if !reflect.DeepEqual(got.Evidence, wantEvidence) {
		t.Fatalf("evidence = %v, want %v", got.Evidence, wantEvidence)
	}
	if !reflect.DeepEqual(got.Warnings(), analysis.WarningFlags) {
		t.Fatalf("warnings = %v", got.Warnings())
	}
	if !reflect.DeepEqual(got.Positives(), analysis.LegitimacyIndicators) {
		t.Fatalf("positives = %v", got.Positives())
	}
}

func TestScoreAll(t *testing.T) {
	policy := DefaultPolicy()
	features := FeatureSet{Editorial: EditorialFeatures{BoardSize: 12, HasChiefEditor: true}}

	withDomain := ScoreAll(features, &domaintrust.Analysis{RiskScore: 40}, policy)
	if len(withDomain) != len(Categories()) {
		t.Fatalf("scored %d dimensions, want %d", len(withDomain), len(Categories()))
	}
	for i, cat := range Categories() {
		if withDomain[i].Category != cat {
			t.Fatalf("dimension %d = %s, want %s", i, withDomain[i].Category, cat)
		}
	}

	withoutDomain := ScoreAll(features, nil, policy)
	if len(withoutDomain) != len(Categories())-1 {
		t.Fatalf("scored %d dimensions, want %d", len(withoutDomain), len(Categories())-1)
	}
	for _, ds := range withoutDomain {
		if ds.Category == CategoryDomainAnalysis {
			t.Fatal("domain dimension scored without an analysis")
		}
	}
}
