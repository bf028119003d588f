package scoring

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"journal-risk-eval/backend/internal/domaintrust"
)

func testEngine(t *testing.T, predictor Predictor) *Engine {
	t.Helper()
	engine, err := NewEngine(EngineConfig{
		PhrasesPath: tempPhrases(t, basePhrases()),
		Predictor:   predictor,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestNewEngineBadVocabulary(t *testing.T) {
	_, err := NewEngine(EngineConfig{PhrasesPath: filepath.Join(t.TempDir(), "missing.json")})
	if err == nil {
		t.Fatal("expected error for missing vocabulary file")
	}
	if !strings.Contains(err.Error(), "signal extractor") {
		t.Fatalf("error = %v, want it wrapped with the component name", err)
	}
}

func TestEngineAssessPredatoryJournal(t *testing.T) {
	engine := testEngine(t, nil)

	bundle := Bundle{
		URL:      "http://quick-science-journal.xyz",
		Domain:   "quick-science-journal.xyz",
		Title:    "International Journal of Advanced Everything",
		BodyText: "Guaranteed acceptance for every manuscript. Publication within 24 hours. Pay the fee with Bitcoin.",
	}
	analysis := &domaintrust.Analysis{
		Domain:        "quick-science-journal.xyz",
		RiskScore:     85,
		Suspicious:    true,
		WarningFlags:  []string{"Suspicious top-level domain .xyz"},
		FailedLookups: []string{"certificate"},
	}

	got := engine.Assess(context.Background(), bundle, analysis)

	if got.OverallScore < 75 {
		t.Fatalf("overall = %v, want the guaranteed-acceptance floor of 75 or above", got.OverallScore)
	}
	if len(got.CriticalIssues) == 0 {
		t.Fatal("no critical issues reported")
	}
	if got.RiskLevel != RiskHigh && got.RiskLevel != RiskVeryHigh {
		t.Fatalf("risk level = %q", got.RiskLevel)
	}
	if len(got.DimensionScores) != len(Categories()) {
		t.Fatalf("dimension count = %d, want %d", len(got.DimensionScores), len(Categories()))
	}
	if got.ML != nil {
		t.Fatal("ml prediction attached without a predictor")
	}
}

func TestEngineAssessReputableJournal(t *testing.T) {
	engine := testEngine(t, nil)

	bundle := Bundle{
		URL:    "https://journal.example.org",
		Domain: "journal.example.org",
		Title:  "Journal of Example Science",
		BodyText: "The journal publishes original research in the field of example science. " +
			"All submissions are evaluated through double-blind review by members of the editorial board. " +
			"The editor-in-chief and the board of forty scholars are listed with their affiliations. " +
			"The article processing charge is $1,500 and is invoiced only after a paper is accepted. " +
			"The journal is indexed in Scopus and the Web of Science with an Impact Factor of 3.2. " +
			"ISSN 2049-3630. Contact the office at editors@journal.example.org or visit 12 University Street.",
		WordCount:          420,
		HasSSL:             true,
		ResponseTimeMs:     420,
		StatusCode:         200,
		HasGuidelines:      true,
		HasFeeInfo:         true,
		EditorialBoardSize: 40,
		ContactMethodCount: 3,
	}
	analysis := &domaintrust.Analysis{
		Domain:               "journal.example.org",
		RiskScore:            0,
		LegitimacyIndicators: []string{"Established domain registered 12 years ago"},
	}

	got := engine.Assess(context.Background(), bundle, analysis)

	if got.OverallScore >= 20 {
		t.Fatalf("overall = %v, want below 20 for a clean profile", got.OverallScore)
	}
	if got.RiskLevel != RiskVeryLow {
		t.Fatalf("risk level = %q, want %q", got.RiskLevel, RiskVeryLow)
	}
	if len(got.CriticalIssues) != 0 {
		t.Fatalf("critical issues = %v, want none", got.CriticalIssues)
	}
	if len(got.PositiveIndicators) == 0 {
		t.Fatal("no positive indicators collected")
	}
}

func TestEngineCriticalFloorFromTyposquat(t *testing.T) {
	engine := testEngine(t, nil)

	bundle := Bundle{
		Domain:             "nature-journals.com",
		Title:              "Nature Journals",
		BodyText:           "The journal publishes research in the natural sciences and lists submission guidelines for all of the disciplines it covers.",
		WordCount:          400,
		HasSSL:             true,
		StatusCode:         200,
		ResponseTimeMs:     300,
		HasGuidelines:      true,
		EditorialBoardSize: 20,
		ContactMethodCount: 2,
	}
	analysis := &domaintrust.Analysis{
		Domain:      "nature-journals.com",
		RiskScore:   30,
		TyposquatOf: "nature.com",
	}

	got := engine.Assess(context.Background(), bundle, analysis)

	if got.OverallScore < 75 {
		t.Fatalf("overall = %v, want the typosquat floor of 75 or above", got.OverallScore)
	}
	found := false
	for _, issue := range got.CriticalIssues {
		if strings.Contains(issue, "nature.com") {
			found = true
		}
	}
	if !found {
		t.Fatalf("critical issues = %v, want the imitated publisher named", got.CriticalIssues)
	}
}

type capturePredictor struct {
	input PredictionInput
}

func (c *capturePredictor) Enabled() bool { return true }

func (c *capturePredictor) Predict(_ context.Context, input PredictionInput) (Prediction, error) {
	c.input = input
	return Prediction{PredatoryScore: 0.5, EnsemblePrediction: "uncertain"}, nil
}

func TestEngineBuildsPredictionInput(t *testing.T) {
	capture := &capturePredictor{}
	engine := testEngine(t, capture)

	bundle := Bundle{
		Domain:             "quickjournal.xyz",
		BodyText:           "Guaranteed acceptance and fast track publication.",
		EditorialBoardSize: 2,
		HasSSL:             true,
	}
	analysis := &domaintrust.Analysis{Domain: "quickjournal.xyz", RiskScore: 60}

	got := engine.Assess(context.Background(), bundle, analysis)

	if got.ML == nil {
		t.Fatal("ml prediction missing")
	}
	if capture.input.Domain != "quickjournal.xyz" {
		t.Fatalf("input domain = %q", capture.input.Domain)
	}
	if capture.input.BoardSize != 2 {
		t.Fatalf("input board size = %d, want 2", capture.input.BoardSize)
	}
	if capture.input.PhraseMatches != 2 {
		t.Fatalf("input phrase matches = %d, want 2", capture.input.PhraseMatches)
	}
	if capture.input.DomainRiskScore != 60 {
		t.Fatalf("input domain risk = %v, want 60", capture.input.DomainRiskScore)
	}
	if len(capture.input.DimensionScores) != len(Categories()) {
		t.Fatalf("input carries %d dimension scores, want %d", len(capture.input.DimensionScores), len(Categories()))
	}
	if _, ok := capture.input.DimensionScores[string(CategoryEditorialBoard)]; !ok {
		t.Fatal("editorial board score missing from prediction input")
	}
}
