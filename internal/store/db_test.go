package store

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func testDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleAssessment(domain string, score float64, level string) *Assessment {
	a := &Assessment{
		ID:           uuid.NewString(),
		URL:          "https://" + domain,
		Domain:       domain,
		Title:        "Journal hosted at " + domain,
		OverallScore: score,
		RiskLevel:    level,
		Confidence:   80,
	}
	a.SetResult(map[string]any{"overall_score": score, "risk_level": level})
	return a
}

func TestSaveAndGetAssessment(t *testing.T) {
	db := testDatabase(t)

	saved := sampleAssessment("QuickJournal.XYZ", 82.5, "Very High")
	if err := db.SaveAssessment(saved); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}

	got, err := db.GetAssessment(saved.ID)
	if err != nil {
		t.Fatalf("GetAssessment: %v", err)
	}
	if got.DomainNormalized != "quickjournal.xyz" {
		t.Fatalf("normalized domain = %q", got.DomainNormalized)
	}
	if got.OverallScore != 82.5 {
		t.Fatalf("overall = %v, want 82.5", got.OverallScore)
	}
	if got.Result() == nil {
		t.Fatal("result blob missing")
	}
}

func TestAssessmentHistoryKept(t *testing.T) {
	db := testDatabase(t)

	for _, score := range []float64{30, 55, 80} {
		if err := db.SaveAssessment(sampleAssessment("journal.example.org", score, "Moderate")); err != nil {
			t.Fatalf("SaveAssessment: %v", err)
		}
	}

	rows, err := db.AssessmentsForDomain("Journal.Example.Org", 0)
	if err != nil {
		t.Fatalf("AssessmentsForDomain: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("history rows = %d, want 3", len(rows))
	}
}

func TestListAssessmentsFilters(t *testing.T) {
	db := testDatabase(t)

	seed := []*Assessment{
		sampleAssessment("nature.com", 5, "Very Low"),
		sampleAssessment("quickjournal.xyz", 85, "Very High"),
		sampleAssessment("midtier-press.com", 45, "Moderate"),
	}
	for _, a := range seed {
		if err := db.SaveAssessment(a); err != nil {
			t.Fatalf("SaveAssessment: %v", err)
		}
	}

	cases := []struct {
		name  string
		query AssessmentQuery
		want  int
	}{
		{name: "no filters", query: AssessmentQuery{}, want: 3},
		{name: "risk level", query: AssessmentQuery{RiskLevel: "Very High"}, want: 1},
		{name: "score range", query: AssessmentQuery{MinScore: 40, MaxScore: 60}, want: 1},
		{name: "search", query: AssessmentQuery{Query: "quickjournal"}, want: 1},
		{name: "exact domain", query: AssessmentQuery{Domain: "NATURE.COM"}, want: 1},
		{name: "no match", query: AssessmentQuery{Query: "elsevier"}, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, total, err := db.ListAssessments(tc.query)
			if err != nil {
				t.Fatalf("ListAssessments: %v", err)
			}
			if int(total) != tc.want || len(rows) != tc.want {
				t.Fatalf("total = %d rows = %d, want %d", total, len(rows), tc.want)
			}
		})
	}

	t.Run("sorted by score", func(t *testing.T) {
		rows, _, err := db.ListAssessments(AssessmentQuery{Sort: "score_desc"})
		if err != nil {
			t.Fatalf("ListAssessments: %v", err)
		}
		if rows[0].Domain != "quickjournal.xyz" {
			t.Fatalf("first row = %q, want highest score first", rows[0].Domain)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		rows, total, err := db.ListAssessments(AssessmentQuery{Sort: "score_asc", Limit: 2})
		if err != nil {
			t.Fatalf("ListAssessments: %v", err)
		}
		if total != 3 || len(rows) != 2 {
			t.Fatalf("total = %d rows = %d, want 3 and 2", total, len(rows))
		}
	})
}

func TestAssessmentStats(t *testing.T) {
	db := testDatabase(t)

	if err := db.SaveAssessment(sampleAssessment("a.example.com", 10, "Very Low")); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	if err := db.SaveAssessment(sampleAssessment("b.example.com", 90, "Very High")); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}

	stats, err := db.AssessmentStats()
	if err != nil {
		t.Fatalf("AssessmentStats: %v", err)
	}
	if stats.TotalAssessments != 2 {
		t.Fatalf("total = %d, want 2", stats.TotalAssessments)
	}
	if stats.AverageScore != 50 {
		t.Fatalf("average = %v, want 50", stats.AverageScore)
	}
	if stats.HighRiskCount != 1 {
		t.Fatalf("high risk = %d, want 1", stats.HighRiskCount)
	}
	if stats.AssessedLastDay != 2 {
		t.Fatalf("assessed last day = %d, want 2", stats.AssessedLastDay)
	}
	if len(stats.TierCounts) != 2 {
		t.Fatalf("tier counts = %+v, want 2 tiers", stats.TierCounts)
	}
}

func TestUpsertPublisherDomains(t *testing.T) {
	db := testDatabase(t)

	rows := []PublisherDomain{
		{Domain: "Nature.com", Publisher: "Nature Portfolio", Source: "seed"},
		{Domain: "springer.com", Publisher: "Springer", Source: "seed"},
		{Domain: "nature.com", Publisher: "duplicate ignored", Source: "seed"},
		{Domain: "   ", Publisher: "blank ignored"},
	}
	if err := db.UpsertPublisherDomains(rows); err != nil {
		t.Fatalf("UpsertPublisherDomains: %v", err)
	}

	count, err := db.CountPublisherDomains()
	if err != nil {
		t.Fatalf("CountPublisherDomains: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	// Second pass updates in place instead of duplicating.
	if err := db.UpsertPublisherDomains([]PublisherDomain{
		{Domain: "nature.com", Publisher: "Nature Portfolio", Source: "xml"},
	}); err != nil {
		t.Fatalf("UpsertPublisherDomains: %v", err)
	}
	names, err := db.PublisherDomainNames()
	if err != nil {
		t.Fatalf("PublisherDomainNames: %v", err)
	}
	if len(names) != 2 || names[0] != "nature.com" {
		t.Fatalf("names = %v", names)
	}

	listed, total, err := db.ListPublisherDomains(0, 10)
	if err != nil {
		t.Fatalf("ListPublisherDomains: %v", err)
	}
	if total != 2 || len(listed) != 2 {
		t.Fatalf("total = %d listed = %d", total, len(listed))
	}
	if listed[0].Source != "xml" {
		t.Fatalf("source = %q, want updated to xml", listed[0].Source)
	}
}
