package api

import (
	"encoding/json"
	"time"

	"journal-risk-eval/backend/internal/domaintrust"
	"journal-risk-eval/backend/internal/scoring"
	"journal-risk-eval/backend/internal/store"
)

// AssessmentDTO is the API representation for a persisted assessment summary.
type AssessmentDTO struct {
	ID               string    `json:"id"`
	URL              string    `json:"url,omitempty"`
	Domain           string    `json:"domain"`
	Title            string    `json:"title,omitempty"`
	OverallScore     float64   `json:"overall_score"`
	RiskLevel        string    `json:"risk_level"`
	Confidence       float64   `json:"confidence"`
	Recommendation   string    `json:"recommendation"`
	CriticalCount    int       `json:"critical_count"`
	WarningCount     int       `json:"warning_count"`
	PositiveCount    int       `json:"positive_count"`
	DomainRiskScore  float64   `json:"domain_risk_score"`
	MLScore          *float64  `json:"ml_score,omitempty"`
	MLLabel          string    `json:"ml_label,omitempty"`
	ProcessingTimeMs int64     `json:"processing_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// AssessmentDetail carries the summary plus the full stored report blob.
type AssessmentDetail struct {
	AssessmentDTO
	Report json.RawMessage `json:"report,omitempty"`
}

// AssessResponse is returned by the single-assessment endpoint.
type AssessResponse struct {
	ID               string                `json:"id"`
	URL              string                `json:"url,omitempty"`
	Domain           string                `json:"domain"`
	Title            string                `json:"title,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	ProcessingTimeMs int64                 `json:"processing_ms"`
	Report           scoring.Result        `json:"report"`
	DomainAnalysis   *domaintrust.Analysis `json:"domain_analysis,omitempty"`
}

// AssessmentsResponse holds listed assessments and the unpaginated total.
type AssessmentsResponse struct {
	Items []AssessmentDTO `json:"items"`
	Total int64           `json:"total"`
}

// BatchRequest submits a set of page bundles for asynchronous assessment.
type BatchRequest struct {
	Items []scoring.Bundle `json:"items"`
}

// StartBatchResponse describes the asynchronous batch kickoff payload.
type StartBatchResponse struct {
	JobID     string    `json:"job_id"`
	Total     int       `json:"total"`
	StartedAt time.Time `json:"started_at"`
}

// BatchStatusResponse describes the state of the active batch job.
type BatchStatusResponse struct {
	Running        bool           `json:"running"`
	JobID          string         `json:"job_id"`
	State          string         `json:"state"`
	Message        string         `json:"message"`
	Processed      int            `json:"processed"`
	Total          int            `json:"total"`
	LastAssessment *AssessmentDTO `json:"last_assessment,omitempty"`
}

// AnalyzeRequest asks for a standalone domain trust analysis.
type AnalyzeRequest struct {
	Domain string `json:"domain"`
}

// AnalyzeResponse pairs the analysis with prior assessments of the domain.
type AnalyzeResponse struct {
	Analysis *domaintrust.Analysis `json:"analysis"`
	Recent   []AssessmentDTO       `json:"recent_assessments"`
}

// PublisherDTO is one allowlisted publisher domain row.
type PublisherDTO struct {
	Domain    string    `json:"domain"`
	Publisher string    `json:"publisher,omitempty"`
	Source    string    `json:"source,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublishersResponse is the paginated allowlist listing.
type PublishersResponse struct {
	Items []PublisherDTO `json:"items"`
	Total int64          `json:"total"`
}

// StatsResponse is the dashboard payload: aggregate figures plus the
// newest assessments.
type StatsResponse struct {
	store.Stats
	Recent []AssessmentDTO `json:"recent"`
}

// FromModel converts a store.Assessment into the DTO representation.
func FromModel(a store.Assessment) AssessmentDTO {
	dto := AssessmentDTO{
		ID:               a.ID,
		URL:              a.URL,
		Domain:           a.Domain,
		Title:            a.Title,
		OverallScore:     round2(a.OverallScore),
		RiskLevel:        a.RiskLevel,
		Confidence:       round2(a.Confidence),
		Recommendation:   a.Recommendation,
		CriticalCount:    a.CriticalCount,
		WarningCount:     a.WarningCount,
		PositiveCount:    a.PositiveCount,
		DomainRiskScore:  round2(a.DomainRiskScore),
		MLLabel:          a.MLLabel,
		ProcessingTimeMs: a.ProcessingTimeMs,
		CreatedAt:        a.CreatedAt,
	}
	if a.MLScore != nil {
		score := round2(*a.MLScore)
		dto.MLScore = &score
	}
	return dto
}

// DetailFromModel converts a stored row including its report blob.
func DetailFromModel(a store.Assessment) AssessmentDetail {
	return AssessmentDetail{
		AssessmentDTO: FromModel(a),
		Report:        a.Result(),
	}
}

// PublisherFromModel converts a store.PublisherDomain into a DTO.
func PublisherFromModel(p store.PublisherDomain) PublisherDTO {
	return PublisherDTO{
		Domain:    p.Domain,
		Publisher: p.Publisher,
		Source:    p.Source,
		UpdatedAt: p.UpdatedAt,
	}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
