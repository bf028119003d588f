package store

import (
	"encoding/json"
	"strings"
	"time"
)

// Assessment is one journal assessment persisted for querying and export.
// The flat columns carry the filterable summary; the full report lives in
// ResultJSON.
type Assessment struct {
	ID               string `gorm:"primaryKey;size:36"`
	URL              string `gorm:"size:512"`
	Domain           string `gorm:"size:255;index"`
	DomainNormalized string `gorm:"size:255;index"`
	Title            string `gorm:"size:512"`
	OverallScore     float64
	RiskLevel        string `gorm:"size:16"`
	Confidence       float64
	Recommendation   string `gorm:"size:512"`
	CriticalCount    int
	WarningCount     int
	PositiveCount    int
	DomainRiskScore  float64
	MLScore          *float64
	MLLabel          string `gorm:"size:16"`
	ResultJSON       string `gorm:"type:text"`
	ProcessingTimeMs int64
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

// SetResult stores the full report as JSON.
func (a *Assessment) SetResult(result any) {
	payload, _ := json.Marshal(result)
	a.ResultJSON = string(payload)
}

// Result returns the stored report blob, or nil when absent.
func (a *Assessment) Result() json.RawMessage {
	if strings.TrimSpace(a.ResultJSON) == "" {
		return nil
	}
	return json.RawMessage(a.ResultJSON)
}

// PublisherDomain is one allowlisted publisher domain. Rows come from the
// bundled list, XML ingests and manual additions; Source records which.
type PublisherDomain struct {
	Domain    string `gorm:"primaryKey;size:255"`
	Publisher string `gorm:"size:255;index"`
	Source    string `gorm:"size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
