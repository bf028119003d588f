package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Assessment{}, &PublisherDomain{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// GORM exposes the raw gorm.DB handle.
func (d *Database) GORM() *gorm.DB {
	return d.gorm
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveAssessment persists a new assessment row. Every run gets its own row
// so the history of a domain stays queryable.
func (d *Database) SaveAssessment(a *Assessment) error {
	if a == nil {
		return errors.New("assessment is nil")
	}
	a.Domain = strings.TrimSpace(a.Domain)
	a.DomainNormalized = normalizeDomainKey(a.Domain)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(a).Error
}

// GetAssessment fetches a single assessment by its ID.
func (d *Database) GetAssessment(id string) (*Assessment, error) {
	var row Assessment
	if err := d.gorm.First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// AssessmentQuery encapsulates filters and pagination for listing rows.
type AssessmentQuery struct {
	Query     string
	RiskLevel string
	MinScore  float64
	MaxScore  float64
	Domain    string
	Sort      string
	Offset    int
	Limit     int
}

// ListAssessments returns paginated assessment records applying optional filters.
func (d *Database) ListAssessments(opts AssessmentQuery) ([]Assessment, int64, error) {
	var total int64
	base := d.gorm.Model(&Assessment{})
	if opts.Query != "" {
		like := fmt.Sprintf("%%%s%%", opts.Query)
		base = base.Where("domain LIKE ? OR title LIKE ?", like, like)
	}
	if dom := normalizeDomainKey(opts.Domain); dom != "" {
		base = base.Where("domain_normalized = ?", dom)
	}
	if level := strings.TrimSpace(opts.RiskLevel); level != "" {
		base = base.Where("risk_level = ?", level)
	}
	if opts.MinScore > 0 {
		base = base.Where("overall_score >= ?", opts.MinScore)
	}
	if opts.MaxScore > 0 {
		base = base.Where("overall_score <= ?", opts.MaxScore)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := orderForSort(opts.Sort)
	queryBuilder := base.Order(order).Offset(opts.Offset)
	if opts.Limit > 0 {
		queryBuilder = queryBuilder.Limit(opts.Limit)
	}

	var rows []Assessment
	if err := queryBuilder.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func orderForSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "domain_asc":
		return "assessments.domain ASC"
	case "domain_desc":
		return "assessments.domain DESC"
	case "score_desc":
		return "assessments.overall_score DESC, assessments.created_at DESC"
	case "score_asc":
		return "assessments.overall_score ASC, assessments.created_at DESC"
	case "confidence_desc":
		return "assessments.confidence DESC, assessments.created_at DESC"
	case "created_asc":
		return "assessments.created_at ASC"
	default:
		return "assessments.created_at DESC"
	}
}

// RecentAssessments returns the most recent rows, newest first.
func (d *Database) RecentAssessments(limit int) ([]Assessment, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []Assessment
	if err := d.gorm.Model(&Assessment{}).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AssessmentsForDomain returns the assessment history of one domain, newest first.
func (d *Database) AssessmentsForDomain(domain string, limit int) ([]Assessment, error) {
	key := normalizeDomainKey(domain)
	if key == "" {
		return nil, errors.New("domain is empty")
	}
	query := d.gorm.Model(&Assessment{}).
		Where("domain_normalized = ?", key).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []Assessment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TierCount is one risk level's share of the stored assessments.
type TierCount struct {
	RiskLevel string `json:"risk_level"`
	Total     int64  `json:"total"`
}

// Stats aggregates the assessments table for the dashboard endpoint.
type Stats struct {
	TotalAssessments int64       `json:"total_assessments"`
	AverageScore     float64     `json:"average_score"`
	HighRiskCount    int64       `json:"high_risk_count"`
	AssessedLastDay  int64       `json:"assessed_last_day"`
	TierCounts       []TierCount `json:"tier_counts"`
}

// AssessmentStats computes dashboard aggregates in a handful of queries.
func (d *Database) AssessmentStats() (*Stats, error) {
	if d == nil {
		return nil, errors.New("database is nil")
	}
	stats := &Stats{}

	if err := d.gorm.Model(&Assessment{}).Count(&stats.TotalAssessments).Error; err != nil {
		return nil, err
	}
	if stats.TotalAssessments > 0 {
		if err := d.gorm.Model(&Assessment{}).
			Select("AVG(overall_score)").
			Scan(&stats.AverageScore).Error; err != nil {
			return nil, err
		}
	}
	if err := d.gorm.Model(&Assessment{}).
		Where("overall_score >= ?", 60).
		Count(&stats.HighRiskCount).Error; err != nil {
		return nil, err
	}
	if err := d.gorm.Model(&Assessment{}).
		Where("created_at >= ?", time.Now().Add(-24*time.Hour)).
		Count(&stats.AssessedLastDay).Error; err != nil {
		return nil, err
	}
	if err := d.gorm.Model(&Assessment{}).
		Select("risk_level, COUNT(*) AS total").
		Group("risk_level").
		Order("total DESC").
		Scan(&stats.TierCounts).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func normalizeDomainKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_assessments_domain_normalized ON assessments(domain_normalized)",
		"CREATE INDEX IF NOT EXISTS idx_assessments_overall_score ON assessments(overall_score)",
		"CREATE INDEX IF NOT EXISTS idx_assessments_risk_level ON assessments(risk_level)",
		"CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_publisher_domains_publisher ON publisher_domains(publisher)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
