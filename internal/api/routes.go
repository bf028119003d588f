package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"journal-risk-eval/backend/internal/domaintrust"
	"journal-risk-eval/backend/internal/publishers"
	"journal-risk-eval/backend/internal/scoring"
	"journal-risk-eval/backend/internal/store"
)

const defaultBatchLimit = 500

// Config defines server dependencies.
type Config struct {
	DB             *store.Database
	Engine         *scoring.Engine
	Analyzer       *domaintrust.Analyzer
	Index          *publishers.Index
	AllowedOrigins []string
	BatchLimit     int
}

// Server wires HTTP handlers with persistence and the assessment pipeline.
type Server struct {
	db             *store.Database
	engine         *scoring.Engine
	analyzer       *domaintrust.Analyzer
	index          *publishers.Index
	allowedOrigins []string
	batchLimit     int
	notifier       *AssessmentNotifier
	jobMu          sync.Mutex
	activeJob      *assessmentJob
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DB == nil {
		return nil, errors.New("database required")
	}
	if cfg.Engine == nil {
		return nil, errors.New("scoring engine required")
	}
	if cfg.Analyzer == nil {
		logrus.Info("domain trust analysis disabled - assessments will skip the domain dimension")
	}

	batchLimit := cfg.BatchLimit
	if batchLimit <= 0 {
		batchLimit = defaultBatchLimit
	}

	return &Server{
		db:             cfg.DB,
		engine:         cfg.Engine,
		analyzer:       cfg.Analyzer,
		index:          cfg.Index,
		allowedOrigins: cfg.AllowedOrigins,
		batchLimit:     batchLimit,
		notifier:       NewAssessmentNotifier(),
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.POST("/assessments", s.handleAssess)
		api.GET("/assessments", s.handleListAssessments)
		api.POST("/assessments/batch", s.handleStartBatch)
		api.GET("/assessments/batch/status", s.handleBatchStatus)
		api.DELETE("/assessments/batch", s.handleCancelBatch)
		api.GET("/assessments/stream", s.handleBatchStream)
		api.GET("/assessments/export.csv", s.handleExportCSV)
		api.GET("/assessments/export.json", s.handleExportJSON)
		api.GET("/assessments/:id", s.handleGetAssessment)
		api.POST("/domains/analyze", s.handleAnalyzeDomain)
		api.GET("/publishers", s.handleListPublishers)
		api.GET("/stats", s.handleStats)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	stored, err := s.db.CountPublisherDomains()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	indexed := 0
	if s.index != nil {
		indexed = s.index.PublisherCount()
	}

	c.JSON(http.StatusOK, gin.H{
		"phrases":            s.engine.PhraseCount(),
		"dimension_weights":  weightsByCategory(),
		"publishers_indexed": indexed,
		"publisher_domains":  stored,
		"domain_analysis":    s.analyzer != nil,
		"ml_enabled":         s.engine.MLEnabled(),
		"batch_limit":        s.batchLimit,
	})
}

func (s *Server) handleAssess(c *gin.Context) {
	var bundle scoring.Bundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if _, err := resolveBundleDomain(bundle); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	out := s.assessBundle(c.Request.Context(), bundle)
	if out.err != nil {
		s.renderError(c, http.StatusBadRequest, out.err)
		return
	}

	row := out.row
	if err := s.db.SaveAssessment(&row); err != nil {
		s.renderError(c, http.StatusInternalServerError, fmt.Errorf("save assessment: %w", err))
		return
	}

	logrus.WithFields(logrus.Fields{
		"domain":        row.Domain,
		"overall":       row.OverallScore,
		"risk_level":    row.RiskLevel,
		"processing_ms": row.ProcessingTimeMs,
	}).Info("journal assessed")

	c.JSON(http.StatusOK, AssessResponse{
		ID:               row.ID,
		URL:              row.URL,
		Domain:           row.Domain,
		Title:            row.Title,
		CreatedAt:        row.CreatedAt,
		ProcessingTimeMs: row.ProcessingTimeMs,
		Report:           out.report,
		DomainAnalysis:   out.analysis,
	})
}

func (s *Server) handleListAssessments(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := page * pageSize

	minScore, _ := strconv.ParseFloat(c.Query("minScore"), 64)
	maxScore, _ := strconv.ParseFloat(c.Query("maxScore"), 64)

	rows, total, err := s.db.ListAssessments(store.AssessmentQuery{
		Query:     strings.TrimSpace(c.Query("q")),
		RiskLevel: strings.TrimSpace(firstNonEmpty(c.Query("risk_level"), c.Query("riskLevel"))),
		Domain:    strings.TrimSpace(c.Query("domain")),
		MinScore:  minScore,
		MaxScore:  maxScore,
		Sort:      strings.TrimSpace(c.Query("sort")),
		Offset:    offset,
		Limit:     pageSize,
	})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]AssessmentDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	c.JSON(http.StatusOK, AssessmentsResponse{Items: dtos, Total: total})
}

func (s *Server) handleGetAssessment(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("assessment id required"))
		return
	}

	row, err := s.db.GetAssessment(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("assessment %s not found", id))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}

	c.JSON(http.StatusOK, DetailFromModel(*row))
}

func (s *Server) handleStartBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if len(req.Items) == 0 {
		s.renderError(c, http.StatusBadRequest, errors.New("items are required"))
		return
	}
	if len(req.Items) > s.batchLimit {
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("batch exceeds limit of %d items", s.batchLimit))
		return
	}
	for i, item := range req.Items {
		if _, err := resolveBundleDomain(item); err != nil {
			s.renderError(c, http.StatusBadRequest, fmt.Errorf("item %d: %w", i, err))
			return
		}
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.activeJob != nil {
		s.renderError(c, http.StatusConflict, errors.New("batch assessment already running"))
		return
	}

	job, err := s.startBatch(req.Items)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusAccepted, StartBatchResponse{
		JobID:     job.id,
		Total:     job.total,
		StartedAt: job.startedAt,
	})
}

func (s *Server) handleCancelBatch(c *gin.Context) {
	jobID := strings.TrimSpace(firstNonEmpty(c.Query("job"), c.Query("job_id")))

	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.activeJob == nil {
		s.renderError(c, http.StatusNotFound, errors.New("no batch assessment running"))
		return
	}
	if jobID != "" && s.activeJob.id != jobID {
		s.renderError(c, http.StatusNotFound, errors.New("job not found"))
		return
	}

	logrus.WithField("job", s.activeJob.id).Info("batch cancellation requested")
	s.notifier.Broadcast(AssessmentEvent{
		Type:    "progress",
		JobID:   s.activeJob.id,
		Total:   s.activeJob.total,
		Message: "cancellation requested",
	})
	s.cancelBatch()

	c.JSON(http.StatusAccepted, gin.H{"status": "cancelling"})
}

func (s *Server) handleBatchStatus(c *gin.Context) {
	s.jobMu.Lock()
	job := s.activeJob
	s.jobMu.Unlock()

	status := s.notifier.LastStatus()

	resp := BatchStatusResponse{
		Running: job != nil,
	}

	if job != nil {
		resp.JobID = job.id
		resp.Total = job.total
	}

	if status != nil {
		resp.State = status.Type
		resp.Message = status.Message
		if status.Processed != 0 {
			resp.Processed = status.Processed
		}
		if status.Total != 0 {
			resp.Total = status.Total
		}
		if status.JobID != "" && resp.JobID == "" {
			resp.JobID = status.JobID
		}
	}
	resp.LastAssessment = s.notifier.LastAssessment()

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleBatchStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := s.notifier.Register(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("assessment websocket connected")
	defer s.notifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("assessment websocket closed")
			} else {
				logrus.WithError(err).Warn("assessment websocket unexpected close")
			}
			break
		}
	}
}

func (s *Server) handleExportCSV(c *gin.Context) {
	rows, _, err := s.db.ListAssessments(store.AssessmentQuery{Limit: -1})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=journal-risk-export.csv")
	c.Header("Content-Type", "text/csv")

	writer := csv.NewWriter(c.Writer)
	headers := []string{"domain", "url", "title", "overall_score", "risk_level", "confidence", "recommendation", "critical_count", "warning_count", "positive_count", "domain_risk_score", "ml_score", "ml_label", "processing_ms", "created_at"}
	if err := writer.Write(headers); err != nil {
		return
	}
	for _, row := range rows {
		dto := FromModel(row)
		line := []string{
			dto.Domain,
			dto.URL,
			dto.Title,
			fmt.Sprintf("%.2f", dto.OverallScore),
			dto.RiskLevel,
			fmt.Sprintf("%.2f", dto.Confidence),
			dto.Recommendation,
			strconv.Itoa(dto.CriticalCount),
			strconv.Itoa(dto.WarningCount),
			strconv.Itoa(dto.PositiveCount),
			fmt.Sprintf("%.2f", dto.DomainRiskScore),
			formatMLScore(dto.MLScore),
			dto.MLLabel,
			strconv.FormatInt(dto.ProcessingTimeMs, 10),
			dto.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(line); err != nil {
			return
		}
	}
	writer.Flush()
}

func (s *Server) handleExportJSON(c *gin.Context) {
	rows, _, err := s.db.ListAssessments(store.AssessmentQuery{Limit: -1})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]AssessmentDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	c.Header("Content-Disposition", "attachment; filename=journal-risk-export.json")
	c.JSON(http.StatusOK, dtos)
}

func (s *Server) handleAnalyzeDomain(c *gin.Context) {
	if s.analyzer == nil {
		s.renderError(c, http.StatusServiceUnavailable, errors.New("domain analysis is disabled"))
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	analysis, err := s.analyzer.Analyze(c.Request.Context(), req.Domain)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	recent := make([]AssessmentDTO, 0)
	if rows, err := s.db.AssessmentsForDomain(analysis.Domain, 5); err != nil {
		logrus.WithError(err).Warn("load assessment history")
	} else {
		for _, row := range rows {
			recent = append(recent, FromModel(row))
		}
	}

	c.JSON(http.StatusOK, AnalyzeResponse{Analysis: analysis, Recent: recent})
}

func (s *Server) handleListPublishers(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = 100
	}
	offset := page * pageSize

	rows, total, err := s.db.ListPublisherDomains(offset, pageSize)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]PublisherDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, PublisherFromModel(row))
	}
	c.JSON(http.StatusOK, PublishersResponse{Items: dtos, Total: total})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.db.AssessmentStats()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	rows, err := s.db.RecentAssessments(10)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	recent := make([]AssessmentDTO, 0, len(rows))
	for _, row := range rows {
		recent = append(recent, FromModel(row))
	}

	c.JSON(http.StatusOK, StatsResponse{Stats: *stats, Recent: recent})
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func weightsByCategory() map[string]float64 {
	weights := make(map[string]float64, len(scoring.Categories()))
	for _, cat := range scoring.Categories() {
		weights[string(cat)] = scoring.WeightFor(cat)
	}
	return weights
}

func formatMLScore(score *float64) string {
	if score == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *score)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
