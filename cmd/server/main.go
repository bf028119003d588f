package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"journal-risk-eval/backend/internal/api"
	"journal-risk-eval/backend/internal/domaintrust"
	"journal-risk-eval/backend/internal/ml"
	"journal-risk-eval/backend/internal/publishers"
	"journal-risk-eval/backend/internal/rdap"
	"journal-risk-eval/backend/internal/scoring"
	"journal-risk-eval/backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("load .env")
	}

	baseDir, err := os.Getwd()
	if err != nil {
		logrus.Fatalf("determine working directory: %v", err)
	}

	dataDir := filepath.Join(baseDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logrus.Fatalf("create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "journal-risk.db")
	if override := strings.TrimSpace(os.Getenv("JOURNAL_RISK_DB_PATH")); override != "" {
		dbPath = override
	}

	db, err := store.Open(dbPath, strings.EqualFold(os.Getenv("DB_SILENT"), "true"))
	if err != nil {
		logrus.Fatalf("open database: %v", err)
	}

	listsPath := filepath.Join(baseDir, "internal", "publishers", "publisher_lists.json")
	if override := strings.TrimSpace(os.Getenv("PUBLISHER_LISTS_PATH")); override != "" {
		listsPath = override
	}
	index, err := publishers.Load(listsPath)
	if err != nil {
		logrus.Fatalf("load publisher lists: %v", err)
	}
	if names, err := db.PublisherDomainNames(); err != nil {
		logrus.WithError(err).Warn("load stored publisher domains")
	} else if added := index.Merge(names); added > 0 {
		logrus.WithField("domains", added).Info("merged stored publisher domains into allowlist")
	}

	var rdapClient *rdap.Client
	if strings.EqualFold(strings.TrimSpace(os.Getenv("DISABLE_RDAP")), "true") {
		logrus.Info("RDAP registration fallback disabled via configuration")
	} else {
		rdapCfg := rdap.Config{BaseURL: os.Getenv("RDAP_BASE_URL")}
		if timeout := os.Getenv("RDAP_TIMEOUT"); timeout != "" {
			if d, err := time.ParseDuration(timeout); err == nil {
				rdapCfg.Timeout = d
			}
		}
		if ttl := os.Getenv("RDAP_CACHE_TTL"); ttl != "" {
			if d, err := time.ParseDuration(ttl); err == nil {
				rdapCfg.CacheTTL = d
			}
		}
		rdapClient = rdap.NewClient(rdapCfg)
	}

	trustCfg := domaintrust.Config{Index: index, RDAP: rdapClient}
	if servers := splitList(os.Getenv("DNS_SERVERS")); len(servers) > 0 {
		trustCfg.DNSServers = servers
	}
	analyzer, err := domaintrust.NewAnalyzer(trustCfg)
	if err != nil {
		logrus.Fatalf("domain analyzer: %v", err)
	}

	var predictor scoring.Predictor
	if strings.EqualFold(strings.TrimSpace(os.Getenv("DISABLE_ML")), "true") {
		logrus.Info("ML predictor disabled via configuration")
	} else {
		mlCfg := ml.Config{
			BaseURL: os.Getenv("ML_BASE_URL"),
			APIKey:  os.Getenv("ML_API_KEY"),
		}
		if timeout := os.Getenv("ML_TIMEOUT"); timeout != "" {
			if d, err := time.ParseDuration(timeout); err == nil {
				mlCfg.Timeout = d
			}
		}

		var primary scoring.Predictor
		if client, err := ml.NewClient(mlCfg); err == nil {
			primary = client
		} else if errors.Is(err, ml.ErrDisabled) {
			logrus.Info("ML predictor disabled - no base url configured")
		} else {
			logrus.Fatalf("ml client: %v", err)
		}

		var fallback scoring.Predictor
		if fbURL := strings.TrimSpace(os.Getenv("ML_FALLBACK_URL")); fbURL != "" {
			client, err := ml.NewClient(ml.Config{BaseURL: fbURL, APIKey: mlCfg.APIKey, Timeout: mlCfg.Timeout})
			if err != nil {
				logrus.Fatalf("ml fallback client: %v", err)
			}
			fallback = client
		}

		predictor = ml.WithFallback(primary, fallback)
	}

	phrasesPath := filepath.Join(baseDir, "internal", "scoring", "predatory_phrases.json")
	if override := strings.TrimSpace(os.Getenv("PHRASES_PATH")); override != "" {
		phrasesPath = override
	}
	engine, err := scoring.NewEngine(scoring.EngineConfig{
		PhrasesPath: phrasesPath,
		Predictor:   predictor,
	})
	if err != nil {
		logrus.Fatalf("scoring engine: %v", err)
	}

	allowedOrigins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		if origins == "*" {
			allowedOrigins = nil
		} else {
			allowedOrigins = splitList(origins)
		}
	}

	batchLimit := 0
	if v := strings.TrimSpace(os.Getenv("BATCH_LIMIT")); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			batchLimit = val
		}
	}

	server, err := api.NewServer(api.Config{
		DB:             db,
		Engine:         engine,
		Analyzer:       analyzer,
		Index:          index,
		AllowedOrigins: allowedOrigins,
		BatchLimit:     batchLimit,
	})
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logrus.Infof("starting journal-risk-eval backend on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
