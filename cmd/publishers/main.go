package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"journal-risk-eval/backend/internal/store"
	xmlparser "journal-risk-eval/backend/internal/xml"
)

func main() {
	var (
		dbPath   = flag.String("db", "", "Path to SQLite database (env JOURNAL_RISK_DB_PATH)")
		source   = flag.String("source", "xml", "Source label stored with ingested rows")
		xmlPaths multiFlag
		urls     multiFlag
	)
	flag.Var(&xmlPaths, "xml", "Journal list XML or ZIP file (repeatable)")
	flag.Var(&urls, "url", "Journal list download URL (repeatable)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("load .env")
	}

	resolvedDB := strings.TrimSpace(*dbPath)
	if resolvedDB == "" {
		resolvedDB = strings.TrimSpace(os.Getenv("JOURNAL_RISK_DB_PATH"))
	}
	if resolvedDB == "" {
		resolvedDB = filepath.FromSlash("data/journal-risk.db")
	}

	if len(urls) == 0 {
		if v := strings.TrimSpace(os.Getenv("PUBLISHER_LIST_URL")); v != "" {
			urls = append(urls, v)
		}
	}

	if len(xmlPaths) == 0 && len(urls) == 0 {
		logrus.Fatal("nothing to ingest: pass -xml or -url")
	}

	db, err := store.Open(resolvedDB, true)
	if err != nil {
		logrus.Fatalf("open database: %v", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("close database")
		}
	}()

	inputs := make([]string, 0, len(xmlPaths)+len(urls))
	seen := make(map[string]struct{})
	addFile := func(path string) {
		cleaned := filepath.Clean(path)
		if cleaned == "" {
			return
		}
		if _, ok := seen[cleaned]; ok {
			return
		}
		seen[cleaned] = struct{}{}
		inputs = append(inputs, cleaned)
	}

	for _, p := range xmlPaths {
		addFile(p)
	}

	var cleanups []func()
	defer func() {
		for _, fn := range cleanups {
			fn()
		}
	}()
	for _, u := range urls {
		dest, err := downloadList(u)
		if err != nil {
			logrus.Fatalf("download %s: %v", u, err)
		}
		cleanups = append(cleanups, func() { _ = os.Remove(dest) })
		addFile(dest)
	}

	totalIngested := 0
	for _, path := range inputs {
		start := time.Now()
		logrus.WithField("file", path).Info("ingesting journal list")
		count, err := xmlparser.Ingest(xmlparser.IngestOptions{
			Path:   path,
			DB:     db,
			Source: *source,
			Progress: func(count int) {
				logrus.WithFields(logrus.Fields{
					"file":     path,
					"journals": count,
				}).Info("ingest progress")
			},
		})
		if err != nil {
			logrus.Fatalf("ingest %s: %v", path, err)
		}
		totalIngested += count
		logrus.WithFields(logrus.Fields{
			"file":     path,
			"journals": count,
			"duration": time.Since(start).Round(time.Millisecond),
		}).Info("ingest complete")
	}

	stored, err := db.CountPublisherDomains()
	if err != nil {
		logrus.WithError(err).Warn("count publisher domains")
	}
	logrus.WithFields(logrus.Fields{
		"ingested": totalIngested,
		"stored":   stored,
	}).Info("publisher domain ingestion complete")
}

func downloadList(rawURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	client := &http.Client{Timeout: 5 * time.Minute}

	logrus.WithField("url", rawURL).Info("downloading journal list")
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("download failed: %s", strings.TrimSpace(string(body)))
	}

	suffix := ".xml"
	if strings.HasSuffix(strings.ToLower(rawURL), ".zip") {
		suffix = ".zip"
	}
	tmp, err := os.CreateTemp("", "journal-list-*"+suffix)
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	info, statErr := tmp.Stat()
	size := int64(0)
	if statErr == nil {
		size = info.Size()
	}
	logrus.WithFields(logrus.Fields{
		"file": tmp.Name(),
		"size": size,
	}).Info("journal list downloaded")
	return tmp.Name(), nil
}

type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}
