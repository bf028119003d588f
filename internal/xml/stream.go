package xml

import (
	"archive/zip"
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"journal-risk-eval/backend/internal/match"
	"journal-risk-eval/backend/internal/store"
)

// IngestOptions configures the journal-list ingestion routine.
type IngestOptions struct {
	Path     string
	DB       *store.Database
	Source   string
	Progress func(count int)
	Context  context.Context
}

// Ingest parses a journal list XML (optionally zipped) and persists the
// publisher domains found in it. Records without a resolvable domain are
// skipped, not fatal.
func Ingest(opts IngestOptions) (int, error) {
	if opts.DB == nil {
		return 0, errors.New("db is required")
	}
	if opts.Path == "" {
		return 0, errors.New("path is required")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	source := strings.TrimSpace(opts.Source)
	if source == "" {
		source = "xml"
	}

	r, closer, err := openXML(opts.Path)
	if err != nil {
		return 0, err
	}
	defer closer()

	decoder := xml.NewDecoder(bufio.NewReader(r))
	count := 0
	pending := make([]store.PublisherDomain, 0, flushBatchSize)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := opts.DB.UpsertPublisherDomains(pending); err != nil {
			return fmt.Errorf("upsert publisher domains: %w", err)
		}
		pending = pending[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		default:
		}

		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if err := flush(); err != nil {
					return count, err
				}
				return count, nil
			}
			return count, fmt.Errorf("decode token: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "journal" {
			continue
		}

		var record journalRecord
		if err := decoder.DecodeElement(&record, &start); err != nil {
			return count, fmt.Errorf("decode journal: %w", err)
		}

		row, ok := record.toPublisherDomain(source)
		if !ok {
			continue
		}

		pending = append(pending, row)
		count++
		if len(pending) >= flushBatchSize {
			if err := flush(); err != nil {
				return count, err
			}
		}
		if opts.Progress != nil && count%500 == 0 {
			opts.Progress(count)
		}
	}
}

const flushBatchSize = 250

// openXML opens either a raw XML file or a ZIP containing one.
func openXML(path string) (io.Reader, func(), error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%s is a directory", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".zip" {
		return openFromZip(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func openFromZip(path string) (io.Reader, func(), error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
			rc, err := f.Open()
			if err != nil {
				_ = zr.Close()
				return nil, nil, err
			}
			closer := func() {
				_ = rc.Close()
				_ = zr.Close()
			}
			return rc, closer, nil
		}
	}
	_ = zr.Close()
	return nil, nil, fmt.Errorf("no xml file found in %s", path)
}

type journalRecord struct {
	Title     string `xml:"title"`
	Publisher string `xml:"publisher"`
	ISSN      string `xml:"issn"`
	EISSN     string `xml:"eissn"`
	URL       string `xml:"url"`
}

// toPublisherDomain reduces a journal record to its allowlist row. The
// record's URL is normalized down to the registrable domain; records
// without one are unusable.
func (r journalRecord) toPublisherDomain(source string) (store.PublisherDomain, bool) {
	name, err := match.NormalizeDomain(r.URL)
	if err != nil {
		return store.PublisherDomain{}, false
	}

	publisher := cleanString(r.Publisher)
	if publisher == "" {
		publisher = cleanString(r.Title)
	}

	return store.PublisherDomain{
		Domain:    name.Registrable,
		Publisher: publisher,
		Source:    source,
	}, true
}

func cleanString(in string) string {
	return strings.TrimSpace(strings.ReplaceAll(in, "\n", " "))
}
