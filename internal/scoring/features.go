package scoring

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// FeatureSet is the typed signal record the dimension scorers consume.
// Every group has sensible zero values so a sparse bundle still scores.
type FeatureSet struct {
	Domain       string
	Editorial    EditorialFeatures
	Technical    TechnicalFeatures
	Submission   SubmissionFeatures
	Fees         FeeFeatures
	Contact      ContactFeatures
	Content      ContentFeatures
	Bibliometric BibliometricFeatures
}

type EditorialFeatures struct {
	BoardSize      int
	HasChiefEditor bool
}

type TechnicalFeatures struct {
	HasSSL             bool
	ResponseTimeMs     int
	ResponseTimeBucket string
	StatusCode         int
	PageWords          int
}

type SubmissionFeatures struct {
	HasGuidelines      bool
	MentionsPeerReview bool
	PromisesFastReview bool
}

type FeeFeatures struct {
	Disclosed           bool
	AmountUSD           float64
	CryptoPayment       bool
	WireOnly            bool
	PaymentBeforeReview bool
}

type ContactFeatures struct {
	MethodCount int
	EmailCount  int
	PhoneCount  int
	HasAddress  bool
}

type ContentFeatures struct {
	WordCount            int
	PredatoryPhrases     []string
	GuaranteedAcceptance bool
	LanguageUnclear      bool
}

type BibliometricFeatures struct {
	ClaimsImpactFactor bool
	ImpactFactorValue  float64
	HasISSN            bool
	MentionsIndexing   bool
}

// Response-time buckets in milliseconds.
const (
	fastResponseMs     = 800
	normalResponseMs   = 2500
	slowResponseMs     = 6000
	thinBodyWords      = 80
	stopwordFloorRatio = 0.02
)

var (
	emailPattern        = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern        = regexp.MustCompile(`\+?[0-9][0-9\-\s().]{7,}[0-9]`)
	addressPattern      = regexp.MustCompile(`(?i)\b(street|avenue|suite|p\.?o\.? box|road|boulevard)\b`)
	issnPattern         = regexp.MustCompile(`\b[0-9]{4}-[0-9]{3}[0-9Xx]\b`)
	feeAmountPattern    = regexp.MustCompile(`(?i)(?:\$|usd\s*|€|£)\s*([0-9][0-9,]{0,8}(?:\.[0-9]{1,2})?)`)
	feeSuffixPattern    = regexp.MustCompile(`(?i)([0-9][0-9,]{0,8}(?:\.[0-9]{1,2})?)\s*(?:usd|dollars)\b`)
	impactFactorPattern = regexp.MustCompile(`(?i)impact factor[^0-9]{0,20}([0-9]+(?:\.[0-9]+)?)`)
)

var chiefEditorMarkers = []string{"editor-in-chief", "editor in chief", "chief editor"}

var peerReviewMarkers = []string{"peer review", "peer-review", "peer reviewed", "double-blind review", "single-blind review"}

var fastReviewMarkers = []string{"within 24 hours", "within 48 hours", "within 72 hours", "fast track", "fast-track", "rapid review", "rapid publication", "speedy review", "immediate publication"}

var cryptoMarkers = []string{"bitcoin", "cryptocurrency", "crypto payment", "ethereum", "usdt"}

var wireOnlyMarkers = []string{"western union", "moneygram", "wire transfer only", "cash only"}

var paymentBeforeReviewMarkers = []string{"payment before review", "pay before review", "payment prior to review", "fee due at submission", "pay upon submission", "payment is required before"}

var guaranteedAcceptanceMarkers = []string{"guaranteed acceptance", "100% acceptance", "no rejection", "acceptance guaranteed"}

var indexingMarkers = []string{"scopus", "web of science", "pubmed", "medline", "doaj", "indexed in", "science citation index"}

var englishStopwords = []string{" the ", " and ", " of ", " to ", " in ", " for ", " is ", " are "}

// requiredPhrases are the canonical predatory markers the vocabulary must
// keep; deployments may extend the list but not drop these.
var requiredPhrases = []string{"guaranteed acceptance", "within 24 hours", "bitcoin", "fast track"}

// Extractor turns a scraped bundle into a FeatureSet. The predatory-phrase
// vocabulary is loaded once from a JSON file; extraction itself is pure.
type Extractor struct {
	phrases []string
}

type phraseFile struct {
	Phrases []string `json:"phrases"`
}

// NewExtractor loads the phrase vocabulary from a JSON config file.
func NewExtractor(path string) (*Extractor, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phrase vocabulary: %w", err)
	}
	var doc phraseFile
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("parse phrase vocabulary: %w", err)
	}

	extractor := &Extractor{}
	seen := make(map[string]struct{}, len(doc.Phrases))
	for _, phrase := range doc.Phrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		if _, dup := seen[phrase]; dup {
			continue
		}
		seen[phrase] = struct{}{}
		extractor.phrases = append(extractor.phrases, phrase)
	}

	if err := extractor.Validate(); err != nil {
		return nil, err
	}
	return extractor, nil
}

// Validate checks that the vocabulary is non-empty and keeps the canonical
// predatory markers.
func (e *Extractor) Validate() error {
	if len(e.phrases) == 0 {
		return fmt.Errorf("phrase vocabulary is empty")
	}
	lookup := make(map[string]struct{}, len(e.phrases))
	for _, phrase := range e.phrases {
		lookup[phrase] = struct{}{}
	}
	for _, required := range requiredPhrases {
		if _, ok := lookup[required]; !ok {
			return fmt.Errorf("phrase vocabulary missing required marker %q", required)
		}
	}
	return nil
}

// PhraseCount reports the vocabulary size.
func (e *Extractor) PhraseCount() int {
	return len(e.phrases)
}

// Extract derives the FeatureSet for a bundle. It never fails: absent data
// produces zero-valued features.
func (e *Extractor) Extract(bundle Bundle) FeatureSet {
	text := strings.ToLower(bundle.Title + " " + bundle.BodyText)
	wordCount := bundle.WordCount
	if wordCount == 0 && strings.TrimSpace(bundle.BodyText) != "" {
		wordCount = len(strings.Fields(bundle.BodyText))
	}

	features := FeatureSet{
		Domain: strings.ToLower(strings.TrimSpace(bundle.Domain)),
		Editorial: EditorialFeatures{
			BoardSize:      bundle.EditorialBoardSize,
			HasChiefEditor: containsAny(text, chiefEditorMarkers),
		},
		Technical: TechnicalFeatures{
			HasSSL:             bundle.HasSSL,
			ResponseTimeMs:     bundle.ResponseTimeMs,
			ResponseTimeBucket: responseBucket(bundle.ResponseTimeMs),
			StatusCode:         bundle.StatusCode,
			PageWords:          wordCount,
		},
		Submission: SubmissionFeatures{
			HasGuidelines:      bundle.HasGuidelines,
			MentionsPeerReview: containsAny(text, peerReviewMarkers),
			PromisesFastReview: containsAny(text, fastReviewMarkers),
		},
		Contact: ContactFeatures{
			MethodCount: bundle.ContactMethodCount,
			EmailCount:  len(emailPattern.FindAllString(text, -1)),
			PhoneCount:  len(phonePattern.FindAllString(text, -1)),
			HasAddress:  addressPattern.MatchString(text),
		},
	}

	features.Fees = e.extractFees(bundle, text)
	features.Content = e.extractContent(text, wordCount)
	features.Bibliometric = extractBibliometric(text)

	return features
}

func (e *Extractor) extractFees(bundle Bundle, text string) FeeFeatures {
	fees := FeeFeatures{
		CryptoPayment:       containsAny(text, cryptoMarkers),
		WireOnly:            containsAny(text, wireOnlyMarkers),
		PaymentBeforeReview: containsAny(text, paymentBeforeReviewMarkers),
	}

	m := feeAmountPattern.FindStringSubmatch(text)
	if len(m) != 2 {
		m = feeSuffixPattern.FindStringSubmatch(text)
	}
	if len(m) == 2 {
		raw := strings.ReplaceAll(m[1], ",", "")
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			fees.AmountUSD = amount
		}
	}

	fees.Disclosed = bundle.HasFeeInfo || fees.AmountUSD > 0
	return fees
}

func (e *Extractor) extractContent(text string, wordCount int) ContentFeatures {
	content := ContentFeatures{
		WordCount:        wordCount,
		PredatoryPhrases: make([]string, 0, 4),
	}
	for _, phrase := range e.phrases {
		if strings.Contains(text, phrase) {
			content.PredatoryPhrases = append(content.PredatoryPhrases, phrase)
		}
	}
	content.GuaranteedAcceptance = containsAny(text, guaranteedAcceptanceMarkers)

	if wordCount > thinBodyWords {
		hits := 0
		for _, stopword := range englishStopwords {
			hits += strings.Count(text, stopword)
		}
		if float64(hits)/float64(wordCount) < stopwordFloorRatio {
			content.LanguageUnclear = true
		}
	}
	return content
}

func extractBibliometric(text string) BibliometricFeatures {
	bib := BibliometricFeatures{
		ClaimsImpactFactor: strings.Contains(text, "impact factor"),
		HasISSN:            issnPattern.MatchString(text),
		MentionsIndexing:   containsAny(text, indexingMarkers),
	}
	if m := impactFactorPattern.FindStringSubmatch(text); len(m) == 2 {
		if value, err := strconv.ParseFloat(m[1], 64); err == nil {
			bib.ImpactFactorValue = value
		}
	}
	return bib
}

func responseBucket(ms int) string {
	switch {
	case ms <= 0:
		return "unknown"
	case ms < fastResponseMs:
		return "fast"
	case ms < normalResponseMs:
		return "normal"
	case ms < slowResponseMs:
		return "slow"
	default:
		return "very_slow"
	}
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
