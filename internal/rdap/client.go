package rdap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Config drives RDAP client behaviour.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Registration captures the subset of RDAP registration data the domain
// trust analyzer needs when WHOIS comes back empty.
type Registration struct {
	Domain    string
	Created   time.Time
	Registrar string
	Statuses  []string
	Checked   bool
}

// Client performs RDAP domain lookups with basic caching and rate-limit
// handling. The rdap.org bootstrap service needs no credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cacheTTL   time.Duration
	cache      sync.Map // map[string]cacheEntry
}

type cacheEntry struct {
	at     time.Time
	result Registration
}

// NewClient constructs an RDAP client, applying defaults for anything unset.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://rdap.org"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		cacheTTL:   ttl,
	}
}

// Lookup fetches registration data for the supplied domain.
func (c *Client) Lookup(ctx context.Context, domain string) (Registration, error) {
	if c == nil {
		return Registration{}, errors.New("rdap client is nil")
	}

	key := strings.ToLower(strings.TrimSpace(domain))
	if key == "" {
		return Registration{}, nil
	}

	if entry, ok := c.cache.Load(key); ok {
		cached := entry.(cacheEntry)
		if time.Since(cached.at) < c.cacheTTL {
			return cached.result, nil
		}
		c.cache.Delete(key)
	}

	result, err := c.performRequest(ctx, key)
	if err != nil {
		return Registration{}, err
	}

	c.cache.Store(key, cacheEntry{at: time.Now(), result: result})
	return result, nil
}

func (c *Client) performRequest(ctx context.Context, domain string) (Registration, error) {
	endpoint := c.baseURL + "/domain/" + url.PathEscape(domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Registration{}, err
	}
	req.Header.Set("Accept", "application/rdap+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Registration{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		// back off for 5 seconds and retry once
		select {
		case <-ctx.Done():
			return Registration{}, ctx.Err()
		case <-time.After(5 * time.Second):
		}
		resp.Body.Close()
		retryReq, retryErr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if retryErr != nil {
			return Registration{}, retryErr
		}
		retryReq.Header = req.Header.Clone()
		resp, err = c.httpClient.Do(retryReq)
		if err != nil {
			return Registration{}, err
		}
		defer resp.Body.Close()
	}

	if resp.StatusCode != http.StatusOK {
		return Registration{}, fmt.Errorf("rdap status %d", resp.StatusCode)
	}

	var payload domainResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Registration{}, fmt.Errorf("decode rdap response: %w", err)
	}

	return parseRegistration(domain, payload), nil
}

type domainResponse struct {
	LDHName  string         `json:"ldhName"`
	Events   []domainEvent  `json:"events"`
	Entities []domainEntity `json:"entities"`
	Status   []string       `json:"status"`
}

type domainEvent struct {
	Action string `json:"eventAction"`
	Date   string `json:"eventDate"`
}

type domainEntity struct {
	Roles      []string       `json:"roles"`
	VCardArray interface{}    `json:"vcardArray"`
	Entities   []domainEntity `json:"entities"`
}

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseRegistration(domain string, payload domainResponse) Registration {
	reg := Registration{
		Domain:   domain,
		Statuses: payload.Status,
		Checked:  true,
	}

	for _, event := range payload.Events {
		if !strings.EqualFold(strings.TrimSpace(event.Action), "registration") {
			continue
		}
		if created, ok := parseEventDate(event.Date); ok {
			reg.Created = created
			break
		}
	}

	reg.Registrar = findRegistrar(payload.Entities)
	return reg
}

func parseEventDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range eventDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func findRegistrar(entities []domainEntity) string {
	for _, entity := range entities {
		for _, role := range entity.Roles {
			if strings.EqualFold(strings.TrimSpace(role), "registrar") {
				if name := vcardFullName(entity.VCardArray); name != "" {
					return name
				}
			}
		}
		if name := findRegistrar(entity.Entities); name != "" {
			return name
		}
	}
	return ""
}

// vcardFullName digs the fn property out of a jCard payload, which arrives
// as ["vcard", [["fn", {}, "text", "Example Registrar"], ...]].
func vcardFullName(raw interface{}) string {
	card, ok := raw.([]interface{})
	if !ok || len(card) < 2 {
		return ""
	}
	properties, ok := card[1].([]interface{})
	if !ok {
		return ""
	}
	for _, property := range properties {
		fields, ok := property.([]interface{})
		if !ok || len(fields) < 4 {
			continue
		}
		name, ok := fields[0].(string)
		if !ok || !strings.EqualFold(name, "fn") {
			continue
		}
		if value, ok := fields[3].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
