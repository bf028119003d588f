package rdap

import (
	"encoding/json"
	"testing"
	"time"
)

const sampleResponse = `{
  "ldhName": "EXAMPLE.COM",
  "status": ["client transfer prohibited"],
  "events": [
    {"eventAction": "expiration", "eventDate": "2027-08-13T04:00:00Z"},
    {"eventAction": "registration", "eventDate": "1995-08-14T04:00:00Z"}
  ],
  "entities": [
    {
      "roles": ["registrar"],
      "vcardArray": ["vcard", [["version", {}, "text", "4.0"], ["fn", {}, "text", "Example Registrar LLC"]]]
    }
  ]
}`

func TestParseRegistration(t *testing.T) {
	var payload domainResponse
	if err := json.Unmarshal([]byte(sampleResponse), &payload); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}

	reg := parseRegistration("example.com", payload)
	if !reg.Checked {
		t.Fatal("expected checked registration")
	}
	if reg.Registrar != "Example Registrar LLC" {
		t.Fatalf("expected registrar name, got %q", reg.Registrar)
	}
	want := time.Date(1995, 8, 14, 4, 0, 0, 0, time.UTC)
	if !reg.Created.Equal(want) {
		t.Fatalf("expected created %v got %v", want, reg.Created)
	}
	if len(reg.Statuses) != 1 {
		t.Fatalf("expected 1 status got %d", len(reg.Statuses))
	}
}

func TestParseRegistrationNestedRegistrar(t *testing.T) {
	raw := `{
	  "events": [{"eventAction": "registration", "eventDate": "2024-01-02"}],
	  "entities": [
	    {"roles": ["registrant"], "entities": [
	      {"roles": ["registrar"], "vcardArray": ["vcard", [["fn", {}, "text", "Nested Registrar"]]]}
	    ]}
	  ]
	}`
	var payload domainResponse
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}

	reg := parseRegistration("nested.example", payload)
	if reg.Registrar != "Nested Registrar" {
		t.Fatalf("expected nested registrar, got %q", reg.Registrar)
	}
	if reg.Created.IsZero() {
		t.Fatal("expected created date parsed from date-only layout")
	}
}

func TestParseEventDate(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "rfc3339", raw: "2020-05-01T12:30:00Z", ok: true},
		{name: "fractional seconds", raw: "2020-05-01T12:30:00.500Z", ok: true},
		{name: "date only", raw: "2020-05-01", ok: true},
		{name: "empty", raw: "", ok: false},
		{name: "garbage", raw: "not a date", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := parseEventDate(tc.raw); ok != tc.ok {
				t.Fatalf("expected ok=%v got %v", tc.ok, ok)
			}
		})
	}
}
