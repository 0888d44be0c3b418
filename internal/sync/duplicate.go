package sync

import (
	"fmt"
	"strings"
)

// DuplicateDetector decides whether a replayed create already landed
// remotely by comparing a small set of natural-key fields. The field
// set is configurable; the default (client name, phone, delivery
// date) carries a known false-positive risk for legitimately
// distinct orders sharing all three on the same day.
type DuplicateDetector struct {
	fields []string
}

// NewDuplicateDetector creates a detector over the given fields
func NewDuplicateDetector(fields []string) *DuplicateDetector {
	if len(fields) == 0 {
		fields = []string{"client_nom", "client_telephone", "date_livraison"}
	}
	return &DuplicateDetector{fields: fields}
}

// Fields returns the configured match fields
func (d *DuplicateDetector) Fields() []string {
	return d.fields
}

// FindMatch returns the first existing row matching the candidate on
// every configured field, or nil. A candidate with an empty value in
// any match field never matches: empty-on-empty equality says
// nothing about identity.
func (d *DuplicateDetector) FindMatch(existing []map[string]interface{}, candidate map[string]interface{}) map[string]interface{} {
	for _, field := range d.fields {
		if normalizeField(candidate[field]) == "" {
			return nil
		}
	}

	for _, row := range existing {
		if d.matches(row, candidate) {
			return row
		}
	}
	return nil
}

func (d *DuplicateDetector) matches(row, candidate map[string]interface{}) bool {
	for _, field := range d.fields {
		if normalizeField(row[field]) != normalizeField(candidate[field]) {
			return false
		}
	}
	return true
}

func normalizeField(v interface{}) string {
	if v == nil {
		return ""
	}
	s := fmt.Sprintf("%v", v)
	return strings.ToLower(strings.TrimSpace(s))
}
