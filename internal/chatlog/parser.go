// Package chatlog parses raw multi-format chat export text into normalized,
// identity-resolved message records.
package chatlog

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/argus-agency/dossier/internal/roster"
)

// Record is a single normalized chat message. Records are immutable once
// created; re-parsing the same source produces new records with new IDs.
type Record struct {
	ID           string
	Timestamp    string // free-text, as captured in the export
	SenderID     string // raw sender token: phone number or display name
	SenderName   string
	SenderRole   string
	Body         string
	Tags         []string
	SourceFileID string
	GroupID      string
}

// headerRe recognizes a message header across the common export variants:
// an optional leading bracket, day/month/year with a 2- or 4-digit year, a
// time with optional seconds and optional AM/PM (possibly preceded by a
// narrow no-break or no-break space), a hyphen or closing-bracket separator,
// and a sender token running up to a colon.
var headerRe = regexp.MustCompile(
	`(?m)^\x{200e}?\[?` +
		`(\d{1,2}/\d{1,2}/\d{2,4},?[ \t]+\d{1,2}:\d{2}(?::\d{2})?(?:[ \x{202f}\x{00a0}]?[AaPp][Mm])?)` +
		`\]?[ \x{202f}\x{00a0}]*[-–]?[ \t]*` +
		`([^:\n]+?):[ \t]?`)

// alertRunes is the fixed set of alerting pictographs collected as tags.
var alertRunes = map[rune]struct{}{
	'🚨': {},
	'⚠': {},
	'❗': {},
	'‼': {},
	'🆘': {},
	'🔴': {},
	'📢': {},
	'🔥': {},
}

// Parse converts a raw chat export into message records, resolving each
// sender against the directory. Text with no recognizable header yields an
// empty slice, not an error: callers should treat zero records as a
// degenerate-but-valid outcome and surface a warning.
//
// The body of each message runs from its header to the next recognized
// header or the end of input, so multi-line messages stay one record.
func Parse(raw string, dir roster.Directory, sourceFileID, groupID string) []Record {
	matches := headerRe.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return nil
	}

	records := make([]Record, 0, len(matches))
	for i, m := range matches {
		timestamp := raw[m[2]:m[3]]
		sender := strings.TrimSpace(raw[m[4]:m[5]])

		bodyEnd := len(raw)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := strings.TrimSpace(raw[m[1]:bodyEnd])

		id := dir.Resolve(sender)
		records = append(records, Record{
			ID:           uuid.NewString(),
			Timestamp:    timestamp,
			SenderID:     sender,
			SenderName:   id.Name,
			SenderRole:   id.Role,
			Body:         body,
			Tags:         extractTags(body),
			SourceFileID: sourceFileID,
			GroupID:      groupID,
		})
	}
	return records
}

// extractTags collects alerting symbols from the body in encounter order,
// duplicates retained.
func extractTags(body string) []string {
	var tags []string
	for _, r := range body {
		if _, ok := alertRunes[r]; ok {
			tags = append(tags, string(r))
		}
	}
	return tags
}
