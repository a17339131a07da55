// Package export renders a note collection into the supported download
// formats. Every function here is pure: no I/O, no mutation of the input,
// and no failure modes beyond what encoding/json can raise.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/awillits/marginalia/internal/model"
)

// Format identifies one of the supported export formats.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText:
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatDOCX:
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// FallbackTopic labels notes whose topic is empty in grouped output.
const FallbackTopic = "Uncategorized"

// EmptyPlaceholder is emitted when the collection has no notes.
const EmptyPlaceholder = "No notes have been captured yet."

const ruleWidth = 40

// Group is one topic bucket in grouped output.
type Group struct {
	Topic string
	Notes []model.Note
}

// GroupByTopic partitions notes by topic. Group order is the order in which
// each topic is first seen while scanning the input; notes keep their
// relative order inside a group. Empty topics fall under FallbackTopic.
func GroupByTopic(notes []model.Note) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, n := range notes {
		topic := strings.TrimSpace(n.Topic)
		if topic == "" {
			topic = FallbackTopic
		}
		i, ok := index[topic]
		if !ok {
			i = len(groups)
			index[topic] = i
			groups = append(groups, Group{Topic: topic})
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}
	return groups
}

// Text renders the grouped collection as plain text: topic heading, a
// fixed-width rule, then each note numbered within its group.
func Text(notes []model.Note) string {
	if len(notes) == 0 {
		return EmptyPlaceholder + "\n"
	}

	rule := strings.Repeat("=", ruleWidth)

	var b strings.Builder
	for gi, g := range GroupByTopic(notes) {
		if gi > 0 {
			b.WriteString("\n")
		}
		b.WriteString(g.Topic + "\n")
		b.WriteString(rule + "\n")
		for ni, n := range g.Notes {
			if ni > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%d. %s\n%s\n(%s)\n",
				ni+1, n.Title, n.Text, n.CreatedAt.UTC().Format(time.RFC3339))
		}
	}
	return b.String()
}

// CSV renders the collection in original (ungrouped) order. Every field is
// double-quoted with internal quotes doubled; no other escaping is applied,
// so embedded commas and newlines survive as-is.
func CSV(notes []model.Note) string {
	var b strings.Builder
	b.WriteString("title,topic,text,createdAt\n")
	for _, n := range notes {
		fields := []string{n.Title, n.Topic, n.Text, n.CreatedAt.UTC().Format(time.RFC3339)}
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(f, `"`, `""`))
			b.WriteByte('"')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// JSON renders the full collection pretty-printed in original order.
func JSON(notes []model.Note) ([]byte, error) {
	if notes == nil {
		notes = []model.Note{}
	}
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal notes: %w", err)
	}
	return data, nil
}
