package library

import (
	"strings"

	"github.com/five82/stash/internal/nas"
)

const noMatchReply = "Sorry, I could not find any related files."

// Assistant answers chat questions from the files already loaded. It does
// not call out to any model; replies list files whose name or tags match.
type Assistant struct {
	// Limit caps the number of files listed. Zero lists every match.
	Limit int
}

// Matches returns the files whose name or any tag contains q, ignoring case.
func (a Assistant) Matches(files []nas.File, q string) []nas.File {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	var out []nas.File
	for _, f := range files {
		if matchesFile(f, q) {
			out = append(out, f)
			if a.Limit > 0 && len(out) == a.Limit {
				break
			}
		}
	}
	return out
}

// Answer builds the assistant reply for q.
func (a Assistant) Answer(files []nas.File, q string) string {
	matches := a.Matches(files, q)
	if len(matches) == 0 {
		return noMatchReply
	}

	var b strings.Builder
	b.WriteString("I found these files:\n")
	for _, f := range matches {
		b.WriteString("\n- ")
		b.WriteString(f.Name)
		b.WriteString(" (")
		b.WriteString(string(f.Type))
		b.WriteString(")\n")
		if f.Description != "" {
			b.WriteString("  ")
			b.WriteString(f.Description)
			b.WriteString("\n")
		}
		b.WriteString("  tags: ")
		if len(f.Tags) == 0 {
			b.WriteString("none")
		} else {
			b.WriteString(strings.Join(f.Tags, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func matchesFile(f nas.File, q string) bool {
	if strings.Contains(strings.ToLower(f.Name), q) {
		return true
	}
	for _, tag := range f.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
