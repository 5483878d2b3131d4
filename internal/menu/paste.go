package menu

import "strings"

// ParsePaste fills a menu from free text copied from a document. A line equal
// to a section title starts that section; following lines fill its empty slots
// in order. Lines before the first title and lines beyond a section's slot
// count are dropped. Slot counts never change.
func ParsePaste(rec MenuRecord, raw string) MenuRecord {
	out := *rec.Clone()
	for i := range out.Sections {
		out.Sections[i].Lines = make([]string, len(out.Sections[i].Lines))
	}

	current := -1
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if idx := sectionIndex(out.Sections, line); idx != -1 {
			current = idx
			continue
		}
		if current == -1 {
			continue
		}
		lines := out.Sections[current].Lines
		for j := range lines {
			if lines[j] == "" {
				lines[j] = line
				break
			}
		}
	}
	return out
}

func sectionIndex(sections []MenuSection, line string) int {
	for i, s := range sections {
		if SameTitle(s.Title, line) {
			return i
		}
	}
	return -1
}
