package respond

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/crestline/leasebot/core"
)

// linkPlaceholderRe matches the placeholder markup the generation prompt
// asks for: [VIEW:id], [TOUR:id], [APPLY:id].
var linkPlaceholderRe = regexp.MustCompile(`\[(VIEW|TOUR|APPLY):([^\]\s]+)\]`)

// ResolveLinks replaces link placeholders in generated text with the
// referenced candidate's precomputed deep links. Placeholders naming an
// unknown listing are dropped. If the text carries no link markup at all,
// tour and apply links for the first candidate are appended so the answer
// always offers a next step.
func ResolveLinks(text string, candidates []*core.Property) string {
	byID := make(map[string]*core.Property, len(candidates))
	for _, p := range candidates {
		byID[p.ID] = p
	}

	sawPlaceholder := false
	resolved := linkPlaceholderRe.ReplaceAllStringFunc(text, func(match string) string {
		sawPlaceholder = true
		groups := linkPlaceholderRe.FindStringSubmatch(match)
		p, ok := byID[groups[2]]
		if !ok {
			return ""
		}
		switch groups[1] {
		case "VIEW":
			return p.Links.View
		case "TOUR":
			return p.Links.Tour
		default:
			return p.Links.Apply
		}
	})

	if sawPlaceholder || len(candidates) == 0 {
		return strings.TrimSpace(resolved)
	}

	return strings.TrimSpace(resolved) + appendedLinks(candidates[0])
}

func appendedLinks(p *core.Property) string {
	var b strings.Builder
	if p.Links.Tour != "" {
		fmt.Fprintf(&b, "\nSchedule a tour: %s", p.Links.Tour)
	}
	if p.Links.Apply != "" {
		fmt.Fprintf(&b, "\nApply: %s", p.Links.Apply)
	}
	return b.String()
}
