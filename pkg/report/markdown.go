package report

import (
	"fmt"
	"strings"

	"github.com/hellenic-development/figma-report/pkg/extract"
)

// Markdown transforms a parsed design structure into a markdown document
// covering the same sections as the PDF report, ready to drop into a project
// README or ticket.
func Markdown(s *extract.ParsedStructure) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Figma Design Report - %s\n\n", s.FileName))
	sb.WriteString(fmt.Sprintf("Fingerprint: `%s` | Last modified: %s\n\n", s.Fingerprint, s.LastModified))

	frames := s.Frames()

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Count |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Pages | %d |\n", len(s.Pages)))
	sb.WriteString(fmt.Sprintf("| Layers | %d |\n", len(s.Layers)))
	sb.WriteString(fmt.Sprintf("| Frames | %d |\n", len(frames)))
	sb.WriteString(fmt.Sprintf("| Text nodes | %d |\n", len(s.TextNodes)))
	sb.WriteString(fmt.Sprintf("| Components | %d |\n\n", len(s.Components)))

	sb.WriteString("## Pages and Frames\n\n")
	if len(s.Pages) == 0 {
		sb.WriteString("No pages found in this file.\n\n")
	}
	for _, page := range s.Pages {
		sb.WriteString(fmt.Sprintf("### %s\n\n", page.Name))

		pageFrames := s.FramesOn(page.Name)
		if len(pageFrames) == 0 {
			sb.WriteString("No frames on this page.\n\n")
			continue
		}

		sb.WriteString("| Frame | Size | Children |\n|---|---|---|\n")
		for _, f := range pageFrames {
			sb.WriteString(fmt.Sprintf("| %s | %.0f x %.0f | %d |\n", f.Name, f.Width, f.Height, f.ChildrenCount))
		}
		sb.WriteString("\n")
	}

	if len(s.Components) > 0 {
		sb.WriteString("## Components\n\n")
		for _, c := range s.Components {
			line := "- **" + c.Name + "**"
			if c.Description != "" {
				line += ": " + c.Description
			}
			if c.Remote {
				line += " _(library)_"
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}

	if len(s.TextNodes) > 0 {
		sb.WriteString("## Text Content\n\n")
		for _, t := range s.TextNodes {
			label := t.Name
			if label == "" {
				label = t.ID
			}
			sb.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", label, t.Page, truncateText(t.Characters, maxTextChars)))
		}
		sb.WriteString("\n")
	}

	name, rationale := architecture(len(s.Pages), len(s.Components))
	sb.WriteString("## Recommended Architecture\n\n")
	sb.WriteString(fmt.Sprintf("**%s** - %s\n", name, rationale))

	return sb.String()
}
