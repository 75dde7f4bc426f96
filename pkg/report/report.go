// Package report renders the developer-facing PDF report for a parsed design
// structure.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/hellenic-development/figma-report/pkg/extract"
)

const maxTextChars = 800

// Diagrams carries the optional PNG diagrams embedded into the report.
// A nil slice skips the corresponding section.
type Diagrams struct {
	Architecture []byte
	Flow         []byte
}

// Generate renders the full report as PDF bytes.
func Generate(s *extract.ParsedStructure, diagrams Diagrams) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("report: nil structure")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Figma Design Report - %s - Page %d", s.Fingerprint, pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeCover(pdf, s)
	writeSummary(pdf, s)
	writePages(pdf, s)
	writeComponents(pdf, s)
	writeText(pdf, s)
	writeArchitecture(pdf, s)
	writeFlow(pdf, s)
	writeChecklist(pdf, s)
	embedDiagrams(pdf, diagrams)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName builds the report download name for a structure:
// <file>_<fingerprint>_<timestamp>.pdf with the file name sanitized to
// filesystem-safe characters.
func FileName(s *extract.ParsedStructure, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.pdf",
		sanitize(s.FileName), s.Fingerprint, now.Format("20060102_150405"))
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "design"
	}
	return b.String()
}

func writeCover(pdf *gofpdf.Fpdf, s *extract.ParsedStructure) {
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(45, 55, 72)
	pdf.CellFormat(0, 14, "Figma Design Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 10, s.FileName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, "Design fingerprint: "+s.Fingerprint, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Last modified: "+s.LastModified, "", 1, "C", false, 0, "")
	pdf.Ln(6)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(45, 55, 72)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func keyValueRow(pdf *gofpdf.Fpdf, key, value string, shade bool) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 245)
	pdf.CellFormat(60, 8, key, "1", 0, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if shade {
		pdf.SetFillColor(250, 250, 252)
	} else {
		pdf.SetFillColor(255, 255, 255)
	}
	pdf.CellFormat(0, 8, value, "1", 1, "L", true, 0, "")
}

func writeSummary(pdf *gofpdf.Fpdf, s *extract.ParsedStructure) {
	sectionTitle(pdf, "Design Summary")

	pdf.SetTextColor(0, 0, 0)
	frames := s.Frames()

	keyValueRow(pdf, "File name", s.FileName, false)
	keyValueRow(pdf, "Pages", fmt.Sprintf("%d", len(s.Pages)), true)
	keyValueRow(pdf, "Layers", fmt.Sprintf("%d", len(s.Layers)), false)
	keyValueRow(pdf, "Frames", fmt.Sprintf("%d", len(frames)), true)
	keyValueRow(pdf, "Text nodes", fmt.Sprintf("%d", len(s.TextNodes)), false)
	keyValueRow(pdf, "Components", fmt.Sprintf("%d", len(s.Components)), true)
	keyValueRow(pdf, "Styles referenced", fmt.Sprintf("%d", len(s.StyleIDs)), false)
	pdf.Ln(6)
}

func writePages(pdf *gofpdf.Fpdf, s *extract.ParsedStructure) {
	sectionTitle(pdf, "Pages and Frames")

	if len(s.Pages) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 8, "No pages found in this file.", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}

	for _, page := range s.Pages {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(45, 55, 72)
		pdf.CellFormat(0, 8, page.Name, "", 1, "L", false, 0, "")

		frames := s.FramesOn(page.Name)
		if len(frames) == 0 {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetTextColor(128, 128, 128)
			pdf.CellFormat(0, 6, "No frames on this page.", "", 1, "L", false, 0, "")
			pdf.Ln(2)
			continue
		}

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFillColor(45, 55, 72)
		pdf.CellFormat(80, 7, "Frame", "1", 0, "L", true, 0, "")
		pdf.CellFormat(50, 7, "Size", "1", 0, "C", true, 0, "")
		pdf.CellFormat(0, 7, "Children", "1", 1, "C", true, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for i, f := range frames {
			shade := i%2 == 1
			if shade {
				pdf.SetFillColor(245, 245, 248)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}
			pdf.CellFormat(80, 7, f.Name, "1", 0, "L", shade, 0, "")
			pdf.CellFormat(50, 7, fmt.Sprintf("%.0f x %.0f", f.Width, f.Height), "1", 0, "C", shade, 0, "")
			pdf.CellFormat(0, 7, fmt.Sprintf("%d", f.ChildrenCount), "1", 1, "C", shade, 0, "")
		}
		pdf.Ln(4)
	}
}

func writeComponents(pdf *gofpdf.Fpdf, s *extract.ParsedStructure) {
	sectionTitle(pdf, "Components")

	if len(s.Components) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 8, "No components defined in this file.", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, c := range s.Components {
		line := "- " + c.Name
		if c.Description != "" {
			line += ": " + c.Description
		}
		if c.Remote {
			line += " (library)"
		}
		pdf.MultiCell(0, 6, line, "", "L", false)
	}
	pdf.Ln(4)
}

func writeText(pdf *gofpdf.Fpdf, s *extract.ParsedStructure) {
	sectionTitle(pdf, "Text Content")

	if len(s.TextNodes) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 8, "No text nodes found.", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}

	for _, t := range s.TextNodes {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(45, 55, 72)
		label := t.Name
		if label == "" {
			label = t.ID
		}
		pdf.CellFormat(0, 7, fmt.Sprintf("%s (%s)", label, t.Page), "", 1, "L", false, 0, "")

		if t.Style.FontFamily != "" {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.SetTextColor(128, 128, 128)
			pdf.CellFormat(0, 5,
				fmt.Sprintf("%s %.0f, weight %.0f", t.Style.FontFamily, t.Style.FontSize, t.Style.FontWeight),
				"", 1, "L", false, 0, "")
		}

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 6, truncateText(t.Characters, maxTextChars), "", "L", false)
		pdf.Ln(2)
	}
	pdf.Ln(2)
}

// truncateText cuts on a rune boundary so multi-byte text stays valid UTF-8.
func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// architecture returns the recommended backend shape for a design of this
// size, mirroring how the report positions large design systems against small
// single-purpose screens.
func architecture(pages, components int) (name, rationale string) {
	switch {
	case components > 20 || pages > 8:
		return "Microservices architecture",
			"The design system is large enough that independent services per domain keep teams unblocked."
	case components > 8 || pages > 3:
		return "Modular monolith",
			"A single deployable with clear module boundaries fits this mid-sized design."
	default:
		return "Single service",
			"A simple service covers this design; split later if it grows."
	}
}

func writeArchitecture(pdf *gofpdf.Fpdf, s *extract.ParsedStructure) {
	sectionTitle(pdf, "Recommended Architecture")

	name, rationale := architecture(len(s.Pages), len(s.Components))

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, rationale, "", "L", false)
	pdf.Ln(4)
}

func writeFlow(pdf *gofpdf.Fpdf, s *extract.ParsedStructure) {
	frames := s.Frames()
	if len(frames) < 2 {
		return
	}

	sectionTitle(pdf, "User Flow")

	names := make([]string, 0, len(frames))
	for i, f := range frames {
		if i >= 8 {
			break
		}
		names = append(names, f.Name)
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 6, strings.Join(names, "  ->  "), "", "L", false)
	pdf.Ln(4)
}

func writeChecklist(pdf *gofpdf.Fpdf, s *extract.ParsedStructure) {
	sectionTitle(pdf, "Developer Checklist")

	frames := s.Frames()
	items := []string{
		fmt.Sprintf("Implement %d screens as routes or views", len(frames)),
		fmt.Sprintf("Build %d reusable components from the design system", len(s.Components)),
		fmt.Sprintf("Wire up copy for %d text nodes", len(s.TextNodes)),
		"Verify responsive behavior against frame dimensions",
		"Review invisible layers before shipping",
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, item := range items {
		pdf.CellFormat(0, 7, "[ ] "+item, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func embedDiagrams(pdf *gofpdf.Fpdf, diagrams Diagrams) {
	embed := func(name, title string, data []byte) {
		if len(data) == 0 {
			return
		}
		pdf.AddPage()
		sectionTitle(pdf, title)

		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		pdf.ImageOptions(name, 15, pdf.GetY(), 180, 0, false, opts, 0, "")
	}

	embed("architecture.png", "Architecture Diagram", diagrams.Architecture)
	embed("flow.png", "User Flow Diagram", diagrams.Flow)
}
