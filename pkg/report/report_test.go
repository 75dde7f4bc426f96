package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/hellenic-development/figma-report/pkg/extract"
)

func sampleStructure() *extract.ParsedStructure {
	return &extract.ParsedStructure{
		FileName:     "Checkout App",
		LastModified: "2026-08-01T12:00:00Z",
		Fingerprint:  "a1b2c3d4e5",
		Pages: []extract.Page{
			{ID: "0:1", Name: "Mobile"},
		},
		Layers: []extract.LayerDescriptor{
			{ID: "1:1", Type: "FRAME", Name: "Login", Page: "Mobile", Width: 375, Height: 812, ChildrenCount: 2, Visible: true},
			{ID: "1:2", Type: "FRAME", Name: "Cart", Page: "Mobile", Width: 375, Height: 812, Visible: true},
		},
		TextNodes: []extract.TextDescriptor{
			{ID: "1:3", Page: "Mobile", Name: "Title", Characters: "Sign in",
				Style: extract.TextStyle{FontFamily: "Inter", FontWeight: 600, FontSize: 24}},
		},
		Components: []extract.ComponentDescriptor{
			{ID: "9:1", Name: "Button/Primary", Description: "Primary CTA"},
			{ID: "9:2", Name: "Input/Text", Remote: true},
		},
		StyleIDs: []string{"S:abc"},
	}
}

func TestGenerate(t *testing.T) {
	data, err := Generate(sampleStructure(), Diagrams{})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output should be a PDF document")
}

func TestGenerateNilStructure(t *testing.T) {
	_, err := Generate(nil, Diagrams{})
	require.Error(t, err)
}

func TestGenerateEmptyStructure(t *testing.T) {
	s := &extract.ParsedStructure{
		FileName:    "Empty",
		Fingerprint: "0000000000",
	}

	data, err := Generate(s, Diagrams{})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestGenerateWithDiagrams(t *testing.T) {
	// Minimal valid 1x1 PNG.
	png := []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
		0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
		0x42, 0x60, 0x82,
	}

	data, err := Generate(sampleStructure(), Diagrams{Architecture: png, Flow: png})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	require.Greater(t, len(data), 500)
}

func TestFileName(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	name := FileName(sampleStructure(), now)
	require.Equal(t, "Checkout_App_a1b2c3d4e5_20260829_103000.pdf", name)
}

func TestFileNameSanitizes(t *testing.T) {
	s := sampleStructure()
	s.FileName = "../etc/passwd ?"
	now := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	name := FileName(s, now)
	require.NotContains(t, name, "/")
	require.NotContains(t, name, "..", "dots must be replaced")
}

func TestFileNameEmpty(t *testing.T) {
	s := sampleStructure()
	s.FileName = ""
	now := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	require.Equal(t, "design_a1b2c3d4e5_20260829_103000.pdf", FileName(s, now))
}

func TestArchitectureHeuristics(t *testing.T) {
	tests := []struct {
		pages, components int
		want              string
	}{
		{1, 2, "Single service"},
		{4, 5, "Modular monolith"},
		{2, 10, "Modular monolith"},
		{9, 3, "Microservices architecture"},
		{2, 25, "Microservices architecture"},
	}

	for _, tt := range tests {
		name, rationale := architecture(tt.pages, tt.components)
		require.Equal(t, tt.want, name)
		require.NotEmpty(t, rationale)
	}
}

func TestTruncateText(t *testing.T) {
	long := bytes.Repeat([]byte("x"), 900)

	got := truncateText(string(long), 800)
	require.Len(t, got, 803)
	require.Equal(t, "...", got[800:])

	require.Equal(t, "short", truncateText("short", 800))
}

func TestTruncateTextRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 10)

	got := truncateText(long, 4)
	require.True(t, utf8.ValidString(got))
	require.Equal(t, strings.Repeat("é", 4)+"...", got)
}
