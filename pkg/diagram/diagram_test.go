package diagram

import (
	"bytes"
	"image/png"
	"testing"
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
			{ID: "0:2", Name: "Desktop"},
		},
		Layers: []extract.LayerDescriptor{
			{ID: "1:1", Type: "FRAME", Name: "Login", Page: "Mobile"},
			{ID: "1:2", Type: "FRAME", Name: "Cart", Page: "Mobile"},
			{ID: "2:1", Type: "FRAME", Name: "Dashboard", Page: "Desktop"},
			{ID: "2:2", Type: "RECTANGLE", Name: "Divider", Page: "Desktop"},
		},
		TextNodes: []extract.TextDescriptor{
			{ID: "1:3", Page: "Mobile", Name: "Title", Characters: "Sign in"},
		},
		Components: []extract.ComponentDescriptor{
			{ID: "9:1", Name: "Button/Primary"},
		},
	}
}

func TestArchitecture(t *testing.T) {
	data, err := Architecture(sampleStructure())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, archWidth, img.Bounds().Dx())
	require.Equal(t, archHeight, img.Bounds().Dy())
}

func TestArchitectureDeterministic(t *testing.T) {
	s := sampleStructure()

	first, err := Architecture(s)
	require.NoError(t, err)
	second, err := Architecture(s)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestArchitectureFingerprintChangesPalette(t *testing.T) {
	a := sampleStructure()
	b := sampleStructure()
	b.Fingerprint = "ffeeddccbb"

	imgA, err := Architecture(a)
	require.NoError(t, err)
	imgB, err := Architecture(b)
	require.NoError(t, err)

	require.NotEqual(t, imgA, imgB)
}

func TestArchitectureNilStructure(t *testing.T) {
	_, err := Architecture(nil)
	require.Error(t, err)
}

func TestFlow(t *testing.T) {
	data, err := Flow(sampleStructure())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, flowWidth, img.Bounds().Dx())
}

func TestFlowNoFrames(t *testing.T) {
	s := sampleStructure()
	s.Layers = nil

	data, err := Flow(s)
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestFlowCapsFrames(t *testing.T) {
	s := sampleStructure()
	s.Layers = nil
	for i := 0; i < 20; i++ {
		s.Layers = append(s.Layers, extract.LayerDescriptor{
			ID: "f", Type: "FRAME", Name: "Screen", Page: "Mobile",
		})
	}

	data, err := Flow(s)
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestApiLayerScalesWithComplexity(t *testing.T) {
	tests := []struct {
		frames, components int
		want               string
	}{
		{2, 1, "Simple API"},
		{4, 3, "REST API Gateway"},
		{8, 6, "Microservices API"},
	}

	for _, tt := range tests {
		label, _ := apiLayer(tt.frames, tt.components)
		require.Equal(t, tt.want, label)
	}
}

func TestDataLayerScalesWithTextVolume(t *testing.T) {
	require.Equal(t, "SQLite (simple data)", dataLayer(3))
	require.Equal(t, "PostgreSQL (moderate data)", dataLayer(15))
	require.Equal(t, "PostgreSQL + Redis (high data volume)", dataLayer(40))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "a very l...", truncate("a very long frame name", 11))

	got := truncate("Übersichtsseite für Kunden", 8)
	require.True(t, utf8.ValidString(got))
	require.Equal(t, "Übers...", got)
}
