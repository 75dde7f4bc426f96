package extract

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellenic-development/figma-report/pkg/figma"
)

func sampleFile() *figma.FileResponse {
	hidden := false
	return &figma.FileResponse{
		Name:         "Shop App",
		LastModified: "2025-06-01T10:00:00Z",
		Document: &figma.Node{
			ID:   "0:0",
			Name: "Document",
			Type: "DOCUMENT",
			Children: []figma.Node{
				{
					ID:   "0:1",
					Name: "Home",
					Type: "CANVAS",
					Children: []figma.Node{
						{
							ID:                  "1:1",
							Name:                "Login",
							Type:                "FRAME",
							AbsoluteBoundingBox: &figma.Rectangle{X: 0, Y: 0, Width: 375, Height: 812},
							Children: []figma.Node{
								{
									ID:         "2:1",
									Name:       "Welcome",
									Type:       "TEXT",
									Characters: "Sign in",
									Style:      &figma.TypeStyle{FontFamily: "Inter", FontSize: 16, FontWeight: 600},
								},
								{
									ID:      "2:2",
									Name:    "Divider",
									Type:    "RECTANGLE",
									Visible: &hidden,
								},
							},
						},
					},
				},
				{
					ID:   "0:2",
					Name: "Checkout",
					Type: "CANVAS",
					Children: []figma.Node{
						{
							ID:   "3:1",
							Name: "Cart Group",
							Type: "GROUP",
							Children: []figma.Node{
								{ID: "4:1", Name: "Card", Type: "INSTANCE"},
								{ID: "4:2", Name: "Arrow", Type: "VECTOR"},
							},
						},
					},
				},
			},
		},
		Components: map[string]figma.Component{
			"9:1": {Key: "k1", Name: "Button/Primary", Description: "CTA button"},
			"9:2": {Key: "k2", Name: "Card/Product", Remote: true},
		},
		Styles: map[string]figma.Style{
			"s:1": {Name: "Brand/Blue", StyleType: "FILL"},
			"s:2": {Name: "Body", StyleType: "TEXT"},
		},
	}
}

func TestExtractPagesOrderPreserving(t *testing.T) {
	s, err := Extract(sampleFile())
	require.NoError(t, err)

	require.Len(t, s.Pages, 2)
	assert.Equal(t, "Home", s.Pages[0].Name)
	assert.Equal(t, "Checkout", s.Pages[1].Name)
	assert.Equal(t, "0:1", s.Pages[0].ID)
}

func TestExtractLayersAllDepths(t *testing.T) {
	s, err := Extract(sampleFile())
	require.NoError(t, err)

	// FRAME Login, RECTANGLE Divider, GROUP Cart Group, INSTANCE Card, VECTOR Arrow.
	require.Len(t, s.Layers, 5)

	// Pre-order, left to right, across pages.
	var names []string
	for _, l := range s.Layers {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"Login", "Divider", "Cart Group", "Card", "Arrow"}, names)
}

func TestExtractScenario(t *testing.T) {
	s, err := Extract(sampleFile())
	require.NoError(t, err)

	login := s.Layers[0]
	assert.Equal(t, "Login", login.Name)
	assert.Equal(t, "FRAME", login.Type)
	assert.Equal(t, "Home", login.Page)
	assert.Equal(t, 375.0, login.Width)
	assert.Equal(t, 812.0, login.Height)
	assert.Equal(t, 2, login.ChildrenCount)
	assert.True(t, login.Visible)

	require.Len(t, s.TextNodes, 1)
	text := s.TextNodes[0]
	assert.Equal(t, "Welcome", text.Name)
	assert.Equal(t, "Home", text.Page)
	assert.Equal(t, "Sign in", text.Characters)
	assert.Equal(t, "Inter", text.Style.FontFamily)
	assert.Equal(t, 16.0, text.Style.FontSize)
}

func TestExtractInvisibleNodesRecorded(t *testing.T) {
	s, err := Extract(sampleFile())
	require.NoError(t, err)

	divider := s.Layers[1]
	assert.Equal(t, "Divider", divider.Name)
	assert.False(t, divider.Visible, "invisible nodes are recorded, not filtered")
}

func TestExtractComponentsDocumentScoped(t *testing.T) {
	file := sampleFile()
	s, err := Extract(file)
	require.NoError(t, err)

	// Exactly one descriptor per components-map entry, even though the tree
	// contains an INSTANCE node.
	require.Len(t, s.Components, len(file.Components))
	assert.Equal(t, "9:1", s.Components[0].ID)
	assert.Equal(t, "Button/Primary", s.Components[0].Name)
	assert.False(t, s.Components[0].Remote)
	assert.True(t, s.Components[1].Remote)
}

func TestExtractBlankTextRecorded(t *testing.T) {
	file := &figma.FileResponse{
		Name: "Blanks",
		Document: &figma.Node{
			Type: "DOCUMENT",
			Children: []figma.Node{
				{
					ID:   "0:1",
					Name: "P",
					Type: "CANVAS",
					Children: []figma.Node{
						{ID: "1:1", Name: "Empty Label", Type: "TEXT", Characters: ""},
						{ID: "1:2", Name: "Spaces", Type: "TEXT", Characters: "   "},
					},
				},
			},
		},
	}

	s, err := Extract(file)
	require.NoError(t, err)
	require.Len(t, s.TextNodes, 2)
	assert.Equal(t, "", s.TextNodes[0].Characters)
	assert.Equal(t, "   ", s.TextNodes[1].Characters)
}

func TestExtractEmptyFileIsValid(t *testing.T) {
	file := &figma.FileResponse{
		Name:       "Empty",
		Document:   &figma.Node{Children: []figma.Node{}},
		Components: map[string]figma.Component{},
	}

	s, err := Extract(file)
	require.NoError(t, err)
	assert.Empty(t, s.Pages)
	assert.Empty(t, s.Layers)
	assert.Empty(t, s.Components)
	assert.NotEmpty(t, s.Fingerprint)
}

func TestExtractNilDocument(t *testing.T) {
	_, err := Extract(&figma.FileResponse{Name: "Broken"})
	require.ErrorIs(t, err, ErrMalformedInput)

	_, err = Extract(nil)
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestExtractIdempotent(t *testing.T) {
	file := sampleFile()

	first, err := Extract(file)
	require.NoError(t, err)
	second, err := Extract(file)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.Fingerprint, FingerprintLength)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestExtractDoesNotMutateInput(t *testing.T) {
	file := sampleFile()
	before, err := json.Marshal(file)
	require.NoError(t, err)

	_, err = Extract(file)
	require.NoError(t, err)

	after, err := json.Marshal(file)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestExtractDeepNestingReachable(t *testing.T) {
	// TEXT node buried under 50 nested groups must still be found.
	leaf := figma.Node{ID: "t:1", Name: "Deep", Type: "TEXT", Characters: "found"}
	node := leaf
	for i := 0; i < 50; i++ {
		node = figma.Node{ID: fmt.Sprintf("g:%d", i), Name: "Group", Type: "GROUP", Children: []figma.Node{node}}
	}
	file := &figma.FileResponse{
		Name: "Deep",
		Document: &figma.Node{Children: []figma.Node{
			{ID: "0:1", Name: "P", Type: "CANVAS", Children: []figma.Node{node}},
		}},
	}

	s, err := Extract(file)
	require.NoError(t, err)
	require.Len(t, s.TextNodes, 1)
	assert.Equal(t, "found", s.TextNodes[0].Characters)
	assert.Len(t, s.Layers, 50)
}

func TestExtractMaxDepthExceeded(t *testing.T) {
	node := figma.Node{ID: "leaf", Type: "TEXT", Characters: "x"}
	for i := 0; i < 10; i++ {
		node = figma.Node{ID: fmt.Sprintf("g:%d", i), Type: "GROUP", Children: []figma.Node{node}}
	}
	file := &figma.FileResponse{
		Name: "TooDeep",
		Document: &figma.Node{Children: []figma.Node{
			{ID: "0:1", Type: "CANVAS", Children: []figma.Node{node}},
		}},
	}

	_, err := Extract(file, WithMaxDepth(5))
	require.ErrorIs(t, err, ErrMalformedInput)
	assert.Contains(t, err.Error(), "depth")
}

func TestExtractSkipsNonCanvasChildren(t *testing.T) {
	var logged []string
	file := &figma.FileResponse{
		Name: "Odd",
		Document: &figma.Node{Children: []figma.Node{
			{ID: "0:1", Name: "Real", Type: "CANVAS"},
			{ID: "0:2", Name: "Stray", Type: "FRAME"},
		}},
	}

	s, err := Extract(file, WithLogf(func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}))
	require.NoError(t, err)
	require.Len(t, s.Pages, 1)
	assert.Empty(t, s.Layers, "stray top-level frame is skipped, not walked")
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "0:2")
}

func TestExtractPageNameDefault(t *testing.T) {
	file := &figma.FileResponse{
		Name: "Unnamed",
		Document: &figma.Node{Children: []figma.Node{
			{ID: "0:1", Name: "", Type: "CANVAS"},
		}},
	}

	s, err := Extract(file)
	require.NoError(t, err)
	require.Len(t, s.Pages, 1)
	assert.Equal(t, "Page", s.Pages[0].Name)
}

func TestExtractStyleIDPassthrough(t *testing.T) {
	s, err := Extract(sampleFile())
	require.NoError(t, err)

	assert.Equal(t, []string{"s:1"}, s.StyleIDs, "only FILL styles pass through")
}

func TestFramesOn(t *testing.T) {
	s, err := Extract(sampleFile())
	require.NoError(t, err)

	home := s.FramesOn("Home")
	require.Len(t, home, 1)
	assert.Equal(t, "Login", home[0].Name)
	assert.Empty(t, s.FramesOn("Checkout"))
	assert.Len(t, s.Frames(), 1)
}
