// Package extract turns a raw Figma file payload into a flat, normalized
// summary of the design: pages, layers, text nodes, components, and a
// content fingerprint. The extraction is a pure transformation — it performs
// no I/O, never mutates its input, and is deterministic for identical input.
package extract

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"

	"github.com/hellenic-development/figma-report/pkg/figma"
)

// ErrMalformedInput indicates that the fetched document does not have the
// minimal expected shape. Retrying cannot help; the payload itself is bad.
var ErrMalformedInput = errors.New("malformed Figma document")

// DefaultMaxDepth bounds the tree traversal. Figma documents are rarely more
// than a few dozen levels deep; a pathological payload that exceeds the bound
// is rejected as malformed rather than risking unbounded memory growth.
const DefaultMaxDepth = 512

// FingerprintLength is the number of hex characters kept from the content
// hash. It is used for filename uniqueness and human-readable change
// detection, not as a security primitive.
const FingerprintLength = 10

// layerTypes is the fixed vocabulary of structurally significant node types
// that produce a LayerDescriptor.
var layerTypes = map[string]bool{
	"FRAME":     true,
	"COMPONENT": true,
	"INSTANCE":  true,
	"GROUP":     true,
	"RECTANGLE": true,
	"VECTOR":    true,
}

// Page corresponds 1:1 to a top-level canvas child of the document root.
type Page struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LayerDescriptor is the normalized record for a structurally significant
// node (frame, component, instance, group, primitive shape) encountered
// during traversal. ChildrenCount reflects only immediate children at
// extraction time; it is a snapshot, not a live count.
type LayerDescriptor struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Name          string  `json:"name"`
	Page          string  `json:"page"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	ChildrenCount int     `json:"children_count"`
	Visible       bool    `json:"visible"`
}

// TextStyle carries the font metadata passed through from a TEXT node.
// Zero values mean the property was absent.
type TextStyle struct {
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontWeight float64 `json:"fontWeight,omitempty"`
}

// TextDescriptor is the normalized record for a TEXT node. Nodes with empty
// or whitespace-only characters are still recorded; filtering text is a
// presentation decision that belongs to the renderer.
type TextDescriptor struct {
	ID         string    `json:"id"`
	Page       string    `json:"page"`
	Name       string    `json:"name"`
	Characters string    `json:"characters"`
	Style      TextStyle `json:"style"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
}

// ComponentDescriptor describes one entry of the file's published components
// map. Discovery is document-scoped: tree nodes of type COMPONENT/INSTANCE
// appear as LayerDescriptors but never produce a ComponentDescriptor, which
// would double count instances.
type ComponentDescriptor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Remote      bool   `json:"remote"`
}

// ParsedStructure is the aggregate output of an extraction: file metadata, a
// content fingerprint, and flat ordered sequences of pages, layers, text
// nodes, and components. It is immutable after construction and never
// persisted; every request re-fetches and re-parses by design.
type ParsedStructure struct {
	FileName     string                `json:"file_name"`
	LastModified string                `json:"last_modified"`
	Fingerprint  string                `json:"fingerprint"`
	Pages        []Page                `json:"pages"`
	Layers       []LayerDescriptor     `json:"layers"`
	TextNodes    []TextDescriptor      `json:"text_nodes"`
	Components   []ComponentDescriptor `json:"components"`
	StyleIDs     []string              `json:"style_ids,omitempty"`
}

// Frames returns the layers of type FRAME, in document order.
func (s *ParsedStructure) Frames() []LayerDescriptor {
	var frames []LayerDescriptor
	for _, l := range s.Layers {
		if l.Type == "FRAME" {
			frames = append(frames, l)
		}
	}
	return frames
}

// FramesOn returns the FRAME layers belonging to the named page, in document order.
func (s *ParsedStructure) FramesOn(pageName string) []LayerDescriptor {
	var frames []LayerDescriptor
	for _, l := range s.Layers {
		if l.Type == "FRAME" && l.Page == pageName {
			frames = append(frames, l)
		}
	}
	return frames
}

// Option configures an extraction.
type Option func(*options)

type options struct {
	maxDepth int
	logf     func(format string, args ...any)
}

// WithMaxDepth overrides the traversal depth bound.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithLogf installs a logging callback for non-fatal observations, such as
// skipped non-canvas children of the document root. A nil callback is silent.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(o *options) { o.logf = logf }
}

// Extract produces a ParsedStructure from a Figma file payload.
//
// One Page is emitted per direct CANVAS child of the document root; other
// direct children are skipped. Each page's subtree is walked in pre-order,
// left to right, emitting a LayerDescriptor for every frame, component,
// instance, group, rectangle and vector, and a TextDescriptor for every TEXT
// node — including invisible nodes and blank text, which are recorded, not
// filtered. Components come exclusively from the file's top-level components
// map. A nil document, or a tree deeper than the configured bound, fails
// with ErrMalformedInput.
func Extract(file *figma.FileResponse, opts ...Option) (*ParsedStructure, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: nil file payload", ErrMalformedInput)
	}
	if file.Document == nil {
		return nil, fmt.Errorf("%w: document is missing or not an object", ErrMalformedInput)
	}

	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}

	s := &ParsedStructure{
		FileName:     file.Name,
		LastModified: file.LastModified,
		Pages:        []Page{},
		Layers:       []LayerDescriptor{},
		TextNodes:    []TextDescriptor{},
		Components:   []ComponentDescriptor{},
	}

	for i := range file.Document.Children {
		canvas := &file.Document.Children[i]
		if canvas.Type != "CANVAS" {
			if o.logf != nil {
				o.logf("skipping non-canvas child %s of type %s", canvas.ID, canvas.Type)
			}
			continue
		}

		pageName := canvas.Name
		if pageName == "" {
			pageName = "Page"
		}
		s.Pages = append(s.Pages, Page{ID: canvas.ID, Name: pageName})

		if err := walkPage(canvas, pageName, s, o.maxDepth); err != nil {
			return nil, err
		}
	}

	// Components are document-scoped: exactly one descriptor per entry of
	// the file's components map, ordered by ID for determinism.
	ids := make([]string, 0, len(file.Components))
	for id := range file.Components {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		meta := file.Components[id]
		s.Components = append(s.Components, ComponentDescriptor{
			ID:          id,
			Name:        meta.Name,
			Description: meta.Description,
			Remote:      meta.Remote,
		})
	}

	// Pass FILL style ids through for downstream palette extraction.
	for id, style := range file.Styles {
		if style.StyleType == "FILL" {
			s.StyleIDs = append(s.StyleIDs, id)
		}
	}
	sort.Strings(s.StyleIDs)

	s.Fingerprint = Fingerprint(s.FileName, s.LastModified, len(s.Layers), len(s.Components))

	return s, nil
}

// frame is one entry of the explicit traversal stack.
type frame struct {
	node  *figma.Node
	depth int
}

// walkPage visits the canvas subtree in pre-order, left to right, using an
// explicit stack so pathological nesting cannot overflow the goroutine stack.
func walkPage(canvas *figma.Node, pageName string, s *ParsedStructure, maxDepth int) error {
	stack := make([]frame, 0, len(canvas.Children))
	for i := len(canvas.Children) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: &canvas.Children[i], depth: 1})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := top.node
		if top.depth > maxDepth {
			return fmt.Errorf("%w: node %s (%s) exceeds maximum nesting depth %d", ErrMalformedInput, node.ID, node.Type, maxDepth)
		}

		switch {
		case layerTypes[node.Type]:
			name := node.Name
			if name == "" && node.Type == "FRAME" {
				name = "Frame"
			}
			d := LayerDescriptor{
				ID:            node.ID,
				Type:          node.Type,
				Name:          name,
				Page:          pageName,
				ChildrenCount: len(node.Children),
				Visible:       node.IsVisible(),
			}
			if box := node.AbsoluteBoundingBox; box != nil {
				d.X, d.Y, d.Width, d.Height = box.X, box.Y, box.Width, box.Height
			}
			s.Layers = append(s.Layers, d)

		case node.Type == "TEXT":
			d := TextDescriptor{
				ID:         node.ID,
				Page:       pageName,
				Name:       node.Name,
				Characters: node.Characters,
			}
			if style := node.Style; style != nil {
				d.Style = TextStyle{
					FontFamily: style.FontFamily,
					FontSize:   style.FontSize,
					FontWeight: style.FontWeight,
				}
			}
			if box := node.AbsoluteBoundingBox; box != nil {
				d.X, d.Y, d.Width, d.Height = box.X, box.Y, box.Width, box.Height
			}
			s.TextNodes = append(s.TextNodes, d)
		}

		// Push children in reverse so the leftmost child is visited next,
		// preserving document order.
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: &node.Children[i], depth: top.depth + 1})
		}
	}

	return nil
}

// Fingerprint computes the deterministic content hash used for unique output
// filenames and change detection. It is a pure function of the stated fields.
func Fingerprint(fileName, lastModified string, layers, components int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%d", fileName, lastModified, layers, components)))
	return fmt.Sprintf("%x", sum)[:FingerprintLength]
}
