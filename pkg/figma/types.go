package figma

// Version is the figma-report release version reported by the CLI and the
// health endpoint.
const Version = "0.3.0"

// FileResponse represents the complete response from the Figma file API endpoint.
// It contains the file metadata, the document tree, the published components map,
// published styles, and schema version information.
//
// Document is a pointer so that a JSON null (or absent) document is
// distinguishable from a present-but-empty one; the extractor relies on this
// to reject malformed payloads instead of treating them as empty designs.
type FileResponse struct {
	Name          string               `json:"name"`
	LastModified  string               `json:"lastModified"`
	ThumbnailURL  string               `json:"thumbnailUrl"`
	Version       string               `json:"version"`
	Document      *Node                `json:"document"`
	Components    map[string]Component `json:"components"`
	Styles        map[string]Style     `json:"styles"`
	SchemaVersion int                  `json:"schemaVersion"`
}

// Component represents a Figma component definition with its metadata.
// Components are reusable design elements that can be instantiated throughout
// the file. The map key in FileResponse.Components is the component node ID.
type Component struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Remote      bool   `json:"remote"`
}

// Style represents a published Figma style with its basic properties.
// Styles can be colors (FILL), text styles (TEXT), effects (EFFECT), or layout grids (GRID).
type Style struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	StyleType string `json:"styleType"`
}

// Node represents a single element in the Figma document tree hierarchy.
// Nodes can be canvases, frames, groups, text, shapes, or other Figma elements,
// each with their own properties such as text content, bounding boxes, and
// children nodes. Visible is a pointer because the Figma API omits the field
// when the node is visible.
type Node struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Type                string     `json:"type"`
	Children            []Node     `json:"children,omitempty"`
	Characters          string     `json:"characters,omitempty"`
	Description         string     `json:"description,omitempty"`
	Style               *TypeStyle `json:"style,omitempty"`
	AbsoluteBoundingBox *Rectangle `json:"absoluteBoundingBox,omitempty"`
	Visible             *bool      `json:"visible,omitempty"`
}

// IsVisible reports the node's visibility, defaulting to true when the
// payload omits the field.
func (n *Node) IsVisible() bool {
	return n.Visible == nil || *n.Visible
}

// TypeStyle represents text styling properties from Figma.
// Zero values mean the property was absent from the payload.
type TypeStyle struct {
	FontFamily string  `json:"fontFamily"`
	FontWeight float64 `json:"fontWeight"`
	FontSize   float64 `json:"fontSize"`
}

// Rectangle represents a bounding box with position (X, Y) and dimensions (Width, Height).
// Used to define the absolute position and size of nodes in the Figma canvas.
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
