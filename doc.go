// Package figmareport turns a Figma design file into a developer-ready PDF
// report: pages, frames, text content, components, architecture
// recommendations and generated diagrams.
//
// The pipeline fetches the file through the Figma REST API, walks the node
// tree into a flat structure, and renders the report with gofpdf. When the
// API is unreachable, an optional LLM fallback synthesizes a plausible
// structure from the URL alone.
//
// Use Run for one-shot generation, or pkg/server to expose the pipeline over
// HTTP.
package figmareport
