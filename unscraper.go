// Package unscraper turns an arbitrary, possibly paginated web page into a
// table of structured records matching a user supplied list of fields. A
// headless browser renders the page and a language model extracts records
// from the rendered text.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, groq/).
package unscraper
