// Package loaders wires the per-format loader/chunker variants into a
// registry keyed by document type.
//
// Each subpackage handles one source format:
//
//   - markdown: markdown docs split on second-level headings
//   - csvdata: CSV exports, one chunk per row
//   - chat: chat transcript exports, one chunk per message
//   - email: staged email exports, one chunk per message body
//   - pdf: PDF files grouped into fixed-size page batches
//
// Variants are selected by an explicit doc type tag, never by content
// sniffing. All variants are stateless.
package loaders
