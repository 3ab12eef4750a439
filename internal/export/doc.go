// Package export renders decks and lesson plans into downloadable files: slide
// snapshots drawn with gg, PDFs built with fpdf, and an HTML-wrapped document
// that Word opens as a .doc file.
package export
