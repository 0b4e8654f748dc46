// Package pdfsplit classifies the pages of a PDF document as machine-readable
// text pages or image-only scanned pages, and splits the document along that
// classification.
//
// Classification looks at each page once:
//
// - A page whose extracted text, trimmed, is longer than the configured
// threshold (100 characters by default) is a text page.
// - Otherwise, under PolicyImageCheck, a page that carries an embedded raster
// image is a scanned page and any other page is unclassified.
// - Under PolicyFallback every page that is not a text page is a scanned page.
//
// Unclassified pages are always reported. Config.Unclassified decides whether
// they are dropped or folded into the text or scanned page list.
//
// Splitting copies the selected pages verbatim into a new document. A page
// list that is empty produces no file at all.
//
// Main Functions:
//
// - Open / OpenBytes: Opens a source document read-only
// - Inspect: Classifies a single page
// - Classify: Classifies every page of a document
// - Split: Writes the selected pages to a new PDF
// - SplitResult: Writes the text and scanned derivatives of a classification
package pdfsplit
