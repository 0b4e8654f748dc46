// Package hocr parses hOCR, the HTML-based format Tesseract uses to report
// recognised text together with its layout and word confidences.
//
// Parsing normalises the hierarchy to
// Document → Pages → Areas → Paragraphs → Lines → Words: elements that skip a
// level (a line directly under a page, say) get an implicit parent, so text
// extraction only has to deal with one shape.
//
// Main Functions:
//
// - Parse: Parses hOCR data into a Document
// - ParseTitle: Splits an hOCR title attribute into its properties
// - Document.Text / Page.Text: Reading-order plain text
// - Document.MeanConfidence: Average word confidence
package hocr
