// Package html provides a Normaliser implementation for HTML documents.
// It extracts readable text with the golang.org/x/net/html tokenizer,
// dropping scripts, styles and the document head.
package html
