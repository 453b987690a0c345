// Package report renders run history from the history database.
//
// Writers:
//   - SimpleWriter: aligned text for the terminal
//   - MarkdownWriter: GitHub Flavored Markdown tables
//   - JSONWriter: JSON for scripting
//
// All writers implement Writer, so the history command picks one by flag
// and otherwise treats them the same.
package report
