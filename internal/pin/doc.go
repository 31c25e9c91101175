// Package pin implements the parental PIN prompt and the adult-content
// gate.
//
// A Session is one open prompt. Digits accumulate up to four; the owner
// calls Submit once the buffer is full (the controller does so after a
// short delay so the fourth dot is visible). Setup asks twice and reports
// Mismatch when the entries differ; Verify and Disable compare against the
// stored PIN. Wrong entries are outcomes with inline error text, never
// errors.
//
// A Gate matches category names against AdultKeywords and tracks which
// categories have been unlocked during this run.
package pin
