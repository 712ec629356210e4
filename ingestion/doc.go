// Package ingestion provides pipeline orchestration for indexing a vault.
//
// The Pipeline drives one incremental run: it checks preconditions, ensures
// the target collection, collects files and, for each one, parses, chunks,
// reconciles against what is already stored, embeds and upserts.
//
// Reconciliation is keyed by the document's vault-relative path and its
// modification date. Unchanged documents are skipped; changed ones have their
// previous points deleted before the new points are written.
//
// Failures of a single chunk or document are recorded in the run and
// processing continues. Precondition failures, a vector dimension mismatch
// and context cancellation abort the run.
package ingestion
