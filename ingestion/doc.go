// Package ingestion turns the raw filing tree into the processed corpus snapshot.
//
// The Pipeline walks raw/<TICKER>/<FILING_TYPE>/ directories, segments each
// filing on a worker pool and writes one <TICKER>_processed.json per ticker
// plus summary.json. Per-file failures are logged and never fail the run.
package ingestion
