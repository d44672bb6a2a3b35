// Package tasks orchestrates long-running playlist operations with real-time progress reporting.
//
// # Core Operations
//
//  1. [Exporter.Fetch] : Fetch one playlist with every item
//     - Reads the playlist metadata
//     - Follows "next" links until all items are loaded
//
//  2. [Exporter.BulkExport] : Export many playlists concurrently
//     - Fetches playlists sequentially, paced by a rate limiter
//     - Writes files in a bounded worker pool (json, csv, markdown, txt)
//     - Writes export_manifest.json summarizing successes and failures
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Failures
//
// A playlist that cannot be fetched or written is recorded in the result and does not stop the other exports. Errors
// keep their kind, so a failed entry can be inspected with errors.Is against the shared sentinels.
package tasks
