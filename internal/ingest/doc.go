// Package ingest pulls the podcast RSS feed into the corpus and fetches
// episode audio for transcription. Both operations are idempotent: feed
// ingestion upserts by GUID and audio fetch skips files already on disk.
package ingest
