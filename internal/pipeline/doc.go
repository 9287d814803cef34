// Package pipeline is the stage executor: it drives the episode-scoped
// stages (ingest, fetch-audio, locate-segment, transcribe, extract-cases),
// then the case-scoped stages in strict chronological order (draft-opinion,
// extract-citations), then export. Stages skip units whose output already
// exists, write provenance for what they create, and isolate unit failures,
// so a re-run against an unchanged corpus converges without writes. A full
// run holds an exclusive file lock to keep a single sequential writer.
package pipeline
