// Package corpus manages the SQLite-backed case corpus: podcast episodes,
// located court segments, transcripts, extracted cases, drafted opinions,
// citation edges, and the provenance trail behind every derived record.
//
// The store enforces the chronological ordering that the rest of the pipeline
// depends on. Cases are totally ordered by ChronoKey (episode publication
// date, case ordinal within the episode, then case id) and every precedence
// query goes through that key, so an opinion can never observe a case decided
// at or after its own position in the timeline.
package corpus
