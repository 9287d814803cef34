// Package services provides cross-cutting helpers shared by service clients
// and pipeline stages: the error taxonomy used to classify failures
// (transient, validation, configuration, not-found) and context decoration
// for stage/run/episode/docket identifiers that the logging package lifts
// into structured fields.
package services
