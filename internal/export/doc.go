// Package export projects the decided corpus into static JSON for frontend
// consumption: an index of opinion summaries and one self-contained document
// per docket with resolved citation lists. Output is deterministic for a
// given corpus state, so repeated exports are byte-identical.
package export
