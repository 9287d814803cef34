// Package citations turns opinion markup into the corpus citation graph.
// Markers are span elements carrying data-cite-docket attributes; the
// validator materializes an edge only when the cited case strictly precedes
// the citing case, which keeps the graph acyclic by construction. The
// package also owns the markup allow-list sanitizer applied to opinion HTML
// before it is persisted.
package citations
