// Package opinions runs the opinion drafting agent. The agent is given one
// case and its transcript excerpt, researches precedent through tools backed
// by the corpus store, and submits a structured opinion. The precedent view
// is limited to cases decided strictly earlier in the chronological order,
// so reruns over a grown corpus never let a case see its own future.
package opinions
