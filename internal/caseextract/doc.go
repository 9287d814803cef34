// Package caseextract turns a court segment transcript into structured case
// drafts via a tool-forced model call. Docket numbers are assigned here as a
// deterministic function of publication year, episode ordinal within the
// year, and case ordinal within the episode, so re-extraction over an
// unchanged transcript yields identical dockets.
package caseextract
