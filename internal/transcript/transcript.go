// Package transcript models diarized transcripts and their text rendering.
//
// A transcript is an ordered list of timestamped, speaker-labeled segments.
// Consecutive segments by the same speaker merge into utterances for prompt
// rendering. Transcripts are stored as JSON inside the corpus and treated as
// immutable artifacts; regeneration replaces the whole document.
package transcript

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Segment is a single diarized span within a transcript. Timestamps are
// seconds relative to the episode start.
type Segment struct {
	ID      int     `json:"id"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// Utterance is a continuous run of segments by one speaker.
type Utterance struct {
	Speaker string
	Start   float64
	End     float64
	Text    string
}

// Transcript is a full diarized transcript.
type Transcript struct {
	Segments []Segment `json:"segments"`
	// ActualStart/ActualEnd record the audio range that was actually
	// transcribed (segment bounds plus buffer), for provenance.
	ActualStart float64 `json:"actual_start_s"`
	ActualEnd   float64 `json:"actual_end_s"`
}

// Empty reports whether the transcript carries no segments.
func (t Transcript) Empty() bool {
	return len(t.Segments) == 0
}

// Utterances groups consecutive same-speaker segments into utterances.
func (t Transcript) Utterances() []Utterance {
	if len(t.Segments) == 0 {
		return nil
	}

	var utterances []Utterance
	current := Utterance{Speaker: t.Segments[0].Speaker, Start: t.Segments[0].Start}
	var parts []string

	flush := func(end float64) {
		current.End = end
		current.Text = strings.Join(parts, " ")
		utterances = append(utterances, current)
	}

	for i, segment := range t.Segments {
		if i > 0 && segment.Speaker != current.Speaker {
			flush(t.Segments[i-1].End)
			current = Utterance{Speaker: segment.Speaker, Start: segment.Start}
			parts = parts[:0]
		}
		parts = append(parts, strings.TrimSpace(segment.Text))
	}
	flush(t.Segments[len(t.Segments)-1].End)

	return utterances
}

// Slice returns the sub-transcript whose segments overlap [start, end].
func (t Transcript) Slice(start, end float64) Transcript {
	out := Transcript{ActualStart: start, ActualEnd: end}
	for _, segment := range t.Segments {
		if segment.End < start || segment.Start > end {
			continue
		}
		out.Segments = append(out.Segments, segment)
	}
	return out
}

// Render produces the human-readable form used in model prompts.
func (t Transcript) Render(includeTimestamps bool) string {
	utterances := t.Utterances()
	lines := make([]string, 0, len(utterances))
	for _, u := range utterances {
		if includeTimestamps {
			lines = append(lines, fmt.Sprintf("%s [%.1fs - %.1fs]: %s", u.Speaker, u.Start, u.End, u.Text))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s", u.Speaker, u.Text))
		}
	}
	return strings.Join(lines, "\n")
}

// String renders with timestamps.
func (t Transcript) String() string {
	return t.Render(true)
}

// Marshal encodes the transcript for storage.
func Marshal(t Transcript) (string, error) {
	encoded, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("transcript: encode: %w", err)
	}
	return string(encoded), nil
}

// Unmarshal decodes a stored transcript document.
func Unmarshal(data string) (Transcript, error) {
	var t Transcript
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return Transcript{}, fmt.Errorf("transcript: decode: %w", err)
	}
	return t, nil
}
