// Package transcribe turns a located court segment into a diarized
// transcript: the segment range plus a buffer is sent to the transcription
// service, and the resulting speaker labels are mapped to host names with a
// model call. Transcripts replace any prior transcript for the segment.
package transcribe
