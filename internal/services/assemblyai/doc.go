// Package assemblyai wraps the AssemblyAI transcription API: local audio
// upload, diarized job submission over a millisecond range of the file, and
// polling to completion.
package assemblyai
