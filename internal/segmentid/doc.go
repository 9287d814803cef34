// Package segmentid locates the recurring court segment within an episode by
// asking the model to read the episode description's chapter timestamps.
package segmentid
