// Package anthropic provides a minimal client for the Anthropic Messages
// API covering the calls the pipeline makes: plain text completion for
// segment location and case extraction, and the tool-use loop that drafts
// opinions. Transient failures retry with exponential backoff and Retry-After
// is honored on rate limits.
package anthropic
