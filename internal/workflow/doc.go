// Package workflow orchestrates the captioning pipeline. A bounded worker
// pool claims queued jobs from the registry and walks each one through audio
// extraction, upload, transcription, and rendering, persisting every status
// transition along the way.
package workflow
