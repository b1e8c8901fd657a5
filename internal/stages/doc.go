// Package stages holds the concrete pipeline stage handlers: audio
// extraction, audio upload, transcription, and caption rendering. Each
// handler mutates the in-flight run; the workflow manager persists the job
// record between stages.
package stages
