// Package sources holds the network collaborators of the transcript pipeline:
// the YouTube caption service, the caption-track downloader and the Gemini
// transcription and image-generation client.
//
// YouTube implementation is split across two files by responsibility:
//
//	youtube_innertube.go:  Innertube API types, constants, and low-level HTTP primitives
//	youtube_transcript.go: transcript fetching (page scrape, engagement panel, ANDROID player)
package sources
