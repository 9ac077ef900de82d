/*
Package ports defines the boundaries between the Colloquio core and its
collaborators (driven adapters).

The turn sequencer depends only on these interfaces; concrete implementations
live under pkg/adapters (persistence, transcripts) and internal packages
(profile retriever, CLI input, evaluation simulator).
*/
package ports
