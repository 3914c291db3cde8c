// Package normalisers provides TextExtractor implementations for the
// paper formats paperpilot can index. Each extractor knows how to turn one
// family of files into plain text.
//
// Extractors are combined with NewChain at startup.
package normalisers
