// Package lexical implements ai.SparseEmbedder without a model.
//
// Text is tokenized into lower-cased words, stop words are removed, and each
// remaining term is hashed to a sparse index weighted by sublinear term
// frequency. The vector store's IDF modifier turns these weights into
// BM25-style scores across the whole collection.
package lexical
