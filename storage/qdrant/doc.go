// Package qdrant implements storage.IndexStore on a Qdrant collection.
//
// The collection holds one point per indexed file with two named vector
// spaces: "dense" (cosine, core.DenseDimension components) and "lexical"
// (sparse, IDF-weighted by the server). Point payloads carry file_name,
// file_path, file_size and summary; file_path has a keyword index so the
// already-indexed check is an exact filtered count.
//
// # Usage
//
//	store, err := qdrant.NewStore(
//	    qdrant.WithURL("http://localhost:6334"),
//	    qdrant.WithCollection("file_data"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
package qdrant
