// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the storage abstraction layer for arborist.
//
// This package defines the interfaces that decouple storage implementations
// from the indexing pipeline and the query engine:
//
//   - IndexStore: the vector collection holding one point per indexed file
//   - SummaryRepository: the local cache of generated summaries and collection metadata
//
// # Implementations
//
//   - storage/qdrant: IndexStore backed by a Qdrant collection over gRPC
//   - storage/badger: SummaryRepository backed by an embedded BadgerDB
//   - storage/mock: in-memory IndexStore for tests
//
// # Usage
//
//	store, err := qdrant.NewStore(ctx, qdrant.WithHost("localhost"), qdrant.WithCollection("file_data"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.EnsureCollection(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemorySummaryRepository()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// # Serialization
//
// Cache values are encoded with mus-go. Timestamps keep nanosecond precision
// so cached modification times compare equal to fresh file metadata.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use.
package storage
