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


// Package search answers natural-language queries against the file index.
//
// The Engine embeds the query text and asks the index store for the closest
// files. Three modes are available:
//   - Dense: cosine similarity between the query and summary embeddings
//   - Sparse: IDF-weighted term overlap on the lexical vector space
//   - Hybrid: both, fused by reciprocal rank
//
// Results are ordered best first and never exceed the configured limit.
package search
