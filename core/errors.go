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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidIndexPoint indicates an IndexPoint failed validation.
	ErrInvalidIndexPoint = errors.New("invalid index point")

	// ErrDimensionMismatch indicates a dense vector has the wrong number of components.
	ErrDimensionMismatch = errors.New("dense vector dimension mismatch")

	// ErrEmptyPath indicates the file path is empty.
	ErrEmptyPath = errors.New("file path cannot be empty")

	// ErrEmptyPointID indicates the point ID is empty.
	ErrEmptyPointID = errors.New("point id cannot be empty")

	// ErrMalformedSparseVector indicates sparse indices and values disagree or repeat.
	ErrMalformedSparseVector = errors.New("malformed sparse vector")

	// ErrInvalidCategory indicates a FileCategory outside the enumeration.
	ErrInvalidCategory = errors.New("invalid file category")
)
