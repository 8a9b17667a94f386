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

import (
	"fmt"
)

// ValidateIndexPoint validates an IndexPoint before it is written to the store.
//
// Validation rules:
//   - ID and payload file path must not be empty
//   - Dense vector must have exactly DenseDimension components
//   - Sparse indices and values must have equal length with unique indices
//
// NOT validated:
//   - Summary (the fixed sentinel is a legitimate summary)
//   - Sparse vector may be empty
func ValidateIndexPoint(point *IndexPoint) error {
	if point == nil {
		return fmt.Errorf("%w: point is nil", ErrInvalidIndexPoint)
	}

	if point.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIndexPoint, ErrEmptyPointID)
	}

	if point.Payload.FilePath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIndexPoint, ErrEmptyPath)
	}

	if err := ValidateDense(point.Dense); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIndexPoint, err)
	}

	if err := ValidateSparse(point.Sparse); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIndexPoint, err)
	}

	return nil
}

// ValidateDense checks that a dense vector has the collection's fixed dimension.
func ValidateDense(vector []float32) error {
	if len(vector) != DenseDimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), DenseDimension)
	}
	return nil
}

// ValidateSparse checks the shape of a sparse vector.
func ValidateSparse(vector SparseVector) error {
	if len(vector.Indices) != len(vector.Values) {
		return fmt.Errorf("%w: %d indices, %d values", ErrMalformedSparseVector, len(vector.Indices), len(vector.Values))
	}
	seen := make(map[uint32]struct{}, len(vector.Indices))
	for _, idx := range vector.Indices {
		if _, dup := seen[idx]; dup {
			return fmt.Errorf("%w: duplicate index %d", ErrMalformedSparseVector, idx)
		}
		seen[idx] = struct{}{}
	}
	return nil
}

// ValidateCategory validates that a FileCategory has a valid value.
func ValidateCategory(category FileCategory) error {
	if category < CategoryDocument || category > CategoryOther {
		return fmt.Errorf("%w: value %d", ErrInvalidCategory, category)
	}
	return nil
}
