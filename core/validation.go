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

import "fmt"

// ValidateVector checks a vector against the collection's dimension.
// A dimension of 0 disables the check.
func ValidateVector(vector []float32, dimensions int) error {
	if dimensions > 0 && len(vector) != dimensions {
		return fmt.Errorf("%w: expected %d, received %d", ErrDimensionMismatch, dimensions, len(vector))
	}
	return nil
}

// ValidatePoint validates an IndexPoint before it is written.
//
// Validation rules:
//   - ID must not be empty
//   - Vector length must equal dimensions (when dimensions > 0)
//   - Payload must carry a non-empty file_path
func ValidatePoint(point *IndexPoint, dimensions int) error {
	if point == nil {
		return fmt.Errorf("%w: point is nil", ErrInvalidPoint)
	}
	if point.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPoint, ErrEmptyPointID)
	}
	if err := ValidateVector(point.Vector, dimensions); err != nil {
		return err
	}
	if PayloadString(point.Payload, PayloadFilePath) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPoint, ErrMissingFilePath)
	}
	return nil
}
