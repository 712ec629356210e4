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


package corpus

import "errors"

var (
	// ErrUnsupportedDocument is returned for files no parsing strategy handles.
	ErrUnsupportedDocument = errors.New("unsupported document type")

	// ErrOutsideVault is returned when a path does not lie under the vault root.
	ErrOutsideVault = errors.New("path is outside the vault")

	// ErrInvalidEncoding is returned for markdown files that are not UTF-8.
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
)
