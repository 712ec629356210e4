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


package lifecycle

import "errors"

var (
	// ErrControllerRequired indicates a Manager was built without a controller.
	ErrControllerRequired = errors.New("process controller is required")

	// ErrNameInUse indicates a launch collided with an existing instance name.
	ErrNameInUse = errors.New("instance name is already in use")

	// ErrInstanceNotFound indicates no instance with the given name exists.
	ErrInstanceNotFound = errors.New("instance not found")
)
