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


// Package badger implements store.Store on an embedded BadgerDB.
//
// Keys:
//
//	coll:<name>          collection config (dimensions, distance)
//	pt:<name>:<id>       point record
//
// Point records are encoded with mus-go: the id, the vector length and raw
// float32 components, then the payload as JSON. Scrolls walk the collection's
// point prefix in key order and use the next point id as the cursor.
package badger
