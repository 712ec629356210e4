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


package badger

import "fmt"

// Key prefixes for different data types
const (
	collectionPrefix = "coll"
	pointPrefix      = "pt"
)

// makeCollectionKey generates the key holding a collection's config.
func makeCollectionKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionPrefix, name))
}

// makePointPrefix generates the prefix shared by every point of a collection.
// Format: prefix:collection:
func makePointPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", pointPrefix, collection))
}

// makePointKey generates a key for a point by collection and ID.
// Format: prefix:collection:id
func makePointKey(collection, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", pointPrefix, collection, id))
}
