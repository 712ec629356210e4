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


// Package watch re-runs incremental ingestion when vault documents change.
//
// The Watcher subscribes to filesystem events under the notes and meetings
// roots with fsnotify. Events for indexable files are coalesced: ingestion
// runs once the vault has been quiet for the debounce period. Because every
// run is incremental, a burst of edits costs one pass over unchanged files
// plus the work for the files that actually changed.
package watch
