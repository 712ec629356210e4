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


// Package lifecycle manages the vector store process bound to a vault.
//
// Each vault gets one store instance, named by core.IdentityFor and backed by
// <vault>/.obsistant/qdrant_storage. The Manager starts it (resuming a
// stopped instance when one exists), stops it and reports its status. All
// runtime calls go through a ProcessController; DockerController drives the
// docker CLI.
//
// Every failure is returned as a *core.StoreControlError whose Kind is one of
// core.ErrRuntimeUnavailable, core.ErrPortConflict, core.ErrControlTimeout or
// core.ErrControlFailed.
package lifecycle
