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
	"encoding/hex"
	"path/filepath"

	"github.com/go-crypt/x/blake2b"
)

const (
	// StateDirName is the vault-local directory holding tool state.
	StateDirName = ".obsistant"

	// StorageDirName is the store's data directory inside StateDirName.
	StorageDirName = "qdrant_storage"

	// StoreNamePrefix prefixes every store process name.
	StoreNamePrefix = "obsistant-qdrant-"
)

// StoreIdentity names the store process bound to one vault.
type StoreIdentity struct {
	Name       string
	VaultPath  string // Absolute
	StorageDir string
}

// IdentityFor derives the store identity for a vault. The name depends only
// on the vault's absolute path with symlinks resolved, so repeated runs and
// symlinked spellings of the same vault target the same instance.
func IdentityFor(vault string) (StoreIdentity, error) {
	abs, err := filepath.Abs(vault)
	if err != nil {
		return StoreIdentity{}, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return StoreIdentity{
		Name:       StoreNamePrefix + pathDigest(abs),
		VaultPath:  abs,
		StorageDir: StorageDir(abs),
	}, nil
}

// StorageDir returns the store data directory for a vault.
func StorageDir(vault string) string {
	return filepath.Join(vault, StateDirName, StorageDirName)
}

// pathDigest returns 8 hex characters of a BLAKE2b digest of path.
func pathDigest(path string) string {
	h, _ := blake2b.New(4, nil) // 4 bytes = 8 hex chars
	h.Write([]byte(path))
	return hex.EncodeToString(h.Sum(nil))
}
