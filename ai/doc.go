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


// Package ai provides abstractions for the embedding services used by vaultindex.
//
// Two services sit behind the single Embedder interface:
//
//   - the document embedder, whose vectors are written to the index
//     (ai/openai, OpenAI-compatible APIs through langchaingo)
//   - the sentence encoder, a small local model that only decides where
//     chunk boundaries fall (ai/ollama, Ollama through langchaingo)
//
// ai/mock provides deterministic test doubles for both.
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewEmbedder, ollama.NewEncoder) return the
// ai.Embedder interface. Test constructors (mock.NewMockEmbedder) return
// concrete types so tests can inspect call counts and inject behavior.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithAPIKey(key))
//	embedder, err := openai.NewEmbedder(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vector, err := embedder.EmbedText(ctx, "Hello world")
package ai
