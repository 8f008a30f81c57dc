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


// Package searxng is the client for the upstream SearXNG metasearch engine.
//
// Raw upstream snippets arrive with HTML markup, emoji and duplicate URLs;
// the client normalizes them into plain-text core.SearchResult values in
// upstream order. Transient upstream failures are retried with bounded
// exponential backoff before the error surfaces to the caller.
package searxng
