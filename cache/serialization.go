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


package cache

import (
	"fmt"

	"github.com/poiesic/searchdeck/core"
)

// MarshalResults serializes a result list to bytes.
func MarshalResults(results []core.SearchResult) []byte {
	buf := make([]byte, core.SearchResultListMUS.Size(results))
	core.SearchResultListMUS.Marshal(results, buf)
	return buf
}

// UnmarshalResults deserializes a result list from bytes.
func UnmarshalResults(data []byte) ([]core.SearchResult, error) {
	results, _, err := core.SearchResultListMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return results, nil
}
