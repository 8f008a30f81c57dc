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

import "fmt"

// ValidateSearchResult validates a SearchResult according to domain rules.
//
// Validation rules:
//   - Title must not be empty after normalization
//   - Content must not be empty after normalization
//   - URL must not be empty
//
// URL uniqueness is a list-level property; see ValidateSearchResultList.
func ValidateSearchResult(result *SearchResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidSearchResult)
	}

	if result.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSearchResult, ErrEmptyTitle)
	}

	if result.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSearchResult, ErrEmptyContent)
	}

	if result.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSearchResult, ErrEmptyURL)
	}

	return nil
}

// ValidateSearchResultList validates every result in the list and checks
// that no URL appears twice.
func ValidateSearchResultList(results []SearchResult) error {
	seen := make(map[string]bool, len(results))
	for i := range results {
		if err := ValidateSearchResult(&results[i]); err != nil {
			return err
		}
		if seen[results[i].URL] {
			return fmt.Errorf("%w: %s", ErrDuplicateURL, results[i].URL)
		}
		seen[results[i].URL] = true
	}
	return nil
}
