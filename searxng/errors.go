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


package searxng

import "errors"

var (
	// ErrEndpointRequired is returned when a client is built without an endpoint URL.
	ErrEndpointRequired = errors.New("searxng endpoint required")

	// ErrUpstreamStatus indicates a non-success HTTP status from SearXNG.
	ErrUpstreamStatus = errors.New("unexpected upstream status")

	// ErrInvalidMaxAttempts indicates a non-positive retry attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")
)
