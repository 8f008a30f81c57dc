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


package token

import "errors"

var (
	// ErrMalformedHash indicates a credential that is not a valid argon2 PHC string.
	ErrMalformedHash = errors.New("malformed argon2 hash")

	// ErrUnsupportedVariant indicates an argon2 variant other than argon2id or argon2i.
	ErrUnsupportedVariant = errors.New("unsupported argon2 variant")

	// ErrUnsupportedVersion indicates an argon2 version this build cannot verify.
	ErrUnsupportedVersion = errors.New("unsupported argon2 version")

	// ErrTokenStorage indicates the token file could not be read or written.
	// This error is fatal at startup: the service must not run without a
	// valid deployment secret.
	ErrTokenStorage = errors.New("token storage failure")
)
