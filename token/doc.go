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


// Package token implements the deployment token authority.
//
// One opaque secret exists per deployment, persisted to a plain-text file
// and regenerated on each build. Clients never send the raw secret: they
// present an argon2 hash of it, which the authority verifies and memoizes
// for the process lifetime.
package token
