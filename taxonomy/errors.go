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

package taxonomy

import "errors"

var (
	// ErrDuplicateConcept indicates two concepts share an identifier.
	ErrDuplicateConcept = errors.New("duplicate concept")

	// ErrEmptyConceptID indicates a concept without an identifier.
	ErrEmptyConceptID = errors.New("concept id cannot be empty")

	// ErrNoKeywords indicates a concept that could never match.
	ErrNoKeywords = errors.New("concept has no keywords")

	// ErrUnsupportedFormat indicates a file extension other than .json or .toml.
	ErrUnsupportedFormat = errors.New("unsupported taxonomy format")
)
