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

// Package taxonomy holds the financial concept table used to tag chunks
// and interpret questions.
//
// A concept matches a text when any of its keywords occurs in the text,
// ignoring case. There is no partial scoring. The table is static data:
// Default returns the built-in concepts and Load reads an edited copy
// written by Save in JSON or TOML form.
package taxonomy
