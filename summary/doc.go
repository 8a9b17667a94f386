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


// Package summary turns extracted file content into short natural-language
// summaries with a language model.
//
// File summaries are cached by path. A cached summary is reused only while the
// file's size and modification time and the generating model are unchanged, so
// re-scanning an untouched tree makes no model calls. Folder summaries are
// built from the summaries of the files the folder contains.
//
// Image files are captioned by sending the image inline with a caption prompt.
// Files of unknown type get a fixed sentinel summary without any model call.
package summary
