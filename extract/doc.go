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


// Package extract turns files into text or image content for summarization.
//
// Documents are converted according to their DocumentFormat: pandoc handles
// markup and office formats, built-in readers handle PDF, XLSX and PPTX, and
// anything else is decoded as plain text. Images are returned as raw bytes
// for captioning. Audio, video and archives produce fixed placeholders, and
// files of unknown type produce the no-summary sentinel without touching the
// file at all.
package extract
