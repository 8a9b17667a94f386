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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/arborist/core"
)

// Cache values are encoded field by field in declaration order. Timestamps are
// written as unix seconds followed by nanoseconds so that cached modification
// times compare equal to fresh stat results.

func MarshalSummaryEntry(entry *core.SummaryEntry) []byte {
	buf := make([]byte, summaryEntrySize(entry))
	n := ord.String.Marshal(entry.Path, buf)
	n += varint.Int64.Marshal(entry.Size, buf[n:])
	n += marshalTime(entry.ModifiedAt, buf[n:])
	n += ord.String.Marshal(entry.Model, buf[n:])
	n += ord.String.Marshal(entry.Summary, buf[n:])
	marshalTime(entry.CreatedAt, buf[n:])
	return buf
}

func UnmarshalSummaryEntry(data []byte) (*core.SummaryEntry, error) {
	var (
		entry core.SummaryEntry
		n, m  int
		err   error
	)
	if entry.Path, n, err = ord.String.Unmarshal(data); err != nil {
		return nil, unmarshalErr(err)
	}
	if entry.Size, m, err = varint.Int64.Unmarshal(data[n:]); err != nil {
		return nil, unmarshalErr(err)
	}
	n += m
	if entry.ModifiedAt, m, err = unmarshalTime(data[n:]); err != nil {
		return nil, unmarshalErr(err)
	}
	n += m
	if entry.Model, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, unmarshalErr(err)
	}
	n += m
	if entry.Summary, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, unmarshalErr(err)
	}
	n += m
	if entry.CreatedAt, m, err = unmarshalTime(data[n:]); err != nil {
		return nil, unmarshalErr(err)
	}
	n += m
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return &entry, nil
}

func MarshalMeta(value string) []byte {
	buf := make([]byte, ord.String.Size(value))
	ord.String.Marshal(value, buf)
	return buf
}

func UnmarshalMeta(data []byte) (string, error) {
	value, _, err := ord.String.Unmarshal(data)
	if err != nil {
		return "", unmarshalErr(err)
	}
	return value, nil
}

func summaryEntrySize(entry *core.SummaryEntry) int {
	return ord.String.Size(entry.Path) +
		varint.Int64.Size(entry.Size) +
		timeSize(entry.ModifiedAt) +
		ord.String.Size(entry.Model) +
		ord.String.Size(entry.Summary) +
		timeSize(entry.CreatedAt)
}

func marshalTime(t time.Time, bs []byte) int {
	n := varint.Int64.Marshal(t.Unix(), bs)
	return n + varint.Int64.Marshal(int64(t.Nanosecond()), bs[n:])
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	sec, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	nsec, m, err := varint.Int64.Unmarshal(bs[n:])
	if err != nil {
		return time.Time{}, n + m, err
	}
	return time.Unix(sec, nsec).UTC(), n + m, nil
}

func timeSize(t time.Time) int {
	return varint.Int64.Size(t.Unix()) + varint.Int64.Size(int64(t.Nanosecond()))
}

func unmarshalErr(err error) error {
	return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
}
