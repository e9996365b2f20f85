// Copyright 2025 Signalpath Labs
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
	"math"
	"time"

	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/signalpath/recall/core"
)

// MUS serialization for stored records. Serializers are written by hand
// against the mus-go primitives; field order is part of the storage
// format and must not change without a migration.

// zeroTimeMicros marks the zero time on the wire. time.Time zero values
// round-trip exactly instead of through UnixMicro.
const zeroTimeMicros = math.MinInt64

// MarshalEmbeddingRecord serializes an EmbeddingRecord to bytes.
func MarshalEmbeddingRecord(record *core.EmbeddingRecord) []byte {
	buf := make([]byte, EmbeddingRecordMUS.Size(*record))
	EmbeddingRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalEmbeddingRecord deserializes an EmbeddingRecord from bytes.
func UnmarshalEmbeddingRecord(data []byte) (*core.EmbeddingRecord, error) {
	record, _, err := EmbeddingRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding record: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalCallRecord serializes a CallRecord to bytes.
func MarshalCallRecord(record *core.CallRecord) []byte {
	buf := make([]byte, CallRecordMUS.Size(*record))
	CallRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalCallRecord deserializes a CallRecord from bytes.
func UnmarshalCallRecord(data []byte) (*core.CallRecord, error) {
	record, _, err := CallRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: call record: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalUsageRecord serializes a UsageRecord to bytes.
func MarshalUsageRecord(record *core.UsageRecord) []byte {
	buf := make([]byte, UsageRecordMUS.Size(*record))
	UsageRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalUsageRecord deserializes a UsageRecord from bytes.
func UnmarshalUsageRecord(data []byte) (*core.UsageRecord, error) {
	record, _, err := UsageRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: usage record: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// EmbeddingRecordMUS is the MUS serializer for core.EmbeddingRecord.
var EmbeddingRecordMUS = embeddingRecordSer{}

type embeddingRecordSer struct{}

func (embeddingRecordSer) Size(r core.EmbeddingRecord) (size int) {
	size = sizeString(r.EntityID)
	size += sizeString(r.OwnerID)
	size += sizeVector(r.Vector)
	size += sizeString(r.ModelName)
	size += varint.Int.Size(r.ModelVersion)
	size += varint.Int.Size(int(r.ContentType))
	size += sizeString(r.ContentHash)
	size += varint.Int.Size(r.TokenCount)
	size += sizeTime(r.GeneratedAt)
	size += sizeTime(r.InsertedAt)
	size += sizeTime(r.UpdatedAt)
	return size
}

func (embeddingRecordSer) Marshal(r core.EmbeddingRecord, bs []byte) (n int) {
	n = marshalString(r.EntityID, bs)
	n += marshalString(r.OwnerID, bs[n:])
	n += marshalVector(r.Vector, bs[n:])
	n += marshalString(r.ModelName, bs[n:])
	n += varint.Int.Marshal(r.ModelVersion, bs[n:])
	n += varint.Int.Marshal(int(r.ContentType), bs[n:])
	n += marshalString(r.ContentHash, bs[n:])
	n += varint.Int.Marshal(r.TokenCount, bs[n:])
	n += marshalTime(r.GeneratedAt, bs[n:])
	n += marshalTime(r.InsertedAt, bs[n:])
	n += marshalTime(r.UpdatedAt, bs[n:])
	return n
}

func (embeddingRecordSer) Unmarshal(bs []byte) (r core.EmbeddingRecord, n int, err error) {
	var (
		m  int
		ct int
	)
	if r.EntityID, n, err = unmarshalString(bs); err != nil {
		return
	}
	if r.OwnerID, m, err = unmarshalString(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.Vector, m, err = unmarshalVector(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.ModelName, m, err = unmarshalString(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.ModelVersion, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if ct, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	r.ContentType = core.ContentType(ct)
	if r.ContentHash, m, err = unmarshalString(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.TokenCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.GeneratedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.UpdatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return r, n + m, err
	}
	return r, n + m, nil
}

// CallRecordMUS is the MUS serializer for core.CallRecord.
var CallRecordMUS = callRecordSer{}

type callRecordSer struct{}

func (callRecordSer) Size(r core.CallRecord) (size int) {
	size = sizeString(r.ID)
	size += sizeString(r.OwnerID)
	size += sizeString(r.Transcript)
	size += sizeString(r.Summary)
	size += sizeString(r.Sentiment)
	size += sizeString(r.Outcome)
	size += sizeString(r.Language)
	size += varint.Int.Size(r.DurationSeconds)
	size += sizeTime(r.OccurredAt)
	size += sizeBool(r.HasRedFlags)
	size += sizeBool(r.HasActionItems)
	size += sizeTime(r.InsertedAt)
	size += sizeTime(r.UpdatedAt)
	return size
}

func (callRecordSer) Marshal(r core.CallRecord, bs []byte) (n int) {
	n = marshalString(r.ID, bs)
	n += marshalString(r.OwnerID, bs[n:])
	n += marshalString(r.Transcript, bs[n:])
	n += marshalString(r.Summary, bs[n:])
	n += marshalString(r.Sentiment, bs[n:])
	n += marshalString(r.Outcome, bs[n:])
	n += marshalString(r.Language, bs[n:])
	n += varint.Int.Marshal(r.DurationSeconds, bs[n:])
	n += marshalTime(r.OccurredAt, bs[n:])
	n += marshalBool(r.HasRedFlags, bs[n:])
	n += marshalBool(r.HasActionItems, bs[n:])
	n += marshalTime(r.InsertedAt, bs[n:])
	n += marshalTime(r.UpdatedAt, bs[n:])
	return n
}

func (callRecordSer) Unmarshal(bs []byte) (r core.CallRecord, n int, err error) {
	var m int
	if r.ID, n, err = unmarshalString(bs); err != nil {
		return
	}
	fields := []struct {
		dst *string
	}{
		{&r.OwnerID}, {&r.Transcript}, {&r.Summary},
		{&r.Sentiment}, {&r.Outcome}, {&r.Language},
	}
	for _, f := range fields {
		if *f.dst, m, err = unmarshalString(bs[n:]); err != nil {
			return r, n + m, err
		}
		n += m
	}
	if r.DurationSeconds, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.OccurredAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.HasRedFlags, m, err = unmarshalBool(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.HasActionItems, m, err = unmarshalBool(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.UpdatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return r, n + m, err
	}
	return r, n + m, nil
}

// UsageRecordMUS is the MUS serializer for core.UsageRecord.
var UsageRecordMUS = usageRecordSer{}

type usageRecordSer struct{}

func (usageRecordSer) Size(r core.UsageRecord) (size int) {
	size = sizeString(r.ID)
	size += sizeString(r.OwnerID)
	size += sizeString(r.EntityID)
	size += varint.Int.Size(r.TokenCount)
	size += sizeString(r.ModelName)
	size += raw.Float64.Size(r.CostAmount)
	size += varint.Int.Size(int(r.Operation))
	size += sizeTime(r.RecordedAt)
	return size
}

func (usageRecordSer) Marshal(r core.UsageRecord, bs []byte) (n int) {
	n = marshalString(r.ID, bs)
	n += marshalString(r.OwnerID, bs[n:])
	n += marshalString(r.EntityID, bs[n:])
	n += varint.Int.Marshal(r.TokenCount, bs[n:])
	n += marshalString(r.ModelName, bs[n:])
	n += raw.Float64.Marshal(r.CostAmount, bs[n:])
	n += varint.Int.Marshal(int(r.Operation), bs[n:])
	n += marshalTime(r.RecordedAt, bs[n:])
	return n
}

func (usageRecordSer) Unmarshal(bs []byte) (r core.UsageRecord, n int, err error) {
	var (
		m  int
		op int
	)
	if r.ID, n, err = unmarshalString(bs); err != nil {
		return
	}
	if r.OwnerID, m, err = unmarshalString(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.EntityID, m, err = unmarshalString(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.TokenCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.ModelName, m, err = unmarshalString(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.CostAmount, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if op, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	r.Operation = core.OperationType(op)
	if r.RecordedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return r, n + m, err
	}
	return r, n + m, nil
}

// primitive helpers

func sizeString(s string) int {
	return varint.Int.Size(len(s)) + len(s)
}

func marshalString(s string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(s), bs)
	n += copy(bs[n:], s)
	return n
}

func unmarshalString(bs []byte) (s string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return "", n, err
	}
	if length < 0 {
		return "", n, ErrSerializationFailed
	}
	if len(bs) < n+length {
		return "", n, ErrTruncatedData
	}
	return string(bs[n : n+length]), n + length, nil
}

func sizeVector(v []float32) int {
	size := varint.Int.Size(len(v))
	for _, x := range v {
		size += raw.Float32.Size(x)
	}
	return size
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, x := range v {
		n += raw.Float32.Marshal(x, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrSerializationFailed
	}
	if length == 0 {
		return nil, n, nil
	}
	// Bound against the remaining bytes before allocating, so a
	// corrupted length cannot force a huge allocation.
	if length > (len(bs)-n)/4 {
		return nil, n, ErrTruncatedData
	}
	v = make([]float32, length)
	var m int
	for i := 0; i < length; i++ {
		if v[i], m, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return nil, n + m, err
		}
		n += m
	}
	return v, n, nil
}

func sizeBool(bool) int { return 1 }

func marshalBool(b bool, bs []byte) int {
	if b {
		bs[0] = 1
	} else {
		bs[0] = 0
	}
	return 1
}

func unmarshalBool(bs []byte) (bool, int, error) {
	if len(bs) < 1 {
		return false, 0, ErrTruncatedData
	}
	return bs[0] != 0, 1, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(timeToMicros(t))
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(timeToMicros(t), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	if us == zeroTimeMicros {
		return time.Time{}, n, nil
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func timeToMicros(t time.Time) int64 {
	if t.IsZero() {
		return zeroTimeMicros
	}
	return t.UnixMicro()
}
