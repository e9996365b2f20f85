package badger

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/signalpath/recall/core"
)

// Key prefixes for different data types
const (
	embeddingRecordPrefix = "embrec"
	callRecordPrefix      = "calrec"
	usageRecordPrefix     = "usgrec"
)

// makeEmbeddingKey generates the primary key for an embedding record.
// Format: prefix:ownerID:entityID:contentType
// Identifiers are validated upstream to contain no colons, so the key
// parses unambiguously.
func makeEmbeddingKey(ownerID, entityID string, contentType core.ContentType) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%d", embeddingRecordPrefix, ownerID, entityID, int(contentType)))
}

// makeEmbeddingOwnerPrefix generates the scan prefix for one owner's
// embedding records.
func makeEmbeddingOwnerPrefix(ownerID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", embeddingRecordPrefix, ownerID))
}

// parseEmbeddingKey extracts the entity ID and content type from an
// embedding record key.
func parseEmbeddingKey(key []byte) (entityID string, contentType core.ContentType, err error) {
	parts := strings.Split(string(key), ":")
	if len(parts) != 4 {
		return "", 0, fmt.Errorf("malformed embedding key %q", key)
	}
	var ct int
	if _, err := fmt.Sscanf(parts[3], "%d", &ct); err != nil {
		return "", 0, fmt.Errorf("malformed embedding key %q: %w", key, err)
	}
	return parts[2], core.ContentType(ct), nil
}

// makeCallKey generates the primary key for a call record.
// Format: prefix:ownerID:callID
func makeCallKey(ownerID, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", callRecordPrefix, ownerID, id))
}

// makeCallOwnerPrefix generates the scan prefix for one owner's calls.
func makeCallOwnerPrefix(ownerID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", callRecordPrefix, ownerID))
}

// parseCallKey extracts the call ID from a call record key.
func parseCallKey(key []byte) (string, error) {
	parts := strings.Split(string(key), ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed call key %q", key)
	}
	return parts[2], nil
}

// makeUsageKey generates the key for a usage ledger entry.
// Format: prefix:ownerID: + 8-byte BigEndian timestamp + record ID.
// The BigEndian timestamp makes a lexicographic scan return entries in
// recording order; the record ID disambiguates entries recorded within
// the same microsecond.
func makeUsageKey(ownerID string, recordedAt time.Time, id string) []byte {
	prefix := fmt.Sprintf("%s:%s:", usageRecordPrefix, ownerID)
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(recordedAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// makePartialUsageKey generates a partial key for time range scans over
// one owner's ledger.
func makePartialUsageKey(ownerID string, recordedAt time.Time) []byte {
	prefix := fmt.Sprintf("%s:%s:", usageRecordPrefix, ownerID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(recordedAt.UnixMicro()))
	return buf
}

// makeUsageOwnerPrefix generates the scan prefix for one owner's ledger.
func makeUsageOwnerPrefix(ownerID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", usageRecordPrefix, ownerID))
}
