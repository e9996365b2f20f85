package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := Fingerprint("Patient asked about billing.")
		b := Fingerprint("Patient asked about billing.")
		assert.Equal(t, a, b)
	})

	t.Run("changes with content", func(t *testing.T) {
		a := Fingerprint("Patient asked about billing.")
		b := Fingerprint("Patient asked about billing. Agent resolved it.")
		assert.NotEqual(t, a, b)
	})

	t.Run("hex encoded 256 bits", func(t *testing.T) {
		assert.Len(t, Fingerprint("x"), 64)
	})

	t.Run("empty input still hashes", func(t *testing.T) {
		assert.Len(t, Fingerprint(""), 64)
	})
}
