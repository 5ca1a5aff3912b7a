package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateInviteCodeShape(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := GenerateInviteCode()
		assert.Len(t, code, 8)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(inviteCodeAlphabet, r),
				"code %q contains %q outside [0-9A-Z]", code, r)
		}
	}
}

func TestGenerateInviteCodeVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[GenerateInviteCode()] = true
	}
	// 100 draws from a 36^8 space colliding down to a handful would mean a
	// broken entropy source.
	assert.Greater(t, len(seen), 90)
}
