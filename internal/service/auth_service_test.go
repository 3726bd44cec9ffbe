package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashToken(t *testing.T) {
	a := hashToken("token-one")
	b := hashToken("token-one")
	c := hashToken("token-two")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	// sha256 hex digest
	assert.Len(t, a, 64)
}
