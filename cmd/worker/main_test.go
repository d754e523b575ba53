package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtoiOr(t *testing.T) {
	assert.Equal(t, 8, atoiOr("", 8), "empty uses the default")
	assert.Equal(t, 12, atoiOr("12", 8))
	assert.Equal(t, 8, atoiOr("8x", 8), "malformed falls back to the default, not 1")
	assert.Equal(t, 8, atoiOr("eight", 8))
}
