package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtoiOr(t *testing.T) {
	assert.Equal(t, 8, atoiOr("", 8))
	assert.Equal(t, 4, atoiOr("4", 8))
	assert.Equal(t, 8, atoiOr("not-a-number", 8))
}
