package barter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	assert.Equal(t, "v0.1.0", Version())

	GitCommit = "abc123"
	defer func() { GitCommit = "" }()
	assert.Equal(t, "v0.1.0 abc123", Version())
}
