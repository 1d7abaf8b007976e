package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromFormats(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("rom pong.ch8 loaded", From("rom %s loaded", "pong.ch8"))
	assert.Equal("stack empty", From("stack empty"))
}
