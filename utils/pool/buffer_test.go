package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyBuffer(t *testing.T) {
	buf := GetCopyBuffer()
	assert.Len(t, *buf, copyBufferSize)
	PutCopyBuffer(buf)

	short := (*buf)[:10]
	assert.NotPanics(t, func() { PutCopyBuffer(&short) })
	assert.NotPanics(t, func() { PutCopyBuffer(nil) })
}
