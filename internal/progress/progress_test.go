package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleReportsLevels(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "hseg: ").WithRate(false)

	c.OnStart(3)
	c.OnLevel(0, 9000, 0.0)
	c.OnLevel(1, 4200, 12.5)
	c.OnError(2, errors.New("boom"))
	c.OnComplete()

	out := buf.String()
	assert.Contains(t, out, "building 3 levels")
	assert.Contains(t, out, "level 0: 9000 regions, threshold 0.0000")
	assert.Contains(t, out, "level 1: 4200 regions, threshold 12.5000")
	assert.Contains(t, out, "error at level 2: boom")
	assert.Contains(t, out, "completed in")
}

func TestMultiFansOutToAllCallbacks(t *testing.T) {
	var bufA, bufB bytes.Buffer
	a := NewConsole(&bufA, "")
	b := NewConsole(&bufB, "")
	m := NewMulti(a, b)

	m.OnStart(1)
	m.OnLevel(0, 10, 1.0)
	m.OnComplete()

	assert.Equal(t, bufA.String(), bufB.String())
	assert.Contains(t, bufA.String(), "level 0")
}

func TestNoOpNeverPanics(t *testing.T) {
	var cb Callback = NoOp{}
	cb.OnStart(5)
	cb.OnLevel(0, 100, 0)
	cb.OnError(1, errors.New("x"))
	cb.OnComplete()
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, "██████░░░░", RenderBar(3, 5, 10))
	assert.Equal(t, "░░░░░░░░░░", RenderBar(0, 0, 10))
	assert.Equal(t, "██████████", RenderBar(10, 5, 10))
}
