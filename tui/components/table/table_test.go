package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleTableContainsCells(t *testing.T) {
	out := SimpleTable([]string{"ID", "NAME"}, [][]string{
		{"p1", "Alpha"},
		{"p2", "Beta"},
	})
	for _, want := range []string{"ID", "NAME", "p1", "Alpha", "p2", "Beta"} {
		assert.Contains(t, out, want)
	}
}

func TestStatusTableLabels(t *testing.T) {
	out := StatusTable([][2]string{{"scope", "p1"}, {"state", "loaded"}})
	assert.Contains(t, out, "scope:")
	assert.Contains(t, out, "p1")
	assert.Contains(t, out, "state:")
}
