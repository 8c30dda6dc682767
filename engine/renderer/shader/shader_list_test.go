package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioList(t *testing.T) *ShaderList {
	t.Helper()
	l, err := NewShaderList("p", "s", []Entry{{"a", "a"}, {"b", "b"}, {"c", "c"}, {"d", "d"}})
	require.NoError(t, err)
	return l
}

func TestShaderListScenario(t *testing.T) {
	l := scenarioList(t)

	steps := []struct {
		move func() (string, string)
		want string
	}{
		{l.Current, "pas"},
		{l.Advance, "pbs"},
		{l.Advance, "pcs"},
		{l.Retreat, "pbs"},
		{l.Retreat, "pas"},
		{l.Retreat, "pds"},
	}
	for i, step := range steps {
		_, src := step.move()
		assert.Equal(t, step.want, src, "step %d", i)
	}
}

func TestShaderListEmpty(t *testing.T) {
	l, err := NewShaderList("p", "s", nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
	assert.Nil(t, l)
	assert.Panics(t, func() { MustShaderList("p", "s", []Entry{}) })
}

func TestShaderListCycle(t *testing.T) {
	for n := 1; n <= 5; n++ {
		entries := make([]Entry, n)
		for i := range entries {
			entries[i] = Entry{Name: string(rune('a' + i)), Body: string(rune('a' + i))}
		}
		l := MustShaderList("", "", entries)
		for range 3 {
			l.Advance()
		}
		for range 3 {
			l.Retreat()
		}
		assert.Equal(t, 0, l.Index())

		for range n {
			l.Advance()
		}
		assert.Equal(t, 0, l.Index(), "n=%d advance cycle", n)
		for range n {
			l.Retreat()
		}
		assert.Equal(t, 0, l.Index(), "n=%d retreat cycle", n)
	}
}

func TestShaderListWraparound(t *testing.T) {
	l := scenarioList(t)
	name, _ := l.Retreat()
	assert.Equal(t, "d", name)
	assert.Equal(t, 3, l.Index())
	name, _ = l.Advance()
	assert.Equal(t, "a", name)
}

func TestShaderListSingleEntry(t *testing.T) {
	l := MustShaderList("<", ">", []Entry{{"only", "x"}})
	name, src := l.Advance()
	assert.Equal(t, "only", name)
	assert.Equal(t, "<x>", src)
	_, src = l.Retreat()
	assert.Equal(t, "<x>", src)
}

func TestShaderListCurrentIsIdempotent(t *testing.T) {
	l := scenarioList(t)
	l.Advance()
	n1, s1 := l.Current()
	n2, s2 := l.Current()
	assert.Equal(t, n1, n2)
	assert.Equal(t, s1, s2)
	assert.Equal(t, 1, l.Index())
}

func TestShaderListCopiesEntries(t *testing.T) {
	entries := []Entry{{"a", "a"}, {"b", "b"}}
	l := MustShaderList("", "", entries)
	entries[0].Body = "changed"
	_, src := l.Current()
	assert.Equal(t, "a", src)
	assert.Equal(t, []string{"a", "b"}, l.Names())
	assert.Equal(t, 2, l.Len())
}
