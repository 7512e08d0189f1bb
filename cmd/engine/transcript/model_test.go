package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusIsValid(t *testing.T) {
	require.True(t, StatusTranscribing.IsValid())
	require.True(t, StatusReady.IsValid())
	require.True(t, StatusError.IsValid())
	require.False(t, Status("").IsValid())
	require.False(t, Status("Done").IsValid())
}

func TestWordAligned(t *testing.T) {
	require.True(t, Word{Start: 0, End: 0.5}.Aligned())
	require.False(t, Word{Start: TimeUnaligned, End: TimeUnaligned}.Aligned())
	require.False(t, Word{Start: 0.5, End: TimeUnaligned}.Aligned())
}

func TestParagraphFindWord(t *testing.T) {
	p := Paragraph{Words: []Word{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	require.Equal(t, 0, p.FindWord("a"))
	require.Equal(t, 2, p.FindWord("c"))
	require.Equal(t, -1, p.FindWord("z"))
}

func TestParagraphRemoveWord(t *testing.T) {
	p := Paragraph{Words: []Word{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	require.True(t, p.RemoveWord("b"))
	require.Len(t, p.Words, 2)
	require.Equal(t, "a", p.Words[0].ID)
	require.Equal(t, "c", p.Words[1].ID)

	require.False(t, p.RemoveWord("b"))
	require.Len(t, p.Words, 2)
}

func TestNewWordID(t *testing.T) {
	a := NewWordID()
	b := NewWordID()
	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	require.NotEqual(t, a, b)
}
