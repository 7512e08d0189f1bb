package transcript

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVTTTS(t *testing.T) {
	require.Equal(t, "00:00:00.000", vttTS(0))

	require.Equal(t, "00:01:10.000", vttTS(70000))

	require.Equal(t, "00:00:00.999", vttTS(999))

	require.Equal(t, "00:00:01.000", vttTS(1000))

	require.Equal(t, "00:01:02.200", vttTS(62200))

	require.Equal(t, "01:45:45.045", vttTS(6345045))
}

func exportTranscript() *Transcript {
	return &Transcript{
		Status: StatusReady,
		Paragraphs: []Paragraph{
			{
				ID: "p1",
				Words: []Word{
					{ID: "w1", Text: "hello", Start: 0.5, End: 1.0},
					{ID: "w2", Text: "there", Start: TimeUnaligned, End: TimeUnaligned},
					{ID: "w3", Text: "world", Start: 1.0, End: 1.5},
				},
			},
			{
				ID: "p2",
				Words: []Word{
					{ID: "w4", Text: "again", Start: 62.2, End: 63.0},
				},
			},
		},
	}
}

func TestWebVTT(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		tr := &Transcript{}
		require.NoError(t, tr.WebVTT(&buf))
		require.Equal(t, "WEBVTT\n", buf.String())
	})

	t.Run("paragraph cues", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, exportTranscript().WebVTT(&buf))
		expected := `WEBVTT

00:00:00.500 --> 00:00:01.500
hello there world

00:01:02.200 --> 00:01:03.000
again
`
		require.Equal(t, expected, buf.String())
	})

	t.Run("paragraph with no aligned words produces no cue", func(t *testing.T) {
		var buf bytes.Buffer
		tr := &Transcript{
			Paragraphs: []Paragraph{
				{Words: []Word{{Text: "typed", Start: TimeUnaligned, End: TimeUnaligned}}},
			},
		}
		require.NoError(t, tr.WebVTT(&buf))
		require.Equal(t, "WEBVTT\n", buf.String())
	})
}

func TestPlainText(t *testing.T) {
	require.Equal(t, "", (&Transcript{}).PlainText())
	require.Equal(t, "hello there world\n\nagain", exportTranscript().PlainText())
}
