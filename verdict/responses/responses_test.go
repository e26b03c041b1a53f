package responses

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFallsBackToDefaultLocale(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	r := NewResolver()
	text, err := r.Resolve(GenericError, "zz")
	require.NoError(err)
	assert.NotEmpty(text)

	base, err := r.Resolve(GenericError, DefaultLocale)
	require.NoError(err)
	assert.Equal(base, text)
}

func TestResolveUnknownKey(t *testing.T) {
	assert := assert.New(t)

	r := NewResolver()
	_, err := r.Resolve(Key("NO_SUCH_KEY"), DefaultLocale)
	var unknown *UnknownKeyError
	assert.ErrorAs(err, &unknown)
}

func TestLoadFromFileJSONMergesLocale(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "cn.json")
	require.NoError(os.WriteFile(path, []byte(`{"cn": {"GENERIC_ERROR": "对不起，出了点问题。"}}`), 0o644))

	r := NewResolver()
	require.NoError(r.LoadFromFileJSON(path))

	text, err := r.Resolve(GenericError, "cn")
	require.NoError(err)
	assert.Equal("对不起，出了点问题。", text)

	// keys absent from the overlay still resolve via the default locale
	text, err = r.Resolve(SatisfactionSurvey, "cn")
	require.NoError(err)
	assert.NotEmpty(text)
}

func TestFillReplacesAllOccurrences(t *testing.T) {
	assert := assert.New(t)

	out := Fill("{{name}} and {{name}} met {{other}}", map[string]string{
		"name":  "Alice",
		"other": "Bob",
	})
	assert.Equal("Alice and Alice met Bob", out)

	// optional fragments drop cleanly with an empty replacement
	out = Fill("head{{opt}}tail", map[string]string{"opt": ""})
	assert.Equal("headtail", out)
}

func TestDefaultTextsCoverEveryVerdictTemplate(t *testing.T) {
	assert := assert.New(t)

	r := NewResolver()
	for _, key := range []Key{Scam, Illicit, Spam, Untrue, Misleading, Accurate, Satire, Legitimate, Unsure, ErrorReply} {
		text, err := r.Resolve(key, DefaultLocale)
		assert.NoError(err, string(key))
		assert.Contains(text, "{{thanks}}", string(key))
	}
}
