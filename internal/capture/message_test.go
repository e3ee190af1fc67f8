package capture

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Message
		wantOK bool
	}{
		{name: "ready", raw: `"ready"`, want: Ready(), wantOK: true},
		{name: "html", raw: `{"type":"html","html":"<p>hi</p>","url":"https://a.example/"}`, want: HTML("<p>hi</p>", "https://a.example/"), wantOK: true},
		{name: "html with empty fields", raw: `{"type":"html","html":"","url":""}`, want: HTML("", ""), wantOK: true},
		{name: "close", raw: `{"type":"close"}`, want: Close(), wantOK: true},
		{name: "view recipe", raw: `{"type":"viewRecipe","url":"https://r.example/recipes/1"}`, want: ViewRecipe("https://r.example/recipes/1"), wantOK: true},
		{name: "html missing url", raw: `{"type":"html","html":"<p>hi</p>"}`},
		{name: "html not a string", raw: `{"type":"html","html":42,"url":"u"}`},
		{name: "view recipe missing url", raw: `{"type":"viewRecipe"}`},
		{name: "other string", raw: `"hello"`},
		{name: "unknown type", raw: `{"type":"webpackOk"}`},
		{name: "number", raw: `42`},
		{name: "null", raw: `null`},
		{name: "array", raw: `["ready"]`},
		{name: "garbage", raw: `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode([]byte(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessage_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Ready())
	require.NoError(t, err)
	assert.JSONEq(t, `"ready"`, string(data))

	data, err = json.Marshal(HTML("<p>", "https://a.example/"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"html","html":"<p>","url":"https://a.example/"}`, string(data))

	data, err = json.Marshal(Close())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"close"}`, string(data))

	_, err = json.Marshal(Message{})
	assert.Error(t, err)
}
