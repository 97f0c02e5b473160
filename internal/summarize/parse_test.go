package summarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n[1,2]\n```", "[1,2]"},
		{"```{\"a\":1}```", `{"a":1}`},
		{"  ```JSON\n{}\n```  ", "{}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripFences(tt.in), tt.in)
	}
}

func TestJSONPayload(t *testing.T) {
	assert.Equal(t, `{"faqs": []}`, jsonPayload(`Here you go: {"faqs": []} Hope this helps.`))
	assert.Equal(t, `["a", "b"]`, jsonPayload("Sure!\n[\"a\", \"b\"]"))
	assert.Equal(t, "no json", jsonPayload("no json"))
}

func TestDecode_Fallback(t *testing.T) {
	var v []string
	assert.NoError(t, decode(`['a', 'b',]`, &v))
	assert.Equal(t, []string{"a", "b"}, v)

	assert.Error(t, decode(`{not json at all`, &v))
}
