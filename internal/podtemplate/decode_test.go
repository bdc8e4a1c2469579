package podtemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apprepo/internal/api"
)

func TestDecode_Empty(t *testing.T) {
	for _, text := range []string{"", "   \n\t"} {
		tmpl, err := Decode(text)
		require.NoError(t, err)
		assert.Empty(t, tmpl.Spec.Containers)
		assert.Empty(t, tmpl.Labels)
	}
}

func TestDecode_Valid(t *testing.T) {
	text := `metadata:
  labels:
    team: platform
spec:
  containers:
  - name: sync
    image: kubeapps/asset-syncer
    env:
    - name: HTTP_PROXY
      value: http://proxy:3128
unknownField: ignored
`
	tmpl, err := Decode(text)
	require.NoError(t, err)
	assert.Equal(t, "platform", tmpl.Labels["team"])
	require.Len(t, tmpl.Spec.Containers, 1)
	assert.Equal(t, "kubeapps/asset-syncer", tmpl.Spec.Containers[0].Image)
	require.Len(t, tmpl.Spec.Containers[0].Env, 1)
	assert.Equal(t, "HTTP_PROXY", tmpl.Spec.Containers[0].Env[0].Name)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unterminated flow sequence", "foo: [unterminated"},
		{"mapping value in scalar", "spec: x\n  containers: y"},
		{"scalar document", "just a string"},
		{"sequence document", "- a\n- b"},
		{"wrong field type", "spec:\n  containers: 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.text)
			require.Error(t, err)
			assert.True(t, api.IsParseError(err), "expected ParseError, got %T", err)
		})
	}
}

func TestDecode_LineNumber(t *testing.T) {
	_, err := Decode("spec:\n  containers: a\n    image: b")
	require.Error(t, err)

	var pe *api.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Positive(t, pe.Line)
}
