package creds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseINI(t *testing.T) {
	content := `# credentials for work accounts
; alternate comment style

[default]
aws_access_key_id = AKIDDEFAULT
aws_secret_access_key = secret-default

[profile dev]
region = us-west-2
aws_access_key_id = X
aws_secret_access_key = Y
`
	sections := parseINI(content)

	// "profile dev" normalizes to "dev".
	_, hasPrefixed := sections["profile dev"]
	assert.False(t, hasPrefixed)

	dev := sections["dev"]
	assert.Equal(t, "us-west-2", dev["region"])
	assert.Equal(t, "X", dev["aws_access_key_id"])
	assert.Equal(t, "Y", dev["aws_secret_access_key"])

	assert.Equal(t, "AKIDDEFAULT", sections["default"]["aws_access_key_id"])
}

func TestParseINIRules(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]map[string]string
	}{
		{
			name:    "lines before any section are discarded",
			content: "stray = value\n[a]\nk = v\n",
			want:    map[string]map[string]string{"a": {"k": "v"}},
		},
		{
			name:    "first equals is the split point",
			content: "[a]\nk = v = w\n",
			want:    map[string]map[string]string{"a": {"k": "v = w"}},
		},
		{
			name:    "empty section",
			content: "[empty]\n",
			want:    map[string]map[string]string{"empty": {}},
		},
		{
			name:    "keys and values trimmed",
			content: "[a]\n  spaced key   =   spaced value  \n",
			want:    map[string]map[string]string{"a": {"spaced key": "spaced value"}},
		},
		{
			name:    "comments and blanks skipped",
			content: "[a]\n# comment\n; comment\n\nk=v\n",
			want:    map[string]map[string]string{"a": {"k": "v"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseINI(tt.content))
		})
	}
}
