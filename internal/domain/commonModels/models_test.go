package commonModels

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathListUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PathList
		wantErr bool
	}{
		{"single string", `"docs/a.pdf"`, PathList{"docs/a.pdf"}, false},
		{"list", `["a.txt","b.txt"]`, PathList{"a.txt", "b.txt"}, false},
		{"empty string", `""`, PathList{}, false},
		{"empty list", `[]`, PathList{}, false},
		{"number", `42`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PathList
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathListSingleEqualsList(t *testing.T) {
	var single, list struct {
		Paths PathList `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"paths":"x.md"}`), &single))
	require.NoError(t, json.Unmarshal([]byte(`{"paths":["x.md"]}`), &list))
	assert.Equal(t, list.Paths, single.Paths)
}
