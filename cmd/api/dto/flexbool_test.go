package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBoolUnmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`null`, false},
		{`"true"`, true},
		{`"on"`, true},
		{`"1"`, true},
		{`""`, false},
		{`"false"`, false},
		{`1`, true},
		{`0`, false},
	}

	for _, tt := range tests {
		var b FlexBool
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &b), tt.raw)
		assert.Equal(t, tt.want, b.Bool(), tt.raw)
	}
}

func TestFlexBoolRejectsGarbage(t *testing.T) {
	var b FlexBool
	assert.Error(t, json.Unmarshal([]byte(`"maybe"`), &b))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &b))
}

func TestPostRequestOmittedFlagsAreFalse(t *testing.T) {
	var req PostRequestDTO
	require.NoError(t, json.Unmarshal([]byte(`{"title":"t","isBanner":"true"}`), &req))

	assert.True(t, req.IsBanner.Bool())
	assert.False(t, req.IsFeatured.Bool())
}
