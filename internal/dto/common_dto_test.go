package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullableString(t *testing.T) {
	var absent, null, set UpdateResponseDTO
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"selected_option_id": null}`), &null))
	require.NoError(t, json.Unmarshal([]byte(`{"selected_option_id": "o1"}`), &set))

	assert.False(t, absent.SelectedOptionID.Set)
	assert.True(t, null.SelectedOptionID.Set)
	assert.Nil(t, null.SelectedOptionID.Value)
	assert.True(t, set.SelectedOptionID.Set)
	assert.Equal(t, "o1", *set.SelectedOptionID.Value)

	var bad UpdateResponseDTO
	assert.Error(t, json.Unmarshal([]byte(`{"selected_option_id": 7}`), &bad))

	out, err := json.Marshal(set.SelectedOptionID)
	require.NoError(t, err)
	assert.JSONEq(t, `"o1"`, string(out))
}
