package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_RoundTrip(t *testing.T) {
	for code := 0; code <= 6; code++ {
		var s Status
		require.NoError(t, json.Unmarshal([]byte{byte('0' + code)}, &s))
		assert.Equal(t, code, s.Code())

		data, err := json.Marshal(s)
		require.NoError(t, err)
		assert.Equal(t, string([]byte{byte('0' + code)}), string(data))
	}
}

func TestStatus_UnknownCode(t *testing.T) {
	var s Status
	assert.Error(t, json.Unmarshal([]byte(`7`), &s))
	assert.Error(t, json.Unmarshal([]byte(`-1`), &s))
	assert.Error(t, json.Unmarshal([]byte(`"passed"`), &s))

	_, err := json.Marshal(Status(9))
	assert.Error(t, err)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "Passed", StatusPassed.String())
	assert.Equal(t, "N/A", StatusNotAvailable.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}

func TestBillDetail_Decode(t *testing.T) {
	raw := `{"state_link":"https://leginfo.example/ab123","status":4,"status_date":"2023-07-01","description":"An act"}`

	var d BillDetail
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	assert.Equal(t, StatusPassed, d.Status)
	assert.Equal(t, "2023-07-01", d.StatusDate)

	assert.Error(t, json.Unmarshal([]byte(`{"status":12}`), &d))
}
