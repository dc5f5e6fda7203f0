package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	for _, bad := range []string{"", "2024-13-01", "2023-02-29", "01/02/2024", "2024-01-01T10:00:00Z"} {
		_, err := ParseDate(bad)
		assert.True(t, IsInvalidInputError(err), "input %q", bad)
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		SaleDate Date `json:"sale_date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"sale_date":"2024-05-17"}`), &payload))
	assert.Equal(t, NewDate(2024, time.May, 17), payload.SaleDate)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sale_date":"2024-05-17"}`, string(out))

	err = json.Unmarshal([]byte(`{"sale_date":"17 May"}`), &payload)
	assert.True(t, IsInvalidInputError(err))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 1, 2, 0, 0, 0, 0, time.FixedZone("x", 3600))))
	assert.Equal(t, "2024-01-02", d.String())

	require.NoError(t, d.Scan([]byte("2023-12-31")))
	assert.Equal(t, "2023-12-31", d.String())

	require.NoError(t, d.Scan("2023-11-30T00:00:00Z"))
	assert.Equal(t, "2023-11-30", d.String())

	assert.Error(t, d.Scan(42))

	v, err := NewDate(2020, time.July, 4).Value()
	require.NoError(t, err)
	assert.Equal(t, "2020-07-04", v)
}
