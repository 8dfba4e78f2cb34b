package secstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFilings_Array(t *testing.T) {
	data := []byte(`[
		{"formType":"4","ticker":"AAPL","companyName":"Apple Inc","accessionNo":"0001-23-000045","linkToFilingDetails":"https://example.com/f/45"},
		{"formType":"8-K","ticker":"MSFT","companyName":"Microsoft","accessionNo":"0001-23-000046","linkToFilingDetails":"https://example.com/f/46"}
	]`)

	filings, err := decodeFilings(data)
	require.NoError(t, err)
	require.Len(t, filings, 2)
	assert.Equal(t, "4", filings[0].FormType)
	assert.Equal(t, "AAPL", filings[0].Ticker)
	assert.Equal(t, "0001-23-000045", filings[0].AccessionNo)
	assert.Equal(t, "https://example.com/f/45", filings[0].Link)
	assert.Equal(t, "8-K", filings[1].FormType)
}

func TestDecodeFilings_SingleObject(t *testing.T) {
	data := []byte(`{"formType":"4/A","ticker":"TSLA","accessionNo":"0001-23-000047"}`)

	filings, err := decodeFilings(data)
	require.NoError(t, err)
	require.Len(t, filings, 1)
	assert.Equal(t, "4/A", filings[0].FormType)
}

func TestDecodeFilings_SkipsEmptyEntries(t *testing.T) {
	data := []byte(`[{"formType":"4","accessionNo":"0001-23-000048"},{}]`)

	filings, err := decodeFilings(data)
	require.NoError(t, err)
	assert.Len(t, filings, 1)
}

func TestDecodeFilings_RejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("  "), []byte("not json"), []byte(`[1,2]`)} {
		_, err := decodeFilings(data)
		assert.Error(t, err, "payload %q", string(data))
	}
}
