package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
	}{
		{"PatientName", PatientName},
		{"patientid", PatientID},
		{"(0028,0010)", Rows},
		{"7FE0,0010", PixelData},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Parse("NotATag")
	assert.Error(t, err)
}

func TestLookupVR(t *testing.T) {
	assert.Equal(t, "PN", PatientName.LookupVR())
	assert.Equal(t, "OW", PixelData.LookupVR())
	assert.Equal(t, "UL", New(0x0009, 0x0000).LookupVR())
	assert.Equal(t, "UN", New(0x0009, 0x0010).LookupVR())
}

func TestOrdering(t *testing.T) {
	assert.True(t, TransferSyntaxUID.Less(SOPClassUID))
	assert.True(t, Rows.Less(Columns))
	assert.False(t, PixelData.Less(Rows))
	assert.Equal(t, "(0010,0010)", PatientName.String())
}
