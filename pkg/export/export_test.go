package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	data := Dataset{Title: "Study plan", Headers: []string{"id", "title", "start"}}
	data.AddRow("a", "Study: essay", "2024-01-09T16:30:00Z")
	data.AddRow("b", "Study: lab")
	return data
}

func TestCSVExporterPadsShortRows(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	assert.Equal(t, "id,title,start\na,Study: essay,2024-01-09T16:30:00Z\nb,Study: lab,\n", string(out))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)

	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(sampleDataset())

	var total float64
	for _, w := range widths {
		total += w
	}
	assert.InDelta(t, landscapeWidth, total, 0.001)
	assert.Greater(t, widths[2], widths[0])
}
