package report

import (
	"bytes"
	"testing"
	"time"

	"pazaryeri/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteSnapshots(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	updated := now.Add(-time.Hour)
	snaps := []models.MarketPriceSnapshot{
		{
			ProductKey:    "elektronik|iphone 13",
			OriginalTitle: "iPhone 13",
			Category:      "Elektronik",
			MinPrice:      20000,
			MaxPrice:      30000,
			AvgPrice:      25000,
			Confidence:    0.75,
			QueryCount:    7,
			Sources: []models.SnapshotSource{
				{Name: "Sahibinden", URL: "https://www.sahibinden.com/x"},
				{Name: "Web", URL: "https://example.com"},
			},
			LastUpdatedAt: &updated,
			ExpiresAt:     now.Add(7 * 24 * time.Hour),
		},
		{
			ProductKey: "mobilya|masa",
			Category:   "Mobilya",
			ExpiresAt:  now.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshots(&buf, snaps, now))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SnapshotSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Ürün Anahtarı", rows[0][0])
	assert.Len(t, rows[0], len(snapshotHeader))

	assert.Equal(t, "elektronik|iphone 13", rows[1][0])
	assert.Equal(t, "25000", rows[1][6])
	assert.Equal(t, "7", rows[1][8])
	assert.Equal(t, "Sahibinden, Web", rows[1][9])
	assert.Equal(t, updated.Format(time.RFC3339), rows[1][10])
	assert.Equal(t, "evet", rows[1][12])

	assert.Equal(t, "mobilya|masa", rows[2][0])
	assert.Equal(t, "", rows[2][10])
	assert.Equal(t, "hayır", rows[2][12])
}

func TestWriteSnapshots_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshots(&buf, nil, time.Now()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SnapshotSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
