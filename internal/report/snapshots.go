// Package report renders market snapshots as spreadsheets.
package report

import (
	"io"
	"strings"
	"time"

	"pazaryeri/internal/models"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

const SnapshotSheet = "Piyasa"

var snapshotHeader = []any{
	"Ürün Anahtarı", "Başlık", "Kategori", "Durum",
	"Min (TL)", "Max (TL)", "Ortalama (TL)", "Güven",
	"Sorgu", "Kaynaklar", "Son Güncelleme", "Geçerlilik", "Taze",
}

// WriteSnapshots writes one row per snapshot to w as an xlsx workbook.
func WriteSnapshots(w io.Writer, snaps []models.MarketPriceSnapshot, now time.Time) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SnapshotSheet); err != nil {
		return eris.Wrap(err, "rename sheet")
	}
	if err := f.SetSheetRow(SnapshotSheet, "A1", &snapshotHeader); err != nil {
		return eris.Wrap(err, "write header")
	}

	for i, s := range snaps {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return eris.Wrap(err, "cell name")
		}
		row := []any{
			s.ProductKey, s.OriginalTitle, s.Category, s.Condition,
			s.MinPrice, s.MaxPrice, s.AvgPrice, s.Confidence,
			s.QueryCount, sourceNames(s.Sources), formatTime(s.LastUpdatedAt), s.ExpiresAt.Format(time.RFC3339),
			freshLabel(s.IsFresh(now)),
		}
		if err := f.SetSheetRow(SnapshotSheet, cell, &row); err != nil {
			return eris.Wrapf(err, "write row %d", i+2)
		}
	}

	if err := f.SetPanes(SnapshotSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return eris.Wrap(err, "freeze header")
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "write workbook")
	}
	return nil
}

func sourceNames(sources []models.SnapshotSource) string {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func freshLabel(fresh bool) string {
	if fresh {
		return "evet"
	}
	return "hayır"
}
