// Package export writes batch scoring results to spreadsheet files for
// review outside the tool.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jonloone/nx1-space-sub002/internal/service"
)

var rankedHeader = []string{
	"Rank", "Cell ID", "Lat", "Lon", "Overall", "Confidence",
	"Classification", "Priority",
	"Proximity", "Competitive", "Market", "Maritime", "Risk",
	"Annual Revenue", "ROI %", "NPV", "Land %",
}

// WriteRankedXLSX writes one workbook with a summary sheet and the ranked
// results, best first.
func WriteRankedXLSX(path string, result *service.BatchResult) error {
	f := xlsx.NewFile()
	p := message.NewPrinter(language.English)

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	addPair := func(k, v string) {
		row := summary.AddRow()
		row.AddCell().SetString(k)
		row.AddCell().SetString(v)
	}
	addPair("Run ID", result.RunID)
	addPair("Requested", p.Sprintf("%d", result.Requested))
	addPair("Succeeded", p.Sprintf("%d", result.Succeeded))
	addPair("Failed", p.Sprintf("%d", result.Failed))
	addPair("Cache hits", p.Sprintf("%d", result.CacheHits))
	addPair("Started", result.StartedAt.Format("2006-01-02 15:04:05 MST"))
	addPair("Finished", result.FinishedAt.Format("2006-01-02 15:04:05 MST"))

	sheet, err := f.AddSheet("Ranked Cells")
	if err != nil {
		return eris.Wrap(err, "export: add results sheet")
	}

	header := sheet.AddRow()
	for _, h := range rankedHeader {
		header.AddCell().SetString(h)
	}

	for _, r := range result.Ranked {
		res := r.Result
		row := sheet.AddRow()
		row.AddCell().SetInt(r.Rank)
		row.AddCell().SetString(res.Cell.ID)
		row.AddCell().SetFloat(res.Cell.CenterLat)
		row.AddCell().SetFloat(res.Cell.CenterLon)
		row.AddCell().SetFloat(res.Scores.Overall.Value)
		row.AddCell().SetFloat(res.Scores.Overall.Confidence)
		row.AddCell().SetString(string(res.Classification))
		row.AddCell().SetString(string(res.Priority))
		row.AddCell().SetFloat(res.Scores.Proximity.Value)
		row.AddCell().SetFloat(res.Scores.Competitive.Value)
		row.AddCell().SetFloat(res.Scores.Market.Value)
		row.AddCell().SetFloat(res.Scores.Maritime.Value)
		row.AddCell().SetFloat(res.Scores.Risk.Value)
		row.AddCell().SetString(p.Sprintf("%.0f", res.Revenue.AnnualRevenue))
		row.AddCell().SetFloat(res.Financial.ROIPct)
		row.AddCell().SetString(p.Sprintf("%.0f", res.Financial.NPV))
		row.AddCell().SetFloat(res.LandCoveragePct)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}

	zap.L().Info("export: workbook written",
		zap.String("path", path),
		zap.Int("rows", len(result.Ranked)),
	)
	return nil
}
