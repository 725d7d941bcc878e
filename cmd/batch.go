package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jonloone/nx1-space-sub002/internal/export"
	"github.com/jonloone/nx1-space-sub002/internal/service"
	"github.com/jonloone/nx1-space-sub002/internal/store"
)

var (
	batchInput   string
	batchXLSXOut string
	batchJSONOut string
	batchTop     int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score many coordinates from a CSV file",
	Long:  "Reads lat,lon pairs from a CSV file, scores them in rate-limited concurrent chunks and prints a ranked summary. Optional flags write the full results to XLSX or JSON, and runs persist when a database is configured.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		coords, err := readCoordinatesCSV(batchInput)
		if err != nil {
			return err
		}

		env, err := initScorer(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		p := message.NewPrinter(language.English)
		progress := func(done, total int) {
			p.Fprintf(os.Stderr, "scored %d/%d cells\n", done, total)
		}

		result, err := env.Scorer.ScoreBatch(ctx, coords, progress)
		if err != nil {
			return err
		}
		if result == nil {
			return eris.New("scoring is not active")
		}

		printRankedSummary(p, result, batchTop)

		if batchXLSXOut != "" {
			if err := export.WriteRankedXLSX(batchXLSXOut, result); err != nil {
				return err
			}
		}
		if batchJSONOut != "" {
			if err := writeJSON(batchJSONOut, result); err != nil {
				return err
			}
		}
		if env.Store != nil {
			if err := persistRun(ctx, env.Store, result); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "CSV file of lat,lon pairs (required)")
	batchCmd.Flags().StringVar(&batchXLSXOut, "xlsx", "", "write ranked results to this XLSX file")
	batchCmd.Flags().StringVar(&batchJSONOut, "json", "", "write the full batch result to this JSON file")
	batchCmd.Flags().IntVar(&batchTop, "top", 20, "number of ranked cells to print")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}

// readCoordinatesCSV parses lat,lon rows. A header row is skipped when the
// first field does not parse as a number.
func readCoordinatesCSV(path string) ([]service.Coordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var coords []service.Coordinate
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", path)
		}
		line++
		if len(record) < 2 {
			return nil, eris.Errorf("%s line %d: want lat,lon, got %d fields", path, line, len(record))
		}
		lat, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, eris.Wrapf(err, "%s line %d: parse latitude", path, line)
		}
		lon, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, eris.Wrapf(err, "%s line %d: parse longitude", path, line)
		}
		coords = append(coords, service.Coordinate{Lat: lat, Lon: lon})
	}
	if len(coords) == 0 {
		return nil, eris.Errorf("%s: no coordinates found", path)
	}
	return coords, nil
}

func printRankedSummary(p *message.Printer, result *service.BatchResult, top int) {
	p.Printf("run %s: %d requested, %d succeeded, %d failed, %d cache hits\n",
		result.RunID, result.Requested, result.Succeeded, result.Failed, result.CacheHits)

	n := top
	if n > len(result.Ranked) {
		n = len(result.Ranked)
	}
	for _, r := range result.Ranked[:n] {
		res := r.Result
		p.Printf("%4d  %-16s  %6.1f  %-13s %-8s  rev %.0f\n",
			r.Rank, res.Cell.ID, res.Scores.Overall.Value,
			res.Classification, res.Priority, res.Revenue.AnnualRevenue)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer f.Close() //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

func persistRun(ctx context.Context, st *store.ResultStore, result *service.BatchResult) error {
	err := st.SaveRun(ctx, store.RunRecord{
		ID:         result.RunID,
		Requested:  result.Requested,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	}, result.Ranked)
	if err != nil {
		return err
	}
	fmt.Printf("run %s persisted\n", result.RunID)
	return nil
}
