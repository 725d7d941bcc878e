package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jonloone/nx1-space-sub002/internal/service"
)

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show metrics from a running scoring server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := statusAddr
		if addr == "" {
			addr = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
		}

		client := &http.Client{Timeout: 5 * time.Second}
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, addr+"/v1/metrics", nil)
		if err != nil {
			return eris.Wrap(err, "status: build request")
		}
		resp, err := client.Do(req)
		if err != nil {
			return eris.Wrapf(err, "status: reach %s", addr)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("status: server answered %s", resp.Status)
		}

		var snap service.MetricsSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return eris.Wrap(err, "status: decode metrics")
		}

		p := message.NewPrinter(language.English)
		mode := "inactive"
		if snap.Active {
			mode = "active"
		}
		p.Printf("mode:                 %s\n", mode)
		p.Printf("cells scored:         %d\n", snap.Scored)
		p.Printf("cache hits:           %d\n", snap.CacheHits)
		p.Printf("failures:             %d\n", snap.Failures)
		p.Printf("water short-circuits: %d\n", snap.WaterShortCircuits)
		p.Printf("batch runs:           %d\n", snap.BatchRuns)
		p.Printf("avg compute:          %.1f ms\n", snap.AvgComputeMs)
		p.Printf("cache:                %d/%d entries, %.1f%% hit rate, %d evictions\n",
			snap.Cache.Size, snap.Cache.Capacity, snap.Cache.HitRate*100, snap.Cache.Evictions)
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "server base URL (default http://localhost:<server.port>)")
	rootCmd.AddCommand(statusCmd)
}
