package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jonloone/nx1-space-sub002/internal/store"
)

var resultsLimit int

var resultsCmd = &cobra.Command{
	Use:   "results <run-id>",
	Short: "Show a persisted batch run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Store.DatabaseURL == "" {
			return eris.New("NX1_STORE_DATABASE_URL is not configured")
		}

		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.LoadRun(ctx, args[0])
		if err != nil {
			return err
		}
		ranked, err := st.LoadTopResults(ctx, run.ID, resultsLimit)
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		p.Printf("run %s: %d requested, %d succeeded, %d failed (%s)\n",
			run.ID, run.Requested, run.Succeeded, run.Failed,
			run.FinishedAt.Format("2006-01-02 15:04"))
		for _, r := range ranked {
			res := r.Result
			p.Printf("%4d  %-16s  %6.1f  %-13s %-8s\n",
				r.Rank, res.Cell.ID, res.Scores.Overall.Value,
				res.Classification, res.Priority)
		}
		return nil
	},
}

func init() {
	resultsCmd.Flags().IntVar(&resultsLimit, "limit", 20, "max rows to show")
	rootCmd.AddCommand(resultsCmd)
}
