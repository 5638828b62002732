package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/linchenxuan/craftnet"
	"github.com/linchenxuan/craftnet/network/client"
)

type pingOutcome struct {
	addr string
	res  *client.PingResult
	err  error
}

func pingCmd(g *globalFlags) *cobra.Command {
	var (
		timeout  time.Duration
		parallel int
	)
	cmd := &cobra.Command{
		Use:   "ping <addr>...",
		Short: "Query the status of one or more servers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(g)
			if err != nil {
				return err
			}
			defer app.Stop()

			outcomes := pingAll(cmd.Context(), app, args, timeout, parallel)
			failed := 0
			for _, o := range outcomes {
				if o.err != nil {
					failed++
				}
				printPing(cmd.OutOrStdout(), o)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d servers did not answer", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 5*time.Second, "timeout per server")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 8, "servers queried at once")
	return cmd
}

// pingAll queries every address, at most parallel at a time. Outcomes keep
// the order of addrs; one failing server does not cancel the others.
func pingAll(ctx context.Context, app *craftnet.App, addrs []string, timeout time.Duration, parallel int) []pingOutcome {
	if ctx == nil {
		ctx = context.Background()
	}
	outcomes := make([]pingOutcome, len(addrs))
	var eg errgroup.Group
	if parallel > 0 {
		eg.SetLimit(parallel)
	}
	for i, addr := range addrs {
		i, addr := i, addr
		eg.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			res, err := app.Ping(pctx, addr)
			outcomes[i] = pingOutcome{addr: addr, res: res, err: err}
			return nil
		})
	}
	_ = eg.Wait()
	return outcomes
}

func printPing(w io.Writer, o pingOutcome) {
	if o.err != nil {
		fmt.Fprintf(w, "%s\terror: %v\n", o.addr, o.err)
		return
	}
	s := o.res.Status
	motd := strings.Join(strings.Fields(s.MOTD()), " ")
	fmt.Fprintf(w, "%s\t%s (%d)\t%d/%d players\t%dms\t%s\n",
		o.res.Addr, s.Version.Name, s.Version.Protocol, s.Players.Online, s.Players.Max,
		o.res.Latency.Milliseconds(), motd)
}
