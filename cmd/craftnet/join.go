package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/linchenxuan/craftnet/network/client"
	"github.com/linchenxuan/craftnet/network/provider"
)

func joinCmd(g *globalFlags) *cobra.Command {
	var (
		name        string
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "join <addr>",
		Short: "Log an offline player in and stay connected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(g)
			if err != nil {
				return err
			}
			defer app.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			var rl *readline.Instance
			if interactive {
				rl, err = readline.NewEx(&readline.Config{
					Prompt:          "» ",
					AutoComplete:    newCompleter(),
					InterruptPrompt: "^C",
					EOFPrompt:       "/quit",
				})
				if err != nil {
					return fmt.Errorf("readline: %w", err)
				}
				defer rl.Close()
				out = rl.Stdout()
			}

			c, err := app.NewClient(ctx, name, client.Option{
				OnChat: func(ch client.Chat) { fmt.Fprintln(out, ch.Text) },
				OnDisconnect: func(reason string) {
					fmt.Fprintf(out, "disconnected: %s\n", reason)
				},
			})
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Join(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, "joined %s as %s (%s)\n", args[0], c.Username(), c.UUID())

			if rl == nil {
				err := c.Wait(ctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			go func() {
				<-c.Conn().Done()
				_ = rl.Close()
			}()
			return chatLoop(rl, out, c)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "player name, [client].username when empty")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read chat lines and commands from the terminal")
	return cmd
}

func newCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("/quit"),
		readline.PcItem("/pos"),
		readline.PcItem("/info"),
		readline.PcItem("/swing"),
	)
}

// chatLoop sends every line as chat until /quit, EOF or the end of the
// connection. Lines starting with a slash that are not local commands go
// to the server as commands.
func chatLoop(rl *readline.Instance, out io.Writer, c *client.Client) error {
	p := c.Provider()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if err != nil {
			// EOF, or the connection closed the prompt
			return nil
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "/quit":
			return nil
		case "/pos":
			pos := c.Position()
			fmt.Fprintf(out, "x=%.2f y=%.2f z=%.2f yaw=%.1f pitch=%.1f\n", pos.X, pos.Y, pos.Z, pos.Yaw, pos.Pitch)
			continue
		case "/info":
			info := p.Info()
			fmt.Fprintf(out, "latency=%s in=%.2fKB/s out=%.2fKB/s packets in=%d out=%d\n",
				info.Latency, info.KBInPerSecond(), info.KBOutPerSecond(), info.PacketsIn, info.PacketsOut)
			continue
		case "/swing":
			p.SwingArm(provider.SwingRightArm)
			continue
		}
		if err := p.Chat(line); err != nil {
			fmt.Fprintf(out, "not sent: %v\n", err)
		}
	}
}
