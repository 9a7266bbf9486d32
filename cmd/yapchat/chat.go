package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/luciancaetano/yapnet"
	"github.com/luciancaetano/yapnet/internal/config"
	"github.com/luciancaetano/yapnet/ws"
)

type commandKind int

const (
	cmdChat commandKind = iota
	cmdRegister
	cmdResume
	cmdWhoami
	cmdQuit
	cmdHelp
)

type command struct {
	kind commandKind
	arg  string
}

// parseLine turns a line typed by the user into a command. Lines that do not start
// with a slash, or start with an unknown one, are chat.
func parseLine(line string) command {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return command{kind: cmdChat, arg: line}
	}

	name, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/register":
		return command{kind: cmdRegister, arg: arg}
	case "/resume":
		return command{kind: cmdResume, arg: arg}
	case "/whoami":
		return command{kind: cmdWhoami}
	case "/quit", "/exit":
		return command{kind: cmdQuit}
	case "/help":
		return command{kind: cmdHelp}
	default:
		return command{kind: cmdChat, arg: line}
	}
}

const helpText = `commands:
  /register <name>   create a new identity
  /resume <token>    restore an identity from a token
  /whoami            show the session state
  /quit              leave
anything else is sent as chat`

// printer renders handler callbacks on out.
type printer struct {
	out io.Writer
}

func (p printer) handler() yapnet.Handler {
	return yapnet.HandlerFuncs{
		ChatEntry: func(e yapnet.ChatEntry) {
			sender := color.Cyan.Sprint(e.Sender)
			if e.Local {
				sender = color.Gray.Sprint(e.Sender)
			}
			fmt.Fprintf(p.out, "%s: %s\n", sender, e.Content)
		},
		SessionAuthenticated: func(name, token string) {
			fmt.Fprintln(p.out, color.Green.Sprintf("* logged in as %s (token %s)", name, token))
		},
		OperatorLog: func(message string) {
			fmt.Fprintln(p.out, color.Yellow.Sprintf("! %s", message))
		},
	}
}

func newChatCmd(cfg *config.Config) *cobra.Command {
	var (
		url   string
		name  string
		token string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Connect to a server and chat from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCfg := cfg.Client()
			if url != "" {
				clientCfg.URL = url
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			client := ws.New(clientCfg, printer{out: out}.handler(), newLogger(*cfg))
			if err := client.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				client.Stop(stopCtx)
			}()

			switch {
			case token != "":
				if err := client.SubmitResume(ctx, token); err != nil {
					return err
				}
			case name != "":
				if err := client.SubmitRegistration(ctx, name); err != nil {
					return err
				}
			default:
				fmt.Fprintln(out, color.Gray.Sprint("type /register <name> to join, /help for commands"))
			}

			return runREPL(ctx, client, cmd.InOrStdin(), out)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "server URL (defaults to YAPNET_URL)")
	cmd.Flags().StringVar(&name, "name", "", "register with this username on start")
	cmd.Flags().StringVar(&token, "token", "", "resume with this token on start")
	return cmd
}

// runREPL reads stdin until EOF, /quit or ctx is done.
func runREPL(ctx context.Context, client yapnet.Client, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			done, err := execute(ctx, client, parseLine(line), out)
			if err != nil {
				if errors.Is(err, yapnet.ErrClientClosed) {
					return nil
				}
				fmt.Fprintln(out, color.Red.Sprintf("! %v", err))
			}
			if done {
				return nil
			}
		}
	}
}

func execute(ctx context.Context, client yapnet.Client, c command, out io.Writer) (bool, error) {
	switch c.kind {
	case cmdRegister:
		return false, client.SubmitRegistration(ctx, c.arg)
	case cmdResume:
		return false, client.SubmitResume(ctx, c.arg)
	case cmdWhoami:
		id := client.Identity()
		fmt.Fprintf(out, "state=%s name=%q token=%q pending=%d\n", id.State, id.Name, id.Token, client.Pending())
		return false, nil
	case cmdQuit:
		return true, nil
	case cmdHelp:
		fmt.Fprintln(out, helpText)
		return false, nil
	default:
		if strings.TrimSpace(c.arg) == "" {
			return false, nil
		}
		return false, client.SubmitChat(ctx, c.arg)
	}
}
