package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/protocol"
)

const playHelp = `Commands:
  start          Start the round (host)
  end            End the round and reveal roles (host)
  restart        Return a finished session to waiting (host)
  spies <n>      Set the configured spy count (host)
  role           Show your role for the current round
  leave          Leave the session and quit
  quit           Disconnect without leaving
  help           Show this help`

// playOptions selects how a play run enters its session
type playOptions struct {
	Name     string
	Create   bool
	Join     string
	SpyCount int
}

func newPlayCmd() *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Host or join a session on the live event channel",
		Long: `Connect to the event channel, register, and create or join a session.
Events are printed as they arrive and commands are read from stdin.

The player ID is saved to the ID file so a later run can reclaim the same
seat after a dropped connection.

` + playHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Create == (opts.Join != "") {
				return errors.New("exactly one of --create or --join is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return play(ctx, cmd.InOrStdin(), NewOutput(cmd.OutOrStdout(), cfg.Output), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Display name (required)")
	cmd.Flags().BoolVar(&opts.Create, "create", false, "Create a new session and host it")
	cmd.Flags().StringVar(&opts.Join, "join", "", "Code of the session to join")
	cmd.Flags().IntVar(&opts.SpyCount, "spies", 0, "Spy count for a new session (default: server default)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func play(ctx context.Context, in io.Reader, out *Output, opts playOptions) error {
	conn, err := Dial(ctx, cfg.ServerURL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	existing, err := cfg.LoadPlayerID()
	if err != nil {
		return fmt.Errorf("failed to read player ID: %w", err)
	}

	var registered protocol.RegisterResponse
	if err := conn.Request(ctx, protocol.TypeRegister, protocol.RegisterRequest{Name: opts.Name, ExistingID: existing}, &registered); err != nil {
		return err
	}
	if err := cfg.SavePlayerID(registered.ID); err != nil {
		return fmt.Errorf("failed to save player ID: %w", err)
	}
	if cfg.Verbose {
		out.PrintMessage("Player ID: " + string(registered.ID))
	}

	code := opts.Join
	if opts.Create {
		req := protocol.CreateSessionRequest{}
		if opts.SpyCount > 0 {
			req.SpyCount = &opts.SpyCount
		}
		var created protocol.CreateSessionResponse
		if err := conn.Request(ctx, protocol.TypeCreateSession, req, &created); err != nil {
			return err
		}
		code = string(created.SessionID)
		out.PrintMessage(fmt.Sprintf("Created session %s (spies: %d, min players: %d)",
			created.SessionID, created.SpyCount, created.MinPlayersToStart))
	} else {
		var joined protocol.JoinSessionResponse
		if err := conn.Request(ctx, protocol.TypeJoinSession, protocol.SessionRequest{SessionID: code}, &joined); err != nil {
			return err
		}
		code = string(joined.SessionID)
		out.Print(joined)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-conn.Events():
			if !ok {
				return errors.New("server closed the connection")
			}
			out.PrintEvent(frame, registered.ID)
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := runPlayCommand(ctx, conn, out, code, registered.ID, line)
			if err != nil {
				out.PrintError(err)
			}
			if quit {
				return nil
			}
		}
	}
}

// runPlayCommand executes one line of input, reporting whether the run should stop
func runPlayCommand(ctx context.Context, conn *Conn, out *Output, code string, self model.PlayerID, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	session := protocol.SessionRequest{SessionID: code}

	switch fields[0] {
	case "start":
		return false, conn.Request(ctx, protocol.TypeStartSession, session, nil)
	case "end":
		return false, conn.Request(ctx, protocol.TypeEndSession, session, nil)
	case "restart":
		return false, conn.Request(ctx, protocol.TypeRestartSession, session, nil)
	case "spies":
		if len(fields) != 2 {
			return false, errors.New("usage: spies <n>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, fmt.Errorf("invalid spy count: %s", fields[1])
		}
		var result protocol.SetSpyCountResponse
		if err := conn.Request(ctx, protocol.TypeSetSpyCount, protocol.SetSpyCountRequest{SessionID: code, SpyCount: n}, &result); err != nil {
			return false, err
		}
		out.PrintMessage(fmt.Sprintf("Spies: %d (effective %d)", result.SpyCount, result.EffectiveSpyCount))
		return false, nil
	case "role":
		var info model.RoleInfo
		if err := conn.Request(ctx, protocol.TypeRequestRoleInfo, struct{}{}, &info); err != nil {
			return false, err
		}
		out.Print(info)
		return false, nil
	case "leave":
		if err := conn.Request(ctx, protocol.TypeLeaveSession, protocol.LeaveSessionRequest{SessionID: code, PlayerID: self}, nil); err != nil {
			return false, err
		}
		out.PrintMessage("Left session " + code)
		return true, nil
	case "quit", "exit":
		return true, nil
	case "help":
		out.PrintMessage(playHelp)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q (try help)", fields[0])
	}
}
