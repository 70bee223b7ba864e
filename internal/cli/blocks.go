package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/clartest/internal/clarity"
	"github.com/roach88/clartest/internal/store"
)

// BlocksOptions holds flags for the blocks command.
type BlocksOptions struct {
	*RootOptions
	Database string
	Session  string // optional - limit to one session
}

// SessionLog is one recorded chain.
type SessionLog struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Blocks []BlockLog `json:"blocks"`
}

// BlockLog is one recorded block.
type BlockLog struct {
	Height       int64   `json:"height"`
	Hash         string  `json:"hash"`
	ParentHash   string  `json:"parent_hash"`
	Transactions []TxLog `json:"transactions"`
}

// TxLog is one recorded transaction with its receipt.
type TxLog struct {
	ID        string   `json:"id"`
	Sender    string   `json:"sender"`
	Nonce     uint64   `json:"nonce"`
	Call      string   `json:"call"`
	Args      []string `json:"args"`
	Result    string   `json:"result"`
	Committed bool     `json:"committed"`
}

// NewBlocksCommand creates the blocks command.
func NewBlocksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BlocksOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Show chains recorded in a database",
		Long: `Show the sessions, blocks and receipts recorded by "clartest test --db".

Sessions are listed in the order they were created; blocks by height and
transactions in block order.

Examples:
  clartest blocks --db ./chain.db
  clartest blocks --db ./chain.db --session 0190a3c2-...
  clartest blocks --db ./chain.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocks(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "only show this session")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runBlocks(opts *BlocksOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	st, err := openStore(opts.Database, true)
	if err != nil {
		return formatter.Fail(ErrCodeStore, err)
	}
	defer st.Close()

	sessions, err := st.ReadSessions(ctx)
	if err != nil {
		return formatter.Fail(ErrCodeStore, WrapExitError(ExitCommandError, "failed to read sessions", err))
	}

	logs := []SessionLog{}
	for _, s := range sessions {
		if opts.Session != "" && s.ID != opts.Session {
			continue
		}
		blocks, err := st.ReadBlocks(ctx, s.ID)
		if err != nil {
			return formatter.Fail(ErrCodeStore, WrapExitError(ExitCommandError, "failed to read blocks", err))
		}
		logs = append(logs, sessionLog(s, blocks))
	}

	if opts.Session != "" && len(logs) == 0 {
		return formatter.Fail(ErrCodeNotFound, NewExitError(ExitCommandError, "session not found: "+opts.Session))
	}

	if formatter.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: logs}
		if opts.Session != "" {
			resp.TraceID = opts.Session
		}
		return formatter.encode(resp)
	}

	outputBlocksText(formatter.Writer, logs)
	return nil
}

func sessionLog(s store.Session, blocks []store.Block) SessionLog {
	log := SessionLog{ID: s.ID, Name: s.Name, Blocks: make([]BlockLog, 0, len(blocks))}
	for _, b := range blocks {
		bl := BlockLog{
			Height:       b.Height,
			Hash:         b.Hash,
			ParentHash:   b.ParentHash,
			Transactions: make([]TxLog, 0, len(b.Transactions)),
		}
		for _, tx := range b.Transactions {
			bl.Transactions = append(bl.Transactions, TxLog{
				ID:        tx.ID,
				Sender:    tx.Sender,
				Nonce:     tx.Nonce,
				Call:      tx.Contract + "." + tx.Function,
				Args:      valueStrings(tx.Args),
				Result:    tx.Result.String(),
				Committed: tx.Committed,
			})
		}
		log.Blocks = append(log.Blocks, bl)
	}
	return log
}

func valueStrings(vals []clarity.Value) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out
}

func outputBlocksText(w io.Writer, logs []SessionLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return
	}

	for i, s := range logs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Session %s", s.ID)
		if s.Name != "" {
			fmt.Fprintf(w, " (%s)", s.Name)
		}
		fmt.Fprintln(w)

		for _, b := range s.Blocks {
			fmt.Fprintf(w, "  Block %d %s\n", b.Height, short(b.Hash))
			for _, tx := range b.Transactions {
				status := ""
				if !tx.Committed {
					status = " (rolled back)"
				}
				fmt.Fprintf(w, "    %s %s (%s) -> %s%s\n",
					short(tx.ID), tx.Call, strings.Join(tx.Args, " "), tx.Result, status)
			}
		}
	}
}

// short abbreviates a hex hash for display.
func short(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
