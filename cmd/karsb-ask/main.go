// Command karsb-ask answers one clan stats question and exits.
//
//	karsb-ask who had most warattack in APR 2025
//	echo "top 5 clanscore in APR 2025" | karsb-ask --json
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bdobrica/karsb/internal/karsb/app"
	"github.com/bdobrica/karsb/internal/karsb/chat"
	"github.com/bdobrica/karsb/internal/karsb/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "karsb-ask [question...]",
		Short: "Answer one clan stats question",
		Long:  "Answer one clan stats question and exit. Without arguments the question is read from stdin.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(asJSON, args, cmd.InOrStdin(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON response")
	return cmd
}

func run(asJSON bool, args []string, stdin io.Reader, stdout io.Writer) error {
	question := strings.Join(args, " ")
	if len(args) == 0 {
		var err error
		if question, err = readQuestion(stdin); err != nil {
			return err
		}
	}

	config, err := app.LoadConfig()
	if err != nil {
		return err
	}
	// The CLI never serves and never records.
	config.Matrix, config.HTTPAddr, config.DBPath = nil, "", ""
	observability.Setup(config.LogLevel, config.LogFormat, config.Secrets()...)

	karsb, err := app.New(config)
	if err != nil {
		return err
	}
	defer karsb.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resp, err := karsb.Ask(ctx, currentUser(), app.ChannelCLI, question)
	if err != nil {
		return err
	}
	return write(stdout, resp, asJSON)
}

func readQuestion(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read question: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

func write(w io.Writer, resp chat.Response, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	_, err := fmt.Fprintln(w, app.FormatReply(resp))
	return err
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}
