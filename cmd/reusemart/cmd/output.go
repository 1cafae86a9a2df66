package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/service"
)

type format string

const (
	formatText format = "text"
	formatYAML format = "yaml"
	formatJSON format = "json"
)

func parseFormat(s string) (format, error) {
	switch f := format(strings.ToLower(s)); f {
	case formatText, formatYAML, formatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, yaml or json)", s)
	}
}

// emit writes v in the selected format. text renders the human form.
func emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	f, err := parseFormat(outputFormat)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch f {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		text(tw)
		return tw.Flush()
	}
}

// traced logs every state screen accepts at debug level.
func traced[T any](logger *slog.Logger, name string, screen *service.Screen[T]) *service.Screen[T] {
	screen.OnChange(func(st service.ScreenState[T]) {
		logger.Debug("screen state", "screen", name, "phase", st.Phase, "key", st.Key)
	})
	return screen
}

// show renders the final state of a loaded screen and unmounts it. An empty
// screen prints emptyMsg in text mode and the empty value otherwise.
func show[T any](cmd *cobra.Command, screen *service.Screen[T], emptyMsg string, text func(w io.Writer, data T)) error {
	if !screen.Mounted() {
		return errors.New("screen was unmounted before it finished loading")
	}
	defer screen.Unmount()
	st := screen.Current()
	switch st.Phase {
	case service.PhaseError:
		return st.Err
	case service.PhaseEmpty:
		return emit(cmd, st.Data, func(w io.Writer) { fmt.Fprintln(w, emptyMsg) })
	case service.PhaseLoaded:
		return emit(cmd, st.Data, func(w io.Writer) { text(w, st.Data) })
	default:
		return fmt.Errorf("screen did not finish loading (%s)", st.Phase)
	}
}

// message prints a one-line status in text mode, or v otherwise.
func message(cmd *cobra.Command, v any, msg string, args ...any) error {
	return emit(cmd, v, func(w io.Writer) { fmt.Fprintf(w, msg+"\n", args...) })
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(market.DateLayout)
}

// rupiah formats an amount the way Indonesian prices are written: Rp 1.250.000.
func rupiah(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprint(n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "Rp " + b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// stdinConfirmer asks on stderr and reads y/N from in.
type stdinConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newConfirmer(cmd *cobra.Command, skip bool) service.Confirmer {
	if skip {
		return service.AlwaysConfirm
	}
	return &stdinConfirmer{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.ErrOrStderr()}
}

func (c *stdinConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	answer, _ := c.in.ReadString('\n')
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y"
}
