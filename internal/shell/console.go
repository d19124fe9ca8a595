package shell

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/phuslu/log"

	"github.com/seenimoa/newsdesk/internal/quotes"
	"github.com/seenimoa/newsdesk/internal/selection"
)

// Prompt is printed whenever the console waits for input.
const Prompt = `Enter selection (or "guide" for options, "quit" to exit): `

// Console is the interactive line shell. User input, command results and
// ticker-tape refreshes are all handled by a single loop in Run.
type Console struct {
	exec *Executor
	in   io.Reader
	out  io.Writer

	ticker   []quotes.Instrument
	schedule string
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithTicker enables the ticker tape for list, refreshed on the cron
// schedule spec. An empty list or spec disables it.
func WithTicker(list []quotes.Instrument, spec string) ConsoleOption {
	return func(c *Console) {
		c.ticker = list
		c.schedule = spec
	}
}

// NewConsole creates a Console reading lines from in and writing to out.
func NewConsole(exec *Executor, in io.Reader, out io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{exec: exec, in: in, out: out}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) tickerEnabled() bool {
	return len(c.ticker) > 0 && c.schedule != "" && c.exec.markets != nil
}

// Run prints the guide and serves input until quit, end of input or ctx
// cancellation. Selections run one at a time; lines typed while one is in
// flight are queued. At end of input, queued selections still complete.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := NewScheduler(16)
	if c.tickerEnabled() {
		refresh := func(ctx context.Context) Event {
			return Event{Kind: EventTape, Tiles: c.exec.markets.Board(ctx, c.ticker)}
		}
		if err := sched.Every(ctx, c.schedule, refresh); err != nil {
			return err
		}
		sched.Go(ctx, refresh)
		sched.Start()
		defer func() {
			cancel()
			sched.Stop()
		}()
	}

	input := make(chan string)
	go c.readLines(ctx, input)
	lines := (<-chan string)(input)

	fmt.Fprint(c.out, c.exec.Guide())
	fmt.Fprint(c.out, Prompt)

	var queue []string
	busy, eof := false, false
	start := func(input string) {
		busy = true
		sched.Go(ctx, func(ctx context.Context) Event {
			return Event{Kind: EventResult, Input: input, Output: c.exec.Execute(ctx, input)}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				if !busy {
					fmt.Fprintln(c.out)
					return nil
				}
				eof, lines = true, nil
				continue
			}
			line = strings.TrimSpace(line)
			switch {
			case line == "":
				if !busy {
					fmt.Fprint(c.out, Prompt)
				}
			case selection.ParseCommand(line) == selection.CommandQuit:
				return nil
			case busy:
				queue = append(queue, line)
			default:
				start(line)
			}

		case ev := <-sched.Events():
			switch ev.Kind {
			case EventTape:
				var buf bytes.Buffer
				c.exec.renderer.Tape(&buf, ev.Tiles)
				fmt.Fprint(c.out, "\n"+buf.String())
				if !busy {
					fmt.Fprint(c.out, Prompt)
				}
			case EventResult:
				busy = false
				fmt.Fprint(c.out, ev.Output.Text)
				log.Debug().Str("input", ev.Input).Int("status", ev.Output.Status).Msg("selection done")
				if len(queue) > 0 {
					next := queue[0]
					queue = queue[1:]
					start(next)
					continue
				}
				if eof {
					fmt.Fprintln(c.out)
					return nil
				}
				fmt.Fprint(c.out, Prompt)
			}
		}
	}
}

func (c *Console) readLines(ctx context.Context, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Msg("read input")
	}
}
