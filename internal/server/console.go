package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"minimap_sync/internal/hud"
	"minimap_sync/internal/minimap"
	"minimap_sync/internal/settings"
	"strings"
)

const CommandPrefix = "/"

type consoleCommand struct {
	usage    string
	function func(c *Console, args string) error
}

var consoleCommands = map[string]consoleCommand{
	"say": {"/say <text>", func(c *Console, args string) error {
		return c.session.Say(args)
	}},
	"status": {"/status <text>", func(c *Console, args string) error {
		return c.session.Status(args)
	}},
	"set": {"/set key=value,...", func(c *Console, args string) error {
		delta, err := settings.ParseDelta(args)
		if err != nil {
			return err
		}
		return c.session.SetLocal(delta.Apply(c.session.LocalSettings()))
	}},
	"override": {"/override", func(c *Console, _ string) error {
		return c.session.PushOverride()
	}},
	"disable": {"/disable", func(c *Console, _ string) error {
		return c.session.DisableOverride()
	}},
	"resync": {"/resync", func(c *Console, _ string) error {
		return c.session.Resync()
	}},
	"show": {"/show", func(c *Console, _ string) error {
		fmt.Fprintf(c.out, "effective: %s\n", settings.FormatPayload(c.session.Settings()))
		fmt.Fprintf(c.out, "local:     %s\n", settings.FormatPayload(c.session.LocalSettings()))
		fmt.Fprintf(c.out, "overridden=%v hosting=%v\n", c.session.Overridden(), c.session.Hosting())
		if c.feed != nil {
			fmt.Fprintln(c.out, c.feed.Render())
		}
		return nil
	}},
}

// Console drives a session from line-based input. Lines without the command
// prefix are sent as chat.
type Console struct {
	session *minimap.Session
	feed    *hud.StatusFeed
	out     io.Writer
}

func NewConsole(session *minimap.Session, feed *hud.StatusFeed, out io.Writer) *Console {
	return &Console{session: session, feed: feed, out: out}
}

// Run reads commands until in is exhausted, ctx is cancelled or /quit is entered
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if strings.TrimSpace(line) == CommandPrefix+"quit" {
				return nil
			}
			if err := c.Execute(line); err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
		}
	}
}

// Execute runs a single console line
func (c *Console) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, CommandPrefix) {
		return c.session.Say(line)
	}

	name, args, _ := strings.Cut(strings.TrimPrefix(line, CommandPrefix), " ")
	cmd, ok := consoleCommands[name]
	if !ok {
		return fmt.Errorf("unknown command %s%s, try %s", CommandPrefix, name, c.usage())
	}
	return cmd.function(c, strings.TrimSpace(args))
}

func (c *Console) usage() string {
	names := []string{"say", "status", "set", "override", "disable", "resync", "show"}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, consoleCommands[n].usage)
	}
	return strings.Join(parts, " | ")
}
