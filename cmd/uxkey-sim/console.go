package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/store"
)

// commandTimeout bounds writes issued from the console.
const commandTimeout = 5 * time.Second

// Console is the interactive command line of uxkey-sim.
type Console struct {
	app *App
	rl  *readline.Instance
	out io.Writer

	observers map[key.Identity]*store.Subscription
}

// NewConsole creates a console reading from the terminal.
func NewConsole(app *App) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "uxkey> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	c := newConsole(app, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(app *App, out io.Writer) *Console {
	return &Console{
		app:       app,
		out:       out,
		observers: make(map[key.Identity]*store.Subscription),
	}
}

// Stdout returns a writer that does not interfere with the prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Run reads commands until quit, EOF or ctx is done.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()
	defer c.closeObservers()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
		if c.exec(ctx, line) {
			cancel()
			return
		}
	}
}

// exec runs one command line and reports whether the console should exit.
func (c *Console) exec(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		c.printHelp()
	case "widgets", "w":
		c.cmdWidgets()
	case "keys", "k":
		err = c.cmdKeys(args)
	case "get", "g":
		err = c.cmdGet(args)
	case "set", "s":
		err = c.cmdSet(ctx, args)
	case "device", "d":
		err = c.cmdDevice(args)
	case "observe", "o":
		err = c.cmdObserve(args)
	case "unobserve", "u":
		err = c.cmdUnobserve(args)
	case "trigger", "t":
		err = c.wait(ctx, "shutter", c.app.record.Trigger)
	case "aelock", "ae":
		err = c.wait(ctx, "ae-lock", c.app.aeLock.Toggle)
	case "camera":
		err = c.cmdCamera(args)
	case "setup", "cleanup", "restart":
		err = c.cmdLifecycle(cmd, args)
	case "trace":
		err = c.cmdTrace(args)
	case "disconnect":
		c.app.device.Disconnect()
		fmt.Fprintln(c.out, "Device disconnected")
	case "connect":
		c.app.device.Connect()
		fmt.Fprintln(c.out, "Device connected")
	case "quit", "exit", "q":
		return true
	default:
		err = fmt.Errorf("unknown command %q (type 'help')", cmd)
	}
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
UX Key Simulator Commands:
  Keys:
    keys [namespace]        - List namespaces or the parameters of one
    get <key>               - Show the cached value of a key
    set <key> <value>       - Write a key through the store
    device <key> <value>    - Change a value on the simulated aircraft
    observe <key>           - Print every value of a key
    unobserve <key>         - Stop printing a key

  Widgets:
    widgets                 - Show every widget
    trigger                 - Press the shutter button
    aelock                  - Toggle the exposure lock
    camera <index>          - Move the shutter widget to another camera
    setup|cleanup|restart <widget>

  Device:
    disconnect              - Drop the link to the aircraft
    connect                 - Restore the link

  Trace:
    trace <file> [key]      - Print a recorded event trace

  General:
    help                    - Show this help
    quit                    - Exit

  Key Format:
    Namespace.Name[Index] or Namespace.Name[Index:SubIndex], e.g. Camera.IsRecording[0]`)
}

func (c *Console) cmdWidgets() {
	for _, p := range c.app.panels {
		fmt.Fprintf(c.out, "  %-12s %-11s %s\n", p.title, p.model.State(), p.describe())
	}
}

func (c *Console) cmdKeys(args []string) error {
	if len(args) == 0 {
		for _, ns := range c.app.reg.Namespaces() {
			fmt.Fprintf(c.out, "  %s (%d)\n", ns, len(c.app.reg.Params(ns)))
		}
		return nil
	}
	params := c.app.reg.Params(args[0])
	if len(params) == 0 {
		return fmt.Errorf("%w: namespace %q", key.ErrUnknownParameter, args[0])
	}
	for _, m := range params {
		line := fmt.Sprintf("  %-18s %-12s %-4s", m.Name, m.GoType(), m.Access)
		if m.Unit != "" {
			line += " [" + m.Unit + "]"
		}
		fmt.Fprintln(c.out, strings.TrimRight(line, " "))
	}
	return nil
}

func (c *Console) lookup(s string) (key.AnyKey, error) {
	id, err := key.ParseIdentity(s)
	if err != nil {
		return nil, err
	}
	return c.app.reg.LookupIdentity(id)
}

func (c *Console) cmdGet(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: get <key>")
	}
	k, err := c.lookup(args[0])
	if err != nil {
		return err
	}
	if v, ok := c.app.store.CachedValue(k); ok {
		fmt.Fprintf(c.out, "%s = %v\n", k, v)
		return nil
	}
	if v, ok := c.app.source.Read(k); ok {
		fmt.Fprintf(c.out, "%s = %v (not observed)\n", k, v)
		return nil
	}
	fmt.Fprintf(c.out, "%s has no value\n", k)
	return nil
}

// parseAssignment resolves "<key> <value>" and converts the value to the
// key's type.
func (c *Console) parseAssignment(args []string, usage string) (key.AnyKey, any, error) {
	if len(args) < 2 {
		return nil, nil, errors.New("usage: " + usage)
	}
	k, err := c.lookup(args[0])
	if err != nil {
		return nil, nil, err
	}
	v, err := k.Meta().Coerce(strings.Join(args[1:], " "))
	if err != nil {
		return nil, nil, err
	}
	return k, v, nil
}

func (c *Console) cmdSet(ctx context.Context, args []string) error {
	k, v, err := c.parseAssignment(args, "set <key> <value>")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if err := c.app.store.SetAny(ctx, k, v).Wait(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s <- %v\n", k, v)
	return nil
}

func (c *Console) cmdDevice(args []string) error {
	k, v, err := c.parseAssignment(args, "device <key> <value>")
	if err != nil {
		return err
	}
	c.app.device.Set(k, v)
	return nil
}

func (c *Console) cmdObserve(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: observe <key>")
	}
	k, err := c.lookup(args[0])
	if err != nil {
		return err
	}
	if _, ok := c.observers[k.Identity()]; ok {
		return fmt.Errorf("already observing %s", k)
	}
	name := k.String()
	sub, err := c.app.store.ObserveAny(k,
		func(v any) { fmt.Fprintf(c.out, "  %s = %v\n", name, v) },
		store.WithErrorHandler(func(err error) { fmt.Fprintf(c.out, "  %s error: %v\n", name, err) }),
		store.WithUnavailableHandler(func() { fmt.Fprintf(c.out, "  %s unavailable\n", name) }),
	)
	if err != nil {
		return err
	}
	c.observers[k.Identity()] = sub
	return nil
}

func (c *Console) cmdUnobserve(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: unobserve <key>")
	}
	k, err := c.lookup(args[0])
	if err != nil {
		return err
	}
	sub, ok := c.observers[k.Identity()]
	if !ok {
		return fmt.Errorf("not observing %s", k)
	}
	sub.Close()
	delete(c.observers, k.Identity())
	return nil
}

func (c *Console) closeObservers() {
	ids := make([]key.Identity, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	for _, id := range ids {
		c.observers[id].Close()
		delete(c.observers, id)
	}
}

func (c *Console) wait(ctx context.Context, title string, action func(context.Context) *store.Completion) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if err := action(ctx).Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", title, err)
	}
	fmt.Fprintf(c.out, "%s: done\n", title)
	return nil
}

func (c *Console) cmdCamera(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: camera <index>")
	}
	index, err := strconv.Atoi(args[0])
	if err != nil || index < 0 {
		return fmt.Errorf("invalid camera index %q", args[0])
	}
	if err := c.app.record.SetCameraIndex(index); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "shutter: camera %d\n", index)
	return nil
}

func (c *Console) cmdLifecycle(cmd string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s <widget>", cmd)
	}
	p := c.app.panel(args[0])
	if p == nil {
		return fmt.Errorf("unknown widget %q", args[0])
	}
	var err error
	switch cmd {
	case "setup":
		err = p.model.Setup()
	case "cleanup":
		p.model.Cleanup()
	case "restart":
		err = p.model.Restart()
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s: %s\n", p.title, p.model.State())
	return nil
}
