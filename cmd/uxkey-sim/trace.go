package main

import (
	"fmt"
	"io"

	uxlog "github.com/aerolens/uxsdk-go/pkg/log"
)

// cmdTrace prints the events of a trace file, optionally only those of
// one key.
func (c *Console) cmdTrace(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: trace <file> [key]")
	}
	var filter uxlog.Filter
	if len(args) == 2 {
		k, err := c.lookup(args[1])
		if err != nil {
			return err
		}
		filter.Key = k.String()
	}
	n, err := printTrace(c.out, args[0], filter)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%d events\n", n)
	return nil
}

// printTrace writes every event of the file matching filter to w and
// returns how many it wrote.
func printTrace(w io.Writer, path string, filter uxlog.Filter) (int, error) {
	r, err := uxlog.NewFilteredReader(path, filter)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	n := 0
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("%s: event %d: %w", path, n+1, err)
		}
		formatEvent(w, ev)
		n++
	}
}

// formatEvent writes one line per event: timestamp, component, category,
// subject and the payload details.
func formatEvent(w io.Writer, ev uxlog.Event) {
	ts := ev.Timestamp.Format("15:04:05.000000")
	subject := ev.Key
	if ev.ModelID != "" {
		subject = ev.ModelID
	}
	fmt.Fprintf(w, "%s %-5s %-12s %s", ts, ev.Component, ev.Category, subject)

	switch {
	case ev.Subscription != nil:
		fmt.Fprintf(w, " %s observers=%d", ev.Subscription.Action, ev.Subscription.Observers)
	case ev.Value != nil:
		switch {
		case ev.Value.Unavailable:
			fmt.Fprint(w, " unavailable")
		case ev.Value.Optimistic:
			fmt.Fprintf(w, " = %v (optimistic)", ev.Value.Value)
		default:
			fmt.Fprintf(w, " = %v", ev.Value.Value)
		}
	case ev.Write != nil:
		fmt.Fprintf(w, " %s %v", ev.Write.Phase, ev.Write.Value)
		if ev.Write.Error != "" {
			fmt.Fprintf(w, " error=%q", ev.Write.Error)
		}
	case ev.Lifecycle != nil:
		fmt.Fprintf(w, " %s %s -> %s bindings=%d", ev.Lifecycle.Model, ev.Lifecycle.OldState, ev.Lifecycle.NewState, ev.Lifecycle.Bindings)
	case ev.Error != nil:
		fmt.Fprintf(w, " error=%q", ev.Error.Message)
		if ev.Error.Terminal {
			fmt.Fprint(w, " terminal")
		}
	}
	fmt.Fprintln(w)
}
