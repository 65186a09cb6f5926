package sim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/source"
)

// Scenario errors.
var (
	ErrInvalidStep = errors.New("invalid scenario step")
)

// Scenario is a timeline of device changes.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one change at an offset from the start of the scenario.
// A step sets exactly one action: Value or Error for Key, FailWrites,
// Disconnect or Connect.
type Step struct {
	// At is the offset from the scenario start.
	At time.Duration `yaml:"at"`

	// Key is the identity string, e.g. "Camera.IsRecording[0]".
	Key string `yaml:"key,omitempty"`

	// Value is the new value, coerced to the key's type.
	Value any `yaml:"value,omitempty"`

	// Error delivers an observation error for Key.
	Error string `yaml:"error,omitempty"`

	// Terminal marks Error as ending the observation.
	Terminal bool `yaml:"terminal,omitempty"`

	// FailWrites sets the write failure; "none" accepts writes again.
	FailWrites string `yaml:"fail_writes,omitempty"`

	// Disconnect and Connect toggle the device presence.
	Disconnect bool `yaml:"disconnect,omitempty"`
	Connect    bool `yaml:"connect,omitempty"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

// ParseScenario parses a YAML scenario. Steps are sorted by At, keeping the
// file order for equal offsets.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario parse error: %w", err)
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	return &s, nil
}

// Duration returns the offset of the last step.
func (s *Scenario) Duration() time.Duration {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].At
}

type action func(d *Device)

type resolvedStep struct {
	at  time.Duration
	act action
}

// Player applies a scenario to a device. A Player is not safe for concurrent
// use.
type Player struct {
	dev     *Device
	steps   []resolvedStep
	next    int
	elapsed time.Duration
}

// NewPlayer resolves every step against the registry. It fails on the first
// step that names an unknown key or a value of the wrong type.
func NewPlayer(dev *Device, reg *key.Registry, s *Scenario) (*Player, error) {
	p := &Player{dev: dev}
	for i, st := range s.Steps {
		act, err := resolve(reg, st)
		if err != nil {
			return nil, fmt.Errorf("step %d (at %s): %w", i+1, st.At, err)
		}
		p.steps = append(p.steps, resolvedStep{at: st.At, act: act})
	}
	return p, nil
}

func resolve(reg *key.Registry, st Step) (action, error) {
	if n := st.actions(); n > 1 {
		return nil, fmt.Errorf("%w: %d actions in one step", ErrInvalidStep, n)
	}

	switch {
	case st.Disconnect:
		return func(d *Device) { d.Disconnect() }, nil
	case st.Connect:
		return func(d *Device) { d.Connect() }, nil
	case st.FailWrites != "":
		err := writeFailure(st.FailWrites)
		return func(d *Device) { d.FailWrites(err) }, nil
	}

	if st.Key == "" {
		return nil, fmt.Errorf("%w: no key", ErrInvalidStep)
	}
	id, err := key.ParseIdentity(st.Key)
	if err != nil {
		return nil, err
	}
	k, err := reg.LookupIdentity(id)
	if err != nil {
		return nil, err
	}

	if st.Error != "" {
		err := errors.New(st.Error)
		if st.Terminal {
			err = source.Terminal(err)
		}
		return func(d *Device) { d.Fail(k, err) }, nil
	}

	if st.Value == nil {
		return nil, fmt.Errorf("%w: %s has no value", ErrInvalidStep, st.Key)
	}
	v, err := k.Meta().Coerce(st.Value)
	if err != nil {
		return nil, err
	}
	return func(d *Device) { d.Set(k, v) }, nil
}

func (st Step) actions() int {
	n := 0
	for _, set := range []bool{st.Value != nil, st.Error != "", st.FailWrites != "", st.Disconnect, st.Connect} {
		if set {
			n++
		}
	}
	return n
}

func writeFailure(name string) error {
	switch name {
	case "none":
		return nil
	case ErrExecutionFailed.Error():
		return ErrExecutionFailed
	default:
		return errors.New(name)
	}
}

// AdvanceTo applies every pending step with an offset up to t and returns
// the number of steps applied.
func (p *Player) AdvanceTo(t time.Duration) int {
	n := 0
	for p.next < len(p.steps) && p.steps[p.next].at <= t {
		p.steps[p.next].act(p.dev)
		p.next++
		n++
	}
	if t > p.elapsed {
		p.elapsed = t
	}
	return n
}

// Elapsed returns the offset reached so far.
func (p *Player) Elapsed() time.Duration {
	return p.elapsed
}

// Done reports whether every step was applied.
func (p *Player) Done() bool {
	return p.next >= len(p.steps)
}

// Run plays the remaining steps in real time, scaled by speed (2 plays
// twice as fast). It returns when all steps are applied or ctx is done.
func (p *Player) Run(ctx context.Context, speed float64) error {
	if speed <= 0 {
		speed = 1
	}
	start := time.Now()
	base := p.elapsed

	for !p.Done() {
		due := time.Duration(float64(p.steps[p.next].at-base) / speed)
		wait := due - time.Since(start)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
		p.AdvanceTo(p.steps[p.next].at)
	}
	return nil
}
