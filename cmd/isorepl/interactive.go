package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/riftlabs/isobridge/reference"
	"github.com/riftlabs/isobridge/transfer"
	"github.com/riftlabs/isobridge/vm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	isoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// demo is the two-isolate world isorepl drives: isolate A owns a root
// object with a greeter function, a nested object, and a busy-loop
// function for the timeout walkthrough. isolate B is where every
// operation is issued from, so every op in opList exercises a real
// cross-isolate trip.
type demo struct {
	registry *vm.Registry
	owner    *vm.Isolate
	caller   *vm.Isolate
	root     *reference.Handle
}

func newDemo() *demo {
	d := &demo{registry: vm.NewRegistry()}
	d.owner = d.registry.New(vm.IsolateOptions{})
	d.caller = d.registry.New(vm.IsolateOptions{})

	done := make(chan struct{})
	d.owner.Schedule(func(tok *vm.LockToken) {
		nested := vm.NewObject()
		nested.Set("b", vm.Number(1))
		a := vm.NewObject()
		a.Set("a", nested)

		greet := vm.NewFunction(func(_ context.Context, _ *vm.LockToken, _ vm.Value, args []vm.Value) (vm.Value, error) {
			name := "world"
			if len(args) > 0 {
				if s, ok := args[0].(vm.String); ok {
					name = string(s)
				}
			}
			return vm.String("hello " + name), nil
		})
		spin := vm.NewFunction(func(ctx context.Context, _ *vm.LockToken, _ vm.Value, _ []vm.Value) (vm.Value, error) {
			for {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				default:
				}
			}
		})

		root := vm.NewObject()
		root.Set("x", vm.Number(7))
		root.Set("nested", a)
		root.Set("greet", greet)
		root.Set("spin", spin)

		d.root = reference.New(tok, root, d.registry)
		close(done)
	}, nil)
	<-done
	return d
}

func (d *demo) close() {
	d.registry.Close()
}

type opInfo struct {
	name   string
	argLbl string
	run    func(d *demo, arg string) (string, error)
}

var opList = []opInfo{
	{name: "typeof", run: func(d *demo, _ string) (string, error) {
		return d.root.Typeof()
	}},
	{name: "copySync (whole root)", run: func(d *demo, _ string) (string, error) {
		var v vm.Value
		err := inCaller(d, func(tok *vm.LockToken) error {
			var e error
			v, e = d.root.CopySync(tok)
			return e
		})
		return describe(v), err
	}},
	{name: "getSync x (copy)", run: func(d *demo, _ string) (string, error) {
		var v vm.Value
		err := inCaller(d, func(tok *vm.LockToken) error {
			var e error
			v, e = d.root.GetSync(tok, vm.String("x"), transfer.Options{Copy: true})
			return e
		})
		return describe(v), err
	}},
	{name: "getSync nested.a.b (chained)", run: func(d *demo, _ string) (string, error) {
		var final vm.Value
		err := inCaller(d, func(tok *vm.LockToken) error {
			nested, e := d.root.GetSync(tok, vm.String("nested"), transfer.Options{})
			if e != nil {
				return e
			}
			nestedHandle := nested.(*reference.Handle)
			aRef, e := nestedHandle.GetSync(tok, vm.String("a"), transfer.Options{})
			if e != nil {
				return e
			}
			aHandle := aRef.(*reference.Handle)
			final, e = aHandle.GetSync(tok, vm.String("b"), transfer.Options{Copy: true})
			return e
		})
		return describe(final), err
	}},
	{name: "setSync k = {nested:1} (copy)", run: func(d *demo, _ string) (string, error) {
		nested := vm.NewObject()
		nested.Set("nested", vm.Number(1))
		var ok bool
		err := inCaller(d, func(tok *vm.LockToken) error {
			var e error
			ok, e = d.root.SetSync(tok, vm.String("k"), nested, transfer.Options{Copy: true})
			return e
		})
		return fmt.Sprintf("%v", ok), err
	}},
	{name: "applySync greet(name)", argLbl: "name", run: func(d *demo, arg string) (string, error) {
		if arg == "" {
			arg = "world"
		}
		var result vm.Value
		err := inCaller(d, func(tok *vm.LockToken) error {
			greet, e := d.root.GetSync(tok, vm.String("greet"), transfer.Options{})
			if e != nil {
				return e
			}
			greetHandle := greet.(*reference.Handle)
			args := vm.NewArgsObject([]vm.Value{vm.String(arg)})
			result, e = greetHandle.ApplySync(tok, nil, args, reference.ApplyOptions{})
			return e
		})
		return describe(result), err
	}},
	{name: "applySync spin() with timeout (ms)", argLbl: "timeout ms", run: func(d *demo, arg string) (string, error) {
		ms, _ := strconv.Atoi(arg)
		if ms <= 0 {
			ms = 25
		}
		var result vm.Value
		err := inCaller(d, func(tok *vm.LockToken) error {
			spin, e := d.root.GetSync(tok, vm.String("spin"), transfer.Options{})
			if e != nil {
				return e
			}
			spinHandle := spin.(*reference.Handle)
			opts := reference.ApplyOptions{Timeout: time.Duration(ms) * time.Millisecond}
			result, e = spinHandle.ApplySync(tok, nil, vm.NewArgsObject(nil), opts)
			return e
		})
		return describe(result), err
	}},
}

// inCaller schedules fn on the caller isolate and blocks until it runs,
// mirroring the LockToken discipline every reference.Handle operation
// requires: the calling goroutine must already hold the lock for the
// isolate it calls a sync method from.
func inCaller(d *demo, fn func(tok *vm.LockToken) error) error {
	done := make(chan error, 1)
	if err := d.caller.Schedule(func(tok *vm.LockToken) {
		done <- fn(tok)
	}, func(cancelErr error) {
		done <- cancelErr
	}); err != nil {
		return err
	}
	return <-done
}

func describe(v vm.Value) string {
	if v == nil {
		return "<nil>"
	}
	if h, ok := v.(*reference.Handle); ok {
		tt, _ := h.Typeof()
		return fmt.Sprintf("Reference<%s>", tt)
	}
	switch t := v.(type) {
	case vm.Number:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case vm.String:
		return string(t)
	case vm.Boolean:
		return fmt.Sprintf("%v", bool(t))
	case vm.Undefined:
		return "undefined"
	case vm.Null:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}

type modelState int

const (
	stateSelectOp modelState = iota
	stateInputArg
	stateShowResult
)

type model struct {
	demo             *demo
	err              error
	result           string
	selected         int
	input            textinput.Model
	state            modelState
	defaultTimeoutMs int
}

func newModel(d *demo, defaultTimeoutMs int) *model {
	ti := textinput.New()
	ti.Width = 40
	return &model{demo: d, input: ti, state: stateSelectOp, defaultTimeoutMs: defaultTimeoutMs}
}

type callResultMsg struct {
	result string
	err    error
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.demo.close()
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectOp && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectOp && m.selected < len(opList)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectOp:
				if opList[m.selected].argLbl != "" {
					m.input.Placeholder = opList[m.selected].argLbl
					m.input.SetValue("")
					if strings.Contains(opList[m.selected].argLbl, "timeout") {
						m.input.SetValue(strconv.Itoa(m.defaultTimeoutMs))
					}
					m.input.Focus()
					m.state = stateInputArg
					return m, nil
				}
				return m, m.callOp("")

			case stateInputArg:
				return m, m.callOp(m.input.Value())

			case stateShowResult:
				m.state = stateSelectOp
				m.result, m.err = "", nil
			}

		case "esc":
			if m.state != stateSelectOp {
				m.state = stateSelectOp
				m.result, m.err = "", nil
			}
		}

	case callResultMsg:
		m.result, m.err = msg.result, msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArg {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) callOp(arg string) tea.Cmd {
	op := opList[m.selected]
	return func() tea.Msg {
		result, err := op.run(m.demo, arg)
		return callResultMsg{result: result, err: err}
	}
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("isorepl"))
	b.WriteString(" ")
	b.WriteString(isoStyle.Render("two isolates, one reference"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectOp:
		b.WriteString("Select an operation to run from the caller isolate:\n\n")
		for i, op := range opList {
			cursor := "  "
			line := opStyle.Render(op.name)
			if i == m.selected {
				cursor = "> "
				line = selectedStyle.Render(op.name)
			}
			b.WriteString(cursor + line + "\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter run • q quit"))

	case stateInputArg:
		b.WriteString(fmt.Sprintf("%s\n\n", opStyle.Render(opList[m.selected].name)))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter run • esc back"))

	case stateShowResult:
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", opStyle.Render(opList[m.selected].name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(defaultTimeoutMs int) error {
	d := newDemo()
	p := tea.NewProgram(newModel(d, defaultTimeoutMs), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
