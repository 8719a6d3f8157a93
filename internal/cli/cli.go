package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Callback is the completion signal for one invocation. It fires exactly
// once, possibly from a goroutine other than the caller's.
type Callback func(err error, exitCode int)

// RunOptions is the normalized call contract for the wrapped function:
// the positional file arguments and the verbosity delta (verbose count
// minus quiet count, may be negative).
type RunOptions struct {
	Files     []string
	Verbosity int
}

// RunFunc is the wrapped library function. It must invoke done exactly
// once; the dispatcher tolerates (and drops) extra calls.
type RunFunc func(opts RunOptions, done Callback)

// Options overrides the per-role streams for one invocation. Nil fields
// fall back to the process-wide standard streams. The dispatcher never
// reads In itself; it exists for wrapped functions that consume input.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type App struct {
	name    string
	version string
	run     RunFunc
}

func New(name, version string, run RunFunc) *App {
	return &App{
		name:    name,
		version: version,
		run:     run,
	}
}

// Invoke dispatches one invocation in callback style. rawArgs is the
// full process argument vector; the leading program-name entry is
// execution-context metadata and is dropped. A nil rawArgs degrades to
// an empty argument list, which surfaces downstream as the
// missing-argument error. The callback is never invoked inline.
func (a *App) Invoke(rawArgs []string, opts *Options, cb Callback) {
	if cb == nil {
		panic("cli: Invoke requires a completion callback")
	}
	done := newOnceCallback(cb)
	go a.dispatch(rawArgs, opts, done)
}

// Run dispatches one invocation in deferred style, blocking until the
// completion signal arrives. It is a thin wrapper over Invoke.
func (a *App) Run(rawArgs []string, opts *Options) (int, error) {
	type outcome struct {
		code int
		err  error
	}
	ch := make(chan outcome, 1)
	a.Invoke(rawArgs, opts, func(err error, code int) {
		ch <- outcome{code: code, err: err}
	})
	res := <-ch
	return res.code, res.err
}

// Execute is the top-level process wrapper: main hands it os.Args and
// the standard streams and exits with its return value. On failure it
// drains any output buffered on the error, then the error message, all
// to the error stream.
func (a *App) Execute(argv []string, stdout, stderr io.Writer) int {
	code, err := a.Run(argv, &Options{Out: stdout, Err: stderr})
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Stdout != "" {
				_, _ = io.WriteString(stderr, exitErr.Stdout)
			}
			if exitErr.Stderr != "" {
				_, _ = io.WriteString(stderr, exitErr.Stderr)
			}
		}
		fmt.Fprintf(stderr, "error: %s\n", err)
	}
	return code
}

func (a *App) dispatch(rawArgs []string, opts *Options, done *onceCallback) {
	defer func() {
		if r := recover(); r != nil {
			// A panic after the completion already fired must propagate;
			// anything earlier is resolved into the completion signal.
			if done.Fired() {
				panic(r)
			}
			done.Call(fmt.Errorf("internal error: %v", r), 1)
		}
	}()

	if opts == nil {
		opts = &Options{}
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	errw := opts.Err
	if errw == nil {
		errw = os.Stderr
	}

	var tokens []string
	switch {
	case rawArgs == nil:
		tokens = []string{}
	case len(rawArgs) < 1:
		done.Call(&ExitError{Message: "argument vector must include the program name"}, 1)
		return
	default:
		tokens = rawArgs[1:]
	}

	p := newParser(a.name, a.version)
	p.parse(tokens, func(perr error, res *parseResult, rendered string) {
		if perr != nil {
			if rendered != "" {
				_, _ = io.WriteString(errw, rendered)
			} else {
				fmt.Fprintln(errw, perr)
			}
			done.Call(nil, 1)
			return
		}

		if rendered != "" {
			_, _ = io.WriteString(out, rendered)
		}
		if res.Help || res.Version {
			done.Call(nil, 0)
			return
		}

		if len(res.Args) != 1 {
			fmt.Fprintln(errw, "Exactly one argument is required.")
			done.Call(nil, 1)
			return
		}

		a.run(RunOptions{
			Files:     res.Args,
			Verbosity: res.Verbose - res.Quiet,
		}, func(err error, code int) {
			if err != nil {
				done.Call(err, exitCodeFor(err))
				return
			}
			done.Call(nil, code)
		})
	})
}

// onceCallback guarantees a single delivery of the completion signal
// and records whether it has fired.
type onceCallback struct {
	once  sync.Once
	fired atomic.Bool
	cb    Callback
}

func newOnceCallback(cb Callback) *onceCallback {
	return &onceCallback{cb: cb}
}

func (o *onceCallback) Call(err error, code int) {
	o.once.Do(func() {
		o.fired.Store(true)
		o.cb(err, code)
	})
}

func (o *onceCallback) Fired() bool {
	return o.fired.Load()
}
