package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"apprepo/internal/app"
	"apprepo/internal/events"
	"apprepo/internal/formatting"
	"apprepo/internal/reconciler"
)

// session is one command invocation against the selected cluster.
type session struct {
	app       *app.Application
	formatter formatting.Formatter
	format    formatting.OutputFormat
	namespace string
	quiet     bool
}

func openSession(cmd *cobra.Command, opts *globalOptions) (*session, error) {
	format, err := formatting.ParseFormat(opts.output)
	if err != nil {
		return nil, err
	}

	cfg := app.NewConfig(opts.debug, opts.quiet, opts.configPath, opts.cluster)
	cfg.LogOutput = cmd.ErrOrStderr()
	application, err := app.NewApplication(cfg)
	if err != nil {
		return nil, err
	}

	namespace := opts.namespace
	if namespace == "" {
		namespace = application.Services.Engine.GlobalNamespace()
	}

	return &session{
		app: application,
		formatter: formatting.NewFormatter(formatting.Options{
			Format:    format,
			NoHeaders: opts.noHeaders,
			Output:    cmd.OutOrStdout(),
		}),
		format:    format,
		namespace: namespace,
		quiet:     opts.quiet,
	}, nil
}

func (s *session) engine() *reconciler.Engine {
	return s.app.Services.Engine
}

func (s *session) cluster() string {
	return s.app.Cluster()
}

// structured reports whether output is meant for machines.
func (s *session) structured() bool {
	return s.format == formatting.FormatJSON || s.format == formatting.FormatYAML
}

// Close waits for background fetches and disconnects.
func (s *session) Close() error {
	return s.app.Close()
}

// outcome returns the terminal event of the latest call of action. A failed
// call yields its classified error.
func (s *session) outcome(action string) (events.Event, error) {
	terminal := s.app.Services.Recorder.Filter(func(e events.Event) bool {
		return e.Action == action && e.Phase != events.PhaseStarted
	})
	if len(terminal) == 0 {
		return events.Event{}, fmt.Errorf("%s finished without a result", action)
	}

	last := terminal[len(terminal)-1]
	if last.Phase == events.PhaseFailed {
		return last, last.Err
	}
	return last, nil
}

// withSession opens a session, runs fn and closes the session.
func withSession(opts *globalOptions, fn func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		s, err := openSession(cmd, opts)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := s.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		return fn(cmd, s, args)
	}
}
