// Package installer invokes a runtime's package tool to fetch a bot's
// dependencies into its workspace. Failures here are logged and swallowed:
// a broken registry must not block bots that depend on pre-installed
// libraries.
package installer

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/buildkite/roko"

	"github.com/shardhost/botengine/internal/logger"
	"github.com/shardhost/botengine/internal/model"
)

const (
	runtimeATimeout = 180 * time.Second
	runtimeBTimeout = 240 * time.Second
)

// Result reports what happened; Install returns no Go error of its own, a
// failed install shows up as Succeeded false with each attempt's error.
type Result struct {
	Succeeded bool
	Attempts  []AttemptResult
}

type AttemptResult struct {
	Command  []string
	ExitCode int
	Err      error
}

// runtimeACommands builds the fallback attempts' argv for Runtime A, in
// order: user-scoped install, system-scoped install, alternate tool name.
func runtimeACommands(manifestPath string) [][]string {
	return [][]string{
		{"pip", "install", "--user", "-r", manifestPath},
		{"pip", "install", "-r", manifestPath},
		{"pip3", "install", "-r", manifestPath},
	}
}

func runtimeBCommand() []string {
	return []string{"npm", "install", "--no-audit", "--no-fund"}
}

// Install runs the package tool for runtime in dir, streaming its stdout
// and stderr line-by-line to log. Any runtime other than Runtime A is
// installed with the Runtime B tool.
func Install(ctx context.Context, log logger.Logger, dir string, runtime model.Runtime, manifestPath string) Result {
	switch runtime {
	case model.RuntimeA:
		return installRuntimeA(ctx, log, dir, manifestPath)
	default:
		return installRuntimeB(ctx, log, dir)
	}
}

func installRuntimeA(ctx context.Context, log logger.Logger, dir, manifestPath string) Result {
	ctx, cancel := context.WithTimeout(ctx, runtimeATimeout)
	defer cancel()

	commands := runtimeACommands(manifestPath)
	result := Result{}

	retrier := roko.NewRetrier(
		roko.WithMaxAttempts(len(commands)),
		roko.WithStrategy(roko.Constant(0)),
	)

	_ = retrier.DoWithContext(ctx, func(r *roko.Retrier) error {
		idx := r.AttemptCount()
		if idx >= len(commands) {
			return nil
		}
		argv := commands[idx]
		code, err := runOne(ctx, log, dir, argv)
		result.Attempts = append(result.Attempts, AttemptResult{Command: argv, ExitCode: code, Err: err})
		if code == 0 && err == nil {
			result.Succeeded = true
			return nil
		}
		if idx == len(commands)-1 {
			// last fallback exhausted, stop retrying
			return nil
		}
		return errRetry
	})

	return result
}

func installRuntimeB(ctx context.Context, log logger.Logger, dir string) Result {
	ctx, cancel := context.WithTimeout(ctx, runtimeBTimeout)
	defer cancel()

	argv := runtimeBCommand()
	code, err := runOne(ctx, log, dir, argv)
	return Result{
		Succeeded: code == 0 && err == nil,
		Attempts:  []AttemptResult{{Command: argv, ExitCode: code, Err: err}},
	}
}

var errRetry = &retrySignal{}

type retrySignal struct{}

func (*retrySignal) Error() string { return "installer: trying next fallback" }

func runOne(ctx context.Context, log logger.Logger, dir string, argv []string) (int, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, err
	}

	if err := cmd.Start(); err != nil {
		log.Warn("[installer] failed to start %v: %v", argv, err)
		return -1, err
	}

	done := make(chan struct{}, 2)
	go streamLines(stdout, func(line string) { log.Info("[installer] %s", line) }, done)
	go streamLines(stderr, func(line string) { log.Warn("[installer] %s", line) }, done)
	<-done
	<-done

	waitErr := cmd.Wait()
	if ctx.Err() == context.DeadlineExceeded {
		log.Warn("[installer] %v timed out", argv)
		return -1, ctx.Err()
	}
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		return exitErr.ExitCode(), waitErr
	}
	if waitErr != nil {
		return -1, waitErr
	}
	return 0, nil
}

func streamLines(r io.Reader, emit func(string), done chan<- struct{}) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		emit(scanner.Text())
	}
	done <- struct{}{}
}
