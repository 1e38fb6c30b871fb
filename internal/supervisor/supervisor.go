// Package supervisor owns a bot's Process Handle and drives its
// stopped/starting/running/error state machine: materializing its
// workspace, running the risk scan, installing dependencies, spawning the
// child, and classifying its stdio. Uses an exec.Cmd run in its own
// process group so the whole tree can be signaled at once.
package supervisor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"syscall"
	"time"

	"github.com/puzpuzpuz/xsync/v2"

	"github.com/shardhost/botengine/internal/boterr"
	"github.com/shardhost/botengine/internal/deps"
	"github.com/shardhost/botengine/internal/eventbus"
	"github.com/shardhost/botengine/internal/installer"
	"github.com/shardhost/botengine/internal/logger"
	"github.com/shardhost/botengine/internal/metrics"
	"github.com/shardhost/botengine/internal/model"
	"github.com/shardhost/botengine/internal/procwrap"
	"github.com/shardhost/botengine/internal/radar"
	"github.com/shardhost/botengine/internal/sampler"
	"github.com/shardhost/botengine/internal/store"
	"github.com/shardhost/botengine/internal/workspace"
)

// procHandle is the transient, non-persisted Process Handle: the live
// process plus everything needed to tear it down.
type procHandle struct {
	proc          *procwrap.Handle
	cancelSampler context.CancelFunc
	startedAt     time.Time
}

// Supervisor is the process-wide owner of every bot's Process Handle.
type Supervisor struct {
	cfg   Config
	store store.Store
	ws    *workspace.Materializer
	bus   *eventbus.Bus
	log   logger.Logger

	handles *xsync.MapOf[string, *procHandle]
	locks   sync.Map // botID -> *sync.Mutex

	metrics *metrics.Collector // optional; nil disables metric recording
}

// New wires a Supervisor from its collaborators.
func New(cfg Config, st store.Store, ws *workspace.Materializer, bus *eventbus.Bus, log logger.Logger) *Supervisor {
	return &Supervisor{
		cfg:     cfg.withDefaults(),
		store:   st,
		ws:      ws,
		bus:     bus,
		log:     log,
		handles: xsync.NewMapOf[*procHandle](),
	}
}

// WithMetrics attaches a Prometheus collector; subsequent lifecycle events
// and sampler ticks are recorded against it.
func (s *Supervisor) WithMetrics(m *metrics.Collector) *Supervisor {
	s.metrics = m
	return s
}

func (s *Supervisor) lockFor(botID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(botID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// IsRunning reports whether a Process Handle is currently registered for
// botID.
func (s *Supervisor) IsRunning(botID string) bool {
	_, ok := s.handles.Load(botID)
	return ok
}

// Result is the outcome of a lifecycle operation.
type Result struct {
	OK      bool
	Message string
}

// Start spawns botID's process if it isn't already running. It serializes
// with Stop/Restart and with exit-handler mutations of the handle map via
// the per-bot lock.
func (s *Supervisor) Start(ctx context.Context, botID string) Result {
	lock := s.lockFor(botID)
	lock.Lock()
	defer lock.Unlock()

	if s.IsRunning(botID) {
		return Result{OK: false, Message: "already running"}
	}

	bot, err := s.store.GetBot(ctx, botID)
	if err != nil {
		return Result{OK: false, Message: "bot not found"}
	}

	s.setStatus(ctx, botID, model.StatusStarting)

	if bot.Credential == "" || (bot.Runtime != model.RuntimeA && bot.Runtime != model.RuntimeB) {
		s.failStart(ctx, botID, boterr.Validation(botID, "missing credential or runtime tag"))
		return Result{OK: false, Message: "missing credential or runtime tag"}
	}

	files, err := s.store.GetBotFiles(ctx, botID)
	if err != nil {
		s.failStart(ctx, botID, boterr.Workspace(botID, "failed to load files", err))
		return Result{OK: false, Message: "failed to load bot files"}
	}

	radarFiles := make([]radar.File, len(files))
	for i, f := range files {
		radarFiles[i] = radar.File{Filename: f.Filename, Content: f.Content}
	}
	verdict := radar.Scan(radarFiles)
	if verdict.Suspicious {
		reason := verdict.FirstReason()
		s.log.Error("[supervisor] bot %s static scan vetoed start: %s", botID, reason)
		if s.metrics != nil {
			s.metrics.IncVeto("static")
		}
		s.failStart(ctx, botID, boterr.RiskVeto(botID, reason))
		return Result{OK: false, Message: "risk analysis vetoed this bot: " + reason}
	}

	if err := s.ws.Materialize(botID, files, bot.Credential); err != nil {
		s.failStart(ctx, botID, err)
		return Result{OK: false, Message: "failed to materialize workspace"}
	}

	s.ensureManifest(ctx, botID, bot.Runtime, bot.Name, files)

	mainFile, err := resolveMainEntry(bot.Runtime, bot.MainFile, files)
	if err != nil {
		s.failStart(ctx, botID, boterr.Spawn(botID, "could not resolve a main entry file", err))
		return Result{OK: false, Message: "no runnable entry file found"}
	}

	s.runInstaller(ctx, botID, bot.Runtime)

	handle, stdout, stderr, err := s.spawn(bot, mainFile)
	if err != nil {
		s.failStart(ctx, botID, boterr.Spawn(botID, "failed to start process", err))
		return Result{OK: false, Message: "failed to start process"}
	}

	sampleCtx, cancel := context.WithCancel(context.Background())
	s.handles.Store(botID, &procHandle{proc: handle, cancelSampler: cancel, startedAt: time.Now()})

	now := time.Now()
	_ = s.store.UpdateBot(ctx, botID, model.BotPatch{
		PID:       pidSet(handle.PID()),
		LastStart: timeSet(now),
	})

	if s.metrics != nil {
		s.metrics.SetRunning(botID, true)
	}

	go s.streamOutput(botID, stdout, model.SeverityInfo, isReadyLine, true)
	go s.streamOutput(botID, stderr, model.SeverityError, isFatalTokenLine, false)
	go s.awaitExit(botID, handle)
	go sampler.Run(sampleCtx, s.log, botID, handle.PID(), now, s.cfg.limits(), s.cfg.SampleInterval, &samplerObserver{s: s})

	return Result{OK: true, Message: "started"}
}

// Stop terminates botID's process if one is running, escalating from a
// graceful signal to a forceful kill after the configured grace period.
func (s *Supervisor) Stop(ctx context.Context, botID string) Result {
	lock := s.lockFor(botID)
	lock.Lock()
	defer lock.Unlock()

	h, ok := s.handles.Load(botID)
	if !ok {
		s.persistStopped(ctx, botID)
		return Result{OK: true, Message: "already stopped"}
	}

	s.log.Debug("[supervisor] sending %s to bot %s", procwrap.SignalName(syscall.SIGTERM), botID)
	if err := h.proc.Interrupt(); err != nil {
		s.log.Warn("[supervisor] interrupt failed for bot %s: %v", botID, err)
	}

	graceCtx, cancelGrace := context.WithTimeout(ctx, time.Duration(s.cfg.GracefulStopWait)*time.Second)
	defer cancelGrace()
	if !procwrap.WaitForExitOrTimeout(graceCtx, h.proc) {
		s.log.Warn("[supervisor] %v", boterr.StopTimeout(botID))
		s.log.Debug("[supervisor] escalating to %s for bot %s", procwrap.SignalName(syscall.SIGKILL), botID)
		if err := h.proc.Kill(); err != nil {
			s.log.Error("[supervisor] kill failed for bot %s: %v", botID, err)
		}
		<-h.proc.Done()
	}

	h.cancelSampler()
	s.handles.Delete(botID)
	if s.metrics != nil {
		s.metrics.SetRunning(botID, false)
	}
	s.persistStopped(ctx, botID)

	if err := s.ws.Remove(botID); err != nil {
		s.log.Warn("[supervisor] workspace removal failed for bot %s: %v", botID, err)
	}

	return Result{OK: true, Message: "stopped"}
}

// Restart stops then starts botID, pausing briefly in between so the OS
// can reclaim the old process's resources.
func (s *Supervisor) Restart(ctx context.Context, botID string) Result {
	s.Stop(ctx, botID)
	time.Sleep(time.Duration(s.cfg.RestartDelay) * time.Second)
	return s.Start(ctx, botID)
}

func (s *Supervisor) spawn(bot *model.Bot, mainFile string) (*procwrap.Handle, io.ReadCloser, io.ReadCloser, error) {
	env := []string{
		fmt.Sprintf("DISCORD_TOKEN=%s", bot.Credential),
		fmt.Sprintf("BOT_ID=%s", bot.ID),
	}

	var path string
	var args []string
	switch bot.Runtime {
	case model.RuntimeA:
		path = s.cfg.RuntimeABinary
		args = []string{"-u", mainFile}
	default:
		path = s.cfg.RuntimeBBinary
		args = []string{mainFile}
	}

	return procwrap.Spawn(procwrap.Config{
		Path: path,
		Args: args,
		Env:  env,
		Dir:  s.ws.Dir(bot.ID),
	})
}

func (s *Supervisor) ensureManifest(ctx context.Context, botID string, runtime model.Runtime, name string, files []*model.BotFile) {
	var manifest, filename string
	var ok bool
	switch runtime {
	case model.RuntimeA:
		manifest, ok = deps.InferRuntimeA(files)
		filename = deps.RequirementsFilename
	default:
		manifest, ok = deps.InferRuntimeB(name, files)
		filename = deps.PackageJSONFilename
	}
	if !ok {
		return
	}
	if err := s.ws.WriteGeneratedFile(botID, filename, manifest); err != nil {
		s.log.Warn("[supervisor] failed to write generated manifest for bot %s: %v", botID, err)
	}
}

func (s *Supervisor) runInstaller(ctx context.Context, botID string, runtime model.Runtime) {
	manifestPath := deps.RequirementsFilename
	if runtime == model.RuntimeB {
		manifestPath = deps.PackageJSONFilename
	}
	result := installer.Install(ctx, s.log, s.ws.Dir(botID), runtime, manifestPath)
	if !result.Succeeded {
		cause := boterr.Installer(botID, "dependency install did not succeed, continuing anyway", lastAttemptErr(result))
		s.logCause("bot %s", botID, cause)
		if s.metrics != nil {
			s.metrics.IncInstallFailure(string(runtime))
		}
	}
}

// lastAttemptErr returns the error from the installer's final attempt, if
// any, so boterr.Installer has something concrete to wrap.
func lastAttemptErr(result installer.Result) error {
	if len(result.Attempts) == 0 {
		return nil
	}
	return result.Attempts[len(result.Attempts)-1].Err
}

func (s *Supervisor) streamOutput(botID string, r io.ReadCloser, severity model.Severity, transition func(string) bool, onStdout bool) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		ctx := context.Background()
		_ = s.store.CreateBotLog(ctx, &model.BotLogRecord{BotID: botID, Severity: severity, Message: line, Timestamp: time.Now()})
		s.bus.PublishLog(botID, eventbus.LogMessage{Level: string(severity), Message: line})

		if onStdout && transition(line) {
			s.transitionRunning(ctx, botID)
		}
		if !onStdout && transition(line) {
			s.logCause("bot %s", botID, boterr.Runtime(botID, fmt.Sprintf("emitted a fatal token on stderr: %s", line)))
			s.forceStopOnFatalToken(botID)
		}
	}
}

func (s *Supervisor) transitionRunning(ctx context.Context, botID string) {
	bot, err := s.store.GetBot(ctx, botID)
	if err != nil || bot.Status != model.StatusStarting {
		return
	}
	s.setStatus(ctx, botID, model.StatusRunning)
}

func (s *Supervisor) forceStopOnFatalToken(botID string) {
	go func() {
		ctx := context.Background()
		lock := s.lockFor(botID)
		lock.Lock()
		defer lock.Unlock()

		h, ok := s.handles.Load(botID)
		if !ok {
			return
		}
		_ = h.proc.Kill()
		<-h.proc.Done()
		h.cancelSampler()
		s.handles.Delete(botID)
		if s.metrics != nil {
			s.metrics.SetRunning(botID, false)
		}
		_ = s.store.UpdateBot(ctx, botID, stoppedOrErrorPatch(model.StatusError))
		s.bus.BroadcastStatus(mustOwner(s.store, botID), eventbus.StatusMessage{Type: "bot_status_update", BotID: botID, Status: string(model.StatusError)})
	}()
}

func (s *Supervisor) awaitExit(botID string, h *procwrap.Handle) {
	_ = h.Wait()

	lock := s.lockFor(botID)
	lock.Lock()
	defer lock.Unlock()

	existing, ok := s.handles.Load(botID)
	if !ok || existing.proc != h {
		// already torn down by Stop or the fatal-token path
		return
	}
	existing.cancelSampler()
	s.handles.Delete(botID)
	if s.metrics != nil {
		s.metrics.SetRunning(botID, false)
	}

	ctx := context.Background()
	status := model.StatusStopped
	if h.ExitCode() != 0 {
		status = model.StatusError
		s.logCause("bot %s", botID, boterr.Runtime(botID, fmt.Sprintf("process exited with code %d", h.ExitCode())))
	}
	_ = s.store.UpdateBot(ctx, botID, stoppedOrErrorPatch(status))
	s.bus.BroadcastStatus(mustOwner(s.store, botID), eventbus.StatusMessage{Type: "bot_status_update", BotID: botID, Status: string(status)})
}

func (s *Supervisor) persistStopped(ctx context.Context, botID string) {
	_ = s.store.UpdateBot(ctx, botID, stoppedOrErrorPatch(model.StatusStopped))
	s.bus.BroadcastStatus(mustOwner(s.store, botID), eventbus.StatusMessage{Type: "bot_status_update", BotID: botID, Status: string(model.StatusStopped)})
}

func (s *Supervisor) setStatus(ctx context.Context, botID string, status model.Status) {
	_ = s.store.UpdateBot(ctx, botID, model.BotPatch{Status: statusPtr(status)})
	s.bus.BroadcastStatus(mustOwner(s.store, botID), eventbus.StatusMessage{Type: "bot_status_update", BotID: botID, Status: string(status)})
}

func (s *Supervisor) failStart(ctx context.Context, botID string, cause error) {
	s.logCause("bot %s failed to start", botID, cause)
	_ = s.store.UpdateBot(ctx, botID, stoppedOrErrorPatch(model.StatusError))
	s.bus.BroadcastStatus(mustOwner(s.store, botID), eventbus.StatusMessage{Type: "bot_status_update", BotID: botID, Status: string(model.StatusError)})
}

// logCause logs cause at Error level if its Kind is meant to be surfaced to
// a caller, Warn otherwise (format must contain exactly one %s for botID).
func (s *Supervisor) logCause(format, botID string, cause error) {
	surfaced := true
	if be, ok := cause.(*boterr.Error); ok {
		surfaced = be.Kind.Surfaced()
	}
	msg := "[supervisor] " + format + ": %v"
	if surfaced {
		s.log.Error(msg, botID, cause)
	} else {
		s.log.Warn(msg, botID, cause)
	}
}

// mustOwner looks up a bot's owner for broadcast purposes; the bot is
// known to exist by the time this is called, so a lookup failure just
// means the broadcast is skipped.
func mustOwner(st store.Store, botID string) string {
	bot, err := st.GetBot(context.Background(), botID)
	if err != nil {
		return ""
	}
	return bot.OwnerID
}

type samplerObserver struct {
	s *Supervisor
}

func (o *samplerObserver) OnSample(botID string, memoryMB, cpuPct float64, memoryText, cpuText, uptimeText string) {
	_ = o.s.store.UpdateBot(context.Background(), botID, model.BotPatch{
		Memory: strPtr(memoryText),
		CPU:    strPtr(cpuText),
		Uptime: strPtr(uptimeText),
	})
	if o.s.metrics != nil {
		o.s.metrics.ObserveSample(botID, memoryMB, cpuPct)
	}
}

func (o *samplerObserver) OnQuotaBreach(botID, reason string) {
	go func() {
		ctx := context.Background()
		lock := o.s.lockFor(botID)
		lock.Lock()
		defer lock.Unlock()

		h, ok := o.s.handles.Load(botID)
		if !ok {
			return
		}
		_ = h.proc.Kill()
		<-h.proc.Done()
		h.cancelSampler()
		o.s.handles.Delete(botID)
		if o.s.metrics != nil {
			o.s.metrics.SetRunning(botID, false)
			o.s.metrics.IncVeto("runtime")
		}

		o.s.logCause("bot %s", botID, boterr.Abuse(botID, reason))
		_ = o.s.store.UpdateBot(ctx, botID, stoppedOrErrorPatch(model.StatusError))
		_ = o.s.store.CreateBotLog(ctx, &model.BotLogRecord{BotID: botID, Severity: model.SeverityError, Message: "RADAR: " + reason, Timestamp: time.Now()})
		o.s.bus.PublishLog(botID, eventbus.LogMessage{Level: string(model.SeverityError), Message: "RADAR: " + reason})
		o.s.bus.BroadcastStatus(mustOwner(o.s.store, botID), eventbus.StatusMessage{Type: "bot_status_update", BotID: botID, Status: string(model.StatusError)})
	}()
}
