package agentrunner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Vg34100/agent-board/internal/domain"
	"github.com/Vg34100/agent-board/internal/infra/store"
)

// saveDebounce is how long the runner waits after an assistant text delta
// before durably saving the message documents. Status transitions and
// terminal events bypass this and save immediately.
const saveDebounce = 100 * time.Millisecond

// scannerBufferSize bounds a single stdout/stderr line; large tool diffs can
// exceed bufio.Scanner's 64KiB default.
const scannerBufferSize = 1 << 20

// Runner spawns and supervises agent CLI child processes (spec.md §4.D).
type Runner struct {
	store    domain.Store
	bus      domain.EventBus
	clock    domain.Clock
	logger   domain.Logger
	profiles map[domain.Profile]Profile
	debug    bool

	mu     sync.Mutex
	active map[string]*runningProcess // processID -> running state
	byTask map[string]string          // taskID -> processID, active runs only
}

// New constructs a Runner with the built-in profile set, optionally extended
// by catalog overrides (see catalog.go).
func New(s domain.Store, bus domain.EventBus, clock domain.Clock, logger domain.Logger, profiles map[domain.Profile]Profile) *Runner {
	return &Runner{
		store:    s,
		bus:      bus,
		clock:    clock,
		logger:   logger,
		profiles: profiles,
		debug:    os.Getenv("AGENT_BOARD_DEBUG") == "1",
		active:   map[string]*runningProcess{},
		byTask:   map[string]string{},
	}
}

// SetDebug overrides the runner's debug gate, mirroring the --debug CLI flag
// taking precedence over the AGENT_BOARD_DEBUG environment variable the same
// way the Gateway's debug flag does.
func (r *Runner) SetDebug(debug bool) {
	r.debug = debug
}

type runningProcess struct {
	mu     sync.Mutex
	proc   domain.AgentProcess
	cancel context.CancelFunc
	acc    accumulator
	timer  *time.Timer
}

// Start launches an Initial agent process for task under profile, recording
// prompt as the opening User message.
func (r *Runner) Start(ctx context.Context, task *domain.Task, profile domain.Profile, prompt string) (*domain.AgentProcess, error) {
	if !profile.Valid() {
		return nil, domain.ErrInvalidProfile
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.ErrEmptyMessage
	}
	if !task.HasWorktree() {
		return nil, domain.ErrWorktreeNotFound
	}

	r.mu.Lock()
	if _, busy := r.byTask[task.ID]; busy {
		r.mu.Unlock()
		return nil, domain.ErrAgentAlreadyRunning
	}
	r.mu.Unlock()

	proc := domain.AgentProcess{
		ID:           domain.NewID(),
		TaskID:       task.ID,
		WorktreePath: task.WorktreePath,
		Profile:      profile,
		Kind:         domain.ProcessInitial,
		Status:       domain.ProcessStarting,
		StartTime:    r.clock.Now(),
	}

	userMsg := domain.AgentMessage{
		ID:          domain.NewID(),
		ProcessID:   proc.ID,
		TaskID:      task.ID,
		Sender:      domain.SenderUser,
		MessageType: domain.MessageText,
		Content:     prompt,
		Timestamp:   r.clock.Now(),
	}

	return r.launch(ctx, proc, profile, argsFor(profile, prompt), userMsg)
}

// Reply launches a Reply agent process continuing parentProcessID's
// conversation in a freshly spawned child process. A Claude reply to a
// Claude parent with a captured session id resumes that session via
// --resume; every other reply replays the parent's (and its ancestors')
// transcript by prompt composition. overrideProfile, if non-empty,
// switches the dialect used for this reply instead of inheriting the
// parent's; pass "" to keep the parent's profile.
func (r *Runner) Reply(ctx context.Context, task *domain.Task, parentProcessID, prompt string, overrideProfile domain.Profile) (*domain.AgentProcess, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.ErrEmptyMessage
	}
	if !task.HasWorktree() {
		return nil, domain.ErrWorktreeNotFound
	}

	parent, ok := loadProcess(r.store, parentProcessID)
	if !ok {
		return nil, domain.ErrProcessNotFound
	}

	profile := parent.Profile
	if overrideProfile != "" {
		if !overrideProfile.Valid() {
			return nil, domain.ErrInvalidProfile
		}
		profile = overrideProfile
	}

	r.mu.Lock()
	if _, busy := r.byTask[task.ID]; busy {
		r.mu.Unlock()
		return nil, domain.ErrAgentAlreadyRunning
	}
	r.mu.Unlock()

	// Claude Code exposes --resume <session-id> to continue its own prior
	// session server-side; reuse it when the parent turn ran the same
	// dialect and captured a session id. Codex (and a Claude reply whose
	// parent has no captured session, e.g. it predates this field or ran
	// under a different profile) fall back to replaying the transcript by
	// prompt concatenation, since codex exec has no resume flag.
	var replyArgs []string
	if profile == domain.ProfileClaude && parent.Profile == domain.ProfileClaude && parent.SessionID != "" {
		replyArgs = argsForClaudeResume(parent.SessionID, prompt)
	} else {
		history := r.chainHistory(task.ID, parentProcessID)
		replyArgs = argsFor(profile, composeReplyPrompt(history, prompt))
	}

	proc := domain.AgentProcess{
		ID:              domain.NewID(),
		TaskID:          task.ID,
		ParentProcessID: &parentProcessID,
		WorktreePath:    task.WorktreePath,
		Profile:         profile,
		Kind:            domain.ProcessReply,
		Status:          domain.ProcessStarting,
		StartTime:       r.clock.Now(),
	}

	userMsg := domain.AgentMessage{
		ID:          domain.NewID(),
		ProcessID:   proc.ID,
		TaskID:      task.ID,
		Sender:      domain.SenderUser,
		MessageType: domain.MessageText,
		Content:     prompt,
		Timestamp:   r.clock.Now(),
	}

	return r.launch(ctx, proc, profile, replyArgs, userMsg)
}

// chainHistory walks the reply chain backward from processID to its Initial
// ancestor, then returns every message across the chain in chronological
// (oldest-first) order.
func (r *Runner) chainHistory(taskID, processID string) []domain.AgentMessage {
	var chain []string
	seen := map[string]bool{}
	current := processID
	for current != "" && !seen[current] {
		seen[current] = true
		chain = append([]string{current}, chain...)
		p, ok := loadProcess(r.store, current)
		if !ok || p.ParentProcessID == nil {
			break
		}
		current = *p.ParentProcessID
	}

	var all []domain.AgentMessage
	for _, pid := range chain {
		all = append(all, loadMessages(r.store, store.FileProcessAgentMessages(taskID, pid))...)
	}
	return all
}

// composeReplyPrompt renders prior user/assistant turns as a transcript
// block ahead of the new prompt, skipping tool and system noise to keep the
// composed prompt focused on the conversational thread.
func composeReplyPrompt(history []domain.AgentMessage, prompt string) string {
	var b strings.Builder
	b.WriteString("Conversation so far:\n\n")
	for _, m := range history {
		switch {
		case m.Sender == domain.SenderUser && m.MessageType == domain.MessageText:
			fmt.Fprintf(&b, "User: %s\n\n", m.Content)
		case m.Sender == domain.SenderAssistant && (m.MessageType == domain.MessageText || m.MessageType == domain.MessageResult):
			fmt.Fprintf(&b, "Assistant: %s\n\n", m.Content)
		}
	}
	b.WriteString("New message:\n")
	b.WriteString(prompt)
	return b.String()
}

// argsFor renders a profile's invocation-specific arguments for prompt.
func argsFor(profile domain.Profile, prompt string) []string {
	switch profile {
	case domain.ProfileClaude:
		return []string{"-p", prompt, "--output-format", "stream-json", "--verbose"}
	case domain.ProfileCodex:
		return []string{"exec", "--json", prompt}
	default:
		return []string{prompt}
	}
}

// argsForClaudeResume renders Claude Code's session-resume invocation: the
// prior session id plus only the new prompt, since --resume reconstructs
// conversation context server-side instead of needing it replayed.
func argsForClaudeResume(sessionID, prompt string) []string {
	return []string{"--resume", sessionID, "-p", prompt, "--output-format", "stream-json", "--verbose"}
}

// resolveCandidate returns the first candidate of profile whose program (or,
// for shell-wrapped candidates, shell) resolves on PATH.
func (r *Runner) resolveCandidate(profile Profile) (resolvedCommand, bool) {
	for _, spec := range profile.Candidates {
		lookup := spec.Program
		if spec.Shell != "" {
			lookup = spec.Shell
		}
		if _, err := exec.LookPath(lookup); err == nil {
			return resolvedCommand{spec: spec}, true
		}
	}
	return resolvedCommand{}, false
}

// launch resolves a command candidate, persists the initial process record
// and opening user message, and starts the child process and its
// supervising goroutines.
func (r *Runner) launch(ctx context.Context, proc domain.AgentProcess, profileName domain.Profile, extraArgs []string, userMsg domain.AgentMessage) (*domain.AgentProcess, error) {
	profile, ok := r.profiles[profileName]
	if !ok {
		return nil, domain.ErrInvalidProfile
	}

	if err := saveProcess(r.store, proc); err != nil {
		return nil, err
	}
	if err := persistMessage(r.store, userMsg, true); err != nil {
		return nil, err
	}
	r.publishMessage(userMsg)
	r.publishStatus(proc)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidate, ok := r.resolveCandidate(profile)
	if !ok {
		proc.Status = domain.ProcessFailed
		proc.ExitInfo = "no command candidate resolved"
		end := r.clock.Now()
		proc.EndTime = &end
		_ = saveProcess(r.store, proc)
		r.publishStatus(proc)
		return nil, domain.ErrNoCommandResolved
	}

	program, args := candidate.argv(extraArgs)
	// The child process outlives the request that launched it; only an
	// explicit Kill (or the process exiting on its own) should end it.
	runCtx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(runCtx, program, args...) //nolint:gosec // candidates are fixed, args are the caller's prompt
	cmd.Dir = proc.WorktreePath
	cmd.Env = os.Environ()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		proc.Status = domain.ProcessFailed
		proc.ExitInfo = err.Error()
		end := r.clock.Now()
		proc.EndTime = &end
		_ = saveProcess(r.store, proc)
		r.publishStatus(proc)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSpawnFailed, candidate, err)
	}

	proc.Status = domain.ProcessRunning
	_ = saveProcess(r.store, proc)
	r.publishStatus(proc)

	rp := &runningProcess{proc: proc, cancel: cancel}

	r.mu.Lock()
	r.active[proc.ID] = rp
	r.byTask[proc.TaskID] = proc.ID
	r.mu.Unlock()

	parser := dialectParser(profile.Dialect, r.debug)

	var wg sync.WaitGroup
	wg.Add(2)
	go r.readLines(stdout, rp, parser, &wg)
	go r.readStderr(stderr, rp, &wg)

	go r.superviseExit(cmd, rp, &wg)

	result := proc
	return &result, nil
}

// publishMessage announces msg on the Event Bus as agent_message_update,
// wrapped in the wire payload shape (spec.md §4.B/§6/§8), not the raw
// domain.AgentMessage record.
func (r *Runner) publishMessage(msg domain.AgentMessage) {
	r.bus.Publish("agent_message_update", map[string]any{
		"process_id": msg.ProcessID,
		"task_id":    msg.TaskID,
		"message":    msg,
	})
}

// publishStatus announces proc's current status on the Event Bus as
// agent_process_status, wrapped in the wire payload shape (spec.md
// §4.B/§6/§8), not the raw domain.AgentProcess record.
func (r *Runner) publishStatus(proc domain.AgentProcess) {
	r.bus.Publish("agent_process_status", map[string]any{
		"task_id":    proc.TaskID,
		"process_id": proc.ID,
		"status":     proc.Status,
	})
}

func dialectParser(d Dialect, debug bool) DialectParser {
	switch d {
	case DialectCodex:
		return CodexParser{Debug: debug}
	default:
		return ClaudeParser{}
	}
}

// readLines scans stdout, parses each line with parser, and applies the
// resulting events to rp's message stream.
func (r *Runner) readLines(stdout io.Reader, rp *runningProcess, parser DialectParser, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), scannerBufferSize)
	for scanner.Scan() {
		line := scanner.Text()
		for _, ev := range parser.ParseLine(line) {
			r.applyEvent(rp, ev)
		}
	}
}

// readStderr drains stderr, logging each line; agent CLIs frequently write
// progress or warnings there that aren't part of the structured protocol.
func (r *Runner) readStderr(stderr io.Reader, rp *runningProcess, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 64*1024), scannerBufferSize)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		r.logger.Debug("agentrunner", "stderr", "process_id", rp.proc.ID, "line", line)
	}
}

// applyEvent coalesces ev into rp's running message stream, persisting with
// the debounced save for plain deltas and immediately for non-coalescing
// events.
func (r *Runner) applyEvent(rp *runningProcess, ev ParsedEvent) {
	rp.mu.Lock()
	id, content, _ := rp.acc.apply(ev, domain.NewID)
	if ev.TurnKey == "" {
		rp.acc.reset()
	}
	taskID := rp.proc.TaskID

	if ev.MessageType == domain.MessageSystemInit && rp.proc.SessionID == "" {
		if sid, _ := ev.Metadata["session_id"].(string); sid != "" {
			rp.proc.SessionID = sid
			proc := rp.proc
			if err := saveProcess(r.store, proc); err != nil {
				r.logger.Error("agentrunner", "persist session id failed", "error", err)
			}
		}
	}
	rp.mu.Unlock()

	msg := domain.AgentMessage{
		ID:          id,
		ProcessID:   rp.proc.ID,
		TaskID:      taskID,
		Sender:      ev.Sender,
		MessageType: ev.MessageType,
		Content:     content,
		Metadata:    ev.Metadata,
		Timestamp:   r.clock.Now(),
	}

	immediate := ev.TurnKey == "" || ev.MessageType == domain.MessageResult
	if err := persistMessage(r.store, msg, immediate); err != nil {
		r.logger.Error("agentrunner", "persist message failed", "error", err)
	}
	if !immediate {
		r.scheduleSave(rp, msg.TaskID, msg.ProcessID)
	}
	r.publishMessage(msg)
}

func (r *Runner) scheduleSave(rp *runningProcess, taskID, processID string) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.timer != nil {
		rp.timer.Stop()
	}
	rp.timer = time.AfterFunc(saveDebounce, func() {
		taskFile := store.FileAgentMessages(taskID)
		procFile := store.FileProcessAgentMessages(taskID, processID)
		if err := r.store.Save(taskFile); err != nil {
			r.logger.Error("agentrunner", "debounced save failed", "error", err)
		}
		if err := r.store.Save(procFile); err != nil {
			r.logger.Error("agentrunner", "debounced save failed", "error", err)
		}
	})
}

// superviseExit waits for cmd to exit, finalizes the process record, and
// releases rp from the active table.
func (r *Runner) superviseExit(cmd *exec.Cmd, rp *runningProcess, wg *sync.WaitGroup) {
	wg.Wait() // drain stdout/stderr before inspecting exit state

	err := cmd.Wait()

	rp.mu.Lock()
	proc := rp.proc
	if rp.timer != nil {
		rp.timer.Stop()
	}
	rp.mu.Unlock()

	end := r.clock.Now()
	proc.EndTime = &end

	switch {
	case err == nil:
		proc.Status = domain.ProcessCompleted
	case isKilled(err):
		proc.Status = domain.ProcessKilled
		proc.ExitInfo = "killed"
	default:
		proc.Status = domain.ProcessFailed
		proc.ExitInfo = err.Error()
	}

	if err := saveProcess(r.store, proc); err != nil {
		r.logger.Error("agentrunner", "save process failed", "error", err)
	}
	_ = r.store.Save(store.FileAgentMessages(proc.TaskID))
	_ = r.store.Save(store.FileProcessAgentMessages(proc.TaskID, proc.ID))
	r.publishStatus(proc)

	r.mu.Lock()
	delete(r.active, proc.ID)
	if r.byTask[proc.TaskID] == proc.ID {
		delete(r.byTask, proc.TaskID)
	}
	r.mu.Unlock()
}

func isKilled(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *exec.ExitError
	if ok := exitErrAs(err, &exitErr); ok {
		return !exitErr.Exited()
	}
	return true
}

func exitErrAs(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if !ok {
		return false
	}
	*target = ee
	return true
}

// Kill requests termination of a running process. Idempotent: killing an
// already-finished process is a no-op.
func (r *Runner) Kill(processID string) error {
	r.mu.Lock()
	rp, ok := r.active[processID]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	rp.cancel()
	return nil
}

// Process returns the current record for processID, checking the active
// in-memory table first and falling back to the store for finished runs.
func (r *Runner) Process(processID string) (domain.AgentProcess, bool) {
	r.mu.Lock()
	rp, ok := r.active[processID]
	r.mu.Unlock()
	if ok {
		rp.mu.Lock()
		defer rp.mu.Unlock()
		return rp.proc, true
	}
	return loadProcess(r.store, processID)
}

// Messages returns every message recorded for a task, across all of its
// agent processes, in append order.
func (r *Runner) Messages(taskID string) []domain.AgentMessage {
	return loadMessages(r.store, store.FileAgentMessages(taskID))
}

// ProcessMessages returns the messages recorded for a single process.
func (r *Runner) ProcessMessages(taskID, processID string) []domain.AgentMessage {
	return loadMessages(r.store, store.FileProcessAgentMessages(taskID, processID))
}

// IsRunning reports whether task currently has an active agent process, and
// its id if so.
func (r *Runner) IsRunning(taskID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byTask[taskID]
	return id, ok
}

// AllProcesses returns every recorded agent process across all tasks, in
// store order. Used by the bulk store passthroughs that hydrate the raw
// agent_processes.json document rather than a single task's process list.
func (r *Runner) AllProcesses() []domain.AgentProcess {
	return loadProcesses(r.store)
}

// ProcessesForTask returns taskID's agent processes only, ordered by start
// time ascending (spec's get_process_list contract).
func (r *Runner) ProcessesForTask(taskID string) []domain.AgentProcess {
	processes := loadProcesses(r.store)
	result := make([]domain.AgentProcess, 0, len(processes))
	for _, p := range processes {
		if p.TaskID == taskID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result
}

// MessagesForProcess looks up processID's owning task and returns its
// process-scoped messages, without the caller needing to know the task id.
func (r *Runner) MessagesForProcess(processID string) ([]domain.AgentMessage, error) {
	proc, ok := loadProcess(r.store, processID)
	if !ok {
		return nil, domain.ErrProcessNotFound
	}
	return r.ProcessMessages(proc.TaskID, processID), nil
}
