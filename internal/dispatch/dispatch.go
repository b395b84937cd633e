// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch runs the request lifecycle for chat messages: quota
// gating, outbound message construction, the blocking network call, and
// outcome handling.
//
// At most one request is in flight at a time, app-wide. A dispatch splits
// into two phases: Begin (or BeginRegenerate) performs the synchronous
// pre-flight work and marks the pipeline busy, then the returned Request's
// Do method performs the blocking network call. Callers run Do on its own
// goroutine so the pre-flight mutations are visible immediately.
package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/divine-tui/internal/cloud"
	"github.com/jeranaias/divine-tui/internal/memory"
	"github.com/jeranaias/divine-tui/internal/model"
	"github.com/jeranaias/divine-tui/internal/profile"
	"github.com/jeranaias/divine-tui/internal/quota"
	"github.com/jeranaias/divine-tui/internal/session"
)

// Display literals for request outcomes.
const (
	// FallbackText replaces an empty assistant reply.
	FallbackText = "No response."

	// StoppedText is shown when the user stops a pending request.
	StoppedText = "Stopped."

	// ErrorPrefix prefixes the failure text shown for a failed request.
	ErrorPrefix = "Error: "

	// DowngradeNotice is shown when quota exhaustion moves a session to
	// the default profile.
	DowngradeNotice = "Responses will use another model until 12:00 AM UTC."
)

// Pre-flight errors. All of them leave the pipeline and the session
// untouched.
var (
	// ErrBusy indicates a request is already in flight.
	ErrBusy = errors.New("a request is already pending")

	// ErrEmptyInput indicates the message text was empty after trimming.
	ErrEmptyInput = errors.New("empty input")

	// ErrQuotaExhausted indicates the daily limit is reached on the
	// default profile, where no further downgrade exists.
	ErrQuotaExhausted = errors.New("daily message limit reached")

	// ErrNothingToRegenerate indicates the session has no user message.
	ErrNothingToRegenerate = errors.New("nothing to regenerate")

	// ErrNoSession indicates the session id resolved to nothing.
	ErrNoSession = errors.New("session not found")
)

// ResultKind classifies how a request ended.
type ResultKind int

const (
	// ResultCompleted means the provider returned a reply.
	ResultCompleted ResultKind = iota

	// ResultCancelled means the user stopped the request.
	ResultCancelled

	// ResultFailed means the request failed.
	ResultFailed
)

// Result is the terminal outcome of a request.
//
// Text is always the display text: the assistant reply for Completed
// (persisted into the session), or the transient stop/failure line for
// Cancelled and Failed (shown but never persisted, matching the session
// history rule that only real replies survive a reload).
type Result struct {
	SessionID  string
	Kind       ResultKind
	Text       string
	Downgraded bool
	Discarded  bool
}

// Pipeline owns the single-request-in-flight state machine.
type Pipeline struct {
	sessions *session.Store
	tracker  *quota.Tracker
	registry *profile.Registry
	client   *cloud.Client
	memory   *memory.Manager

	mu        sync.Mutex
	pending   bool
	cancelMgr *cancelManager
}

// NewPipeline wires a pipeline over the given collaborators.
func NewPipeline(sessions *session.Store, tracker *quota.Tracker, registry *profile.Registry, client *cloud.Client, mem *memory.Manager) *Pipeline {
	return &Pipeline{
		sessions:  sessions,
		tracker:   tracker,
		registry:  registry,
		client:    client,
		memory:    mem,
		cancelMgr: newCancelManager(),
	}
}

// Pending reports whether a request is in flight.
func (p *Pipeline) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Stop cancels the in-flight request. No-op when idle.
func (p *Pipeline) Stop() {
	p.cancelMgr.cancel()
}

// Request is a dispatched message awaiting its network call. Do must be
// called exactly once.
type Request struct {
	p   *Pipeline
	ctx context.Context

	// SessionID names the session the response belongs to.
	SessionID string

	// Downgraded is true when pre-flight quota gating moved the session
	// to the default profile.
	Downgraded bool

	profileKey string
	modelID    string
	messages   []cloud.ChatMessage
}

// Begin validates and stages a new user message for dispatch: quota gate,
// user-message append, auto-naming, persistence, and busy marking. The
// returned Request carries a snapshot of the outbound conversation, so
// later session edits cannot race the network call.
func (p *Pipeline) Begin(sessionID, text string) (*Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending {
		return nil, ErrBusy
	}

	sess := p.sessions.Get(sessionID)
	if sess == nil {
		return nil, ErrNoSession
	}

	prof, downgraded, err := p.gateLocked(sess)
	if err != nil {
		return nil, err
	}

	p.sessions.AppendMessage(sess.ID, model.NewUserMessage(text))
	if sess.Name == model.DefaultName && sess.UserMessageCount() == 1 {
		p.sessions.Rename(sess.ID, model.AutoName(text))
	}

	return p.stageLocked(sess, prof, downgraded), nil
}

// BeginRegenerate stages a re-dispatch of the session's existing history:
// quota gate first, then the last assistant message is dropped so the new
// reply replaces it.
func (p *Pipeline) BeginRegenerate(sessionID string) (*Request, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending {
		return nil, ErrBusy
	}

	sess := p.sessions.Get(sessionID)
	if sess == nil {
		return nil, ErrNoSession
	}
	if !sess.HasRole(model.RoleUser) {
		return nil, ErrNothingToRegenerate
	}

	prof, downgraded, err := p.gateLocked(sess)
	if err != nil {
		return nil, err
	}

	p.sessions.DropLastAssistant(sess.ID)

	return p.stageLocked(sess, prof, downgraded), nil
}

// gateLocked applies the quota rule to the session's profile: a non-default
// profile at its limit downgrades the session to the default profile and
// the dispatch continues; the default profile at its limit blocks.
func (p *Pipeline) gateLocked(sess *model.Session) (profile.Profile, bool, error) {
	prof := p.registry.Resolve(sess.ModelKey)
	if !p.tracker.Exhausted(prof.DailyLimit) {
		return prof, false, nil
	}
	if prof.IsDefault() {
		return profile.Profile{}, false, ErrQuotaExhausted
	}
	def := p.registry.Default()
	p.sessions.SwitchProfile(sess.ID, def.Key, def.RemoteModelID)
	return def, true, nil
}

// stageLocked snapshots the outbound conversation and marks the pipeline
// busy.
func (p *Pipeline) stageLocked(sess *model.Session, prof profile.Profile, downgraded bool) *Request {
	modelID := sess.RemoteModelID
	if modelID == "" {
		modelID = prof.RemoteModelID
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancelMgr.set(cancel)
	p.pending = true

	return &Request{
		p:          p,
		ctx:        ctx,
		SessionID:  sess.ID,
		Downgraded: downgraded,
		profileKey: prof.Key,
		modelID:    modelID,
		messages:   p.outbound(sess),
	}
}

// outbound projects the session history to wire messages, injecting the
// memory system message directly after the first system entry (or at the
// front when the history has none). The session itself is never mutated.
func (p *Pipeline) outbound(sess *model.Session) []cloud.ChatMessage {
	base := make([]cloud.ChatMessage, 0, len(sess.Messages)+1)
	for _, m := range sess.Messages {
		base = append(base, cloud.ChatMessage{Role: m.Role.String(), Content: m.Content})
	}

	memText := ""
	if p.memory != nil {
		memText = p.memory.SystemMessage()
	}
	if memText == "" {
		return base
	}
	memMsg := cloud.ChatMessage{Role: model.RoleSystem.String(), Content: memText}

	out := make([]cloud.ChatMessage, 0, len(base)+1)
	inserted := false
	for _, m := range base {
		out = append(out, m)
		if !inserted && m.Role == model.RoleSystem.String() {
			out = append(out, memMsg)
			inserted = true
		}
	}
	if !inserted {
		out = append([]cloud.ChatMessage{memMsg}, out...)
	}
	return out
}

// Do performs the blocking network call and resolves the outcome. It
// always returns a Result and always returns the pipeline to idle.
func (r *Request) Do() Result {
	resp, err := r.p.client.Complete(r.ctx, r.modelID, r.messages)
	return r.p.finish(r, resp, err)
}

// finish classifies the outcome, persists a completed reply, advances the
// quota, and applies the exactly-once post-increment downgrade.
func (p *Pipeline) finish(r *Request, resp *cloud.ChatResponse, err error) Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = false
	p.cancelMgr.clear()

	res := Result{SessionID: r.SessionID, Downgraded: r.Downgraded}
	switch {
	case err == nil:
		res.Kind = ResultCompleted
		res.Text = resp.Content()
		if res.Text == "" {
			res.Text = FallbackText
		}
	case cloud.IsCancelled(err):
		res.Kind = ResultCancelled
		res.Text = StoppedText
	default:
		res.Kind = ResultFailed
		res.Text = ErrorPrefix + err.Error()
	}

	if res.Kind != ResultCompleted {
		if p.sessions.Get(r.SessionID) == nil {
			res.Discarded = true
		}
		return res
	}

	// The append goes through the session store so the worker-side write is
	// ordered against interface reads. A session deleted mid-flight discards
	// the reply, but the completed call still consumed the daily quota.
	if !p.sessions.AppendMessage(r.SessionID, model.NewAssistantMessage(res.Text)) {
		res.Discarded = true
		p.tracker.Increment()
		return res
	}

	count := p.tracker.Increment()
	prof := p.registry.Resolve(r.profileKey)
	if !prof.IsDefault() && count >= prof.DailyLimit {
		def := p.registry.Default()
		p.sessions.SwitchProfile(r.SessionID, def.Key, def.RemoteModelID)
		res.Downgraded = true
	}
	return res
}
