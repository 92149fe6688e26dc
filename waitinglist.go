package tickloom

import "sort"

// RequestCallback receives the eventual outcome of a correlated request: a
// response Message on success, or an error if the request timed out or was
// cancelled (spec §4.3).
type RequestCallback interface {
	OnResponse(msg Message)
	OnError(err error)
}

// FuncCallback adapts two functions into a RequestCallback.
type FuncCallback struct {
	OnResponseFn func(msg Message)
	OnErrorFn    func(err error)
}

func (f FuncCallback) OnResponse(msg Message) { f.OnResponseFn(msg) }
func (f FuncCallback) OnError(err error)      { f.OnErrorFn(err) }

type pendingRequest struct {
	callback   RequestCallback
	expiryTick int64
	done       bool
}

// RequestWaitingList tracks outstanding requests keyed by correlation id,
// and times each one out after a configured number of ticks (spec §4.3).
// It is not safe for concurrent use; it is driven exclusively from the
// single tick goroutine.
type RequestWaitingList struct {
	timeoutTicks int64
	pending      map[string]*pendingRequest
}

// NewRequestWaitingList returns a RequestWaitingList whose entries expire
// timeoutTicks ticks after registration. timeoutTicks must be positive;
// the caller is expected to have validated this already (spec §13
// resolves requestTimeoutTicks <= 0 as ErrInvalidConfiguration at the
// owning component's construction time, not here).
func NewRequestWaitingList(timeoutTicks int64) *RequestWaitingList {
	return &RequestWaitingList{
		timeoutTicks: timeoutTicks,
		pending:      make(map[string]*pendingRequest),
	}
}

// Add registers cb to be invoked when a response correlated with
// correlationId arrives, or when timeoutTicks ticks have elapsed since
// currentTick without one. Registering under a correlation id that is
// already pending replaces the earlier callback; the earlier one is never
// invoked.
func (w *RequestWaitingList) Add(correlationId string, currentTick int64, cb RequestCallback) {
	w.pending[correlationId] = &pendingRequest{
		callback:   cb,
		expiryTick: currentTick + w.timeoutTicks,
	}
}

// Handle delivers msg to the callback registered under msg.CorrelationId,
// if any is still pending, and removes the entry. A response whose
// correlation id has no pending entry (already handled, already timed
// out, or never registered) is silently ignored, so a late straggler from
// a partitioned-then-healed link can never double-invoke a callback
// (spec §4.3's "ignore once completed/removed" invariant).
func (w *RequestWaitingList) Handle(msg Message) {
	req, ok := w.pending[msg.CorrelationId]
	if !ok || req.done {
		return
	}
	req.done = true
	delete(w.pending, msg.CorrelationId)
	req.callback.OnResponse(msg)
}

// Tick expires every entry whose expiryTick has passed as of currentTick,
// invoking its callback's OnError with ErrRequestTimeout. Expired entries
// are failed in correlation-id order, so that the order of any messages
// their callbacks send is the same on every run.
func (w *RequestWaitingList) Tick(currentTick int64) {
	var expired []string
	for id, req := range w.pending {
		if !req.done && currentTick >= req.expiryTick {
			expired = append(expired, id)
		}
	}
	sort.Strings(expired)
	for _, id := range expired {
		req, ok := w.pending[id]
		if !ok || req.done {
			continue
		}
		req.done = true
		delete(w.pending, id)
		req.callback.OnError(ErrRequestTimeout)
	}
}

// Len returns the number of requests currently pending.
func (w *RequestWaitingList) Len() int { return len(w.pending) }

// isPending reports whether correlationId has a pending, not-yet-completed
// entry. Used by Process.Receive to decide whether an incoming message is
// a correlated response rather than a fresh request.
func (w *RequestWaitingList) isPending(correlationId string) bool {
	req, ok := w.pending[correlationId]
	return ok && !req.done
}

// FailAll fails every pending request with err, e.g. on shutdown
// (spec §4.3, ErrShutdown).
func (w *RequestWaitingList) FailAll(err error) {
	pending := w.pending
	w.pending = make(map[string]*pendingRequest)
	for _, req := range pending {
		if req.done {
			continue
		}
		req.done = true
		req.callback.OnError(err)
	}
}
