package tickloom

// QuorumPredicate decides whether a single response counts towards the
// quorum. Responses that fail the predicate still count as "heard from",
// but not towards the majority (spec §4.5, §13: majority is counted over
// predicate-satisfying responses, not raw response count).
type QuorumPredicate[T any] func(response T) bool

// AsyncQuorumCallback accumulates up to totalRequests responses and
// resolves as soon as a majority of them satisfy predicate, or fails once
// it becomes impossible for a majority to still satisfy it (spec §4.5).
// It is driven by repeated calls to OnResponse/OnError as replies and
// errors arrive; it ignores every call made after it has resolved.
type AsyncQuorumCallback[T any] struct {
	totalRequests int
	majority      int
	predicate     QuorumPredicate[T]

	responded int
	satisfied int
	resolved  bool
	succeeded bool

	onSuccess []func(T)
	onFailure []func(error)
	bestValue T
}

// NewAsyncQuorumCallback returns an AsyncQuorumCallback expecting responses
// from totalRequests participants, resolving successfully once
// floor(totalRequests/2)+1 of them satisfy predicate.
func NewAsyncQuorumCallback[T any](totalRequests int, predicate QuorumPredicate[T]) *AsyncQuorumCallback[T] {
	return &AsyncQuorumCallback[T]{
		totalRequests: totalRequests,
		majority:      totalRequests/2 + 1,
		predicate:     predicate,
	}
}

// OnResponse records a successful response. If predicate(response) is
// true, it counts towards the majority; the most recent response
// satisfying predicate is retained as the value passed to OnSuccess
// callbacks. Calls made after resolution are ignored.
func (q *AsyncQuorumCallback[T]) OnResponse(response T) {
	if q.resolved {
		return
	}
	q.responded++
	if q.predicate(response) {
		q.satisfied++
		q.bestValue = response
	}
	q.checkCompletion()
}

// OnError records a failed response (e.g. a timeout or storage error from
// one participant). Calls made after resolution are ignored.
func (q *AsyncQuorumCallback[T]) OnError(err error) {
	if q.resolved {
		return
	}
	q.responded++
	q.checkCompletion()
}

func (q *AsyncQuorumCallback[T]) checkCompletion() {
	if q.satisfied >= q.majority {
		q.resolve(true, func() {
			value := q.bestValue
			for _, fn := range q.onSuccess {
				fn(value)
			}
		})
		return
	}
	remaining := q.totalRequests - q.responded
	if q.satisfied+remaining < q.majority {
		q.resolve(false, func() {
			for _, fn := range q.onFailure {
				fn(ErrQuorumUnreachable)
			}
		})
	}
}

func (q *AsyncQuorumCallback[T]) resolve(succeeded bool, fire func()) {
	q.resolved = true
	q.succeeded = succeeded
	fire()
	q.onSuccess = nil
	q.onFailure = nil
}

// OnComplete registers onSuccess and onFailure to run when the quorum
// resolves, one way or the other. If already resolved, the appropriate one
// runs immediately, inline.
func (q *AsyncQuorumCallback[T]) OnComplete(onSuccess func(T), onFailure func(error)) {
	if q.resolved {
		if q.succeeded {
			onSuccess(q.bestValue)
		} else {
			onFailure(ErrQuorumUnreachable)
		}
		return
	}
	q.onSuccess = append(q.onSuccess, onSuccess)
	q.onFailure = append(q.onFailure, onFailure)
}

// IsResolved reports whether the quorum has reached a final outcome.
func (q *AsyncQuorumCallback[T]) IsResolved() bool { return q.resolved }
