package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/w-h-a/shopchat/classifier"
	"github.com/w-h-a/shopchat/embedder"
	"github.com/w-h-a/shopchat/ingest"
	"github.com/w-h-a/shopchat/internal/observability"
	"github.com/w-h-a/shopchat/prompt"
	"github.com/w-h-a/shopchat/retrieval"
	"github.com/w-h-a/shopchat/session"
	"github.com/w-h-a/shopchat/vectorstore"
)

// ErrInvalidRequest reports malformed caller input, as opposed to a
// transient collaborator outage.
var ErrInvalidRequest = errors.New("invalid request")

type Request struct {
	SessionId string `json:"session_id"`
	Question  string `json:"question"`
	K         int    `json:"k,omitempty"`
}

type Response struct {
	Intent  classifier.Intent `json:"intent"`
	Reply   string            `json:"reply,omitempty"`
	Payload prompt.Payload    `json:"payload"`
	Prompt  string            `json:"prompt"`
}

// request states, in flow order
type state string

const (
	stateReceived         state = "received"
	stateClassified       state = "classified"
	stateRetrieved        state = "retrieved"
	stateSkippedRetrieval state = "skipped_retrieval"
	stateMemoryRead       state = "memory_read"
	stateAssembled        state = "assembled"
	stateMemoryAppended   state = "memory_appended"
	stateDone             state = "done"
)

// Service turns a (session, question) pair into a grounded prompt payload.
// Work for the same session id is serialized through a keyed lock; distinct
// sessions run fully in parallel. Memory is appended only after assembly
// succeeds, so a failed request never pollutes session history.
type Service struct {
	options    Options
	classifier classifier.Classifier
	embedder   embedder.Embedder
	engine     *retrieval.Engine
	memory     session.Memory
	pipeline   *ingest.Pipeline
	locks      *session.KeyedLock
	metrics    *observability.Metrics
}

func (s *Service) Respond(ctx context.Context, req Request) (Response, error) {
	if len(strings.TrimSpace(req.SessionId)) == 0 {
		return Response{}, fmt.Errorf("%w: session_id is required", ErrInvalidRequest)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.options.LockTimeout)
	defer cancel()

	release, err := s.locks.Acquire(lockCtx, req.SessionId)
	if err != nil {
		s.metrics.Requests.WithLabelValues("unknown", "lock_timeout").Inc()
		return Response{}, err
	}
	defer release()

	rsp, err := s.respond(ctx, req)
	if err != nil {
		s.metrics.Requests.WithLabelValues("unknown", "failed").Inc()
		return Response{}, err
	}

	s.metrics.Requests.WithLabelValues(string(rsp.Intent), "ok").Inc()

	return rsp, nil
}

// respond runs the per-request flow while the session lock is held.
func (s *Service) respond(ctx context.Context, req Request) (Response, error) {
	current := stateReceived

	history, err := s.memory.Read(ctx, req.SessionId)
	if err != nil {
		return Response{}, s.fail(ctx, req, current, "memory", err)
	}
	current = stateMemoryRead

	result := s.classify(ctx, req.Question, history)
	current = stateClassified

	var candidates []vectorstore.Candidate

	if result.Intent == classifier.IntentProductQuery {
		candidates, err = s.retrieve(ctx, req.Question, req.K)
		if err != nil {
			return Response{}, s.fail(ctx, req, current, "retrieval", err)
		}
		current = stateRetrieved
	} else {
		current = stateSkippedRetrieval
	}

	payload := prompt.Assemble(history, candidates, req.Question)
	current = stateAssembled

	turn := session.Turn{
		Question:     req.Question,
		CandidateIds: candidateIds(candidates),
	}

	if err := s.memory.Append(ctx, req.SessionId, turn); err != nil {
		return Response{}, s.fail(ctx, req, current, "memory", err)
	}
	current = stateMemoryAppended
	slog.DebugContext(ctx, "request done", "session", req.SessionId, "intent", result.Intent, "state", current)

	return Response{
		Intent:  result.Intent,
		Reply:   result.Reply,
		Payload: payload,
		Prompt:  payload.Render(),
	}, nil
}

// classify never fails the request: a degraded classifier falls back to
// treating the question as a product query.
func (s *Service) classify(ctx context.Context, question string, history []session.Turn) classifier.Result {
	callCtx, cancel := context.WithTimeout(ctx, s.options.CallTimeout)
	defer cancel()

	prior := make([]string, 0, len(history))
	for _, turn := range history {
		prior = append(prior, turn.Question)
	}

	result, err := s.classifier.Classify(callCtx, question, prior)
	if err != nil {
		s.metrics.CollaboratorErrs.WithLabelValues("classifier").Inc()
		slog.WarnContext(ctx, "classifier degraded, defaulting to product query", "error", err)
		return classifier.Result{Intent: classifier.IntentProductQuery}
	}

	return result
}

func (s *Service) retrieve(ctx context.Context, question string, k int) ([]vectorstore.Candidate, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.options.CallTimeout)
	defer cancel()

	started := time.Now()

	vec, err := s.embedder.Embed(callCtx, question)
	if err != nil {
		s.metrics.CollaboratorErrs.WithLabelValues("embedder").Inc()
		return nil, err
	}

	candidates, err := s.engine.Retrieve(callCtx, vec, k)
	if err != nil {
		s.metrics.CollaboratorErrs.WithLabelValues("store").Inc()
		return nil, err
	}

	s.metrics.ObserveRetrievalLatency(time.Since(started))

	return candidates, nil
}

// Status reports how many products are searchable, probing the backing
// store on the way.
func (s *Service) Status(ctx context.Context) (int, error) {
	return s.engine.Count(ctx)
}

func (s *Service) Ingest(ctx context.Context, rows []ingest.Row) ingest.Summary {
	summary := s.pipeline.Run(ctx, rows)

	s.metrics.IngestedRows.WithLabelValues("ingested").Add(float64(summary.RowsIngested))
	s.metrics.IngestedRows.WithLabelValues("failed").Add(float64(summary.RowsFailed))

	return summary
}

func (s *Service) fail(ctx context.Context, req Request, at state, collaborator string, err error) error {
	slog.ErrorContext(ctx, "request failed",
		"session", req.SessionId,
		"state", at,
		"collaborator", collaborator,
		"error", err,
	)
	return err
}

func candidateIds(candidates []vectorstore.Candidate) []string {
	if len(candidates) == 0 {
		return nil
	}
	ids := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		ids = append(ids, cand.Id)
	}
	return ids
}

func New(
	cls classifier.Classifier,
	emb embedder.Embedder,
	engine *retrieval.Engine,
	memory session.Memory,
	pipeline *ingest.Pipeline,
	metrics *observability.Metrics,
	opts ...Option,
) *Service {
	if cls == nil {
		panic("classifier is required")
	}

	if emb == nil {
		panic("embedder is required")
	}

	if engine == nil {
		panic("retrieval engine is required")
	}

	if memory == nil {
		panic("session memory is required")
	}

	if metrics == nil {
		metrics = observability.NewMetrics("shopchat")
	}

	return &Service{
		options:    NewOptions(opts...),
		classifier: cls,
		embedder:   emb,
		engine:     engine,
		memory:     memory,
		pipeline:   pipeline,
		locks:      session.NewKeyedLock(),
		metrics:    metrics,
	}
}
