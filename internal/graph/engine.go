package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/insightflow/insightflow-go/internal/dataflows"
	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

// maxGraphSteps bounds graph execution; the worst case is three full
// bull/bear rounds plus the surrounding nodes.
const maxGraphSteps = 24

var (
	// ErrDebateFailed reports a run that ended in the error phase.
	ErrDebateFailed = errors.New("debate run failed")
	// ErrDebateIncomplete reports a run that finished without a verdict.
	ErrDebateIncomplete = errors.New("debate did not complete")
)

// Request carries one debate's inputs. Ticker is the raw symbol; the engine
// formats it with the exchange suffix.
type Request struct {
	Ticker      string
	Exchange    string
	MaxRounds   int
	TimeHorizon models.TimeHorizon
	UserQuery   string
}

// Engine owns the compiled debate graph. Built once at startup; safe for
// concurrent runs since every run gets its own DebateState.
type Engine struct {
	data       DataFetcher
	indices    IndexLister
	summarizer Summarizer
	bull       BullAnalyzer
	bear       BearAnalyzer
	moderator  Moderator
	newsCount  int
	log        *logger.Logger

	runnable compose.Runnable[*models.DebateState, *models.DebateState]
}

// New compiles the debate graph:
//
//	START -> fetch_data -> [summary | error_handler]
//	summary -> bull_analysis -> bear_analysis -> [bull_analysis | moderator]
//	moderator -> END, error_handler -> END
func New(
	ctx context.Context,
	data DataFetcher,
	indices IndexLister,
	summarizer Summarizer,
	bull BullAnalyzer,
	bear BearAnalyzer,
	moderator Moderator,
	newsCount int,
	log *logger.Logger,
) (*Engine, error) {
	e := &Engine{
		data:       data,
		indices:    indices,
		summarizer: summarizer,
		bull:       bull,
		bear:       bear,
		moderator:  moderator,
		newsCount:  newsCount,
		log:        log,
	}

	g := compose.NewGraph[*models.DebateState, *models.DebateState]()

	_ = g.AddLambdaNode(nodeFetchData, compose.InvokableLambda(e.fetchData))
	_ = g.AddLambdaNode(nodeSummary, compose.InvokableLambda(e.summary))
	_ = g.AddLambdaNode(nodeBull, compose.InvokableLambda(e.bullAnalysis))
	_ = g.AddLambdaNode(nodeBear, compose.InvokableLambda(e.bearAnalysis))
	_ = g.AddLambdaNode(nodeModerator, compose.InvokableLambda(e.moderate))
	_ = g.AddLambdaNode(nodeErrorHandler, compose.InvokableLambda(e.errorHandler))

	_ = g.AddEdge(compose.START, nodeFetchData)
	_ = g.AddBranch(nodeFetchData, compose.NewGraphBranch(routeAfterFetch, map[string]bool{
		nodeSummary:      true,
		nodeErrorHandler: true,
	}))
	_ = g.AddEdge(nodeSummary, nodeBull)
	_ = g.AddEdge(nodeBull, nodeBear)
	_ = g.AddBranch(nodeBear, compose.NewGraphBranch(routeAfterBear, map[string]bool{
		nodeBull:      true,
		nodeModerator: true,
	}))
	_ = g.AddEdge(nodeModerator, compose.END)
	_ = g.AddEdge(nodeErrorHandler, compose.END)

	runnable, err := g.Compile(ctx,
		compose.WithGraphName("insightflow-debate"),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
		compose.WithMaxRunSteps(maxGraphSteps),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling debate graph: %w", err)
	}
	e.runnable = runnable
	return e, nil
}

func (e *Engine) newState(req Request) *models.DebateState {
	ticker := dataflows.FormatTicker(req.Ticker, req.Exchange)
	return models.NewDebateState(ticker, req.MaxRounds, req.UserQuery, req.TimeHorizon)
}

// Run drives the debate to completion and returns the terminal state.
// The aggregate fails when the run ended in the error phase or produced no
// moderator verdict.
func (e *Engine) Run(ctx context.Context, req Request) (*models.DebateState, error) {
	state := e.newState(req)

	out, err := e.runnable.Invoke(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("debate run for %s: %w", state.Ticker, err)
	}
	if out.Phase == models.PhaseError {
		return nil, fmt.Errorf("%w: %s", ErrDebateFailed, out.Err)
	}
	if out.ModeratorAnalysis == nil {
		return nil, ErrDebateIncomplete
	}
	return out, nil
}

// Stream runs the debate and delivers every event in order on the returned
// channel, framed by a synthetic started event and exactly one terminal
// complete or error event. The channel closes when the run ends or ctx is
// cancelled.
func (e *Engine) Stream(ctx context.Context, req Request) <-chan models.StreamUpdate {
	ch := make(chan models.StreamUpdate, 16)
	state := e.newState(req)

	go func() {
		defer close(ch)

		send := func(u models.StreamUpdate) {
			select {
			case ch <- u:
			case <-ctx.Done():
			}
		}

		terminal := false
		state.SetEmitter(func(u models.StreamUpdate) {
			if u.Type == models.UpdateComplete || u.Type == models.UpdateError {
				if terminal {
					return
				}
				terminal = true
			}
			send(u)
		})

		send(models.StreamUpdate{
			Type:        models.UpdateStarted,
			Ticker:      state.Ticker,
			MaxRounds:   state.MaxRounds,
			TimeHorizon: string(state.TimeHorizon),
			Message:     "Analysis started",
		})

		defer func() {
			if r := recover(); r != nil {
				e.log.Errorw("debate stream panicked", "ticker", state.Ticker, "panic", r)
				if !terminal {
					send(models.StreamUpdate{Type: models.UpdateError, Error: "internal error"})
				}
			}
		}()

		if _, err := e.runnable.Invoke(ctx, state); err != nil {
			e.log.Errorw("debate stream failed", "ticker", state.Ticker, "error", err)
			if !terminal {
				terminal = true
				send(models.StreamUpdate{Type: models.UpdateError, Error: err.Error()})
			}
			return
		}

		if !terminal {
			send(models.StreamUpdate{Type: models.UpdateComplete, Message: "Debate complete"})
		}
	}()
	return ch
}
