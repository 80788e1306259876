package loop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Cyclone1070/claw/internal/provider"
	"github.com/Cyclone1070/claw/internal/workflow"
)

const DefaultMaxIterations = 20

// Options are per-turn model parameters. The loop never changes them.
type Options struct {
	Model       string
	Temperature float64
}

// Result is the outcome of a turn that did not fail.
type Result struct {
	Text       string
	Iterations int
	// Capped is set when the iteration limit stopped the turn; Text is then
	// the last partial text the model produced.
	Capped bool
}

type Loop struct {
	provider      llmProvider
	tools         toolManager
	observer      workflow.Observer
	maxIterations int
	sequential    bool
	now           func() time.Time
}

func NewLoop(provider llmProvider, tools toolManager, observer workflow.Observer, maxIterations int) *Loop {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Loop{
		provider:      provider,
		tools:         tools,
		observer:      observer,
		maxIterations: maxIterations,
		now:           time.Now,
	}
}

// Sequential makes the loop run the tool calls of one response one after
// another instead of concurrently.
func (l *Loop) Sequential() *Loop {
	l.sequential = true
	return l
}

// Turn drives the conversation in history until the model answers with
// plain text, the iteration limit is reached, or the provider fails.
//
// history is only appended to. Every tool call of a response gets exactly
// one tool message, in the order the model emitted the calls, before the
// next provider round-trip or any return.
func (l *Loop) Turn(ctx context.Context, history *[]provider.Message, opts Options) (*Result, error) {
	if history == nil {
		return nil, ErrNilHistory
	}
	start := l.now()
	decls := l.tools.Declarations()
	lastText := ""

	for i := 1; i <= l.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, l.abort(i, err)
		}

		workflow.Notify(l.observer, workflow.ThinkingEvent{Iteration: i})

		resp, err := l.provider.Chat(ctx, provider.Request{
			Model:       opts.Model,
			Temperature: opts.Temperature,
			Messages:    *history,
			Tools:       decls,
		})
		if err != nil {
			return nil, l.abort(i, err)
		}
		if resp == nil {
			return nil, l.abort(i, provider.ErrEmptyResponse)
		}

		if resp.Text != "" {
			lastText = resp.Text
			workflow.Notify(l.observer, workflow.TextEvent{Text: resp.Text})
		}

		if !resp.HasToolCalls() {
			*history = append(*history, provider.Message{Role: provider.RoleAssistant, Content: resp.Text})
			l.completed(i, start, false)
			return &Result{Text: resp.Text, Iterations: i}, nil
		}

		results := l.dispatch(ctx, i, resp.ToolCalls)
		for j := range results {
			results[j].Iteration = i
		}
		results[0].Preamble = resp.Text
		*history = append(*history, results...)
	}

	l.completed(l.maxIterations, start, true)
	return &Result{
		Text:       fmt.Sprintf("%s\n\n[Stopped after %d iterations without a final answer]", lastText, l.maxIterations),
		Iterations: l.maxIterations,
		Capped:     true,
	}, nil
}

// dispatch executes calls and returns their tool messages in call order.
func (l *Loop) dispatch(ctx context.Context, iteration int, calls []provider.ToolCall) []provider.Message {
	calls = append([]provider.ToolCall(nil), calls...)
	for j := range calls {
		if calls[j].ID == "" {
			calls[j].ID = fmt.Sprintf("call_%d_%d", iteration, j)
		}
	}

	results := make([]provider.Message, len(calls))
	if l.sequential || len(calls) == 1 {
		for j, tc := range calls {
			results[j] = l.tools.Execute(ctx, tc)
		}
		return results
	}

	var wg sync.WaitGroup
	for j, tc := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[j] = l.tools.Execute(ctx, tc)
		}()
	}
	wg.Wait()
	return results
}

func (l *Loop) abort(iteration int, err error) error {
	workflow.Notify(l.observer, workflow.ErrorEvent{Component: "loop", Err: err})
	return &TurnError{Iteration: iteration, Err: err}
}

func (l *Loop) completed(iterations int, start time.Time, capped bool) {
	workflow.Notify(l.observer, workflow.TurnCompletedEvent{
		Iterations: iterations,
		Duration:   l.now().Sub(start),
		Capped:     capped,
	})
}
