package inngest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"github.com/mauv0809/matchmaker/internal/model"
)

type client struct {
	inngestClient inngestgo.Client
	runner        PassRunner
}

// New registers the pass function on inngestClient.
func New(inngestClient inngestgo.Client, runner PassRunner) (Trigger, error) {
	c := &client{
		inngestClient: inngestClient,
		runner:        runner,
	}
	if _, err := c.createPassFunction(); err != nil {
		return nil, fmt.Errorf("failed to create pass function: %w", err)
	}
	return c, nil
}

func (c *client) createPassFunction() (inngestgo.ServableFunction, error) {
	config := inngestgo.FunctionOpts{
		ID:   functionID,
		Name: "Run matchmaking pass",
	}
	return inngestgo.CreateFunction(
		c.inngestClient,
		config,
		inngestgo.EventTrigger(PassRequestedEvent, nil),
		func(ctx context.Context, input inngestgo.Input[PassRequest]) (any, error) {
			log.Info("Pass requested via Inngest", "reason", input.Event.Data.Reason)
			// Retried steps re-run the pass, which is safe because the lease serialises passes.
			result, err := step.Run(ctx, "run-pass", func(ctx context.Context) (PassResult, error) {
				return summarize(c.runner.RunPass(ctx)), nil
			})
			if err != nil {
				return nil, err
			}
			return result, nil
		},
	)
}

func (c *client) Serve() http.Handler {
	return c.inngestClient.Serve()
}

func (c *client) RequestPass(ctx context.Context, reason string) (string, error) {
	id, err := c.inngestClient.Send(ctx, inngestgo.Event{
		Name: PassRequestedEvent,
		Data: map[string]any{"reason": reason},
	})
	if err != nil {
		return "", fmt.Errorf("failed to send %s: %w", PassRequestedEvent, err)
	}
	return id, nil
}

func summarize(matches []model.Match) PassResult {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return PassResult{Matches: len(matches), MatchIDs: ids}
}
