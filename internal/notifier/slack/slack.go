package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchmaker/internal/metrics"
	"github.com/mauv0809/matchmaker/internal/notifier"
	"github.com/slack-go/slack"
)

const sinkName = "slack"

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Publisher = (*Publisher)(nil)

// Publisher announces created matches in a Slack channel.
// Events on player topics are ignored.
type Publisher struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	dryRun    bool
}

// NewPublisher creates a new Publisher.
func NewPublisher(token, channelID string, dryRun bool, metrics metrics.Metrics) *Publisher {
	return NewPublisherWithAPI(slack.New(token), channelID, dryRun, metrics)
}

// NewPublisherWithAPI creates a new Publisher with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewPublisherWithAPI(api slackClient, channelID string, dryRun bool, metrics metrics.Metrics) *Publisher {
	return &Publisher{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		dryRun:    dryRun,
	}
}

// Publish posts MATCH_CREATED events on the global topic and returns the message timestamp.
func (s *Publisher) Publish(ctx context.Context, topic string, event notifier.Event) (string, error) {
	if topic != notifier.GlobalTopic || event.Kind != notifier.MatchCreated {
		return "", nil
	}
	_, ts, err := s.sendMessage(ctx, formatMatchCreated(event))
	return ts, err
}

func (s *Publisher) sendMessage(ctx context.Context, message slack.Message) (string, string, error) {
	if s.dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncNotifFailed(sinkName)
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent(sinkName)
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// formatMatchCreated creates the Slack message for a new match using Block Kit.
func formatMatchCreated(event notifier.Event) slack.Message {
	blocks := make([]slack.Block, 0, 3)

	headerText := slack.NewTextBlockObject("plain_text", "🎮 Match found! 🎮", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	details := fmt.Sprintf("Region: %s\nPlayers: %d\nAverage skill: %d\nAverage latency: %d ms",
		event.Region, event.PlayerCount, event.AverageSkill, event.AverageLatency)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", details, true, false), nil, nil))

	contextText := slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("Match `%s`", event.MatchID), false, false)
	blocks = append(blocks, slack.NewContextBlock("", contextText))

	return slack.NewBlockMessage(blocks...)
}
