package communication

import (
	"fmt"
	"os"

	"github.com/slack-go/slack"
)

// Slack posts operational notices: signups and sensitive-project changes
// to the info channel, infrastructure failures to the error channel. A
// nil *Slack is a no-op so callers never need to branch on configuration.
type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

func ConnectSlack() *Slack {
	token := os.Getenv("SLACK_BOT_TOKEN")
	if token == "" {
		return nil
	}
	infoCh := os.Getenv("SLACK_INFO_CHANNEL")
	errorCh := os.Getenv("SLACK_ERROR_CHANNEL")

	return NewSlack(token, SlackOption{InfoChannelID: infoCh, ErrorChannelID: errorCh})
}

func NewSlack(token string, options SlackOption) *Slack {
	client := slack.New(token)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(channelID, message string) error {
	if s == nil || channelID == "" {
		return nil
	}
	_, _, err := s.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(format string, args ...interface{}) error {
	return s.postMessage(s.channel(func(o SlackOption) string { return o.InfoChannelID }), fmt.Sprintf(format, args...))
}

func (s *Slack) Error(format string, args ...interface{}) error {
	return s.postMessage(s.channel(func(o SlackOption) string { return o.ErrorChannelID }), fmt.Sprintf(format, args...))
}

func (s *Slack) channel(pick func(SlackOption) string) string {
	if s == nil {
		return ""
	}
	return pick(s.options)
}
