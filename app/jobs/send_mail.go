// Package jobs holds the queue jobs the shop dispatches.
package jobs

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/pkg/mail"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

var errNoMailer = errors.New("jobs: mailer not configured")

// SendMail delivers one message. Only the exported fields travel through the
// queue; the mailer is supplied by the worker's factory.
type SendMail struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`

	mailer mail.Mailer
}

func (j *SendMail) Handle(ctx context.Context) error {
	if j.mailer == nil {
		return errNoMailer
	}
	return j.mailer.Send(ctx, mail.Message{To: j.To, Subject: j.Subject, HTML: j.HTML})
}

// Register makes the mail job decodable by q's workers.
func Register(q *queue.Manager, m mail.Mailer) {
	q.Register(Factory(m))
}

// Factory builds empty SendMail jobs bound to m.
func Factory(m mail.Mailer) func() queue.Job {
	return func() queue.Job { return &SendMail{mailer: m} }
}
