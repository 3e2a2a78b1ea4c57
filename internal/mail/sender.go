// Package mail is the SMTP implementation of the dispatch transport. It
// composes the outbound message with gomail, blind-copies the organizer and
// attaches the rendered pass.
package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strings"

	"gopkg.in/gomail.v2"

	"GatePass/internal/dispatch"
)

// PermanentError marks a send failure that retrying cannot fix, e.g. a
// rejected recipient address. The queue drops such jobs immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string   { return e.Err.Error() }
func (e *PermanentError) Unwrap() error   { return e.Err }
func (e *PermanentError) Permanent() bool { return true }

type Sender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s *Sender) Send(ctx context.Context, msg dispatch.Message) error {
	if !strings.Contains(msg.To, "@") {
		return &PermanentError{Err: fmt.Errorf("invalid recipient address %q", msg.To)}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	if msg.Bcc != "" {
		m.SetHeader("Bcc", msg.Bcc)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if len(msg.Attachment) > 0 {
		m.Attach(msg.AttachmentName,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(msg.Attachment)
				return err
			}),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {"application/pdf"},
			}),
		)
	}

	d := gomail.NewDialer(s.Host, s.Port, s.Username, s.Password)

	// gomail has no context support; run the send aside so a cancelled or
	// timed-out context unblocks the worker.
	errc := make(chan error, 1)
	go func() {
		errc <- d.DialAndSend(m)
	}()

	select {
	case err := <-errc:
		return classify(err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// classify maps SMTP reply codes onto the retry taxonomy: 5xx replies are
// permanent, everything else (dial errors, 4xx) is transient.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var proto *textproto.Error
	if errors.As(err, &proto) && proto.Code >= 500 {
		return &PermanentError{Err: fmt.Errorf("smtp rejected message: %w", err)}
	}
	return fmt.Errorf("smtp send error: %w", err)
}
