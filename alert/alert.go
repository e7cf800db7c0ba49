// Package alert sends security notifications through the configured channels.
package alert

import (
	"fmt"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/ghostink/ghostink/emailer"
)

// ChatSender posts a text message to a chat, e.g. a telegram.Bot
type ChatSender interface {
	Send(text string) error
}

// Dispatcher fans a notification out to every configured channel. Sending happens
// in the background; failures are logged only.
type Dispatcher struct {
	mailer emailer.Emailer
	mailTo string
	chat   ChatSender
	wg     sync.WaitGroup
}

// New creates a Dispatcher. mailer and chat may be nil to disable that channel.
func New(mailer emailer.Emailer, mailTo string, chat ChatSender) *Dispatcher {
	if mailTo == "" {
		mailer = nil
	}
	return &Dispatcher{mailer: mailer, mailTo: mailTo, chat: chat}
}

// Enabled reports whether at least one channel is configured
func (d *Dispatcher) Enabled() bool {
	return d.mailer != nil || d.chat != nil
}

// LoginLockout notifies that ip reached the login attempt limit
func (d *Dispatcher) LoginLockout(ip string, attempts int, window time.Duration) {
	if !d.Enabled() {
		return
	}

	subject := "GhostInk: login attempts blocked"
	text := fmt.Sprintf("%d failed login attempts from %s within %s at %s. Further attempts are blocked until the window passes.",
		attempts, ip, window, time.Now().UTC().Format(time.RFC3339))

	if d.mailer != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.mailer.Send("", d.mailTo, subject, text); err != nil {
				log.Error("Cannot send lockout alert email: ", err)
			}
		}()
	}

	if d.chat != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.chat.Send(subject + "\n" + text); err != nil {
				log.Error("Cannot send lockout alert message: ", err)
			}
		}()
	}
}

// Wait blocks until all pending notifications are sent
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
