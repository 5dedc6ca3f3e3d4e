// Package announce publishes newly deployed versions to a NATS subject so that
// services other than browsers can react to a release.
package announce

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
	"git.home.luguber.info/inful/webupdate/internal/logfields"
)

// Announcement is the message published for each finalized build.
type Announcement struct {
	BuildID    string `json:"build_id"`
	Version    string `json:"version"`
	Silence    bool   `json:"silence"`
	ScriptHash string `json:"script_hash"`
	StyleHash  string `json:"style_hash,omitempty"`
}

// publisher is the subset of *nats.Conn used here.
type publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSAnnouncer publishes announcements on a single subject.
type NATSAnnouncer struct {
	conn    publisher
	subject string
}

// Connect dials url and returns an announcer for subject.
func Connect(url, subject string) (*NATSAnnouncer, error) {
	conn, err := nats.Connect(url,
		nats.Name("webupdate"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryAnnounce, "failed to connect to NATS").
			WithContext("url", url).Build()
	}
	slog.Debug("NATS announcer connected", "url", url, logfields.Subject(subject))
	return &NATSAnnouncer{conn: conn, subject: subject}, nil
}

// Announce publishes a and waits for the server to acknowledge the flush.
func (a *NATSAnnouncer) Announce(ctx context.Context, an Announcement) error {
	data, err := json.Marshal(an)
	if err != nil {
		return errors.WrapError(err, errors.CategoryAnnounce, "failed to encode announcement").Build()
	}
	if err := a.conn.Publish(a.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryAnnounce, "failed to publish announcement").
			WithContext("subject", a.subject).Build()
	}
	if err := a.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryAnnounce, "failed to flush announcement").
			WithContext("subject", a.subject).Build()
	}
	return nil
}

// Close closes the underlying connection.
func (a *NATSAnnouncer) Close() {
	if a == nil || a.conn == nil {
		return
	}
	a.conn.Close()
}
