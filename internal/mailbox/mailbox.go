// Package mailbox stores contact messages left by visitors in SQLite.
package mailbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/time/rate"
	_ "modernc.org/sqlite"

	"github.com/Gaurav-Gosain/deskfolio/internal/logging"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrInvalidEmail = errors.New("invalid email address")
	ErrTooLong      = errors.New("message is too long")
	ErrRateLimited  = errors.New("too many messages, try again later")
)

const (
	MaxNameLength = 100
	MaxBodyLength = 4000
)

var logger = logging.New("mail")

// Message is one contact form submission.
type Message struct {
	ID        string
	Name      string
	Email     string
	Body      string
	Sender    string
	CreatedAt time.Time
}

// Options tune a Store.
type Options struct {
	// RatePerMinute limits submissions per sender. Zero disables limiting.
	RatePerMinute int
	Burst         int
	Now           func() time.Time
}

// Store is a SQLite-backed mailbox. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	policy *bluemonday.Policy
	now    func() time.Time

	limit rate.Limit
	burst int
	// idle is how long a limiter takes to refill completely. A sender idle
	// for longer is indistinguishable from a new one and is forgotten.
	idle time.Duration

	mu        sync.Mutex
	limiters  map[string]*senderLimit
	lastPrune time.Time
}

type senderLimit struct {
	limiter *rate.Limiter
	seen    time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	body       TEXT NOT NULL,
	sender     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_created_at ON messages (created_at DESC);
`

// Open opens or creates the database at path and applies the schema.
// Use ":memory:" for a throwaway store.
func Open(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mailbox: %w", err)
	}
	// a single connection keeps :memory: databases shared and serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate mailbox: %w", err)
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}
	limit := rate.Inf
	burst := max(opts.Burst, 1)
	idle := time.Minute
	if opts.RatePerMinute > 0 {
		every := time.Minute / time.Duration(opts.RatePerMinute)
		limit = rate.Every(every)
		idle = max(idle, every*time.Duration(burst))
	}

	logger.Debug("mailbox opened", "path", path, "rate_per_minute", opts.RatePerMinute, "burst", burst)

	return &Store{
		db:       db,
		policy:   bluemonday.StrictPolicy(),
		now:      opts.Now,
		limit:     limit,
		burst:     burst,
		idle:      idle,
		limiters:  map[string]*senderLimit{},
		lastPrune: opts.Now(),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Submit cleans and validates msg, applies the per-sender rate limit and
// stores it. The stored message is returned with its id and timestamp.
func (s *Store) Submit(ctx context.Context, msg Message) (Message, error) {
	msg.Name = s.clean(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Body = s.clean(msg.Body)
	if msg.Sender == "" {
		msg.Sender = "anonymous"
	}

	if err := validate(msg); err != nil {
		return Message{}, err
	}

	now := s.now()
	if !s.limiter(msg.Sender, now).AllowN(now, 1) {
		logger.Warn("rate limited", "sender", msg.Sender)
		return Message{}, ErrRateLimited
	}

	msg.ID = uuid.NewString()
	msg.CreatedAt = now.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, name, email, body, sender, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Name, msg.Email, msg.Body, msg.Sender, msg.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Message{}, fmt.Errorf("failed to store message: %w", err)
	}

	logger.Info("message received", "id", msg.ID, "from", msg.Email)
	return msg, nil
}

// List returns up to limit messages, newest first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, body, sender, created_at FROM messages ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Message
	for rows.Next() {
		var m Message
		var created int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &m.Sender, &created); err != nil {
			return nil, fmt.Errorf("failed to read message: %w", err)
		}
		m.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return out, nil
}

// Count returns the number of stored messages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

func (s *Store) limiter(sender string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastPrune) >= s.idle {
		for k, l := range s.limiters {
			if now.Sub(l.seen) >= s.idle {
				delete(s.limiters, k)
			}
		}
		s.lastPrune = now
	}

	l, ok := s.limiters[sender]
	if !ok {
		l = &senderLimit{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[sender] = l
	}
	l.seen = now
	return l.limiter
}

// Senders returns how many senders currently have rate limit state.
func (s *Store) Senders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// clean strips markup and terminal escape sequences. Messages are shown in a
// terminal, so an embedded escape could otherwise repaint the reader's screen.
func (s *Store) clean(v string) string {
	v = s.policy.Sanitize(v)
	v = html.UnescapeString(v)
	v = ansi.Strip(v)
	return strings.TrimSpace(v)
}

func validate(m Message) error {
	if m.Body == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(m.Body) > MaxBodyLength {
		return fmt.Errorf("%w: body exceeds %d characters", ErrTooLong, MaxBodyLength)
	}
	if utf8.RuneCountInString(m.Name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrTooLong, MaxNameLength)
	}
	addr, err := mail.ParseAddress(m.Email)
	if err != nil || addr.Address != m.Email {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, m.Email)
	}
	return nil
}
