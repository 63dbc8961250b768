package dbclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/NyanCAD/Pyttoresque/schem"
	"github.com/NyanCAD/Pyttoresque/telemetry"
)

// Change is one record from a _changes feed: the document as it stood
// after the change (Raw.Body is empty when the record carried no doc; a
// deletion reported with a doc keeps that body and sets Deleted),
// carried alongside the sequence token it advanced to.
type Change struct {
	Seq     string
	Raw     schem.RawDoc
	Deleted bool
}

type changeRecord struct {
	Seq     json.RawMessage `json:"seq"`
	ID      string          `json:"id"`
	Doc     json.RawMessage `json:"doc"`
	Deleted bool            `json:"deleted"`
}

func (r changeRecord) toChange() (Change, error) {
	seq := seqString(r.Seq)
	ch := Change{Seq: seq, Deleted: r.Deleted}
	if len(r.Doc) == 0 {
		ch.Raw = schem.RawDoc{ID: r.ID, Deleted: r.Deleted}
		return ch, nil
	}
	rev, err := extractRev(r.Doc)
	if err != nil {
		return Change{}, err
	}
	var delFlag struct {
		Deleted bool `json:"_deleted"`
	}
	json.Unmarshal(r.Doc, &delFlag)
	ch.Deleted = ch.Deleted || delFlag.Deleted
	ch.Raw = schem.RawDoc{ID: r.ID, Rev: rev, Body: r.Doc, Deleted: ch.Deleted}
	return ch, nil
}

type changesResponse struct {
	Results []changeRecord  `json:"results"`
	LastSeq json.RawMessage `json:"last_seq"`
}

func changesQuery(since string, sel Selector) url.Values {
	return url.Values{
		"filter":       {"_selector"},
		"since":        {since},
		"include_docs": {"true"},
	}
}

// ChangesSince performs one delta poll filtered by sel, returning every
// change observed since since and the new high-water sequence token.
func (c *Client) ChangesSince(ctx context.Context, since string, sel Selector) (string, []Change, error) {
	var resp changesResponse
	if err := c.jsonPost(ctx, "_changes", changesQuery(since, sel), sel.marshal(), &resp); err != nil {
		return "", nil, err
	}
	changes := make([]Change, 0, len(resp.Results))
	for _, r := range resp.Results {
		ch, err := r.toChange()
		if err != nil {
			return "", nil, err
		}
		changes = append(changes, ch)
	}
	return seqString(resp.LastSeq), changes, nil
}

// ChangeStream is a restartable-but-otherwise-infinite lazy sequence of
// changes over a long-lived HTTP response. It yields one Change per
// newline-delimited JSON record and transparently skips server heartbeat
// lines (blank lines). It ends only on transport error or explicit
// Close.
type ChangeStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	logger  *telemetry.Logger

	heartbeatDeadline time.Duration
	lines             chan string
	errCh             chan error
	closed            chan struct{}
}

// ChangesStream opens a continuous change feed filtered by sel, starting
// after since. The initial connection attempt is guarded by a circuit
// breaker so that repeated reopen attempts against a database that is
// down do not pile up.
func (c *Client) ChangesStream(ctx context.Context, since string, sel Selector) (*ChangeStream, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.openChangesStream(ctx, since, sel)
	})
	if err != nil {
		return nil, err
	}
	return result.(*ChangeStream), nil
}

func (c *Client) openChangesStream(ctx context.Context, since string, sel Selector) (*ChangeStream, error) {
	buf, err := json.Marshal(sel.marshal())
	if err != nil {
		return nil, fmt.Errorf("encode selector: %w", err)
	}

	query := url.Values{
		"filter":       {"_selector"},
		"since":        {since},
		"feed":         {"continuous"},
		"heartbeat":    {strconv.Itoa(int(c.heartbeatDeadline.Milliseconds() / 3))},
		"include_docs": {"true"},
	}
	u := c.resolve("_changes") + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(buf))
	if err != nil {
		return nil, telemetry.Transport(err, "build continuous _changes request")
	}
	req.Header.Set("Content-Type", "application/json")

	// The feed is long-lived, so it is not bound by RequestTimeout.
	streamHTTP := *c.http
	streamHTTP.Timeout = 0
	streamClient := *c
	streamClient.http = &streamHTTP
	_, body, err := streamClient.do(req)
	if err != nil {
		return nil, err
	}

	stream := &ChangeStream{
		body:              body,
		scanner:           bufio.NewScanner(body),
		logger:            c.logger,
		heartbeatDeadline: c.heartbeatDeadline,
		lines:             make(chan string),
		errCh:             make(chan error, 1),
		closed:            make(chan struct{}),
	}
	stream.scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	go stream.pump()
	return stream, nil
}

func (s *ChangeStream) pump() {
	defer close(s.lines)
	for s.scanner.Scan() {
		select {
		case s.lines <- s.scanner.Text():
		case <-s.closed:
			return
		}
	}
	if err := s.scanner.Err(); err != nil {
		if s.logger != nil {
			s.logger.Warn("change feed scanner stopped", telemetry.Err(err))
		}
		s.errCh <- telemetry.Transport(err, "change feed read failed")
	} else {
		s.errCh <- io.EOF
	}
}

// Next blocks until the next non-heartbeat change arrives, the heartbeat
// deadline elapses without one, the stream ends, or ctx is cancelled.
func (s *ChangeStream) Next(ctx context.Context) (Change, error) {
	for {
		select {
		case <-ctx.Done():
			return Change{}, ctx.Err()
		case line, ok := <-s.lines:
			if !ok {
				select {
				case err := <-s.errCh:
					return Change{}, err
				default:
					return Change{}, io.EOF
				}
			}
			if len(bytesTrimSpace(line)) == 0 {
				continue // heartbeat
			}
			var rec changeRecord
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				return Change{}, fmt.Errorf("decode change record: %w", err)
			}
			return rec.toChange()
		case <-time.After(s.heartbeatDeadline):
			return Change{}, telemetry.Transport(nil, "missing heartbeat beyond %s", s.heartbeatDeadline)
		}
	}
}

// Close cancels the underlying HTTP response, terminating the stream at
// its next suspension point.
func (s *ChangeStream) Close() error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return s.body.Close()
}

func bytesTrimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}
