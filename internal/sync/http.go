package sync

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPReplica talks to a sync server over REST, with an SSE stream per
// collection for live updates. Document paths are {base}/{collection}/{id};
// the stream is {base}/{collection}/events.
type HTTPReplica struct {
	base   string
	token  string
	client *http.Client
}

// NewHTTPReplica creates a replica client for the given base URL. The
// token, if set, is sent as a bearer token on every request.
func NewHTTPReplica(base, token string) *HTTPReplica {
	return &HTTPReplica{
		base:  strings.TrimRight(base, "/"),
		token: token,
		// No overall timeout: the SSE stream is long-lived.
		client: &http.Client{},
	}
}

func (r *HTTPReplica) GetAll(ctx context.Context, col Collection, userID string) (map[string]json.RawMessage, error) {
	u := fmt.Sprintf("%s/%s?userId=%s", r.base, col, url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sync server returned %d for %s", resp.StatusCode, col)
	}

	var docs map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *HTTPReplica) Put(ctx context.Context, col Collection, userID, id string, data json.RawMessage) error {
	u := fmt.Sprintf("%s/%s/%s?userId=%s", r.base, col, url.PathEscape(id), url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("sync server returned %d for put %s/%s", resp.StatusCode, col, id)
	}
	return nil
}

func (r *HTTPReplica) Delete(ctx context.Context, col Collection, userID, id string) error {
	u := fmt.Sprintf("%s/%s/%s?userId=%s", r.base, col, url.PathEscape(id), url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// Missing ids are fine; the delete already happened elsewhere.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("sync server returned %d for delete %s/%s", resp.StatusCode, col, id)
	}
	return nil
}

// Subscribe opens the SSE stream and redials with backoff until the
// context is cancelled or stop is called.
func (r *HTTPReplica) Subscribe(ctx context.Context, col Collection, userID string, fn func(Event)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		backoff := time.Second
		for ctx.Err() == nil {
			err := r.stream(ctx, col, userID, fn)
			if ctx.Err() != nil {
				return
			}
			_ = err // redial regardless of why the stream ended
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
		}
	}()

	return cancel, nil
}

func (r *HTTPReplica) stream(ctx context.Context, col Collection, userID string, fn func(Event)) error {
	u := fmt.Sprintf("%s/%s/events?userId=%s", r.base, col, url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sync server returned %d for %s stream", resp.StatusCode, col)
	}

	return readEvents(resp.Body, fn)
}

// readEvents parses an SSE stream. The server names the event "put" or
// "delete" and sends the document (or {"id": ...} for deletes) as data.
func readEvents(body io.Reader, fn func(Event)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var eventName string
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if ev, ok := parseEvent(eventName, data.String()); ok {
				fn(ev)
			}
			eventName = ""
			data.Reset()
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	return scanner.Err()
}

func parseEvent(name, data string) (Event, bool) {
	if data == "" {
		return Event{}, false
	}
	var doc struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(data), &doc); err != nil || doc.ID == "" {
		return Event{}, false
	}

	switch name {
	case "delete":
		return Event{Op: OpDelete, ID: doc.ID}, true
	case "put", "":
		return Event{Op: OpPut, ID: doc.ID, Data: json.RawMessage(data)}, true
	}
	return Event{}, false
}

func (r *HTTPReplica) authorize(req *http.Request) {
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
}
