package vk

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	domainMessage "github.com/AzielCF/az-vkmacro/domains/message"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

const (
	DefaultAPIBaseURL = "https://api.vk.com/method"
	DefaultAPIVersion = "5.131"

	userAgent = "az-vkmacro"
)

type Config struct {
	Token      string
	APIVersion string
	APIBaseURL string
	// Timeout bounds one API call. Long-poll requests get Wait on top of it.
	Timeout time.Duration
	// Wait is the long-poll wait in seconds.
	Wait int
}

// APIError is an error object returned by the VK API.
type APIError struct {
	Method  string
	Code    int64
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vk %s: error %d: %s", e.Method, e.Code, e.Message)
}

// Client talks to the VK user API on behalf of a single account.
type Client struct {
	cfg  Config
	http *fasthttp.Client
	sent *recentIDs

	selfMu sync.Mutex
	selfID int64
}

var _ domainMessage.IMessenger = (*Client)(nil)

func NewClient(cfg Config) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Wait <= 0 {
		cfg.Wait = 25
	}
	return &Client{
		cfg: cfg,
		http: &fasthttp.Client{
			Name:                userAgent,
			ReadTimeout:         cfg.Timeout + time.Duration(cfg.Wait)*time.Second,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: time.Minute,
		},
		sent: newRecentIDs(256),
	}
}

func (c *Client) GetSelfID(ctx context.Context) (int64, error) {
	c.selfMu.Lock()
	defer c.selfMu.Unlock()
	if c.selfID != 0 {
		return c.selfID, nil
	}

	res, err := c.call(ctx, "users.get", nil)
	if err != nil {
		return 0, err
	}
	id := res.Get("0.id").Int()
	if id == 0 {
		return 0, fmt.Errorf("vk users.get: empty response")
	}
	c.selfID = id
	return id, nil
}

func (c *Client) SendMessage(ctx context.Context, request domainMessage.SendRequest) (int64, error) {
	res, err := c.call(ctx, "messages.send", map[string]string{
		"peer_id":          strconv.FormatInt(request.PeerID, 10),
		"message":          request.Text,
		"random_id":        strconv.FormatInt(int64(int32(uuid.New().ID())), 10),
		"dont_parse_links": "1",
		"disable_mentions": "1",
	})
	if err != nil {
		return 0, err
	}
	id := res.Int()
	c.sent.Add(id)
	return id, nil
}

func (c *Client) EditMessage(ctx context.Context, request domainMessage.EditRequest) error {
	_, err := c.call(ctx, "messages.edit", map[string]string{
		"peer_id":               strconv.FormatInt(request.PeerID, 10),
		"message_id":            strconv.FormatInt(request.MessageID, 10),
		"message":               request.Text,
		"attachment":            request.Attachments,
		"keep_forward_messages": "1",
		"dont_parse_links":      "1",
	})
	return err
}

// call invokes an API method and returns its "response" field.
func (c *Client) call(ctx context.Context, method string, params map[string]string) (gjson.Result, error) {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	for k, v := range params {
		args.Set(k, v)
	}
	args.Set("access_token", c.cfg.Token)
	args.Set("v", c.cfg.APIVersion)

	body, err := c.do(ctx, fasthttp.MethodPost, c.cfg.APIBaseURL+"/"+method, args.QueryString(), c.cfg.Timeout)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("vk %s: %w", method, err)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("vk %s: malformed response", method)
	}

	root := gjson.ParseBytes(body)
	if apiErr := root.Get("error"); apiErr.Exists() {
		return gjson.Result{}, &APIError{
			Method:  method,
			Code:    apiErr.Get("error_code").Int(),
			Message: apiErr.Get("error_msg").String(),
		}
	}
	return root.Get("response"), nil
}

// do performs one request. The request runs on its own goroutine so that a
// cancelled ctx returns immediately; the goroutine ends at the deadline.
func (c *Client) do(ctx context.Context, method, uri string, body []byte, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	type result struct {
		body []byte
		err  error
	}
	done := make(chan result, 1)
	payload := append([]byte(nil), body...)

	go func() {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(uri)
		req.Header.SetMethod(method)
		if method == fasthttp.MethodPost {
			req.Header.SetContentType("application/x-www-form-urlencoded")
			req.SetBody(payload)
		}

		if err := c.http.DoDeadline(req, resp, deadline); err != nil {
			done <- result{err: err}
			return
		}
		if code := resp.StatusCode(); code != fasthttp.StatusOK {
			done <- result{err: fmt.Errorf("unexpected status %d", code)}
			return
		}
		done <- result{body: append([]byte(nil), resp.Body()...)}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.body, r.err
	}
}

// recentIDs remembers the ids of the last messages sent by the client.
type recentIDs struct {
	mu   sync.Mutex
	ids  []int64
	next int
	set  map[int64]struct{}
}

func newRecentIDs(size int) *recentIDs {
	return &recentIDs{ids: make([]int64, size), set: make(map[int64]struct{}, size)}
}

func (r *recentIDs) Add(id int64) {
	if id == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old := r.ids[r.next]; old != 0 {
		delete(r.set, old)
	}
	r.ids[r.next] = id
	r.set[id] = struct{}{}
	r.next = (r.next + 1) % len(r.ids)
}

func (r *recentIDs) Contains(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.set[id]
	return ok
}
