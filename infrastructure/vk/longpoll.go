package vk

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	domainMessage "github.com/AzielCF/az-vkmacro/domains/message"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

const (
	longPollMode = 2 // return attachments

	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

type longPollServer struct {
	server string
	key    string
	ts     string
}

func (c *Client) getLongPollServer(ctx context.Context) (longPollServer, error) {
	res, err := c.call(ctx, "messages.getLongPollServer", map[string]string{"lp_version": "0"})
	if err != nil {
		return longPollServer{}, err
	}
	lp := longPollServer{
		server: res.Get("server").String(),
		key:    res.Get("key").String(),
		ts:     res.Get("ts").String(),
	}
	if lp.server == "" || lp.key == "" {
		return longPollServer{}, errors.New("vk messages.getLongPollServer: incomplete response")
	}
	return lp, nil
}

func (lp longPollServer) url(wait int) string {
	server := lp.server
	if !strings.Contains(server, "://") {
		server = "https://" + server
	}
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("act", "a_check")
	args.Set("key", lp.key)
	args.Set("ts", lp.ts)
	args.Set("wait", strconv.Itoa(wait))
	args.Set("mode", strconv.Itoa(longPollMode))
	args.Set("version", "0")
	return server + "?" + string(args.QueryString())
}

// Poll runs the user long-poll loop. Transport failures are retried with
// backoff; an API error while fetching the server is returned since it
// usually means the token is no longer valid.
func (c *Client) Poll(ctx context.Context, handler domainMessage.EventHandler) error {
	selfID, err := c.GetSelfID(ctx)
	if err != nil {
		return err
	}

	var lp longPollServer
	backoff := minBackoff
	for ctx.Err() == nil {
		if lp.server == "" {
			lp, err = c.getLongPollServer(ctx)
			if err != nil {
				var apiErr *APIError
				if errors.As(err, &apiErr) {
					return err
				}
				logrus.WithError(err).Warnf("[VK] Unable to get long poll server, retrying in %s", backoff)
				backoff = sleep(ctx, backoff)
				continue
			}
			logrus.Debugf("[VK] Long poll server %s", lp)
		}

		timeout := c.cfg.Timeout + time.Duration(c.cfg.Wait)*time.Second
		body, err := c.do(ctx, fasthttp.MethodGet, lp.url(c.cfg.Wait), nil, timeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logrus.WithError(err).Warnf("[VK] Long poll request failed, retrying in %s", backoff)
			backoff = sleep(ctx, backoff)
			continue
		}
		backoff = minBackoff

		if !gjson.ValidBytes(body) {
			logrus.Warn("[VK] Malformed long poll response, refreshing server")
			lp = longPollServer{}
			continue
		}
		res := gjson.ParseBytes(body)

		if failed := res.Get("failed"); failed.Exists() {
			switch failed.Int() {
			case 1:
				lp.ts = res.Get("ts").String()
				logrus.Debug("[VK] Long poll history is outdated, events may have been lost")
			default:
				logrus.Debugf("[VK] Long poll key expired (failed=%d), refreshing server", failed.Int())
				lp = longPollServer{}
			}
			continue
		}

		lp.ts = res.Get("ts").String()
		for _, update := range res.Get("updates").Array() {
			event, ok, err := ParseUpdate(update, selfID)
			if err != nil {
				logrus.WithError(err).Warn("[VK] Skipping malformed update")
				continue
			}
			if !ok || c.sent.Contains(event.ID) {
				continue
			}
			handler(ctx, event)
		}
	}

	return nil
}

// sleep waits for d or until ctx is done and returns the next backoff.
func sleep(ctx context.Context, d time.Duration) time.Duration {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	if next := d * 2; next < maxBackoff {
		return next
	}
	return maxBackoff
}

func (lp longPollServer) String() string {
	return fmt.Sprintf("%s (ts %s)", lp.server, lp.ts)
}
