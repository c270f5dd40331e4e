package pushflow

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kayac/pushflow/apns"
	"github.com/kayac/pushflow/config"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// ErrNoResult is returned by Push when the Client answered neither a Result nor an error.
var ErrNoResult = errors.New("client returned no result")

// Sender pushes notifications through a Client, one exchange per call, and
// reports every outcome to logs, stats, response handlers and the error hook.
type Sender struct {
	client         Client
	errorHandler   ResponseHandler
	successHandler ResponseHandler
	stats          Stats

	mu     sync.Mutex
	closed bool
	wgrp   sync.WaitGroup
}

// NewSender returns a Sender whose error hook is taken from conf.Hook.
func NewSender(c Client, conf config.Config) *Sender {
	return &Sender{
		client:         c,
		errorHandler:   DefaultResponseHandler{Hook: conf.Hook.ErrorHook},
		successHandler: DefaultResponseHandler{},
		stats:          NewStats(),
	}
}

// InitErrorResponseHandler replaces the handler called for gone and rejected results.
func (s *Sender) InitErrorResponseHandler(erh ResponseHandler) error {
	if erh == nil {
		return fmt.Errorf("Invalid response handler: %v", erh)
	}
	s.errorHandler = erh
	return nil
}

// InitSuccessResponseHandler replaces the handler called for delivered results.
func (s *Sender) InitSuccessResponseHandler(sh ResponseHandler) error {
	if sh == nil {
		return fmt.Errorf("Invalid response handler: %v", sh)
	}
	s.successHandler = sh
	return nil
}

// Push sends one notification. A non-nil Result is returned for every
// answered exchange; errors are returned only when no answer was classified.
func (s *Sender) Push(ctx context.Context, p *apns.Payload, addr apns.Address) (*apns.Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, apns.ErrClientClosed
	}
	s.wgrp.Add(1)
	s.mu.Unlock()
	defer s.wgrp.Done()

	logf := logrus.Fields{
		"type":     "sender",
		"status":   "-",
		"token":    addr.Token(),
		"resp_uid": uuid.NewV4().String(),
	}
	if p != nil {
		logf["push_type"] = p.PushType()
	}

	start := time.Now()
	result, err := s.client.Send(ctx, p, addr)
	logf["response_time"] = time.Since(start).Seconds()

	if err == nil && result == nil {
		err = ErrNoResult
	}
	if err != nil {
		s.countError(err)
		logf["kind"] = apns.KindOf(err).String()
		LogWithFields(logf).Errorf("Failed to send a notification: %s", err)
		return nil, err
	}
	atomic.AddInt64(&s.stats.SentCount, 1)

	for _, key := range result.ExtraKeys() {
		logf[key] = result.ExtraValue(key)
	}
	logf["status"] = result.Status()

	switch result.Outcome {
	case apns.Delivered:
		atomic.AddInt64(&s.stats.DeliveredCount, 1)
		s.successHandler.OnResponse(result)
		LogWithFields(logf).Info("Succeeded to send a notification")
	case apns.RecipientGone:
		atomic.AddInt64(&s.stats.GoneCount, 1)
		LogWithFields(logf).Warnf("%s", result.Err())
		s.onError(result)
	default:
		atomic.AddInt64(&s.stats.RejectedCount, 1)
		LogWithFields(logf).Errorf("%s", result.Err())
		s.onError(result)
	}
	return result, nil
}

func (s *Sender) countError(err error) {
	switch apns.KindOf(err) {
	case apns.KindTransport:
		atomic.AddInt64(&s.stats.TransportErrors, 1)
	case apns.KindCredential:
		atomic.AddInt64(&s.stats.CredentialErrs, 1)
	case apns.KindValidation:
		atomic.AddInt64(&s.stats.ValidationErrs, 1)
	}
}

// onError must be called while the caller holds a wgrp slot.
func (s *Sender) onError(result *apns.Result) {
	s.errorHandler.OnResponse(result)

	cmd := s.errorHandler.HookCmd()
	if cmd == "" {
		return
	}
	b, err := result.MarshalJSON()
	if err != nil {
		LogWithFields(logrus.Fields{"type": "on_response"}).Errorf("%s", err)
		return
	}

	s.wgrp.Add(1)
	go func() {
		defer s.wgrp.Done()
		logf := logrus.Fields{
			"type":     "cmd_worker",
			"provider": result.Provider(),
			"token":    result.RecipientIdentifier(),
		}
		atomic.AddInt64(&s.stats.HookCount, 1)

		ctx, cancel := context.WithTimeout(context.Background(), HookTimeout)
		defer cancel()
		LogWithFields(logf).Debugf("invoking command: %s %s", cmd, string(b))
		out, err := invokePipe(ctx, cmd, bytes.NewReader(b))
		if err != nil {
			atomic.AddInt64(&s.stats.HookErrCount, 1)
			LogWithFields(logf).Errorf("(%s) %s", err.Error(), string(out))
			return
		}
		LogWithFields(logf).Debugf("Success to execute command")
	}()
}

// Stats returns a snapshot of the counters.
func (s *Sender) Stats() Stats {
	return s.stats.Snapshot()
}

// Close waits for running pushes and hooks, then closes the client.
// Calling Close more than once is a no-op.
func (s *Sender) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	LogWithFields(logrus.Fields{"type": "sender"}).Infoln("Waiting for running hooks...")
	s.wgrp.Wait()
	return s.client.Close()
}
