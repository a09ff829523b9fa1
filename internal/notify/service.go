// Package notify queues cancellation notices on Redis and delivers them to
// the notification endpoints from a background worker.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/qwerty-development/gym-webapp-sub000/internal/config"
	"github.com/qwerty-development/gym-webapp-sub000/internal/logger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/metrics"
)

const (
	queueKey  = "notifications"
	failedKey = "notifications:failed"

	popTimeout = 2 * time.Second
	// errorBackoff is how long the worker waits after the queue itself fails.
	errorBackoff = time.Second
)

type Audience string

const (
	AudienceAdmin Audience = "admin"
	AudienceUser  Audience = "user"
)

// Cancellation is the body posted to both endpoints.
type Cancellation struct {
	UserName      string `json:"user_name"`
	UserEmail     string `json:"user_email"`
	ActivityName  string `json:"activity_name"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	CoachName     string `json:"coach_name"`
	RefundDetails string `json:"refund_details"`
}

type Job struct {
	ID       uuid.UUID    `json:"id"`
	Audience Audience     `json:"audience"`
	Payload  Cancellation `json:"payload"`
	Attempts uint         `json:"attempts"`
	Created  time.Time    `json:"created"`
}

// permanentError marks a delivery the endpoint rejected; it is not retried.
type permanentError struct{ status int }

func (e permanentError) Error() string {
	return fmt.Sprintf("endpoint rejected notification with status %d", e.status)
}

type Service struct {
	redis   *redis.Client
	client  *http.Client
	cfg     config.Notify
	backoff time.Duration
}

func New(rdb *redis.Client, cfg config.Notify) *Service {
	return &Service{
		redis:   rdb,
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		backoff: errorBackoff,
	}
}

// NotifyCancellation queues one job for the studio admins and one for the
// member.
func (s *Service) NotifyCancellation(ctx context.Context, c Cancellation) error {
	for _, audience := range []Audience{AudienceAdmin, AudienceUser} {
		if err := s.enqueue(ctx, Job{
			ID:       uuid.New(),
			Audience: audience,
			Payload:  c,
			Created:  time.Now(),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue %s notification for %s: %v", job.Audience, job.Payload.UserEmail, err)
		return err
	}
	logger.Debugf("Notification %s queued for %s", job.ID, job.Audience)
	return nil
}

// Start pops jobs until ctx is cancelled. When the queue errors the worker
// waits out the backoff before polling again.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
		}

		if err := s.processNext(ctx); err != nil {
			logger.Warn("notification queue unavailable", "error", err, "retry_in", s.backoff.String())
			select {
			case <-ctx.Done():
				logger.Info("Notification worker stopped")
				return
			case <-time.After(s.backoff):
			}
		}
	}
}

// processNext handles at most one job. It only returns an error when the
// queue could not be read; delivery failures are parked instead.
func (s *Service) processNext(ctx context.Context) error {
	result, err := s.redis.BRPop(ctx, popTimeout, queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return nil
		}
		return err
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return nil
	}

	err = retry.Do(
		func() error {
			job.Attempts++
			return s.deliver(ctx, job)
		},
		retry.Context(ctx),
		retry.Attempts(s.cfg.Attempts),
		retry.Delay(s.cfg.RetryDelay),
		retry.MaxDelay(s.cfg.MaxDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var perm permanentError
			return !errors.As(err, &perm)
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("notification delivery failed, retrying",
				"id", job.ID.String(), "audience", string(job.Audience), "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		logger.Errorf("Notification %s to %s failed after %d attempts: %v", job.ID, job.Audience, job.Attempts, err)
		metrics.RecordNotification(string(job.Audience), "failed")
		s.saveFailed(job, err)
		return nil
	}

	metrics.RecordNotification(string(job.Audience), "sent")
	logger.Infof("Notification %s sent to %s", job.ID, job.Audience)
	return nil
}

func (s *Service) endpoint(a Audience) string {
	path := s.cfg.UserPath
	if a == AudienceAdmin {
		path = s.cfg.AdminPath
	}
	return strings.TrimRight(s.cfg.BaseURL, "/") + path
}

func (s *Service) deliver(ctx context.Context, job Job) error {
	body, err := json.Marshal(job.Payload)
	if err != nil {
		return permanentError{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(job.Audience), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Notification-ID", job.ID.String())

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return permanentError{status: resp.StatusCode}
	}
	return nil
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]any{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	if err := s.redis.LPush(context.Background(), failedKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to park notification %s: %v", job.ID, err)
		return
	}
	logger.Errorf("Notification %s moved to failed queue", job.ID)
}

// QueueLength reports the pending jobs and mirrors the count to the gauge.
func (s *Service) QueueLength(ctx context.Context) int64 {
	length, err := s.redis.LLen(ctx, queueKey).Result()
	if err != nil {
		return 0
	}
	metrics.NotificationQueueLength.Set(float64(length))
	return length
}

func (s *Service) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *Service) Close() error {
	return s.redis.Close()
}
