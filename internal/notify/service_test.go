package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwerty-development/gym-webapp-sub000/internal/config"
	"github.com/qwerty-development/gym-webapp-sub000/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.WithOutput(io.Discard))

	code := m.Run()
	os.Exit(code)
}

func newTestService(rdb *redis.Client, baseURL string) *Service {
	return New(rdb, config.Notify{
		BaseURL:    baseURL,
		AdminPath:  "/api/send-cancel-admin",
		UserPath:   "/api/send-cancel-user",
		Timeout:    time.Second,
		Attempts:   2,
		RetryDelay: time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	})
}

var sample = Cancellation{
	UserName:      "Dana",
	UserEmail:     "dana@example.com",
	ActivityName:  "Boxing",
	Date:          "2026-10-20",
	StartTime:     "18:00",
	EndTime:       "19:00",
	CoachName:     "Sam",
	RefundDetails: "50 credits",
}

func queued(t *testing.T, a Audience) string {
	data, err := json.Marshal(Job{ID: uuid.New(), Audience: a, Payload: sample, Created: time.Now()})
	require.NoError(t, err)
	return string(data)
}

type recorder struct {
	mu     sync.Mutex
	paths  []string
	bodies []Cancellation
	status int
}

func (r *recorder) handler(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c Cancellation
	_ = json.NewDecoder(req.Body).Decode(&c)
	r.paths = append(r.paths, req.URL.Path)
	r.bodies = append(r.bodies, c)
	w.WriteHeader(r.status)
}

func TestNotifyCancellation_QueuesBothAudiences(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(queueKey, `"audience":"admin"`).SetVal(1)
	mock.Regexp().ExpectLPush(queueKey, `"audience":"user"`).SetVal(2)

	svc := newTestService(db, "http://unused")
	assert.NoError(t, svc.NotifyCancellation(ctx, sample))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyCancellation_RedisDown(t *testing.T) {
	db, mock := redismock.NewClientMock()

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetErr(errors.New("connection refused"))

	svc := newTestService(db, "http://unused")
	assert.Error(t, svc.NotifyCancellation(context.Background(), sample))
}

func TestProcessNext_DeliversToAudienceEndpoint(t *testing.T) {
	rec := &recorder{status: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	db, mock := redismock.NewClientMock()
	mock.ExpectBRPop(popTimeout, queueKey).SetVal([]string{queueKey, queued(t, AudienceAdmin)})
	mock.ExpectBRPop(popTimeout, queueKey).SetVal([]string{queueKey, queued(t, AudienceUser)})

	svc := newTestService(db, srv.URL+"/")
	svc.processNext(context.Background())
	svc.processNext(context.Background())

	assert.Equal(t, []string{"/api/send-cancel-admin", "/api/send-cancel-user"}, rec.paths)
	require.Len(t, rec.bodies, 2)
	assert.Equal(t, sample, rec.bodies[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNext_ExhaustedRetriesParkJob(t *testing.T) {
	rec := &recorder{status: http.StatusBadGateway}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	db, mock := redismock.NewClientMock()
	mock.ExpectBRPop(popTimeout, queueKey).SetVal([]string{queueKey, queued(t, AudienceUser)})
	mock.Regexp().ExpectLPush(failedKey, `status 502`).SetVal(1)

	svc := newTestService(db, srv.URL)
	svc.processNext(context.Background())

	assert.Len(t, rec.paths, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNext_RejectedIsNotRetried(t *testing.T) {
	rec := &recorder{status: http.StatusBadRequest}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	db, mock := redismock.NewClientMock()
	mock.ExpectBRPop(popTimeout, queueKey).SetVal([]string{queueKey, queued(t, AudienceAdmin)})
	mock.Regexp().ExpectLPush(failedKey, `.*`).SetVal(1)

	svc := newTestService(db, srv.URL)
	svc.processNext(context.Background())

	assert.Len(t, rec.paths, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNext_BadPayloadIsDropped(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectBRPop(popTimeout, queueKey).SetVal([]string{queueKey, "{not json"})

	svc := newTestService(db, "http://unused")
	assert.NoError(t, svc.processNext(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNext_EmptyQueueIsNotAnError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectBRPop(popTimeout, queueKey).RedisNil()

	svc := newTestService(db, "http://unused")
	assert.NoError(t, svc.processNext(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNext_RedisDownReturnsError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectBRPop(popTimeout, queueKey).SetErr(errors.New("connection refused"))

	svc := newTestService(db, "http://unused")
	assert.EqualError(t, svc.processNext(context.Background()), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStart_BacksOffWhenRedisDown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectBRPop(popTimeout, queueKey).SetErr(errors.New("connection refused"))

	svc := newTestService(db, "http://unused")
	svc.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, mock.ExpectationsWereMet())
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop during backoff")
	}
}

func TestQueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectLLen(queueKey).SetVal(5)

	svc := newTestService(db, "http://unused")
	assert.Equal(t, int64(5), svc.QueueLength(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStart_StopsOnCancel(t *testing.T) {
	db, _ := redismock.NewClientMock()
	svc := newTestService(db, "http://unused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
