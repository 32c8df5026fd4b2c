package performance_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chef-site-api/internal/contactform"
	"github.com/noah-isme/chef-site-api/internal/dto"
	"github.com/noah-isme/chef-site-api/internal/handler"
	"github.com/noah-isme/chef-site-api/internal/service"
	"github.com/noah-isme/chef-site-api/pkg/mail"
)

func setupContactPerformanceApp(t *testing.T) *fiber.App {
	t.Helper()

	form, err := contactform.New(validator.New())
	require.NoError(t, err)

	svc := service.NewContactService(form, mail.NewLogSender(zerolog.Nop()), service.ContactConfig{
		From: "noreply@chef.test",
		To:   []string{"inbox@chef.test"},
	}, zerolog.Nop())

	app := fiber.New()
	handler.NewContactHandler(svc, form.Schema(), zerolog.Nop()).Register(app.Group("/api/v1/contact"))
	return app
}

func contactBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(dto.ContactRequest{
		Name:    "John Doe",
		Email:   "john@example.com",
		Subject: "Test Subject",
		Message: "This is a test message with more than 10 characters",
	})
	require.NoError(t, err)
	return body
}

func TestContactSubmitP95LatencyBelow250ms(t *testing.T) {
	app := setupContactPerformanceApp(t)
	body := contactBody(t)

	runs := 40
	durations := make([]time.Duration, 0, runs)

	for i := 0; i < runs; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		start := time.Now()
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	index := int(math.Ceil(0.95*float64(len(durations)))) - 1
	if index < 0 {
		index = 0
	}
	p95 := durations[index]

	require.LessOrEqual(t, p95, 250*time.Millisecond)
}

type countingSender struct {
	mu    sync.Mutex
	count int
}

func (c *countingSender) Send(context.Context, mail.Message) (mail.Result, error) {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	return mail.Result{MessageID: "perf"}, nil
}

func (c *countingSender) Verify(context.Context) error { return nil }

func (c *countingSender) Provider() string { return "counting" }

func TestContactSubmitConcurrentRequests(t *testing.T) {
	form, err := contactform.New(validator.New())
	require.NoError(t, err)

	sender := &countingSender{}
	svc := service.NewContactService(form, sender, service.ContactConfig{
		From: "noreply@chef.test",
		To:   []string{"inbox@chef.test"},
	}, zerolog.Nop())

	app := fiber.New()
	handler.NewContactHandler(svc, form.Schema(), zerolog.Nop()).Register(app.Group("/api/v1/contact"))
	body := contactBody(t)

	const workers = 20
	var wg sync.WaitGroup
	statuses := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		require.Equal(t, http.StatusOK, status)
	}
	require.Equal(t, workers, sender.count)
}
