// Package health reports whether the stores a binary depends on are reachable.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	StatusUp   = "up"
	StatusDown = "down"
)

const defaultTimeout = 2 * time.Second

// Pinger is satisfied by the Postgres, MongoDB and Redis wrappers
type Pinger interface {
	Ping(ctx context.Context) error
}

// Report is the /health body
type Report struct {
	Status       string            `json:"status"`
	Service      string            `json:"service,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Checker pings every registered dependency concurrently
type Checker struct {
	service string
	timeout time.Duration
	deps    map[string]Pinger
	now     func() time.Time
}

func NewChecker(service string, deps map[string]Pinger) *Checker {
	return &Checker{
		service: service,
		timeout: defaultTimeout,
		deps:    deps,
		now:     time.Now,
	}
}

// Check returns the report; Status is down when any dependency fails
func (c *Checker) Check(ctx context.Context) Report {
	report := Report{
		Status:    StatusUp,
		Service:   c.service,
		Timestamp: c.now().UTC(),
	}
	if len(c.deps) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	names := make([]string, 0, len(c.deps))
	for name := range c.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, p Pinger) {
			defer wg.Done()
			results[i] = StatusUp
			if err := p.Ping(ctx); err != nil {
				results[i] = StatusDown
			}
		}(i, c.deps[name])
	}
	wg.Wait()

	report.Dependencies = make(map[string]string, len(names))
	for i, name := range names {
		report.Dependencies[name] = results[i]
		if results[i] == StatusDown {
			report.Status = StatusDown
		}
	}
	return report
}

// Handler answers 200 when everything is up and 503 otherwise
func (c *Checker) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		report := c.Check(ctx.Request.Context())
		status := http.StatusOK
		if report.Status != StatusUp {
			status = http.StatusServiceUnavailable
		}
		ctx.JSON(status, report)
	}
}
