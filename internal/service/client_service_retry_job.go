// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// DefaultRetryInterval is used when Start gets a non-positive interval.
const DefaultRetryInterval = 30 * time.Second

type clientRetryJob struct {
	session DatasetSession
	logger  *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClientRetryJob creates a job that re-pushes the session dataset while
// the last push failed. The job is idle until Start is called.
func NewClientRetryJob(session DatasetSession, logger *logger.Logger) ClientRetryJob {
	return &clientRetryJob{session: session, logger: logger}
}

func (j *clientRetryJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRetryInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.tick()
			}
		}
	}()
}

func (j *clientRetryJob) tick() {
	if j.session.Status() != models.StatusLocalOnly {
		return
	}

	if err := j.session.Resync(); err != nil {
		j.logger.Debug().Err(err).Str("func", "clientRetryJob.tick").Msg("resync skipped")
		return
	}
	j.logger.Info().Str("func", "clientRetryJob.tick").Msg("retrying remote push")
}

// Stop is safe to call when the job is not running.
func (j *clientRetryJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
