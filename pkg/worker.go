package pkg

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"postforge/pkg/models"
)

// PublishJob is one auto-publish invocation for one schedule. The
// token correlates log lines across a dispatch; delivery is
// at-least-once, so workers must tolerate duplicates.
type PublishJob struct {
	ScheduleId string
	Token      string
}

// Dispatcher is the fire-and-forget handoff between the HTTP layer and
// the auto-publish workers. Enqueue never blocks: a full queue is a
// dispatch failure reported to the caller.
type Dispatcher interface {
	Enqueue(job PublishJob) error
}

var _ Dispatcher = (*WorkerPool)(nil)

// WorkerPool runs the auto-publish flow on a fixed set of goroutines
// fed by a buffered channel.
type WorkerPool struct {
	store      Store
	generator  PostGenerator
	archive    *Archive
	generation *models.GenerationSettings

	jobs chan PublishJob

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup

	concurrency int
}

func NewWorkerPool(store Store, generator PostGenerator, archive *Archive, config *WorkerConfig, generation *models.GenerationSettings) *WorkerPool {
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 16
	}

	return &WorkerPool{
		store:       store,
		generator:   generator,
		archive:     archive,
		generation:  generation,
		jobs:        make(chan PublishJob, queueSize),
		concurrency: concurrency,
	}
}

func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.concurrency; i++ {
			p.wg.Add(1)
			go p.runWorker()
		}
		logrus.WithField("concurrency", p.concurrency).Info("auto-publish worker pool started")
	})
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}

func (p *WorkerPool) Enqueue(job PublishJob) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		return errors.New("worker queue is full")
	}
}

func (p *WorkerPool) runWorker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.process(job)
	}
}

// process runs one auto-publish invocation. Failures are recorded in
// the schedule counters and logged, never propagated: the dispatcher
// has already moved on.
func (p *WorkerPool) process(job PublishJob) {
	ctx := context.Background()
	log := logrus.WithFields(logrus.Fields{
		"schedule": job.ScheduleId,
		"token":    job.Token,
	})

	schedule, err := p.store.Schedule(ctx, job.ScheduleId)
	if err != nil {
		log.WithError(err).Error("auto-publish: failed to load schedule")
		return
	}

	ranAt := time.Now().UTC()

	post, err := p.generateAndStore(ctx, schedule)
	if err != nil {
		log.WithError(err).Error("auto-publish failed")
		if err := p.store.RecordRunResult(ctx, schedule.Id, ranAt, false); err != nil {
			log.WithError(err).Error("auto-publish: failed to record failed run")
		}
		return
	}

	if err := p.store.RecordRunResult(ctx, schedule.Id, ranAt, true); err != nil {
		log.WithError(err).Error("auto-publish: failed to record successful run")
	}

	log.WithFields(logrus.Fields{
		"post":   post.Id,
		"status": post.Status,
	}).Info("auto-publish completed")
}

func (p *WorkerPool) generateAndStore(ctx context.Context, schedule *models.ScheduleConfig) (*models.Post, error) {
	agent, err := p.store.Agent(ctx, schedule.AgentId)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load agent")
	}

	settings, err := MergeGenerationSettings(p.generation, agent.Generation)
	if err != nil {
		return nil, err
	}

	generated, err := p.generator.GeneratePost(ctx, agent, schedule, settings)
	if err != nil {
		return nil, errors.WithMessage(err, "content generation failed")
	}

	post := NewPostFromGenerated(agent, generated, schedule.AutoPublish)
	if err := p.store.CreatePost(ctx, post); err != nil {
		return nil, errors.WithMessage(err, "failed to store post")
	}

	if post.Status == models.PostStatusPublished && p.archive != nil {
		if err := p.archive.ArchivePost(post, agent.Name); err != nil {
			logrus.WithError(err).WithField("post", post.Id).Warn("failed to archive post")
		}
	}

	return post, nil
}
