package recommend

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"aiImageStudio/domain"
	"aiImageStudio/pkg/logger"

	"gorm.io/datatypes"
)

const (
	userLockStripes = 64

	defaultFeedbackWorkers   = 4
	defaultFeedbackQueueSize = 1024
	defaultFeedbackTimeout   = 5 * time.Second
)

type RecorderOptions struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration // per event, applied by the workers
}

// Recorder applies interaction events to user profiles in the background.
// RecordInteraction validates and enqueues; a fixed pool of workers calls
// Record for each queued event.
type Recorder struct {
	configSource
	profiles   ProfileStore
	candidates CandidateRepository
	events     InteractionLog
	opts       RecorderOptions

	queue     chan domain.InteractionEvent
	wg        sync.WaitGroup
	startOnce sync.Once

	mu     sync.RWMutex
	closed bool

	userLocks [userLockStripes]sync.Mutex
	now       func() time.Time
}

func NewRecorder(
	profiles ProfileStore,
	candidates CandidateRepository,
	events InteractionLog,
	cfgRepo ConfigRepository,
	variantRepo VariantRepository,
	defaultCfg Config,
	opts RecorderOptions,
) *Recorder {
	if opts.Workers <= 0 {
		opts.Workers = defaultFeedbackWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultFeedbackQueueSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFeedbackTimeout
	}
	return &Recorder{
		configSource: configSource{cfgRepo: cfgRepo, variantRepo: variantRepo, defaultCfg: defaultCfg},
		profiles:     profiles,
		candidates:   candidates,
		events:       events,
		opts:         opts,
		queue:        make(chan domain.InteractionEvent, opts.QueueSize),
		now:          time.Now,
	}
}

// Start launches the workers. Calling it more than once is a no-op.
func (r *Recorder) Start() {
	r.startOnce.Do(func() {
		for i := 0; i < r.opts.Workers; i++ {
			r.wg.Add(1)
			go r.worker()
		}
	})
}

// Close stops accepting events and waits for queued ones to be applied.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.Start() // drain events queued before Start was ever called
	r.wg.Wait()
}

// RecordInteraction validates the event and hands it to the workers.
// A full queue drops the event with a warning and still returns nil.
func (r *Recorder) RecordInteraction(ctx context.Context, event domain.InteractionEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if err := ValidateInteraction(event); err != nil {
		FeedbackEventsTotal.WithLabelValues(string(event.InteractionType), "rejected").Inc()
		return err
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.now()
	}
	event.Context = withBaseContext(ctx, event)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRecorderClosed
	}

	select {
	case r.queue <- event:
		FeedbackEventsTotal.WithLabelValues(string(event.InteractionType), "accepted").Inc()
	default:
		FeedbackEventsTotal.WithLabelValues(string(event.InteractionType), "dropped").Inc()
		logger.Warn("feedback_queue_full",
			"trace_id", TraceIDFromContext(ctx),
			"user_id", event.UserID,
			"candidate_id", event.CandidateID,
			"interaction_type", event.InteractionType,
		)
	}
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for ev := range r.queue {
		r.process(ev)
	}
}

func (r *Recorder) process(ev domain.InteractionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
	defer cancel()

	if tid, ok := ev.Context["trace_id"].(string); ok && tid != "" {
		ctx = ContextWithTraceID(ctx, tid)
	}

	if err := r.Record(ctx, ev); err != nil {
		FeedbackEventsTotal.WithLabelValues(string(ev.InteractionType), "failed").Inc()
		logger.Error("feedback_record_failed",
			"trace_id", TraceIDFromContext(ctx),
			"user_id", ev.UserID,
			"candidate_id", ev.CandidateID,
			"interaction_type", ev.InteractionType,
			"error", err,
		)
		return
	}
	FeedbackEventsTotal.WithLabelValues(string(ev.InteractionType), "applied").Inc()
}

// Record applies one event synchronously: it updates the user's affinities
// and usage metrics, saves the profile and appends the event to the audit log.
func (r *Recorder) Record(ctx context.Context, ev domain.InteractionEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if err := ValidateInteraction(ev); err != nil {
		return err
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = r.now()
	}

	cfg, variant := r.loadConfigForUser(ctx, ev.UserID)
	boost := cfg.Feedback.AffinityBoost(ev.InteractionType, ev.EngagementLevel)

	// keep the arm on the audit row for later analysis
	ev.Variant = variant
	ev.Context = withVariant(ev.Context, variant)

	candidate, err := r.lookupCandidate(ctx, ev.CandidateID)
	if err != nil {
		return fmt.Errorf("%w: load candidate: %w", ErrCollaboratorUnavailable, err)
	}
	if candidate == nil {
		logger.Warn("feedback_unknown_candidate",
			"trace_id", TraceIDFromContext(ctx),
			"user_id", ev.UserID,
			"candidate_id", ev.CandidateID,
		)
	}

	lock := r.lockFor(ev.UserID)
	lock.Lock()
	defer lock.Unlock()

	stored, ok, err := r.profiles.LoadUserProfile(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("%w: load profile: %w", ErrCollaboratorUnavailable, err)
	}

	now := r.now()
	var profile domain.UserProfile
	if ok {
		profile = normalizeProfile(stored.Clone(), cfg.Profile)
	} else {
		profile = DefaultProfile(ev.UserID, cfg.Profile)
		profile.CreatedAt = now
	}

	applyInteraction(&profile, ev, candidate, boost, cfg)
	profile.UpdatedAt = now

	if err := r.profiles.SaveUserProfile(ctx, &profile); err != nil {
		return fmt.Errorf("%w: save profile: %w", ErrCollaboratorUnavailable, err)
	}

	if r.events != nil {
		if err := r.events.AppendInteractionEvent(ctx, ev); err != nil {
			logger.Warn("feedback_audit_append_failed",
				"trace_id", TraceIDFromContext(ctx),
				"user_id", ev.UserID,
				"candidate_id", ev.CandidateID,
				"error", err,
			)
		}
	}

	logger.Debug("feedback_applied",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", ev.UserID,
		"candidate_id", ev.CandidateID,
		"interaction_type", ev.InteractionType,
		"engagement", ev.EngagementLevel,
		"variant", variant,
		"boost", boost,
		"interactions", profile.TotalInteractions,
		"willingness", profile.ExplorationWillingness,
	)

	return nil
}

func (r *Recorder) lookupCandidate(ctx context.Context, id uint64) (*domain.Candidate, error) {
	if r.candidates == nil {
		return nil, nil
	}
	rows, err := r.candidates.LoadCandidates(ctx, domain.CandidateFilter{IDs: []uint64{id}, Limit: 1})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], nil
		}
	}
	return nil, nil
}

func (r *Recorder) lockFor(userID uint) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatUint(uint64(userID), 10)))
	return &r.userLocks[h.Sum32()%userLockStripes]
}

// ValidateInteraction checks an event before it is queued or applied.
func ValidateInteraction(ev domain.InteractionEvent) error {
	switch {
	case ev.UserID == 0:
		return fmt.Errorf("%w: user_id must be positive", ErrInvalidInteraction)
	case ev.CandidateID == 0:
		return fmt.Errorf("%w: candidate_id must be positive", ErrInvalidInteraction)
	}
	if _, ok := knownInteractions[ev.InteractionType]; !ok {
		return fmt.Errorf("%w: unknown interaction type %q", ErrInvalidInteraction, ev.InteractionType)
	}
	if ev.EngagementLevel < minEngagement || ev.EngagementLevel > maxEngagement {
		return fmt.Errorf("%w: engagement level must be within [%d,%d], got %d",
			ErrInvalidInteraction, minEngagement, maxEngagement, ev.EngagementLevel)
	}
	if ev.SessionDuration != nil && *ev.SessionDuration < 0 {
		return fmt.Errorf("%w: session duration must not be negative", ErrInvalidInteraction)
	}
	return nil
}

// withBaseContext merges request metadata into the event's context map for persistence.
func withBaseContext(ctx context.Context, ev domain.InteractionEvent) datatypes.JSONMap {
	merged := datatypes.JSONMap{}
	for k, v := range ev.Context {
		merged[k] = v
	}
	if tid := TraceIDFromContext(ctx); tid != "" {
		merged["trace_id"] = tid
	}
	if ev.Device != "" {
		merged["device"] = string(ev.Device)
	}
	if ev.SessionDuration != nil {
		merged["session_seconds"] = ev.SessionDuration.Seconds()
	}
	merged["hour"] = ev.OccurredAt.Hour()
	return merged
}

func withVariant(m datatypes.JSONMap, variant int) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out["variant"] = variant
	return out
}
