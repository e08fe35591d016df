package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

type State int

const (
	StateConfiguring State = iota
	StateRunning
	// StateFinishing covers the window in which the result is being submitted.
	StateFinishing
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateConfiguring:
		return "configuring"
	case StateRunning:
		return "running"
	case StateFinishing:
		return "finishing"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// Snapshot is a copy of the live session, safe to render.
type Snapshot struct {
	State             State
	Config            Config
	Questions         []Question
	Index             int
	Answers           []string
	Answered          []bool
	QuestionRemaining int
	TotalRemaining    int
	StartedAt         time.Time
}

// Current returns the question at Index, or false before configuration.
func (s Snapshot) Current() (Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

// Progress is the share of questions already passed, in percent.
func (s Snapshot) Progress() int {
	if len(s.Questions) == 0 {
		return 0
	}
	return s.Index * 100 / len(s.Questions)
}

// Options tunes a Controller. Zero values select the defaults.
type Options struct {
	Now           func() time.Time
	FetchTimeout  time.Duration
	SubmitTimeout time.Duration
	// OnFinish is called once per session after the submission attempt,
	// unless a newer Configure discarded the session meanwhile.
	OnFinish func(Result, SubmitStatus)
}

// Controller drives one quiz attempt at a time from configuration to a
// submitted result. All methods are safe for concurrent use; every advance
// request passes through a single state check so a question is never
// skipped twice and a session is never finalized twice.
type Controller struct {
	source    QuestionSource
	store     Store
	submitter ResultSubmitter
	opts      Options

	mu                sync.Mutex
	gen               uint64
	state             State
	cfg               Config
	questions         []Question
	index             int
	answers           []string
	answered          []bool
	questionRemaining int
	totalRemaining    int
	startedAt         time.Time
	result            *Result
	status            SubmitStatus
	done              chan struct{}
}

func NewController(source QuestionSource, store Store, submitter ResultSubmitter, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = 15 * time.Second
	}
	done := make(chan struct{})
	close(done)
	return &Controller{
		source:    source,
		store:     store,
		submitter: submitter,
		opts:      opts,
		done:      done,
	}
}

// RestoreConfig returns the default configuration merged with the last-used
// values from the store.
func (c *Controller) RestoreConfig(ctx context.Context) Config {
	cfg := DefaultConfig()
	if c.store == nil {
		return cfg
	}
	saved, ok, err := c.store.LastConfig(ctx)
	if err != nil {
		log.Printf("session: cannot read last config: %v", err)
		return cfg
	}
	if ok {
		cfg = cfg.WithSaved(saved)
	}
	return cfg
}

// Configure starts a new session, discarding any previous one. It fails only
// for an invalid configuration; question source problems are absorbed by the
// fallback chain and reported through the Outcome.
func (c *Controller) Configure(ctx context.Context, cfg Config) (Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return Outcome{}, err
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state = StateConfiguring
	c.closeDoneLocked()
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SaveLastConfig(ctx, cfg); err != nil {
			log.Printf("session: cannot save last config: %v", err)
		}
	}

	questions, outcome := c.loadQuestions(ctx, cfg)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return outcome, context.Canceled
	}
	c.cfg = cfg
	c.questions = questions
	c.index = 0
	c.answers = make([]string, len(questions))
	c.answered = make([]bool, len(questions))
	c.questionRemaining = cfg.QuestionSeconds()
	c.totalRemaining = cfg.TotalSeconds()
	c.startedAt = c.opts.Now()
	c.result = nil
	c.status = SubmitStatus{}
	c.done = make(chan struct{})
	c.state = StateRunning
	return outcome, nil
}

func (c *Controller) loadQuestions(ctx context.Context, cfg Config) ([]Question, Outcome) {
	key := CacheKey(cfg.Topic, cfg.Difficulty)

	fetched, err := c.fetch(ctx, cfg)
	if err == nil {
		if c.store != nil {
			if serr := c.store.SaveQuestions(ctx, key, fetched); serr != nil {
				log.Printf("session: cannot cache questions: %v", serr)
			}
		}
		questions, padded := fit(fetched, cfg.NumQuestions)
		outcome := Outcome{Kind: OutcomeFetched, Padded: padded}
		if padded > 0 {
			outcome.Reason = errors.New("question source returned fewer questions than requested")
		}
		return questions, outcome
	}
	log.Printf("session: question source failed, falling back: %v", err)

	if c.store != nil {
		cached, cerr := c.store.CachedQuestions(ctx, key)
		if cerr != nil {
			log.Printf("session: cannot read cached questions: %v", cerr)
		}
		if cached = wellFormed(cached); len(cached) > 0 {
			questions, padded := fit(cached, cfg.NumQuestions)
			return questions, Outcome{Kind: OutcomeCached, Reason: err, Padded: padded}
		}
	}

	return Placeholders(cfg.NumQuestions), Outcome{Kind: OutcomePlaceholder, Reason: err}
}

func (c *Controller) fetch(ctx context.Context, cfg Config) ([]Question, error) {
	if c.source == nil {
		return nil, ErrNoSource
	}
	fetchCtx, cancel := context.WithTimeout(ctx, c.opts.FetchTimeout)
	defer cancel()

	questions, err := c.source.FetchQuestions(fetchCtx, cfg.Topic, cfg.Difficulty, cfg.NumQuestions)
	if err != nil {
		return nil, err
	}
	if questions = wellFormed(questions); len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}

// SelectAnswer records answer for the current question, replacing any
// earlier choice. It never advances.
func (c *Controller) SelectAnswer(answer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return ErrNotRunning
	}
	c.answers[c.index] = answer
	c.answered[c.index] = true
	return nil
}

// Advance moves past the current question. See AdvanceFrom.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	index := c.index
	c.mu.Unlock()
	return c.AdvanceFrom(index)
}

// AdvanceFrom moves past question index, finalizing after the last one.
// Requests for a question that is no longer current, or arriving while a
// transition is in flight or after the session finished, are ignored and
// report false. Event sources (timer, keyboard, buttons) should pass the
// index they were showing.
func (c *Controller) AdvanceFrom(index int) bool {
	c.mu.Lock()
	if c.state != StateRunning || index != c.index {
		c.mu.Unlock()
		return false
	}
	if c.index < len(c.questions)-1 {
		c.index++
		if c.cfg.TimerType == TimerIndividual {
			c.questionRemaining = c.cfg.TimerDuration
		}
		c.mu.Unlock()
		return true
	}
	c.state = StateFinishing
	gen := c.gen
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.SubmitTimeout)
	defer cancel()
	c.complete(ctx, gen)
	return true
}

// Tick advances the active countdown by one second. In individual mode an
// expired question is advanced; in collective mode an expired quiz is
// finalized. Ticks outside a running session are ignored.
func (c *Controller) Tick() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}

	if c.totalRemaining > 0 {
		c.totalRemaining--
	}

	switch c.cfg.TimerType {
	case TimerIndividual:
		if c.questionRemaining > 0 {
			c.questionRemaining--
		}
		if c.questionRemaining == 0 {
			index := c.index
			c.mu.Unlock()
			c.AdvanceFrom(index)
			return
		}
	case TimerCollective:
		if c.totalRemaining == 0 {
			c.state = StateFinishing
			gen := c.gen
			c.mu.Unlock()
			ctx, cancel := context.WithTimeout(context.Background(), c.opts.SubmitTimeout)
			defer cancel()
			c.complete(ctx, gen)
			return
		}
	}
	c.mu.Unlock()
}

// Finalize ends the running session immediately. The boolean is false when
// the session had already been finalized (or never started); the result, if
// any, is returned either way.
func (c *Controller) Finalize(ctx context.Context) (Result, bool) {
	c.mu.Lock()
	if c.state != StateRunning {
		var res Result
		if c.result != nil {
			res = *c.result
		}
		c.mu.Unlock()
		return res, false
	}
	c.state = StateFinishing
	gen := c.gen
	c.mu.Unlock()

	return c.complete(ctx, gen), true
}

func (c *Controller) complete(ctx context.Context, gen uint64) Result {
	c.mu.Lock()
	result := buildResult(c.cfg, c.questions, c.answers, c.answered, c.startedAt, c.opts.Now())
	c.mu.Unlock()

	status := c.submit(ctx, result)

	c.mu.Lock()
	var hook func(Result, SubmitStatus)
	if c.gen == gen {
		c.result = &result
		c.status = status
		c.state = StateFinished
		c.closeDoneLocked()
		hook = c.opts.OnFinish
	}
	c.mu.Unlock()

	if hook != nil {
		hook(result, status)
	}
	return result
}

func (c *Controller) submit(ctx context.Context, result Result) SubmitStatus {
	if c.store == nil || c.submitter == nil {
		return SubmitStatus{Kind: SubmitSkipped}
	}
	token, err := c.store.Token(ctx)
	if err != nil {
		log.Printf("session: cannot read token: %v", err)
	}
	if token == "" {
		return SubmitStatus{Kind: SubmitSkipped}
	}
	if err := c.submitter.SubmitResult(ctx, token, result); err != nil {
		log.Printf("session: saving result failed: %v", err)
		return SubmitStatus{Kind: SubmitFailed, Err: err}
	}
	return SubmitStatus{Kind: SubmitSaved}
}

// closeDoneLocked releases Run loops waiting on the current session.
func (c *Controller) closeDoneLocked() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// Run ticks the session once per second until it finishes or ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return nil
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Done is closed when the current session finishes.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Session() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:             c.state,
		Config:            c.cfg,
		Questions:         append([]Question(nil), c.questions...),
		Index:             c.index,
		Answers:           append([]string(nil), c.answers...),
		Answered:          append([]bool(nil), c.answered...),
		QuestionRemaining: c.questionRemaining,
		TotalRemaining:    c.totalRemaining,
		StartedAt:         c.startedAt,
	}
}

// Result returns the finished result and its submission status.
func (c *Controller) Result() (Result, SubmitStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return Result{}, SubmitStatus{}, false
	}
	return *c.result, c.status, true
}
