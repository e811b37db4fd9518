package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "github.com/portfolio-site/contact-backend/errors"
	"github.com/portfolio-site/contact-backend/logger"
	"github.com/portfolio-site/contact-backend/store"
	"github.com/portfolio-site/contact-backend/types"
	"go.uber.org/zap"
)

const (
	DefaultStorageKey = "contactFormLastSubmission"
	DefaultCooldown   = 60 * time.Second

	// submissionTimeLayout mirrors a browser's en-US locale date/time string.
	submissionTimeLayout = "1/2/2006, 3:04:05 PM"
	// providerCooldownMarker identifies provider rejections caused by a send
	// racing the cooldown window.
	providerCooldownMarker = "Please wait"
)

// ContactFormOption configures a ContactFormController.
type ContactFormOption func(*ContactFormController)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) ContactFormOption {
	return func(c *ContactFormController) {
		c.now = now
	}
}

// WithCooldown sets the minimum interval between two successful submissions.
func WithCooldown(d time.Duration) ContactFormOption {
	return func(c *ContactFormController) {
		c.cooldown = d
	}
}

// WithTickInterval sets how often the countdown refreshes while a cooldown is active.
func WithTickInterval(d time.Duration) ContactFormOption {
	return func(c *ContactFormController) {
		c.tickInterval = d
	}
}

// WithStorageKey sets the key the last-submission timestamp is stored under.
func WithStorageKey(key string) ContactFormOption {
	return func(c *ContactFormController) {
		c.storageKey = key
	}
}

// WithLocation sets the zone used for the human-readable submission time.
func WithLocation(loc *time.Location) ContactFormOption {
	return func(c *ContactFormController) {
		c.location = loc
	}
}

// WithMetrics records submission outcomes on m.
func WithMetrics(m *ContactMetrics) ContactFormOption {
	return func(c *ContactFormController) {
		c.metrics = m
	}
}

// ContactFormController mediates between raw form input and the email
// provider. It validates input, rejects honeypot submissions silently and
// allows at most one successful send per cooldown window, using the
// timestamp persisted in the key-value store.
type ContactFormController struct {
	store   store.KeyValueStore
	sender  types.EmailSender
	metrics *ContactMetrics
	log     *zap.SugaredLogger

	now          func() time.Time
	cooldown     time.Duration
	tickInterval time.Duration
	storageKey   string
	location     *time.Location

	mu                sync.Mutex
	input             types.FormInput
	fieldErrors       types.ValidationErrors
	status            types.SubmissionStatus
	cooldownRemaining int
	lastSubmission    time.Time
	countdownStop     chan struct{}
	closed            bool
}

// NewContactFormController creates a controller and restores any cooldown
// left over from an earlier submission recorded in kv.
func NewContactFormController(ctx context.Context, kv store.KeyValueStore, sender types.EmailSender, opts ...ContactFormOption) (*ContactFormController, error) {
	c := &ContactFormController{
		store:        kv,
		sender:       sender,
		log:          logger.GetLogger(),
		now:          time.Now,
		cooldown:     DefaultCooldown,
		tickInterval: time.Second,
		storageKey:   DefaultStorageKey,
		location:     time.Local,
		fieldErrors:  types.ValidationErrors{},
		status:       types.StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}

	remaining, err := c.CheckCooldown(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore cooldown: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if remaining > 0 {
		c.cooldownRemaining = remaining
		c.startCountdownLocked()
	}
	return c, nil
}

// UpdateField overwrites one field and clears its validation error.
func (c *ContactFormController) UpdateField(field types.ContactField, value string) error {
	if _, ok := types.ParseContactField(string(field)); !ok {
		return apperrors.ValidationFailed("unknown_field", fmt.Sprintf("unknown contact form field %q", field))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.input.Set(field, value)
	delete(c.fieldErrors, field)
	return nil
}

// Validate evaluates the current input without changing any state. A filled
// honeypot yields no errors; Submit rejects it silently instead.
func (c *ContactFormController) Validate() types.ValidationErrors {
	c.mu.Lock()
	input := c.input
	c.mu.Unlock()

	errs, _ := ValidateContactInput(input)
	return errs
}

// CheckCooldown returns the whole seconds left before another submission is
// allowed, based on the persisted last-submission timestamp.
func (c *ContactFormController) CheckCooldown(ctx context.Context) (int, error) {
	last, found, err := c.loadLastSubmission(ctx)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}

	c.mu.Lock()
	c.lastSubmission = last
	c.mu.Unlock()

	return c.remainingSince(last), nil
}

// Submit validates the form and hands it to the email provider.
//
// It returns a cooldown error while the cooldown is active, a validation
// error carrying the per-field messages, a conflict error while another
// submission is in flight, or a delivery error when the provider rejects the
// message. A filled honeypot returns nil without contacting the provider.
func (c *ContactFormController) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.status == types.StatusSubmitting {
		c.mu.Unlock()
		return apperrors.NewConflictError("Submission already in progress", "wait for the current message to be sent")
	}
	if c.cooldownRemaining > 0 {
		c.status = types.StatusCooldown
		remaining := c.cooldownRemaining
		c.mu.Unlock()
		c.metrics.recordOutcome(OutcomeCooldown)
		return apperrors.CooldownActive(remaining)
	}

	errs, bot := ValidateContactInput(c.input)
	if bot {
		c.mu.Unlock()
		c.metrics.recordOutcome(OutcomeBotRejected)
		c.log.Infow("Contact submission rejected by honeypot")
		return nil
	}
	if len(errs) > 0 {
		c.fieldErrors = errs
		c.mu.Unlock()
		c.metrics.recordOutcome(OutcomeValidationFailed)
		return apperrors.InvalidFields(errs.Strings())
	}

	c.fieldErrors = types.ValidationErrors{}
	c.status = types.StatusSubmitting
	input := c.input
	c.mu.Unlock()

	// The countdown may not have caught up with the persisted timestamp yet.
	last, found, err := c.loadLastSubmission(ctx)
	if err != nil {
		c.setStatus(types.StatusError)
		c.log.Errorw("Failed to read last contact submission", "error", err)
		return apperrors.NewStorageError(err)
	}
	if found {
		if remaining := c.remainingSince(last); remaining > 0 {
			c.mu.Lock()
			c.lastSubmission = last
			c.cooldownRemaining = remaining
			c.status = types.StatusCooldown
			c.startCountdownLocked()
			c.mu.Unlock()
			c.metrics.recordOutcome(OutcomeCooldown)
			return apperrors.CooldownActive(remaining)
		}
	}

	payload := c.buildPayload(input)

	start := time.Now()
	err = c.sender.SendContactEmail(ctx, payload)
	c.metrics.observeDelivery(time.Since(start))

	if err != nil {
		c.metrics.recordOutcome(OutcomeDeliveryFailed)
		c.log.Errorw("Failed to deliver contact message",
			"error", err,
			"email", logger.MaskEmail(payload.Email))
		if strings.Contains(err.Error(), providerCooldownMarker) {
			c.setStatus(types.StatusCooldown)
			return apperrors.Wrap(err, apperrors.RateLimitError, "Please wait before sending another message")
		}
		c.setStatus(types.StatusError)
		return apperrors.DeliveryFailed(err)
	}

	sentAt := c.now()
	persistErr := c.store.Set(ctx, c.storageKey, strconv.FormatInt(sentAt.UnixMilli(), 10))

	c.mu.Lock()
	c.status = types.StatusSuccess
	c.input = types.FormInput{}
	c.fieldErrors = types.ValidationErrors{}
	c.lastSubmission = sentAt
	c.cooldownRemaining = c.cooldownSeconds()
	c.startCountdownLocked()
	c.mu.Unlock()

	if persistErr != nil {
		// The message is already out; only the cross-restart cooldown is lost.
		c.log.Warnw("Failed to persist contact submission time", "error", persistErr)
	}

	c.metrics.recordOutcome(OutcomeSuccess)
	c.log.Infow("Contact message sent", "email", logger.MaskEmail(payload.Email))
	return nil
}

// State returns a snapshot for the presentation layer.
func (c *ContactFormController) State() types.ContactFormState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return types.ContactFormState{
		Fields:            c.input,
		Errors:            c.fieldErrors.Strings(),
		Status:            c.status,
		CooldownRemaining: c.cooldownRemaining,
		CooldownDisplay:   types.FormatCooldown(c.cooldownRemaining),
		Locked:            c.status == types.StatusSubmitting || c.cooldownRemaining > 0,
	}
}

// Close stops the countdown. It is safe to call more than once.
func (c *ContactFormController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.countdownStop != nil {
		close(c.countdownStop)
		c.countdownStop = nil
	}
}

func (c *ContactFormController) setStatus(status types.SubmissionStatus) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

func (c *ContactFormController) buildPayload(in types.FormInput) types.EmailPayload {
	return types.EmailPayload{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Time:    c.now().In(c.location).Format(submissionTimeLayout),
		Message: strings.TrimSpace(in.Message),
	}
}

// loadLastSubmission reads the persisted timestamp. Unparseable values are
// treated as absent.
func (c *ContactFormController) loadLastSubmission(ctx context.Context) (time.Time, bool, error) {
	raw, found, err := c.store.Get(ctx, c.storageKey)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load last submission: %w", err)
	}
	if !found {
		return time.Time{}, false, nil
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		c.log.Warnw("Ignoring malformed contact submission timestamp", "key", c.storageKey, "value", raw)
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

// remainingSince converts the time left in the cooldown window that started
// at last into whole seconds, rounding up. Timestamps in the future count as
// a fresh window.
func (c *ContactFormController) remainingSince(last time.Time) int {
	if last.IsZero() {
		return 0
	}
	elapsed := c.now().Sub(last)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= c.cooldown {
		return 0
	}
	remaining := c.cooldown - elapsed
	return int((remaining + time.Second - 1) / time.Second)
}

func (c *ContactFormController) cooldownSeconds() int {
	return int((c.cooldown + time.Second - 1) / time.Second)
}

func (c *ContactFormController) startCountdownLocked() {
	if c.closed || c.countdownStop != nil {
		return
	}
	stop := make(chan struct{})
	c.countdownStop = stop
	go c.runCountdown(stop)
}

func (c *ContactFormController) runCountdown(stop <-chan struct{}) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !c.tick() {
				return
			}
		}
	}
}

// tick refreshes cooldownRemaining and reports whether the countdown must
// keep running.
func (c *ContactFormController) tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cooldownRemaining = c.remainingSince(c.lastSubmission)
	if c.cooldownRemaining > 0 {
		return true
	}

	c.countdownStop = nil
	if c.status == types.StatusCooldown {
		c.status = types.StatusIdle
	}
	return false
}
