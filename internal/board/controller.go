// Package board keeps the signed-in user's task board consistent with the
// task store: at most one task in progress, canonical records only, and a
// focus timer bound to the task in progress.
package board

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/focusflow/focusflow-api/internal/constants"
	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/store"
	"github.com/focusflow/focusflow-api/internal/timer"
	"github.com/google/uuid"
)

const (
	// newTaskClaim holds the active slot for a create that is in flight.
	newTaskClaim = "\x00new"

	compensateTimeout = 10 * time.Second
	flushTimeout      = 5 * time.Second
	tickEventBuffer   = 16
)

// Session identifies the signed-in user. It is handed to New on login and
// discarded by Close on logout.
type Session struct {
	UserID      string
	DisplayName string
	Token       string
}

// EventType names the kind of change an Event reports.
type EventType string

const (
	EventLoaded    EventType = "loaded"
	EventCreated   EventType = "created"
	EventUpdated   EventType = "updated"
	EventDeleted   EventType = "deleted"
	EventTimeSpent EventType = "time_spent"
)

// Event is sent to subscribers after every applied change.
type Event struct {
	Type   EventType
	TaskID string
}

// Option configures a Controller.
type Option func(*Controller)

// WithActivityLimit caps the recent-activity buffer.
func WithActivityLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.activityLimit = n
		}
	}
}

// WithTimerOptions passes options to the focus timer.
func WithTimerOptions(opts ...timer.Option) Option {
	return func(c *Controller) {
		c.timerOpts = append(c.timerOpts, opts...)
	}
}

// WithLogger sets the logger for background failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithClock sets the time source of activity timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller is safe for concurrent use. Subscribers and the focus timer are
// always called without the controller lock held. Tick notifications are
// delivered on a goroutine of their own, so subscribers may call back into
// the controller.
type Controller struct {
	mu             sync.Mutex
	session        Session
	store          store.TaskStore
	tasks          []store.Task
	activities     []Activity
	activityLimit  int
	claim          string
	closed         bool
	subscribers    map[uint64]func(Event)
	nextSubscriber uint64

	timer     *timer.FocusTimer
	timerOpts []timer.Option
	timerSync sync.Mutex

	// persist orders time-spent writes with updates that carry the timer's count.
	persist     sync.Mutex
	pendingTime map[string]int64
	flush       chan struct{}
	tickEvents  chan Event
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	logger *slog.Logger
	now    func() time.Time
}

// New creates a Controller for the signed-in session. Call Close on logout.
func New(session Session, taskStore store.TaskStore, opts ...Option) *Controller {
	c := &Controller{
		session:       session,
		store:         taskStore,
		activityLimit: constants.MaxActivityEntries,
		subscribers:   make(map[uint64]func(Event)),
		pendingTime:   make(map[string]int64),
		flush:         make(chan struct{}, 1),
		tickEvents:    make(chan Event, tickEventBuffer),
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "board", "user_id", session.UserID)
	c.timer = timer.New(c.onTick, c.timerOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go c.persistTimeSpent(ctx)
	go c.deliverTicks(ctx)

	return c
}

// Load replaces the local board with the store's list.
func (c *Controller) Load(ctx context.Context) error {
	const op = "list"

	c.mu.Lock()
	if err := c.checkLocked(op); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	tasks, err := c.store.List(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return unauthorized(op)
	}
	c.tasks = make([]store.Task, len(tasks))
	for i, task := range tasks {
		c.tasks[i] = task.Clone()
	}
	subs := c.subscribersLocked()
	c.mu.Unlock()

	c.notify(subs, Event{Type: EventLoaded})
	c.syncTimer()
	return nil
}

// CreateTask stores a draft. A draft created directly into doing is rejected
// while another task is in progress.
func (c *Controller) CreateTask(ctx context.Context, draft store.Draft) (store.Task, error) {
	const op = "create"

	if draft.Status == "" {
		draft.Status = models.TaskStatusTodo
	}
	if !draft.Status.Valid() {
		return store.Task{}, invalidStatus(op, draft.Status)
	}

	c.mu.Lock()
	if err := c.checkLocked(op); err != nil {
		c.mu.Unlock()
		return store.Task{}, err
	}
	claimed := false
	if draft.Status == models.TaskStatusDoing {
		if c.activeLocked("") != nil || c.claim != "" {
			c.mu.Unlock()
			return store.Task{}, conflict(op)
		}
		c.claim = newTaskClaim
		claimed = true
	}
	c.mu.Unlock()

	task, err := c.store.Create(ctx, draft)

	c.mu.Lock()
	if claimed {
		c.claim = ""
	}
	if err != nil {
		c.mu.Unlock()
		return store.Task{}, err
	}
	if c.closed {
		c.mu.Unlock()
		return store.Task{}, unauthorized(op)
	}
	if task.Status == models.TaskStatusDoing && c.activeLocked(task.ID) != nil {
		c.mu.Unlock()
		c.compensate(ctx, op, task.ID, func(ctx context.Context) error {
			return c.store.Delete(ctx, task.ID)
		})
		return store.Task{}, conflict(op)
	}
	c.tasks = append(c.tasks, task.Clone())
	c.recordLocked(ActivityCreate, task.Title)
	subs := c.subscribersLocked()
	c.mu.Unlock()

	c.notify(subs, Event{Type: EventCreated, TaskID: task.ID})
	c.syncTimer()
	return task.Clone(), nil
}

// UpdateTask applies a patch and adopts the store's canonical record.
func (c *Controller) UpdateTask(ctx context.Context, id string, patch store.Patch) (store.Task, error) {
	return c.update(ctx, "update", id, patch)
}

// MoveTask changes only the status. Moving a task to its current status is a
// no-op that never reaches the store.
func (c *Controller) MoveTask(ctx context.Context, id string, destination models.TaskStatus) (store.Task, error) {
	const op = "move"

	if !destination.Valid() {
		return store.Task{}, invalidStatus(op, destination)
	}

	c.mu.Lock()
	if err := c.checkLocked(op); err != nil {
		c.mu.Unlock()
		return store.Task{}, err
	}
	idx, err := c.ownedLocked(op, id)
	if err != nil {
		c.mu.Unlock()
		return store.Task{}, err
	}
	if c.tasks[idx].Status == destination {
		task := c.tasks[idx].Clone()
		c.mu.Unlock()
		return task, nil
	}
	c.mu.Unlock()

	return c.update(ctx, op, id, store.StatusPatch(destination))
}

func (c *Controller) update(ctx context.Context, op, id string, patch store.Patch) (store.Task, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return store.Task{}, invalidStatus(op, *patch.Status)
	}

	c.mu.Lock()
	if err := c.checkLocked(op); err != nil {
		c.mu.Unlock()
		return store.Task{}, err
	}
	idx, err := c.ownedLocked(op, id)
	if err != nil {
		c.mu.Unlock()
		return store.Task{}, err
	}
	prior := c.tasks[idx].Status
	claimed := false
	if patch.Status != nil && *patch.Status == models.TaskStatusDoing && prior != models.TaskStatusDoing {
		if c.activeLocked(id) != nil || c.claim != "" {
			c.mu.Unlock()
			return store.Task{}, conflict(op)
		}
		c.claim = id
		claimed = true
	}
	c.mu.Unlock()

	timeSet := patch.TimeSpent != nil
	if prior == models.TaskStatusDoing && !timeSet {
		// The timer's latest count rides along so a pending write cannot be lost.
		c.persist.Lock()
		defer c.persist.Unlock()

		c.mu.Lock()
		if idx := c.indexLocked(id); idx >= 0 {
			spent := c.tasks[idx].TimeSpent
			patch.TimeSpent = &spent
			delete(c.pendingTime, id)
		}
		c.mu.Unlock()
	}

	task, err := c.store.Update(ctx, id, patch)

	c.mu.Lock()
	if claimed {
		c.claim = ""
	}
	if err != nil {
		if carried := patch.TimeSpent; !timeSet && carried != nil {
			if _, queued := c.pendingTime[id]; !queued {
				c.pendingTime[id] = *carried
			}
		}
		c.mu.Unlock()
		return store.Task{}, err
	}
	if c.closed {
		c.mu.Unlock()
		return store.Task{}, unauthorized(op)
	}
	if task.Status == models.TaskStatusDoing && c.activeLocked(id) != nil {
		// A reload brought in another task in progress while this call was in flight.
		c.mu.Unlock()
		if prior != models.TaskStatusDoing {
			c.compensate(ctx, op, id, func(ctx context.Context) error {
				_, err := c.store.Update(ctx, id, store.StatusPatch(prior))
				return err
			})
		}
		return store.Task{}, conflict(op)
	}

	idx = c.indexLocked(id)
	if idx < 0 {
		// Deleted locally while in flight.
		c.mu.Unlock()
		return task.Clone(), nil
	}
	previous := c.tasks[idx]
	if !timeSet && previous.TimeSpent > task.TimeSpent {
		task.TimeSpent = previous.TimeSpent
	}
	c.tasks[idx] = task.Clone()
	if kind, changed := statusActivity(previous.Status, task.Status); changed {
		c.recordLocked(kind, task.Title)
	}
	subs := c.subscribersLocked()
	c.mu.Unlock()

	c.notify(subs, Event{Type: EventUpdated, TaskID: id})
	c.syncTimer()
	return task.Clone(), nil
}

// DeleteTask removes a task from the store and then from the board.
func (c *Controller) DeleteTask(ctx context.Context, id string) error {
	const op = "delete"

	c.mu.Lock()
	if err := c.checkLocked(op); err != nil {
		c.mu.Unlock()
		return err
	}
	idx, err := c.ownedLocked(op, id)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	title := c.tasks[idx].Title
	c.mu.Unlock()

	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return unauthorized(op)
	}
	if idx := c.indexLocked(id); idx >= 0 {
		c.tasks = slices.Delete(c.tasks, idx, idx+1)
	}
	delete(c.pendingTime, id)
	c.recordLocked(ActivityDelete, title)
	subs := c.subscribersLocked()
	c.mu.Unlock()

	c.notify(subs, Event{Type: EventDeleted, TaskID: id})
	c.syncTimer()
	return nil
}

// Tasks returns a copy of the board.
func (c *Controller) Tasks() []store.Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks := make([]store.Task, len(c.tasks))
	for i, task := range c.tasks {
		tasks[i] = task.Clone()
	}
	return tasks
}

func (c *Controller) Task(id string) (store.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx := c.indexLocked(id); idx >= 0 {
		return c.tasks[idx].Clone(), true
	}
	return store.Task{}, false
}

// Active returns the task in progress, if any.
func (c *Controller) Active() (store.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if active := c.activeLocked(""); active != nil {
		return active.Clone(), true
	}
	return store.Task{}, false
}

// Activities returns recent activity, most recent first.
func (c *Controller) Activities() []Activity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.activities)
}

// Summary describes the board for the assistant.
func (c *Controller) Summary() string {
	return summarize(c.Tasks())
}

func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Timer exposes pause, resume and reset of the focus timer.
func (c *Controller) Timer() *timer.FocusTimer {
	return c.timer
}

// Subscribe registers fn for change notifications. EventTimeSpent is
// delivered asynchronously; every other event is delivered before the
// mutating call returns.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return func() {}
	}
	id := c.nextSubscriber
	c.nextSubscriber++
	c.subscribers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Close ends the session: the timer is detached, pending time spent is
// flushed and every later call fails as unauthorized.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.session.Token = ""
	c.tasks = nil
	c.activities = nil
	c.claim = ""
	clear(c.subscribers)
	c.mu.Unlock()

	c.timerSync.Lock()
	c.timer.Detach()
	c.timerSync.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Controller) checkLocked(op string) error {
	if c.closed || c.session.UserID == "" || c.session.Token == "" {
		return unauthorized(op)
	}
	return nil
}

func (c *Controller) ownedLocked(op, id string) (int, error) {
	idx := c.indexLocked(id)
	if idx < 0 {
		return -1, store.NewError(op, store.ErrNotFound, "task "+id+" is not on the board")
	}
	if owner := c.tasks[idx].OwnerID; owner != "" && owner != c.session.UserID {
		return -1, store.NewError(op, store.ErrUnauthorized, "task belongs to another user")
	}
	return idx, nil
}

func (c *Controller) indexLocked(id string) int {
	return slices.IndexFunc(c.tasks, func(t store.Task) bool { return t.ID == id })
}

func (c *Controller) activeLocked(excludeID string) *store.Task {
	for i := range c.tasks {
		if c.tasks[i].Status == models.TaskStatusDoing && c.tasks[i].ID != excludeID {
			return &c.tasks[i]
		}
	}
	return nil
}

func (c *Controller) recordLocked(kind ActivityType, title string) {
	c.activities = slices.Insert(c.activities, 0, Activity{
		ID:        uuid.NewString(),
		Type:      kind,
		TaskTitle: title,
		Timestamp: c.now(),
	})
	if len(c.activities) > c.activityLimit {
		c.activities = c.activities[:c.activityLimit]
	}
}

func (c *Controller) subscribersLocked() []func(Event) {
	subs := make([]func(Event), 0, len(c.subscribers))
	for _, id := range slices.Sorted(maps.Keys(c.subscribers)) {
		subs = append(subs, c.subscribers[id])
	}
	return subs
}

func (c *Controller) notify(subs []func(Event), event Event) {
	for _, fn := range subs {
		fn(event)
	}
}

// compensate undoes a write the store accepted but the board had to reject.
func (c *Controller) compensate(ctx context.Context, op, id string, undo func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	if err := undo(ctx); err != nil {
		c.logger.Error("failed to roll back rejected write", "op", op, "task_id", id, "error", err)
		return
	}
	c.logger.Warn("rolled back write that raced another task in progress", "op", op, "task_id", id)
}

// syncTimer attaches the timer to the task in progress, or detaches it.
func (c *Controller) syncTimer() {
	c.timerSync.Lock()
	defer c.timerSync.Unlock()

	c.mu.Lock()
	var activeID string
	var spent int64
	if active := c.activeLocked(""); active != nil && !c.closed {
		activeID, spent = active.ID, active.TimeSpent
	}
	c.mu.Unlock()

	if activeID == "" {
		c.timer.Detach()
		return
	}
	c.timer.Attach(activeID, spent)
}

// onTick records the counter locally and queues it for persistence.
// Ticks never produce activity.
func (c *Controller) onTick(taskID string, seconds int64) {
	c.mu.Lock()
	idx := c.indexLocked(taskID)
	if c.closed || idx < 0 || c.tasks[idx].Status != models.TaskStatusDoing {
		c.mu.Unlock()
		return
	}
	c.tasks[idx].TimeSpent = seconds
	c.pendingTime[taskID] = seconds
	c.mu.Unlock()

	select {
	case c.flush <- struct{}{}:
	default:
	}
	select {
	case c.tickEvents <- Event{Type: EventTimeSpent, TaskID: taskID}:
	default:
	}
}

// deliverTicks notifies subscribers of ticks away from the timer goroutine,
// which Detach waits on.
func (c *Controller) deliverTicks(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-c.tickEvents:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				continue
			}
			subs := c.subscribersLocked()
			c.mu.Unlock()
			c.notify(subs, event)
		}
	}
}

func (c *Controller) persistTimeSpent(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
			c.flushTimeSpent(flushCtx)
			cancel()
			return
		case <-c.flush:
			c.flushTimeSpent(ctx)
		}
	}
}

func (c *Controller) flushTimeSpent(ctx context.Context) {
	c.persist.Lock()
	defer c.persist.Unlock()

	c.mu.Lock()
	pending := c.pendingTime
	c.pendingTime = make(map[string]int64)
	c.mu.Unlock()

	for id, seconds := range pending {
		if _, err := c.store.Update(ctx, id, store.TimeSpentPatch(seconds)); err != nil {
			c.logger.Warn("failed to persist time spent", "task_id", id, "seconds", seconds, "error", err)
		}
	}
}

func unauthorized(op string) error {
	return store.NewError(op, store.ErrUnauthorized, "no active session")
}

func conflict(op string) error {
	return store.NewError(op, store.ErrConflict, "another task is already in progress")
}

func invalidStatus(op string, status models.TaskStatus) error {
	return store.NewError(op, store.ErrInvalid, "unknown status "+string(status))
}
