package board

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/store"
)

const testUserID = "user-1"

// fakeStore is an in-memory TaskStore that records every call.
type fakeStore struct {
	mu     sync.Mutex
	tasks  []store.Task
	nextID int
	calls  []string

	// failWith is returned by the next call, then cleared.
	failWith error
	// updateGate, when set, holds every Update until it is closed.
	updateGate    chan struct{}
	updateStarted chan string
	// timeWriteDelay slows down time-spent-only updates.
	timeWriteDelay time.Duration
}

func newFakeStore(tasks ...store.Task) *fakeStore {
	return &fakeStore{tasks: tasks, nextID: len(tasks)}
}

func seedTask(id, title string, status models.TaskStatus) store.Task {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return store.Task{
		ID:        id,
		Title:     title,
		Status:    status,
		Priority:  models.TaskPriorityMedium,
		OwnerID:   testUserID,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (f *fakeStore) begin(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	err := f.failWith
	f.failWith = nil
	return err
}

func (f *fakeStore) List(ctx context.Context) ([]store.Task, error) {
	if err := f.begin("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tasks := make([]store.Task, len(f.tasks))
	for i, task := range f.tasks {
		tasks[i] = task.Clone()
	}
	return tasks, nil
}

func (f *fakeStore) Create(ctx context.Context, draft store.Draft) (store.Task, error) {
	if err := f.begin("create"); err != nil {
		return store.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	task := seedTask(fmt.Sprintf("task-%d", f.nextID), draft.Title, draft.Status)
	if draft.Priority != "" {
		task.Priority = draft.Priority
	}
	if draft.Tags != nil {
		task.Tags = slices.Clone(draft.Tags)
	}
	f.tasks = append(f.tasks, task)
	return task.Clone(), nil
}

func (f *fakeStore) Update(ctx context.Context, id string, patch store.Patch) (store.Task, error) {
	if err := f.begin("update"); err != nil {
		return store.Task{}, err
	}
	f.mu.Lock()
	gate, started, delay := f.updateGate, f.updateStarted, f.timeWriteDelay
	f.mu.Unlock()
	if patch.TimeSpent != nil && patch.Status == nil {
		time.Sleep(delay)
	}
	if started != nil {
		started <- id
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	idx := slices.IndexFunc(f.tasks, func(t store.Task) bool { return t.ID == id })
	if idx < 0 {
		return store.Task{}, store.NewError("update", store.ErrNotFound, "task not found")
	}
	task := &f.tasks[idx]
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.TimeSpent != nil {
		task.TimeSpent = *patch.TimeSpent
	}
	return task.Clone(), nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if err := f.begin("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := slices.IndexFunc(f.tasks, func(t store.Task) bool { return t.ID == id })
	if idx < 0 {
		return store.NewError("delete", store.ErrNotFound, "task not found")
	}
	f.tasks = slices.Delete(f.tasks, idx, idx+1)
	return nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeStore) task(id string) (store.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := slices.IndexFunc(f.tasks, func(t store.Task) bool { return t.ID == id })
	if idx < 0 {
		return store.Task{}, false
	}
	return f.tasks[idx].Clone(), true
}

// setStatus changes a task behind the board's back, as another device would.
func (f *fakeStore) setStatus(id string, status models.TaskStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Status = status
		}
	}
}

func (f *fakeStore) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = slices.DeleteFunc(f.tasks, func(t store.Task) bool { return t.ID == id })
}

func (f *fakeStore) failNext(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

func (f *fakeStore) gateUpdates() (gate chan struct{}, started chan string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateGate = make(chan struct{})
	f.updateStarted = make(chan string, 16)
	return f.updateGate, f.updateStarted
}

func (f *fakeStore) slowTimeWrites(delay time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeWriteDelay = delay
}
