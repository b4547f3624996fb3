package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ducttapeprodigy/boilerplate/internal/log"
)

var (
	ErrTaskExists   = errors.New("task already registered")
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskRunning  = errors.New("task is already running")
)

// Task status values
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// TaskHandler is the function executed by a task
type TaskHandler func(ctx context.Context, taskID string) error

// Task is a named job run on a cron schedule
type Task struct {
	ID        string
	Name      string
	Spec      string
	Status    string
	LastRun   *time.Time
	LastError string
	Runs      int
	Handler   TaskHandler

	entry cron.EntryID
}

// TaskInfo is a read-only snapshot of a Task
type TaskInfo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Spec      string     `json:"spec"`
	Status    string     `json:"status"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Runs      int        `json:"runs"`
}

// Scheduler runs registered tasks on cron schedules. A task never overlaps
// with itself: a tick that arrives while the previous run is still going is
// skipped.
type Scheduler struct {
	mu      sync.RWMutex
	cron    *cron.Cron
	tasks   map[string]*Task
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(),
		tasks:  make(map[string]*Task),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ParseSpec validates a standard five-field cron spec or a descriptor such
// as "@every 10m"
func ParseSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// RegisterTask adds a task. It may be called before or after Start.
func (s *Scheduler) RegisterTask(id, name, spec string, handler TaskHandler) error {
	if err := ParseSpec(spec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; exists {
		return fmt.Errorf("%w: %s", ErrTaskExists, id)
	}

	task := &Task{
		ID:      id,
		Name:    name,
		Spec:    spec,
		Status:  StatusPending,
		Handler: handler,
	}
	entry, err := s.cron.AddFunc(spec, func() {
		if err := s.RunTask(id); err != nil && !errors.Is(err, ErrTaskRunning) {
			log.Debug("Scheduled run skipped", "task_id", id, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", id, err)
	}
	task.entry = entry
	s.tasks[id] = task

	log.Info("Task registered", "task_id", id, "name", name, "schedule", spec)
	return nil
}

// RunTask executes a task now and waits for it to finish. Concurrent runs
// of the same task return ErrTaskRunning.
func (s *Scheduler) RunTask(id string) error {
	s.mu.Lock()
	task, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if task.Status == StatusRunning {
		s.mu.Unlock()
		return ErrTaskRunning
	}
	if err := s.ctx.Err(); err != nil {
		s.mu.Unlock()
		return err
	}
	task.Status = StatusRunning
	now := time.Now()
	task.LastRun = &now
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()

	log.Info("Running task", "task_id", task.ID, "name", task.Name)
	err := task.Handler(s.ctx, task.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	task.Runs++
	if err != nil {
		task.Status = StatusFailed
		task.LastError = err.Error()
		log.Error("Task failed", "task_id", task.ID, "error", err)
	} else {
		task.Status = StatusCompleted
		task.LastError = ""
		log.Info("Task completed", "task_id", task.ID, "duration", time.Since(now))
	}
	return err
}

// Tasks returns a snapshot of every task ordered by ID
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]TaskInfo, 0, len(s.tasks))
	for _, task := range s.tasks {
		info := TaskInfo{
			ID:        task.ID,
			Name:      task.Name,
			Spec:      task.Spec,
			Status:    task.Status,
			LastRun:   task.LastRun,
			LastError: task.LastError,
			Runs:      task.Runs,
		}
		if s.running {
			if next := s.cron.Entry(task.entry).Next; !next.IsZero() {
				info.NextRun = &next
			}
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Task returns a snapshot of one task
func (s *Scheduler) Task(id string) (TaskInfo, error) {
	for _, info := range s.Tasks() {
		if info.ID == id {
			return info, nil
		}
	}
	return TaskInfo{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.running = true
	log.Info("Starting background scheduler", "tasks", len(s.tasks))
	s.cron.Start()
}

// Stop cancels the context passed to handlers, stops scheduling new runs and
// waits for running tasks to return. A stopped Scheduler cannot be restarted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	s.cancel()
	if wasRunning {
		log.Info("Stopping background scheduler")
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()
}
