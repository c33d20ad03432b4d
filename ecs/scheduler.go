package ecs

import (
	"context"
	"reflect"
	"time"

	"github.com/rs/zerolog"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          uint64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type registeredSystem struct {
	system  System
	queries []frameExecutor

	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// Scheduler runs registered systems in registration order, then flushes the frame's
// command buffer.
type Scheduler struct {
	storage  *Storage
	systems  []*registeredSystem
	commands *Commands
	frames   uint64
	logger   zerolog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger used for registration and flush diagnostics.
func WithLogger(logger zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a scheduler for the given storage.
func NewScheduler(storage *Storage, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		storage:  storage,
		commands: NewCommands(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Storage returns the store the scheduler drives.
func (s *Scheduler) Storage() *Storage {
	return s.storage
}

// Register binds the system's Query and Singleton fields and appends it to the run order.
func (s *Scheduler) Register(system System) {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}

	rs := &registeredSystem{
		system:      system,
		queries:     s.bindFields(system),
		name:        systemType.Name(),
		minDuration: time.Duration(1<<63 - 1),
	}
	s.systems = append(s.systems, rs)

	s.logger.Debug().
		Str("system", rs.name).
		Int("queries", len(rs.queries)).
		Int("position", len(s.systems)-1).
		Msg("system registered")
}

func (s *Scheduler) bindFields(system System) []frameExecutor {
	value := reflect.ValueOf(system)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}

	var queries []frameExecutor
	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		binder, ok := field.Addr().Interface().(storageBinder)
		if !ok {
			continue
		}
		binder.Init(s.storage)

		if q, ok := binder.(frameExecutor); ok {
			queries = append(queries, q)
		}
	}
	return queries
}

// Once runs a single frame with the given delta time in seconds.
func (s *Scheduler) Once(dt float64) {
	s.frames++
	frame := &UpdateFrame{
		DeltaTime: dt,
		Number:    s.frames,
		Commands:  s.commands,
		Storage:   s.storage,
	}

	for _, rs := range s.systems {
		start := time.Now()
		for _, q := range rs.queries {
			q.Execute()
		}
		rs.system.Execute(frame)
		rs.record(time.Since(start))
	}

	if err := s.commands.Flush(s.storage); err != nil {
		s.logger.Warn().Err(err).Uint64("frame", s.frames).Msg("deferred commands failed")
	}
}

func (rs *registeredSystem) record(d time.Duration) {
	rs.executionCount++
	rs.lastDuration = d
	rs.totalDuration += d
	rs.minDuration = min(rs.minDuration, d)
	rs.maxDuration = max(rs.maxDuration, d)
}

// Run executes frames at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Frames:      s.frames,
		Systems:     make([]SystemStats, len(s.systems)),
	}

	for i, rs := range s.systems {
		var avg time.Duration
		if rs.executionCount > 0 {
			avg = rs.totalDuration / time.Duration(rs.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           rs.name,
			ExecutionCount: rs.executionCount,
			MinDuration:    rs.minDuration,
			MaxDuration:    rs.maxDuration,
			AvgDuration:    avg,
			LastDuration:   rs.lastDuration,
			TotalDuration:  rs.totalDuration,
		}
		stats.TotalExecutions += rs.executionCount
	}

	return stats
}
