package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// AutoSaver runs a save callback on a fixed minute interval.
type AutoSaver struct {
	logger *log.Logger
	save   func() error

	mu      sync.Mutex
	sched   *cron.Cron
	entry   cron.EntryID
	minutes int
}

// NewAutoSaver creates a stopped autosaver.
func NewAutoSaver(logger *log.Logger, save func() error) *AutoSaver {
	if logger == nil {
		logger = log.Default()
	}
	return &AutoSaver{logger: logger, save: save}
}

// autoSaveSchedule is the cron schedule for an interval in minutes.
func autoSaveSchedule(minutes int) string {
	return fmt.Sprintf("@every %dm", minutes)
}

// Schedule replaces the running schedule. Zero or negative minutes stops
// autosaving.
func (a *AutoSaver) Schedule(minutes int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if minutes == a.minutes && (minutes <= 0 || a.sched != nil) {
		return nil
	}
	a.stopLocked()
	if minutes <= 0 {
		return nil
	}

	c := cron.New()
	id, err := c.AddFunc(autoSaveSchedule(minutes), a.run)
	if err != nil {
		return fmt.Errorf("schedule autosave every %d minutes: %w", minutes, err)
	}
	c.Start()
	a.sched, a.entry, a.minutes = c, id, minutes
	a.logger.Info("autosave enabled", "every", time.Duration(minutes)*time.Minute)
	return nil
}

// Minutes returns the active interval, 0 when stopped.
func (a *AutoSaver) Minutes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.minutes
}

// Next returns the time of the next autosave, or the zero time.
func (a *AutoSaver) Next() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sched == nil {
		return time.Time{}
	}
	return a.sched.Entry(a.entry).Next
}

// Stop cancels autosaving.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *AutoSaver) stopLocked() {
	if a.sched != nil {
		a.sched.Stop()
		a.sched = nil
		a.entry = 0
	}
	a.minutes = 0
}

func (a *AutoSaver) run() {
	if err := a.save(); err != nil {
		a.logger.Error("autosave failed", "err", err)
		return
	}
	a.logger.Debug("autosaved layout")
}
