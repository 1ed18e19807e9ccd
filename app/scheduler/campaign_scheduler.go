// Package scheduler
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/riverbyte/boardcast/app/dto"
	"github.com/riverbyte/boardcast/config"
	"github.com/riverbyte/boardcast/models"
	"github.com/riverbyte/boardcast/repository"
	"github.com/riverbyte/boardcast/utils"
)

var (
	schedulerTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_ticks_total",
			Help: "Total number of scheduler ticks evaluated",
		},
	)

	schedulerFiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_schedules_fired_total",
			Help: "Total number of schedules fired by the scheduler",
		},
	)

	schedulerExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_once_expired_total",
			Help: "Total number of once schedules expired past the grace window",
		},
	)
)

// ExecutionRunner is the minimal executor surface the scheduler needs.
// This keeps the scheduler independent and easy to test.
type ExecutionRunner interface {
	ExecuteCampaign(ctx context.Context, campaignID uint, scheduleID *uint, executionType models.ExecutionType) (*dto.ExecuteCampaignResponse, error)
}

// CampaignScheduler fires campaign schedules on a fixed minute tick. All
// calendar matching happens in one configured timezone so "weekly" and
// "monthly" mean what the user sees on their calendar, not server time.
type CampaignScheduler struct {
	campaignRepo repository.CampaignRepository
	scheduleRepo repository.ScheduleRepository
	runner       ExecutionRunner
	logger       *log.Logger
	interval     time.Duration
	location     *time.Location
	onceGrace    time.Duration

	// now is replaceable in tests
	now func() time.Time
}

func NewCampaignScheduler(
	campaignRepo repository.CampaignRepository,
	scheduleRepo repository.ScheduleRepository,
	runner ExecutionRunner,
	cfg config.SchedulerConfig,
) (*CampaignScheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
	}

	onceGrace := cfg.OnceGrace
	if onceGrace <= 0 {
		onceGrace = utils.OnceScheduleGrace
	}

	s := &CampaignScheduler{
		campaignRepo: campaignRepo,
		scheduleRepo: scheduleRepo,
		runner:       runner,
		interval:     time.Minute,
		location:     location,
		onceGrace:    onceGrace,
		now:          time.Now,
	}
	s.initLogger(cfg.LogFilePath)

	return s, nil
}

// initLogger writes scheduler output to stdout and a rotated file
func (s *CampaignScheduler) initLogger(logPath string) {
	var w io.Writer = os.Stdout
	if logPath != "" {
		rotated := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, rotated)
	}
	s.logger = log.New(w, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *CampaignScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runTick(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runTick(ctx)
			}
		}
	}()

	return cancel
}

// runTick evaluates every active (campaign, schedule) pair against the
// current minute. One campaign's failure never stops the scan.
func (s *CampaignScheduler) runTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("scheduler: tick panicked: %v", r)
		}
	}()
	schedulerTicksTotal.Inc()

	now := s.now().In(s.location)

	campaigns, err := s.campaignRepo.ListActiveWithSchedules(ctx)
	if err != nil {
		s.logger.Printf("scheduler: list active campaigns failed: %v", err)
		return
	}

	for _, campaign := range campaigns {
		for i := range campaign.Schedules {
			schedule := &campaign.Schedules[i]
			if !utils.IsTrue(schedule.IsActive) {
				continue
			}
			s.evaluateSchedule(ctx, campaign, schedule, now)
		}
	}
}

func (s *CampaignScheduler) evaluateSchedule(ctx context.Context, campaign *models.Campaign, schedule *models.Schedule, now time.Time) {
	if schedule.Type == models.ScheduleTypeOnce {
		// Self-heal missed fires: a once schedule more than the grace window
		// in the past never fires, it is retired instead.
		if target, err := schedule.OnceTarget(s.location); err == nil && now.Sub(target) > s.onceGrace {
			s.logger.Printf("scheduler: once schedule id=%d for campaign id=%d expired (target %s), deactivating",
				schedule.ID, campaign.ID, target.Format("2006-01-02 15:04"))
			s.expireSchedule(ctx, campaign.ID, schedule.ID)
			return
		}
		if schedule.LastExecutedAt != nil {
			return
		}
	}

	if !schedule.DueAt(now) {
		return
	}

	// Bookkeeping happens before the run launches, so a slow execution that
	// crosses a minute boundary cannot fire the schedule twice.
	if err := s.scheduleRepo.MarkExecuted(ctx, schedule.ID, utils.UTCNow()); err != nil {
		s.logger.Printf("scheduler: mark executed failed for schedule id=%d: %v", schedule.ID, err)
		return
	}
	schedulerFiredTotal.Inc()
	s.logger.Printf("scheduler: firing %s schedule id=%d for campaign id=%d at %s",
		schedule.Type, schedule.ID, campaign.ID, now.Format("2006-01-02 15:04"))

	campaignID := campaign.ID
	scheduleID := schedule.ID
	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Printf("scheduler: execution panicked for campaign id=%d: %v", campaignID, r)
			}
		}()
		if _, err := s.runner.ExecuteCampaign(runCtx, campaignID, &scheduleID, models.ExecutionTypeScheduled); err != nil {
			s.logger.Printf("scheduler: execute campaign id=%d failed: %v", campaignID, err)
		}
	}()
}

// expireSchedule deactivates a schedule and cascades campaign deactivation
// when no active schedules remain.
func (s *CampaignScheduler) expireSchedule(ctx context.Context, campaignID, scheduleID uint) {
	schedulerExpiredTotal.Inc()
	if err := s.scheduleRepo.Deactivate(ctx, scheduleID); err != nil {
		s.logger.Printf("scheduler: deactivate schedule id=%d failed: %v", scheduleID, err)
		return
	}
	active, err := s.scheduleRepo.CountActiveByCampaign(ctx, campaignID)
	if err != nil {
		s.logger.Printf("scheduler: count active schedules for campaign id=%d failed: %v", campaignID, err)
		return
	}
	if active == 0 {
		if err := s.campaignRepo.Deactivate(ctx, campaignID); err != nil {
			s.logger.Printf("scheduler: deactivate campaign id=%d failed: %v", campaignID, err)
			return
		}
		s.logger.Printf("scheduler: campaign id=%d fully deactivated, no active schedules remain", campaignID)
	}
}
