package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"DCAPilot/internal/executor"
	"DCAPilot/internal/model"
	"DCAPilot/internal/notifier"
	"DCAPilot/internal/orchestrator"
	"DCAPilot/internal/recorder"
	"DCAPilot/internal/schedule"
)

// Notifier is satisfied by the Telegram notifier and its noop stand-in.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks: the buy pipeline at the planned time
// and the hourly calendar sweep.
type Scheduler struct {
	Cron         *cron.Cron
	Orchestrator *orchestrator.Orchestrator
	Executor     *executor.Executor
	Schedule     *schedule.Store
	Notifier     Notifier
	Recorder     recorder.Recorder
	TZ           *time.Location
	Ctx          context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, orch *orchestrator.Orchestrator, exec *executor.Executor, store *schedule.Store, tn Notifier, rec recorder.Recorder, tz *time.Location) *Scheduler {
	if tz == nil {
		tz = time.UTC
	}
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds(), cron.WithLocation(tz)),
		Orchestrator: orch,
		Executor:     exec,
		Schedule:     store,
		Notifier:     tn,
		Recorder:     rec,
		TZ:           tz,
		Ctx:          ctx,
	}
}

// RegisterAll registers the buy pipeline and the hourly schedule sweep.
func (s *Scheduler) RegisterAll(buyCron, sweepCron string) error {
	if _, err := s.Cron.AddFunc(buyCron, s.buyTask); err != nil {
		return fmt.Errorf("register buy task: %w", err)
	}
	if _, err := s.Cron.AddFunc(sweepCron, s.sweepTask); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the buy pipeline immediately, bypassing the pay-date
// check (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.runPipeline(true)
}

// buyTask fires daily at the planned time; it only trades on pay dates
// with a pending schedule entry.
func (s *Scheduler) buyTask() {
	s.runPipeline(false)
}

func (s *Scheduler) runPipeline(force bool) {
	now := time.Now().In(s.TZ)
	base := s.Orchestrator.BaseDCAUSD()
	onPayDate := schedule.IsPayDate(now)

	if !force {
		if !onPayDate {
			log.Printf("[INFO] %s is not a pay date, skipping", now.Format("2006-01-02"))
			return
		}
		status, err := s.Schedule.EnsureEntry(now, base)
		if err != nil {
			log.Printf("[ERROR] ensure schedule entry: %v", err)
			return
		}
		if status != model.BuyPending {
			log.Printf("[INFO] buy for %s already %s, skipping", now.Format("2006-01-02"), status)
			return
		}
	}

	log.Println("[INFO] running buy pipeline")
	decision := s.Orchestrator.Decide()
	if err := s.Recorder.RecordDecision(decision); err != nil {
		log.Printf("[ERROR] record decision: %v", err)
	}

	orderUSD := base * decision.Multiplier
	result, err := s.Executor.Execute(orderUSD)
	if err != nil {
		log.Printf("[ERROR] execute: %v", err)
	}
	if err := s.Recorder.RecordTrade(&recorder.TradeSnapshot{Decision: decision, Result: result}); err != nil {
		log.Printf("[ERROR] record trade: %v", err)
	}

	// Only an actual or simulated fill confirms the scheduled buy; a
	// blocked order leaves the entry pending for the missed sweep.
	if onPayDate && (result.Executed || result.Simulated) {
		if err := s.Schedule.Confirm(now, decision, result); err != nil {
			log.Printf("[ERROR] confirm schedule entry: %v", err)
		}
	}

	report := notifier.FormatDecisionReport(decision, base)
	report += "\n" + notifier.FormatExecutionReport(result)
	s.trySend(report)
}

// sweepTask keeps the calendar current: generates due entries and flips
// overdue pending ones to missed.
func (s *Scheduler) sweepTask() {
	now := time.Now().In(s.TZ)
	if err := s.Schedule.Generate(now, s.Orchestrator.BaseDCAUSD()); err != nil {
		log.Printf("[ERROR] schedule generate: %v", err)
	}
	if err := s.Schedule.MarkMissed(now); err != nil {
		log.Printf("[ERROR] schedule mark missed: %v", err)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/run":
		s.RunNow()
		return ""
	case "/decision":
		decision := s.Orchestrator.Decide()
		if err := s.Recorder.RecordDecision(decision); err != nil {
			log.Printf("[ERROR] record decision: %v", err)
		}
		return notifier.FormatDecisionReport(decision, s.Orchestrator.BaseDCAUSD())
	case "/schedule":
		return notifier.FormatSchedule(s.Schedule.Entries(), schedule.NextPayDate(time.Now().In(s.TZ)))
	case "/ledger":
		return notifier.FormatLedgerStatus(s.Executor.DailySpend(), s.Executor.MaxDailyUSD)
	default:
		return "Commands:\n• /run — run the buy pipeline now\n• /decision — score without trading\n• /schedule — purchase calendar\n• /ledger — today's spend"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
