package service

import (
	"context"
	"strconv"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/config"
	"github.com/cubetrack/wcifhistoryapi/internal/storage"
	"github.com/cubetrack/wcifhistoryapi/internal/wca"
	"github.com/cubetrack/wcifhistoryapi/pkg/utils/zaplogger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService runs the scheduled maintenance jobs
type CronService struct {
	cfg             *config.Config
	c               *cron.Cron
	sessionService  *SessionService
	snapshotService *SnapshotService
}

// NewCronService creates a new CronService
func NewCronService(cfg *config.Config, db *gorm.DB, blob storage.BlobStore, wcaClient *wca.Client) *CronService {
	sessionService := NewSessionService(db, wcaClient)
	snapshotService := NewSnapshotService(db, blob, wcaClient, sessionService)

	return &CronService{
		cfg:             cfg,
		c:               cron.New(),
		sessionService:  sessionService,
		snapshotService: snapshotService,
	}
}

// Start starts the cron service
func (cs *CronService) Start() {
	zaplogger.Info("Initializing CronService")

	// ------------------------------------------------------------
	// Add your SCHEDULED jobs here
	// ------------------------------------------------------------
	cs.addScheduledJob("Weekly CLEANUP Job", cs.WeeklyCleanupJob, "0 0 * * 0") // Once at midnight, Sunday

	// ------------------------------------------------------------
	// Add your STARTUP jobs here
	// ------------------------------------------------------------
	cs.addStartupJob("Weekly CLEANUP Job", cs.WeeklyCleanupJob, 10*time.Second)
	// ------------------------------------------------------------

	cs.c.Start()
}

// Stop stops the cron service
func (cs *CronService) Stop() {
	cs.c.Stop()
}

// addStartupJob adds a startup job to the cron service
func (cs *CronService) addStartupJob(name string, job func(), delay time.Duration) {
	go func() {
		time.Sleep(delay)
		zaplogger.Info("STARTED STARTUP job", zaplogger.Fields{
			"job": name,
		})
		job()
		zaplogger.Info("COMPLETED STARTUP job", zaplogger.Fields{
			"job": name,
		})
	}()
	zaplogger.Info("QUEUED STARTUP job", zaplogger.Fields{
		"job": name,
	})
}

// addScheduledJob adds a scheduled job to the cron service
func (cs *CronService) addScheduledJob(name string, job func(), schedule string) {
	_, err := cs.c.AddFunc(schedule, func() {
		zaplogger.Info("STARTED SCHEDULED JOB", zaplogger.Fields{
			"job": name,
		})
		job()
		zaplogger.Info("COMPLETED SCHEDULED JOB", zaplogger.Fields{
			"job": name,
		})
	})
	if err != nil {
		zaplogger.Error("FAILED TO QUEUE SCHEDULED JOB", zaplogger.Fields{
			"job":   name,
			"error": err.Error(),
		})
		return
	}
	zaplogger.Info("QUEUED SCHEDULED job", zaplogger.Fields{
		"job": name,
	})
}

// WeeklyCleanupJob purges expired sessions, then sweeps snapshots past
// retention. Errors are logged, never raised: one failed sweep must not
// take the scheduler down, and the next run simply retries.
func (cs *CronService) WeeklyCleanupJob() {
	jobName := "Weekly CLEANUP Job "

	deleted, err := cs.sessionService.PurgeExpiredSessions()
	if err != nil {
		zaplogger.Error(jobName, zaplogger.Fields{
			"step":  "PurgeExpiredSessions",
			"error": err.Error(),
		})
	} else {
		zaplogger.Info(jobName, zaplogger.Fields{
			"step":             "PurgeExpiredSessions",
			"sessions_deleted": strconv.FormatInt(deleted, 10),
		})
	}

	swept, err := cs.snapshotService.CleanupOldSnapshots(context.Background())
	if err != nil {
		zaplogger.Error(jobName, zaplogger.Fields{
			"step":  "CleanupOldSnapshots",
			"error": err.Error(),
		})
		return
	}
	zaplogger.Info(jobName, zaplogger.Fields{
		"step":              "CleanupOldSnapshots",
		"snapshots_deleted": strconv.FormatInt(swept, 10),
	})
}
