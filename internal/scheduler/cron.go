package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a named maintenance task run on a cron spec.
type Job interface {
	Name() string
	Run() error
}

// Sweeper runs the lifecycle sweeps (expiry, cleanup, digest) on cron
// schedules, while the interval loops handle detection.
type Sweeper struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

// NewSweeper constructs a cron-backed sweeper.
func NewSweeper(logger zerolog.Logger) *Sweeper {
	log := logger.With().Str("component", "sweeper").Logger()
	return &Sweeper{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{log}),
		)),
		logger: log,
	}
}

// AddJob registers a job under a cron spec ("@every 1h", "@daily", or a
// standard five-field expression).
func (s *Sweeper) AddJob(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job.Run(); err != nil {
			s.logger.Error().Err(err).Str("job", job.Name()).Msg("sweep job failed")
			return
		}
		s.logger.Debug().Str("job", job.Name()).Msg("sweep job completed")
	})
	return err
}

// Start begins dispatching jobs in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts dispatch and waits for running jobs to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// cronLogger adapts zerolog to the cron.Logger interface.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Msg(msg)
}
