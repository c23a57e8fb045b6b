package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/medcase/internal/application"
	"github.com/bryanwahyu/medcase/internal/domain/ai"
	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

// Inferrer is the inference gateway as seen by the controller.
type Inferrer interface {
	Invoke(ctx context.Context, req ai.Request) (ai.Result, error)
}

// Service implements the analyze and fetch use-cases.
// It keeps no state between calls and is safe for concurrent use.
type Service struct {
	Repo      domain.Repository
	Gateway   Inferrer
	Assembler Assembler
	Clock     application.Clock

	// optional, best-effort
	Archive domain.UploadArchive
	Events  domain.EventPublisher
	Metrics Recorder

	Log zerolog.Logger
}

// Recorder receives outcome counters.
type Recorder interface {
	CaseAnalyzed()
	CaseFailed(kind domain.Kind)
	CaseFetched()
	ProviderRetried()
}

type nopRecorder struct{}

func (nopRecorder) CaseAnalyzed() {}
func (nopRecorder) CaseFailed(domain.Kind) {}
func (nopRecorder) CaseFetched() {}
func (nopRecorder) ProviderRetried() {}

func (s *Service) metrics() Recorder {
	if s.Metrics == nil {
		return nopRecorder{}
	}
	return s.Metrics
}

// Analyze validates, assembles, invokes the provider and persists a new case.
//
// Once the provider call has started it runs to completion and its result is
// persisted even if ctx is cancelled meanwhile; in that case the record is not
// returned and ctx.Err() is reported instead.
func (s *Service) Analyze(ctx context.Context, sub domain.Submission) (*domain.Record, error) {
	rec, err := s.analyze(ctx, sub)
	if err != nil {
		s.metrics().CaseFailed(domain.KindOf(err))
		return nil, err
	}
	s.metrics().CaseAnalyzed()
	return rec, nil
}

func (s *Service) analyze(ctx context.Context, sub domain.Submission) (*domain.Record, error) {
	log := s.Log.With().Str("op", "analyze").Logger()

	files, err := domain.Validate(sub)
	if err != nil {
		log.Warn().Err(err).Str("state", "validating").Msg("submission rejected")
		return nil, err
	}

	req, err := s.Assembler.Assemble(sub, files)
	if err != nil {
		log.Warn().Err(err).Str("state", "assembling").Msg("assembly failed")
		return nil, fmt.Errorf("assemble: %w", err)
	}
	log = log.With().Str("case_id", req.CaseID).Logger()
	log.Info().
		Bool("text", strings.TrimSpace(sub.Text) != "").
		Int("text_files", req.TextFiles).
		Int("lab_files", len(req.Tables)).
		Int("xray_files", len(req.Images)).
		Msg("processing request")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// jangan sampai kena context canceled di tengah jalan
	work := context.WithoutCancel(ctx)

	res, err := s.invoke(work, req, log)
	if err != nil {
		log.Error().Err(err).Str("state", "invoking").Msg("provider failed")
		return nil, err
	}

	rec := &domain.Record{ID: domain.CaseID(req.CaseID), Result: res, CreatedAt: s.now()}
	if err := s.persist(work, rec, log); err != nil {
		log.Error().Err(err).Str("state", "persisting").Msg("persist failed")
		return nil, err
	}
	s.afterPersist(work, rec, files, log)

	if err := ctx.Err(); err != nil {
		log.Warn().Err(err).Msg("caller gone, case stored but not delivered")
		return nil, err
	}
	log.Info().Msg("case created")
	return rec.Clone(), nil
}

// invoke calls the gateway and retries exactly once on a transient failure.
func (s *Service) invoke(ctx context.Context, req ai.Request, log zerolog.Logger) (ai.Result, error) {
	res, err := s.Gateway.Invoke(ctx, req)
	if err == nil || !ai.Retryable(err) {
		return res, err
	}
	log.Warn().Err(err).Msg("provider transient failure, retrying once")
	s.metrics().ProviderRetried()
	return s.Gateway.Invoke(ctx, req)
}

// persist stores rec; on an identifier collision it draws one new identifier
// and tries exactly once more.
func (s *Service) persist(ctx context.Context, rec *domain.Record, log zerolog.Logger) error {
	err := s.Repo.Put(ctx, rec)
	if err == nil || !errors.Is(err, domain.ErrDuplicateCase) {
		return err
	}

	id, idErr := s.Assembler.NewCaseID()
	if idErr != nil {
		return fmt.Errorf("%w (regenerate: %v)", err, idErr)
	}
	log.Warn().Str("collided", string(rec.ID)).Str("case_id", string(id)).Msg("case id collision, retrying with new id")
	rec.ID = id
	return s.Repo.Put(ctx, rec)
}

func (s *Service) afterPersist(ctx context.Context, rec *domain.Record, files []domain.ValidatedFile, log zerolog.Logger) {
	if s.Archive != nil && len(files) > 0 {
		if err := s.Archive.ArchiveUploads(ctx, rec.ID, files); err != nil {
			log.Warn().Err(err).Msg("archive uploads failed")
		}
	}
	if s.Events != nil {
		if err := s.Events.CaseCreated(ctx, rec); err != nil {
			log.Warn().Err(err).Msg("publish case event failed")
		}
	}
}

// Fetch returns a stored case. A missing case is reported immediately.
func (s *Service) Fetch(ctx context.Context, id domain.CaseID) (*domain.Record, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, domain.ErrCaseNotFound
	}
	rec, err := s.Repo.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrCaseNotFound) {
			s.Log.Error().Err(err).Str("op", "fetch").Str("case_id", string(id)).Msg("lookup failed")
		}
		return nil, err
	}
	s.metrics().CaseFetched()
	return rec, nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return application.SystemClock{}.Now()
	}
	return s.Clock.Now()
}
