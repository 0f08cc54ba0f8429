package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
	"github.com/go-playground/validator/v10"
)

// commissionScheduleService serves immutable schedule snapshots. Readers never lock;
// a reload builds a new snapshot and swaps the pointer.
type commissionScheduleService struct {
	BaseService
	work      uow.UOW
	publisher portsrepo.ScheduleChangePublisher
	validate  *validator.Validate
	current   atomic.Pointer[domain.CommissionSchedule]
	loadMu    sync.Mutex
	now       func() time.Time
}

// ScheduleOption is a functional option for configuring the schedule service
type ScheduleOption func(*commissionScheduleService)

// WithSchedulePublisher announces every stored version so other replicas reload.
func WithSchedulePublisher(p portsrepo.ScheduleChangePublisher) ScheduleOption {
	return func(s *commissionScheduleService) {
		s.publisher = p
	}
}

// NewCommissionScheduleService creates a new schedule service with the provided options
func NewCommissionScheduleService(work uow.UOW, options ...ScheduleOption) portssvc.CommissionScheduleSvcFacade {
	svc := &commissionScheduleService{
		work:     work,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CommissionScheduleSvcFacade = (*commissionScheduleService)(nil)

func (s *commissionScheduleService) Snapshot(ctx context.Context) (*domain.CommissionSchedule, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return s.Reload(ctx)
}

func (s *commissionScheduleService) Reload(ctx context.Context) (*domain.CommissionSchedule, error) {
	repo, err := uow.GetRepositoryAs[portsrepo.CommissionScheduleReader](s.work, portsrepo.CommissionScheduleRepoName)
	if err != nil {
		return nil, fmt.Errorf("schedule repository: %w", err)
	}
	version, entries, err := repo.LoadSchedule(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load commission schedule")
		return nil, err
	}
	return s.install(ctx, version, entries), nil
}

// install swaps in a snapshot unless a newer one is already in place.
func (s *commissionScheduleService) install(ctx context.Context, version int64, entries []domain.CommissionRule) *domain.CommissionSchedule {
	snap := domain.NewCommissionSchedule(version, entries, s.now())
	for {
		old := s.current.Load()
		if old != nil && old.Version > snap.Version {
			return old
		}
		if s.current.CompareAndSwap(old, snap) {
			break
		}
	}

	for _, issue := range snap.Issues() {
		s.LogWarn(ctx, "Skipping malformed commission schedule entry",
			slog.Int64("version", version),
			slog.String("error", issue.Error()))
	}
	scheduleVersion.Set(float64(version))
	s.LogInfo(ctx, "Commission schedule loaded",
		slog.Int64("version", version),
		slog.Int("rules", len(snap.Rules())))
	return snap
}

func (s *commissionScheduleService) Replace(ctx context.Context, req dto.ReplaceScheduleRequest, userID string) (*domain.CommissionSchedule, []string, error) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrScheduleEntryInvalid, verrs.Error())
		}
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrScheduleEntryInvalid, err)
	}

	rules := req.ToCommissionRules()
	seen := make(map[int]struct{}, len(rules))
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, nil, err
		}
		if _, dup := seen[rule.Level]; dup {
			return nil, nil, fmt.Errorf("%w: level %d defined more than once", apperrors.ErrScheduleEntryInvalid, rule.Level)
		}
		seen[rule.Level] = struct{}{}
	}

	var warnings []string
	if total := domain.PercentageTotal(rules); total.GreaterThan(hundredPercent) {
		warnings = append(warnings, fmt.Sprintf("active percentage commissions sum to %s%%, more than the base amount", total))
	}

	var version int64
	err := s.work.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[portsrepo.CommissionScheduleWriter](tx, portsrepo.CommissionScheduleRepoName)
		if err != nil {
			return fmt.Errorf("schedule repository: %w", err)
		}
		version, err = repo.ReplaceSchedule(ctx, rules, userID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to replace commission schedule", slog.String("user_id", userID))
		return nil, nil, err
	}

	snap := s.install(ctx, version, rules)
	s.LogInfo(ctx, "Commission schedule replaced",
		slog.Int64("version", version),
		slog.String("user_id", userID),
		slog.Int("warnings", len(warnings)))

	if s.publisher != nil {
		if err := s.publisher.PublishScheduleVersion(ctx, version); err != nil {
			s.LogError(ctx, err, "Failed to announce commission schedule version", slog.Int64("version", version))
		}
	}
	return snap, warnings, nil
}
