package metrics

import (
	"context"
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/firstembrace/kmc/internal/domain/records"
	"github.com/firstembrace/kmc/internal/platform/memocache"
)

// Service loads record bundles and serves the indicator panels. Loaded
// datasets are memoized per query so one dashboard render hits the
// database once, not once per panel.
type Service struct {
	repo  records.Repository
	cache *memocache.Store
	ttl   time.Duration
	log   zerolog.Logger
}

// DefaultCacheTTL bounds how stale a dashboard snapshot may get.
const DefaultCacheTTL = 15 * time.Minute

func NewService(repo records.Repository, cache *memocache.Store, ttl time.Duration, log zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{repo: repo, cache: cache, ttl: ttl, log: log}
}

// queryKey fingerprints a query for the snapshot cache. Slices are sorted
// so equivalent selections share an entry.
func queryKey(q records.Query) string {
	var b strings.Builder
	if q.From != nil {
		b.WriteString(q.From.UTC().Format(time.RFC3339))
	}
	b.WriteByte('|')
	if q.To != nil {
		b.WriteString(q.To.UTC().Format(time.RFC3339))
	}
	hosps := append([]string(nil), q.Hospitals...)
	sort.Strings(hosps)
	uids := append([]string(nil), q.UIDs...)
	sort.Strings(uids)
	b.WriteByte('|')
	b.WriteString(strings.Join(hosps, ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(uids, ","))
	return fmt.Sprintf("dataset:%x", md5.Sum([]byte(b.String())))
}

// dataset returns the memoized dataset for a query, loading it on a miss.
func (s *Service) dataset(ctx context.Context, q records.Query) (*Dataset, error) {
	key := queryKey(q)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.(*Dataset), nil
		}
	}

	start := time.Now()
	bundle, err := s.repo.LoadBundle(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	ds := NewDataset(bundle, time.Now())
	s.log.Debug().
		Int("babies", len(ds.Babies)).
		Int("discharges", len(bundle.Discharges)).
		Int("follow_ups", len(bundle.FollowUps)).
		Dur("load", time.Since(start)).
		Msg("dataset loaded")

	if s.cache != nil {
		s.cache.Set(key, ds, s.ttl)
	}
	return ds, nil
}

// InvalidateCache drops every memoized snapshot.
func (s *Service) InvalidateCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// CollectionCounts reports the raw document counts per collection.
func (s *Service) CollectionCounts(ctx context.Context) (map[string]int64, error) {
	return s.repo.CollectionCounts(ctx)
}

func (s *Service) Registration(ctx context.Context, q records.Query) (RegistrationTimeliness, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return RegistrationTimeliness{}, err
	}
	return Registration(ds), nil
}

func (s *Service) Initiation(ctx context.Context, q records.Query) (KMCInitiation, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return KMCInitiation{}, err
	}
	return Initiation(ds), nil
}

func (s *Service) KMCByLocation(ctx context.Context, q records.Query) ([]LocationKMC, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return nil, err
	}
	return AverageKMCByLocation(ds, q.From, q.To), nil
}

func (s *Service) DailyKMC(ctx context.Context, q records.Query) ([]DailyKMCCell, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return nil, err
	}
	return DailyKMC(ds), nil
}

func (s *Service) Outcomes(ctx context.Context, q records.Query) (DischargeOutcomes, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return DischargeOutcomes{}, err
	}
	return Outcomes(ds), nil
}

func (s *Service) CriticalReasons(ctx context.Context, q records.Query) (CriticalReasonsReport, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return CriticalReasonsReport{}, err
	}
	return CriticalReasons(ds), nil
}

func (s *Service) DischargedWithoutKMC(ctx context.Context, q records.Query) ([]HospitalKMCGap, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return nil, err
	}
	return DischargedWithoutKMC(ds), nil
}

func (s *Service) Mortality(ctx context.Context, q records.Query) (DeathRates, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return DeathRates{}, err
	}
	return Mortality(ds), nil
}

func (s *Service) MortalityByHospital(ctx context.Context, q records.Query) ([]HospitalMortality, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return nil, err
	}
	return MortalityByHospital(ds), nil
}

func (s *Service) MortalityList(ctx context.Context, q records.Query) ([]DeathDetail, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return nil, err
	}
	return MortalityList(ds), nil
}

func (s *Service) Completion(ctx context.Context, q records.Query) (FollowUpCompletion, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return FollowUpCompletion{}, err
	}
	return Completion(ds), nil
}

func (s *Service) SkinContact(ctx context.Context, q records.Query) (SkinContactReport, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return SkinContactReport{}, err
	}
	return SkinContact(ds), nil
}

func (s *Service) HospitalStay(ctx context.Context, q records.Query) (HospitalStayReport, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return HospitalStayReport{}, err
	}
	return HospitalStay(ds), nil
}

func (s *Service) NurseActivity(ctx context.Context, q records.Query) (NurseActivityReport, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return NurseActivityReport{}, err
	}
	return NurseActivity(ds, q.From, q.To, q.Hospitals), nil
}

func (s *Service) VerifyKMC(ctx context.Context, q records.Query) (KMCVerification, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return KMCVerification{}, err
	}
	return VerifyKMC(ds), nil
}

func (s *Service) VerifyObservations(ctx context.Context, q records.Query) (ObservationVerification, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return ObservationVerification{}, err
	}
	return VerifyObservations(ds), nil
}

func (s *Service) System(ctx context.Context, q records.Query) (SystemIndicators, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return SystemIndicators{}, err
	}
	return System(ds), nil
}

func (s *Service) Program(ctx context.Context, q records.Query) (ProgramIndicators, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return ProgramIndicators{}, err
	}
	return Program(ds), nil
}

// Dashboard is everything in one response, for the single-page dashboard
// that renders all panels at once.
type Dashboard struct {
	Registration        RegistrationTimeliness  `json:"registration"`
	Initiation          KMCInitiation           `json:"kmc_initiation"`
	KMCByLocation       []LocationKMC           `json:"kmc_by_location"`
	DailyKMC            []DailyKMCCell          `json:"daily_kmc"`
	Outcomes            DischargeOutcomes       `json:"discharge_outcomes"`
	CriticalReasons     CriticalReasonsReport   `json:"critical_reasons"`
	WithoutKMC          []HospitalKMCGap        `json:"discharged_without_kmc"`
	Mortality           DeathRates              `json:"mortality"`
	MortalityByHospital []HospitalMortality     `json:"mortality_by_hospital"`
	Completion          FollowUpCompletion      `json:"follow_up_completion"`
	SkinContact         SkinContactReport       `json:"skin_contact"`
	Stay                HospitalStayReport      `json:"hospital_stay"`
	KMCVerification     KMCVerification         `json:"kmc_verification"`
	Observations        ObservationVerification `json:"observation_verification"`
	System              SystemIndicators        `json:"system_indicators"`
	Program             ProgramIndicators       `json:"program_indicators"`
}

func (s *Service) Dashboard(ctx context.Context, q records.Query) (*Dashboard, error) {
	ds, err := s.dataset(ctx, q)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Registration:        Registration(ds),
		Initiation:          Initiation(ds),
		KMCByLocation:       AverageKMCByLocation(ds, q.From, q.To),
		DailyKMC:            DailyKMC(ds),
		Outcomes:            Outcomes(ds),
		CriticalReasons:     CriticalReasons(ds),
		WithoutKMC:          DischargedWithoutKMC(ds),
		Mortality:           Mortality(ds),
		MortalityByHospital: MortalityByHospital(ds),
		Completion:          Completion(ds),
		SkinContact:         SkinContact(ds),
		Stay:                HospitalStay(ds),
		KMCVerification:     VerifyKMC(ds),
		Observations:        VerifyObservations(ds),
		System:              System(ds),
		Program:             Program(ds),
	}, nil
}
