package game

import (
	"errors"
	"log/slog"
	"sync"

	"cleanstart/internal/sim"

	"github.com/google/uuid"
)

var ErrGameNotFound = errors.New("game not found")

// Service hosts independent playthroughs keyed by game ID. Each Company is
// single-threaded by contract; the mutex serializes commands per process and
// guards the registry map.
type Service struct {
	log   *slog.Logger
	mu    sync.Mutex
	games map[string]*session
}

type session struct {
	company *sim.Company
	subs    map[chan sim.QuarterResult]struct{}
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		log:   logger,
		games: make(map[string]*session),
	}
}

type GameCreated struct {
	GameID string    `json:"game_id"`
	State  sim.State `json:"state"`
}

type TrackInfo struct {
	Track   sim.TechTrack `json:"track"`
	Name    string        `json:"name"`
	Tagline string        `json:"tagline"`
}

func ListTracks() []TrackInfo {
	tracks := sim.Tracks()
	out := make([]TrackInfo, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, TrackInfo{Track: t, Name: t.DisplayName(), Tagline: t.Tagline()})
	}
	return out
}

// CreateGame starts a new playthrough. A zero seed means a time-based seed.
func (s *Service) CreateGame(track string, seed int64) (GameCreated, error) {
	parsed, err := sim.ParseTrack(track)
	if err != nil {
		return GameCreated{}, err
	}

	var company *sim.Company
	if seed == 0 {
		company, err = sim.New(parsed)
	} else {
		company, err = sim.NewSeeded(parsed, seed)
	}
	if err != nil {
		return GameCreated{}, err
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.games[id] = &session{
		company: company,
		subs:    make(map[chan sim.QuarterResult]struct{}),
	}
	s.mu.Unlock()

	s.log.Info("game created", "game_id", id, "track", parsed)
	return GameCreated{GameID: id, State: company.State()}, nil
}

func (s *Service) State(gameID string) (sim.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[gameID]
	if !ok {
		return sim.State{}, ErrGameNotFound
	}
	return sess.company.State(), nil
}

func (s *Service) History(gameID string) ([]sim.Metrics, error) {
	st, err := s.State(gameID)
	if err != nil {
		return nil, err
	}
	return st.History, nil
}

func (s *Service) Advance(gameID string, d sim.Decisions) (sim.QuarterResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[gameID]
	if !ok {
		return sim.QuarterResult{}, ErrGameNotFound
	}

	res, err := sess.company.AdvanceQuarter(d)
	if err != nil {
		return sim.QuarterResult{}, err
	}

	s.log.Info("quarter advanced",
		"game_id", gameID,
		"quarter", res.Quarter,
		"units_sold", res.UnitsSold,
		"net_income", res.NetIncome,
		"cash", res.Cash,
		"game_over", res.GameOver,
	)

	for ch := range sess.subs {
		select {
		case ch <- res:
		default:
			// Slow subscriber; drop rather than stall the turn.
		}
	}
	return res, nil
}

func (s *Service) RaiseFunding(gameID, source string) (sim.FundingResult, error) {
	parsed, err := sim.ParseFundingSource(source)
	if err != nil {
		return sim.FundingResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[gameID]
	if !ok {
		return sim.FundingResult{}, ErrGameNotFound
	}

	res, err := sess.company.RaiseFunding(parsed)
	if err != nil {
		return sim.FundingResult{}, err
	}
	s.log.Info("funding round", "game_id", gameID, "source", parsed, "success", res.Success, "amount", res.Amount)
	return res, nil
}

func (s *Service) HireFire(gameID, department string, delta int) (sim.HireResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[gameID]
	if !ok {
		return sim.HireResult{}, ErrGameNotFound
	}

	res, err := sess.company.HireFire(department, delta)
	if err != nil {
		return sim.HireResult{}, err
	}
	s.log.Info("staff change", "game_id", gameID, "department", department, "delta", delta, "success", res.Success)
	return res, nil
}

// Subscribe registers a quarter-result feed for one game. The returned cancel
// func must be called exactly once; it closes the channel.
func (s *Service) Subscribe(gameID string) (<-chan sim.QuarterResult, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[gameID]
	if !ok {
		return nil, nil, ErrGameNotFound
	}

	ch := make(chan sim.QuarterResult, 8)
	sess.subs[ch] = struct{}{}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sess, ok := s.games[gameID]; ok {
			if _, live := sess.subs[ch]; live {
				delete(sess.subs, ch)
				close(ch)
			}
		}
	}
	return ch, cancel, nil
}
