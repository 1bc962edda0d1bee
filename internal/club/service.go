package club

import (
	"context"
	"strings"
	"sync"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/susu3304/pokerclub/internal/dinner"
	"github.com/susu3304/pokerclub/internal/ledger"
	"github.com/susu3304/pokerclub/internal/livegame"
)

type Options struct {
	// RequireDateNames applies the D/M/YY rule to every session name.
	RequireDateNames bool
	Clock            quartz.Clock
	Logger           zerolog.Logger
	Hub              *Hub
	NewID            func() string
}

// Service is the single coordinator of the club's accounting. It owns the
// optional live game and live dinner; everything else lives in the Store.
type Service struct {
	mu               sync.Mutex
	store            Store
	hub              *Hub
	clock            quartz.Clock
	log              zerolog.Logger
	newID            func() string
	requireDateNames bool

	live   *livegame.Game
	dinner *dinner.Dinner
}

func NewService(store Store, opts Options) *Service {
	s := &Service{
		store:            store,
		hub:              opts.Hub,
		clock:            opts.Clock,
		log:              opts.Logger,
		newID:            opts.NewID,
		requireDateNames: opts.RequireDateNames,
	}
	if s.hub == nil {
		s.hub = NewHub()
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

func (s *Service) Hub() *Hub {
	return s.hub
}

// Snapshot is the full read model pushed to subscribers.
type Snapshot struct {
	Players  []ledger.Player     `json:"players"`
	Sessions []ledger.Session    `json:"sessions"`
	Defaults ledger.GameDefaults `json:"defaults"`
	LiveGame *livegame.Game      `json:"live_game"`
	Dinner   *dinner.Dinner      `json:"dinner"`
}

func (s *Service) state(ctx context.Context) (*State, error) {
	st, err := s.store.LoadState(ctx)
	if err != nil {
		return nil, persistErr("load state", err)
	}
	return st, nil
}

func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	st, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Snapshot{
		Players:  st.Players,
		Sessions: st.Sessions,
		Defaults: st.Defaults,
		LiveGame: s.live.Clone(),
		Dinner:   s.dinner.Clone(),
	}, nil
}

func (s *Service) changed() {
	s.hub.Notify()
}

func findPlayer(players []ledger.Player, id string) (ledger.Player, bool) {
	for _, p := range players {
		if p.ID == id {
			return p, true
		}
	}
	return ledger.Player{}, false
}

func resolvePlayers(players []ledger.Player, ids []string) ([]ledger.Player, error) {
	out := make([]ledger.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := findPlayer(players, id)
		if !ok {
			return nil, ErrNotFound
		}
		out = append(out, p)
	}
	return out, nil
}

// Players

type PlayerInput struct {
	Name       string
	Contact    string
	PaymentKey string
}

func (in PlayerInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ledger.ValidationError{Kind: ledger.EmptyName, Detail: "player name is required"}
	}
	return nil
}

func (s *Service) Players(ctx context.Context) ([]ledger.Player, error) {
	st, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	return st.Players, nil
}

func (s *Service) CreatePlayer(ctx context.Context, actor Actor, in PlayerInput) (ledger.Player, error) {
	if err := requireManager(actor); err != nil {
		return ledger.Player{}, err
	}
	if err := in.validate(); err != nil {
		return ledger.Player{}, err
	}
	p := ledger.Player{
		ID:         s.newID(),
		Name:       strings.TrimSpace(in.Name),
		Contact:    in.Contact,
		PaymentKey: in.PaymentKey,
		Active:     true,
	}
	if err := s.store.SavePlayer(ctx, p); err != nil {
		return ledger.Player{}, persistErr("save player", err)
	}
	s.log.Info().Str("player_id", p.ID).Str("actor", actor.ID).Msg("player created")
	s.changed()
	return p, nil
}

func (s *Service) UpdatePlayer(ctx context.Context, actor Actor, id string, in PlayerInput) (ledger.Player, error) {
	if err := requireManager(actor); err != nil {
		return ledger.Player{}, err
	}
	if err := in.validate(); err != nil {
		return ledger.Player{}, err
	}
	st, err := s.state(ctx)
	if err != nil {
		return ledger.Player{}, err
	}
	p, ok := findPlayer(st.Players, id)
	if !ok {
		return ledger.Player{}, ErrNotFound
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Contact = in.Contact
	p.PaymentKey = in.PaymentKey
	if err := s.store.SavePlayer(ctx, p); err != nil {
		return ledger.Player{}, persistErr("save player", err)
	}
	s.changed()
	return p, nil
}

func (s *Service) SetPlayerActive(ctx context.Context, actor Actor, id string, active bool) (ledger.Player, error) {
	if err := requireManager(actor); err != nil {
		return ledger.Player{}, err
	}
	st, err := s.state(ctx)
	if err != nil {
		return ledger.Player{}, err
	}
	p, ok := findPlayer(st.Players, id)
	if !ok {
		return ledger.Player{}, ErrNotFound
	}
	p.Active = active
	if err := s.store.SavePlayer(ctx, p); err != nil {
		return ledger.Player{}, persistErr("save player", err)
	}
	s.changed()
	return p, nil
}

// PlayerInUse reports whether the player appears in any stored session.
func (s *Service) PlayerInUse(ctx context.Context, id string) (bool, error) {
	st, err := s.state(ctx)
	if err != nil {
		return false, err
	}
	return ledger.Appearances(st.Sessions, id) > 0, nil
}

// DeletePlayer refuses to remove a player who has history; deactivate instead.
func (s *Service) DeletePlayer(ctx context.Context, actor Actor, id string) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	st, err := s.state(ctx)
	if err != nil {
		return err
	}
	if _, ok := findPlayer(st.Players, id); !ok {
		return ErrNotFound
	}
	if n := ledger.Appearances(st.Sessions, id); n > 0 {
		return &ledger.ReferentialIntegrityError{PlayerID: id, Sessions: n}
	}
	if err := s.store.DeletePlayer(ctx, id); err != nil {
		return persistErr("delete player", err)
	}
	s.log.Info().Str("player_id", id).Str("actor", actor.ID).Msg("player deleted")
	s.changed()
	return nil
}

// Defaults

func (s *Service) Defaults(ctx context.Context) (ledger.GameDefaults, error) {
	st, err := s.state(ctx)
	if err != nil {
		return ledger.GameDefaults{}, err
	}
	return st.Defaults, nil
}

func (s *Service) SaveDefaults(ctx context.Context, actor Actor, d ledger.GameDefaults) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if err := s.store.SaveDefaults(ctx, d); err != nil {
		return persistErr("save defaults", err)
	}
	s.changed()
	return nil
}
