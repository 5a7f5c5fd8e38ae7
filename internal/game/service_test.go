package game

import (
	"errors"
	"testing"

	"cleanstart/internal/sim"
)

func TestCreateAndAdvance(t *testing.T) {
	svc := NewService(nil)

	created, err := svc.CreateGame("solar", 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.GameID == "" {
		t.Fatalf("empty game id")
	}
	if created.State.Track != sim.TrackSolar {
		t.Fatalf("track: got %s", created.State.Track)
	}

	res, err := svc.Advance(created.GameID, sim.Decisions{})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if res.Quarter != 1 {
		t.Fatalf("quarter: got %d want 1", res.Quarter)
	}

	st, err := svc.State(created.GameID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if len(st.History) != 1 {
		t.Fatalf("history length: got %d want 1", len(st.History))
	}
}

func TestCreateRejectsUnknownTrack(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.CreateGame("fusion", 1); !errors.Is(err, sim.ErrUnknownTrack) {
		t.Fatalf("expected ErrUnknownTrack, got %v", err)
	}
}

func TestUnknownGame(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.State("nope"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if _, err := svc.Advance("nope", sim.Decisions{}); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if _, _, err := svc.Subscribe("nope"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestSubscribeReceivesResults(t *testing.T) {
	svc := NewService(nil)
	created, err := svc.CreateGame("battery", 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ch, cancel, err := svc.Subscribe(created.GameID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	res, err := svc.Advance(created.GameID, sim.Decisions{})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}

	got := <-ch
	if got.Quarter != res.Quarter || got.Cash != res.Cash {
		t.Fatalf("subscriber result %+v does not match %+v", got, res)
	}
}

func TestListTracks(t *testing.T) {
	tracks := ListTracks()
	if len(tracks) != 4 {
		t.Fatalf("track count: got %d want 4", len(tracks))
	}
	for _, info := range tracks {
		if info.Name == "" || info.Tagline == "" {
			t.Fatalf("track %s missing display info", info.Track)
		}
	}
}
