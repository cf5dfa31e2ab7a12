package api

import (
	"testing"
	"time"

	"github.com/bbernstein/lightcore-go/internal/services/pubsub"
	"github.com/bbernstein/lightcore-go/internal/services/runtime"
	"github.com/bbernstein/lightcore-go/internal/show"
)

func testSession(t *testing.T) (*Session, *pubsub.PubSub) {
	t.Helper()

	s := show.New("Session Test")
	if err := s.Patch.AddFixture(show.FixtureInstance{
		FixtureID: 1, Name: "PAR 1", FixtureType: "rgb_par_3ch", Universe: 1, Address: 1,
	}); err != nil {
		t.Fatalf("AddFixture: %v", err)
	}

	ps := pubsub.New()
	return NewSession(runtime.New(s), ps, nil, 0), ps
}

func TestNewSession_DefaultClamp(t *testing.T) {
	session, _ := testSession(t)
	if session.maxTickDelta != 100*time.Millisecond {
		t.Errorf("maxTickDelta = %v, want 100ms default", session.maxTickDelta)
	}
}

func TestRender_PublishesFrame(t *testing.T) {
	session, ps := testSession(t)

	sub := ps.Subscribe(pubsub.TopicOutputChanged, 4)
	defer ps.Unsubscribe(sub)

	err := session.Do(func(rt *runtime.Runtime) error {
		rt.Programmer.SelectOne(1)
		rt.Programmer.SetRGB(5, 0, 0)
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	frame, err := session.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(frame.Points) != 1 || frame.Points[0].Value != 5 {
		t.Errorf("frame = %v", frame.Points)
	}

	select {
	case msg := <-sub.Channel:
		published, ok := msg.(*OutputFrame)
		if !ok {
			t.Fatalf("published payload type %T", msg)
		}
		if len(published.Points) != 1 {
			t.Errorf("published frame = %v", published.Points)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("render should publish an output frame")
	}
}

func TestSessionStartStop(t *testing.T) {
	session, _ := testSession(t)

	session.Start(200)
	session.Start(200) // second start is a no-op
	time.Sleep(30 * time.Millisecond)
	session.Stop()
	session.Stop() // no-op
}
