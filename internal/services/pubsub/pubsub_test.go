package pubsub

import (
	"testing"
	"time"
)

func TestSubscribe(t *testing.T) {
	ps := New()

	sub := ps.Subscribe(TopicOutputChanged, 10)
	if sub == nil {
		t.Fatal("Subscribe() returned nil")
	}
	if sub.Topic != TopicOutputChanged {
		t.Errorf("Expected topic %s, got %s", TopicOutputChanged, sub.Topic)
	}
	if cap(sub.Channel) != 10 {
		t.Errorf("Expected channel buffer size 10, got %d", cap(sub.Channel))
	}

	if count := ps.SubscriberCount(TopicOutputChanged); count != 1 {
		t.Errorf("Expected 1 subscriber, got %d", count)
	}
}

func TestPublish_DeliversToTopic(t *testing.T) {
	ps := New()

	outSub := ps.Subscribe(TopicOutputChanged, 5)
	pbSub := ps.Subscribe(TopicPlaybackUpdated, 5)

	ps.Publish(TopicOutputChanged, "frame-1")

	select {
	case msg := <-outSub.Channel:
		if msg != "frame-1" {
			t.Errorf("got %v", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("output subscriber did not receive the message")
	}

	select {
	case msg := <-pbSub.Channel:
		t.Errorf("playback subscriber should not receive output messages, got %v", msg)
	default:
	}
}

func TestPublish_SkipsFullChannels(t *testing.T) {
	ps := New()

	sub := ps.Subscribe(TopicOutputChanged, 1)
	ps.Publish(TopicOutputChanged, "first")
	ps.Publish(TopicOutputChanged, "dropped") // buffer full, must not block

	if got := <-sub.Channel; got != "first" {
		t.Errorf("got %v", got)
	}
	select {
	case extra := <-sub.Channel:
		t.Errorf("expected the second message dropped, got %v", extra)
	default:
	}
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	ps := New()

	sub := ps.Subscribe(TopicShowUpdated, 1)
	ps.Unsubscribe(sub)

	if count := ps.SubscriberCount(TopicShowUpdated); count != 0 {
		t.Errorf("Expected 0 subscribers, got %d", count)
	}
	if _, ok := <-sub.Channel; ok {
		t.Error("channel should be closed after Unsubscribe")
	}
}
