package notify

import (
	"testing"
	"time"
)

func TestHub_PublishSubscribe(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe(TopicBillPaid)
	defer cancel()

	hub.Publish(Event{Topic: TopicBillPaid, BillID: "bill-1", UserID: "user-1"})

	select {
	case event := <-ch:
		if event.BillID != "bill-1" {
			t.Errorf("bill id = %s, want bill-1", event.BillID)
		}
		if event.At == 0 {
			t.Error("expected At to be stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestHub_TopicIsolation(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe(TopicBillCreated)
	defer cancel()

	hub.Publish(Event{Topic: TopicPaymentReceived, BillID: "bill-1"})

	select {
	case event := <-ch:
		t.Errorf("unexpected event on other topic: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe(TopicBillPaid)
	cancel()

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}

	// Publishing after cancel must not panic or deliver.
	hub.Publish(Event{Topic: TopicBillPaid, BillID: "bill-2"})
}

func TestHub_FullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe(TopicBillPaid)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(Event{Topic: TopicBillPaid, BillID: "bill"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	_ = ch
}
