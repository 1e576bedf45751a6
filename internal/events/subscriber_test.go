package events

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
)

func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestNATSSubscriber_ReceivesMessages(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicSecretOrphaned)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	event := SecretOrphaned{TenantID: "acme", KeyID: "ak1", Parameter: "/acme/api-key/gv_api_ak1"}
	if err := pub.Publish(context.Background(), TopicSecretOrphaned, event); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	pub.conn.Flush()

	select {
	case payload := <-ch:
		if len(payload) == 0 {
			t.Fatal("received empty payload")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestNATSSubscriber_Wildcard(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("gridvault.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	for _, topic := range []string{TopicAPIKeyCreated, TopicAPIKeyDeleted, TopicSecretOrphaned, TopicReconcileNeeded} {
		if err := pub.Publish(context.Background(), topic, APIKeyDeleted{TenantID: "acme", KeyID: "ak1"}); err != nil {
			t.Fatalf("Publish(%s): %v", topic, err)
		}
	}
	pub.conn.Flush()

	received := 0
	timeout := time.After(2 * time.Second)
	for received < 4 {
		select {
		case <-ch:
			received++
		case <-timeout:
			t.Fatalf("received %d of 4 messages before timeout", received)
		}
	}
}

func TestNATSSubscriber_CancelClosesChannel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicSecretOrphaned)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel delivered a message after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
