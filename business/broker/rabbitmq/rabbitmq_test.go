package rabbitmq_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hamidoujand/user-service/business/brokertest"
)

const queueTest = "queue_test"

func TestClient(t *testing.T) {
	client := brokertest.NewTestClient(t, "test_rabbitmqClient")

	if err := client.DeclareQueue(queueTest); err != nil {
		t.Fatalf("expected to declare queue %s: %s", queueTest, err)
	}

	msg := map[string]string{
		"type":   "user.created",
		"userId": "A",
	}
	bs, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshalling msg: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := client.Publish(ctx, queueTest, bs); err != nil {
		t.Fatalf("expected to publish into %s: %s", queueTest, err)
	}

	msgs, err := client.Consumer(queueTest)
	if err != nil {
		t.Fatalf("expected to get delivery channel: %s", err)
	}

	delivery := <-msgs
	if delivery.ContentType != "application/json" {
		t.Errorf("contentType= %s, got %s", "application/json", delivery.ContentType)
	}

	var parsedMsg map[string]string
	if err := json.Unmarshal(delivery.Body, &parsedMsg); err != nil {
		t.Fatalf("expected msg to be parsed into map: %s", err)
	}

	if parsedMsg["userId"] != msg["userId"] {
		t.Errorf("userId= %s, got %s", msg["userId"], parsedMsg["userId"])
	}

	if err := delivery.Ack(false); err != nil {
		t.Errorf("expected to ack delivery: %s", err)
	}

	if client.IsClosed() {
		t.Errorf("expected connection to stay open")
	}
}
