package commerce

import (
	"errors"
	"fmt"
	"testing"
)

func TestWebhookLog_EvictsOldestAtCapacity(t *testing.T) {
	log := NewWebhookLog(3)

	for i := 0; i < 5; i++ {
		log.Record(WebhookRecord{EventID: fmt.Sprintf("evt_%d", i)})
	}

	recent := log.Recent()
	if len(recent) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(recent))
	}
	if recent[0].EventID != "evt_2" || recent[2].EventID != "evt_4" {
		t.Errorf("Expected oldest entries evicted, got %s..%s", recent[0].EventID, recent[2].EventID)
	}
}

func TestWebhookLog_SetOutcome(t *testing.T) {
	log := NewWebhookLog(3)
	log.Record(WebhookRecord{EventID: "evt_1"})
	log.Record(WebhookRecord{EventID: "evt_2"})

	log.SetOutcome("evt_1", nil)
	log.SetOutcome("evt_2", errors.New("order not found"))

	recent := log.Recent()
	if !recent[0].Handled || recent[0].Error != "" {
		t.Errorf("Expected evt_1 handled cleanly, got %+v", recent[0])
	}
	if recent[1].Handled || recent[1].Error != "order not found" {
		t.Errorf("Expected evt_2 to keep its error, got %+v", recent[1])
	}
}

func TestWebhookLog_RecentReturnsCopy(t *testing.T) {
	log := NewWebhookLog(3)
	log.Record(WebhookRecord{EventID: "evt_1"})

	recent := log.Recent()
	recent[0].EventID = "mutated"

	if log.Recent()[0].EventID != "evt_1" {
		t.Error("Expected Recent to return a copy, not the backing slice")
	}
}
