package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"storefront/models"
)

func TestHydrateEmptyStore(t *testing.T) {
	s := hydrated(newRecordingStore())

	if !s.IsEmpty() {
		t.Fatalf("items = %v, want empty", s.Items())
	}
	if s.Total() != 0 || s.ItemCount() != 0 {
		t.Errorf("total=%d count=%d, want 0 0", s.Total(), s.ItemCount())
	}
}

func TestHydrateNotifiesSubscribers(t *testing.T) {
	kv := newRecordingStore()
	kv.Set(context.Background(), CartKey, `[{"id":"a","title":"A","price":10,"image":"a.jpg","quantity":2}]`)

	s := NewCartStore(kv)
	var seen []int
	s.Subscribe(func(c CartReader) { seen = append(seen, c.ItemCount()) })
	s.Hydrate(context.Background())

	if diff := cmp.Diff([]int{2}, seen); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestHydrateFallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "{broken"},
		{"object", `{"id":"a"}`},
		{"string", `"cart"`},
		{"empty string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newRecordingStore()
			kv.Set(context.Background(), CartKey, tt.payload)

			s := hydrated(kv)
			if !s.IsEmpty() {
				t.Errorf("items = %v, want empty", s.Items())
			}
		})
	}
}

func TestHydrateRepairsEntries(t *testing.T) {
	kv := newRecordingStore()
	kv.Set(context.Background(), CartKey, `[
		{"id":"a","title":"A","price":10,"image":"a.jpg","quantity":1},
		{"id":"b","title":"B","price":5,"quantity":3},
		{"id":"c","title":"C","price":"cheap","quantity":1},
		{"title":"no id","price":1,"quantity":1},
		{"id":"d","title":"D","price":7,"quantity":0},
		{"id":"a","title":"A","price":10,"image":"a.jpg","quantity":2}
	]`)

	s := hydrated(kv, WithDefaultImage("default.jpg"))

	want := []models.LineItem{
		{ID: "a", Title: "A", Price: 10, Image: "a.jpg", Quantity: 3},
		{ID: "b", Title: "B", Price: 5, Image: "default.jpg", Quantity: 3},
	}
	if diff := cmp.Diff(want, s.Items()); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestHydrateReadFailureStartsEmpty(t *testing.T) {
	kv := newRecordingStore()
	kv.Set(context.Background(), CartKey, `[{"id":"a","title":"A","price":10,"quantity":1}]`)
	kv.failGet = true

	s := hydrated(kv)
	if !s.IsEmpty() {
		t.Errorf("items = %v, want empty", s.Items())
	}
}

func TestAddItemMerges(t *testing.T) {
	ctx := context.Background()
	s := hydrated(newRecordingStore())

	s.AddItem(ctx, "p1", "Widget", 100, "")
	s.AddItem(ctx, "p1", "Widget", 100, "")

	want := []models.LineItem{{ID: "p1", Title: "Widget", Price: 100, Image: DefaultImage, Quantity: 2}}
	if diff := cmp.Diff(want, s.Items()); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if s.Total() != 200 {
		t.Errorf("total = %d, want 200", s.Total())
	}
}

func TestAddItemKeepsFirstSnapshot(t *testing.T) {
	ctx := context.Background()
	s := hydrated(newRecordingStore())

	s.AddItem(ctx, "p1", "Widget", 100, "w.jpg")
	s.AddItem(ctx, "p1", "Renamed", 999, "other.jpg")

	want := []models.LineItem{{ID: "p1", Title: "Widget", Price: 100, Image: "w.jpg", Quantity: 2}}
	if diff := cmp.Diff(want, s.Items()); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestAddItemAnnounces(t *testing.T) {
	ctx := context.Background()
	a := &announcements{}
	s := hydrated(newRecordingStore(), WithAnnouncer(a))

	s.AddItem(ctx, "p1", "Лежанка", 100, "")
	s.IncrementQuantity(ctx, "p1")
	s.RemoveItem(ctx, "p1")

	want := []string{"Лежанка добавлен в корзину"}
	if diff := cmp.Diff(want, a.all()); diff != "" {
		t.Errorf("announcements mismatch (-want +got):\n%s", diff)
	}
}

func TestAddItemCustomMessage(t *testing.T) {
	a := &announcements{}
	s := hydrated(newRecordingStore(), WithAnnouncer(a), WithAddedMessage("В корзине: %s"))

	s.AddItem(context.Background(), "p1", "Мышка", 100, "")

	if got := a.all(); len(got) != 1 || got[0] != "В корзине: Мышка" {
		t.Errorf("announcements = %v", got)
	}
}

func TestRemoveThenAbsent(t *testing.T) {
	ctx := context.Background()
	s := hydrated(newRecordingStore())
	s.AddItem(ctx, "p1", "Widget", 100, "")
	s.AddItem(ctx, "p2", "Gadget", 40, "")

	s.RemoveItem(ctx, "p1")
	total, count := s.Total(), s.ItemCount()
	s.RemoveItem(ctx, "p1")

	if s.Total() != total || s.ItemCount() != count {
		t.Errorf("second remove changed totals: %d/%d -> %d/%d", total, count, s.Total(), s.ItemCount())
	}
	if total != 40 || count != 1 {
		t.Errorf("total=%d count=%d, want 40 1", total, count)
	}
}

func TestUpdateQuantityFloor(t *testing.T) {
	for _, q := range []int{0, -5} {
		ctx := context.Background()
		s := hydrated(newRecordingStore())
		s.AddItem(ctx, "p1", "Widget", 100, "")

		if err := s.UpdateQuantity(ctx, "p1", q); err != nil {
			t.Fatalf("UpdateQuantity(%d): %v", q, err)
		}
		if !s.IsEmpty() {
			t.Errorf("UpdateQuantity(%d) left %v", q, s.Items())
		}
	}
}

func TestUpdateQuantitySetsAbsolute(t *testing.T) {
	ctx := context.Background()
	s := hydrated(newRecordingStore())
	s.AddItem(ctx, "p1", "Widget", 100, "")

	s.UpdateQuantity(ctx, "p1", 7)

	if s.ItemCount() != 7 || s.Total() != 700 {
		t.Errorf("count=%d total=%d, want 7 700", s.ItemCount(), s.Total())
	}
}

func TestUpdateQuantityNeverCreates(t *testing.T) {
	ctx := context.Background()
	s := hydrated(newRecordingStore())

	s.UpdateQuantity(ctx, "ghost", 3)

	if !s.IsEmpty() {
		t.Errorf("items = %v, want empty", s.Items())
	}
}

func TestIncrementDecrement(t *testing.T) {
	ctx := context.Background()
	s := hydrated(newRecordingStore())
	s.AddItem(ctx, "p1", "Widget", 100, "")

	s.IncrementQuantity(ctx, "p1")
	s.IncrementQuantity(ctx, "p1")
	if s.ItemCount() != 3 {
		t.Fatalf("count = %d, want 3", s.ItemCount())
	}

	s.DecrementQuantity(ctx, "p1")
	s.DecrementQuantity(ctx, "p1")
	s.DecrementQuantity(ctx, "p1")
	if !s.IsEmpty() {
		t.Errorf("decrement to zero left %v", s.Items())
	}
}

func TestStepOnAbsentIDDoesNothing(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingStore()
	s := hydrated(kv)
	notified := 0
	s.Subscribe(func(CartReader) { notified++ })

	s.IncrementQuantity(ctx, "ghost")
	s.DecrementQuantity(ctx, "ghost")

	if kv.setCount() != 0 || notified != 0 {
		t.Errorf("sets=%d notified=%d, want 0 0", kv.setCount(), notified)
	}
}

func TestEveryMutationPersists(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingStore()
	s := hydrated(kv)

	s.AddItem(ctx, "a", "A", 50, "a.jpg")
	s.AddItem(ctx, "b", "B", 30, "b.jpg")
	s.IncrementQuantity(ctx, "a")

	want := `[{"id":"a","title":"A","price":50,"image":"a.jpg","quantity":2},{"id":"b","title":"B","price":30,"image":"b.jpg","quantity":1}]`
	if got := kv.persisted(); got != want {
		t.Errorf("persisted = %s\nwant %s", got, want)
	}
	if kv.setCount() != 3 {
		t.Errorf("sets = %d, want 3", kv.setCount())
	}
}

func TestPersistFailureLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingStore()
	s := hydrated(kv)
	s.AddItem(ctx, "p1", "Widget", 100, "")
	before := s.Items()

	notified := 0
	s.Subscribe(func(CartReader) { notified++ })
	kv.setFailing(true)

	err := s.AddItem(ctx, "p2", "Gadget", 40, "")
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("err = %v, want %v", err, errStoreDown)
	}
	if diff := cmp.Diff(before, s.Items()); diff != "" {
		t.Errorf("items changed (-want +got):\n%s", diff)
	}
	if notified != 0 {
		t.Errorf("notified = %d, want 0", notified)
	}
}

func TestRoundTripPersistence(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d"}

	for run := 0; run < 20; run++ {
		kv := newRecordingStore()
		s := hydrated(kv)

		for step := 0; step < 30; step++ {
			id := ids[rng.Intn(len(ids))]
			switch rng.Intn(5) {
			case 0, 1:
				s.AddItem(ctx, id, "T-"+id, 10+rng.Intn(90), "")
			case 2:
				s.RemoveItem(ctx, id)
			case 3:
				s.UpdateQuantity(ctx, id, rng.Intn(6)-1)
			case 4:
				s.DecrementQuantity(ctx, id)
			}
		}

		fresh := hydrated(kv)
		if diff := cmp.Diff(s.Items(), fresh.Items()); diff != "" {
			t.Fatalf("run %d: rehydrated cart differs (-want +got):\n%s", run, diff)
		}
	}
}

func TestTotalsConsistency(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	s := hydrated(newRecordingStore())

	check := func() {
		t.Helper()
		total, count := 0, 0
		for _, item := range s.Items() {
			total += item.Price * item.Quantity
			count += item.Quantity
		}
		if s.Total() != total || s.ItemCount() != count {
			t.Fatalf("total=%d count=%d, recomputed %d %d", s.Total(), s.ItemCount(), total, count)
		}
		if s.IsEmpty() != (s.Len() == 0) {
			t.Fatal("IsEmpty disagrees with Len")
		}
	}

	for i := 0; i < 200; i++ {
		id := string(rune('a' + rng.Intn(5)))
		switch rng.Intn(4) {
		case 0:
			s.AddItem(ctx, id, id, rng.Intn(500), "")
		case 1:
			s.IncrementQuantity(ctx, id)
		case 2:
			s.DecrementQuantity(ctx, id)
		case 3:
			s.UpdateQuantity(ctx, id, rng.Intn(4))
		}
		check()
	}
}

func TestItemsAreIDUniqueAndPositive(t *testing.T) {
	ctx := context.Background()
	s := hydrated(newRecordingStore())
	for i := 0; i < 5; i++ {
		s.AddItem(ctx, "a", "A", 1, "")
		s.AddItem(ctx, "b", "B", 1, "")
		s.DecrementQuantity(ctx, "a")
	}

	seen := map[string]bool{}
	for _, item := range s.Items() {
		if seen[item.ID] {
			t.Errorf("duplicate id %s", item.ID)
		}
		seen[item.ID] = true
		if item.Quantity < 1 {
			t.Errorf("item %s has quantity %d", item.ID, item.Quantity)
		}
	}
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingStore()
	s := hydrated(kv)

	s.AddItem(ctx, "a", "A", 50, "")
	s.AddItem(ctx, "b", "B", 30, "")
	s.AddItem(ctx, "a", "A", 50, "")

	want := []models.LineItem{
		{ID: "a", Title: "A", Price: 50, Image: DefaultImage, Quantity: 2},
		{ID: "b", Title: "B", Price: 30, Image: DefaultImage, Quantity: 1},
	}
	if diff := cmp.Diff(want, s.Items()); diff != "" {
		t.Fatalf("after adds (-want +got):\n%s", diff)
	}
	if s.Total() != 130 || s.ItemCount() != 3 {
		t.Fatalf("total=%d count=%d, want 130 3", s.Total(), s.ItemCount())
	}

	s.UpdateQuantity(ctx, "b", 0)
	if diff := cmp.Diff(want[:1], s.Items()); diff != "" {
		t.Fatalf("after update (-want +got):\n%s", diff)
	}
	if s.Total() != 100 {
		t.Fatalf("total = %d, want 100", s.Total())
	}

	result, err := s.Checkout(ctx)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !result.Confirmed() {
		t.Fatalf("status = %s, want confirmed", result.Status)
	}
	if !s.IsEmpty() {
		t.Errorf("cart not empty after checkout: %v", s.Items())
	}
	if got := kv.persisted(); got != "[]" {
		t.Errorf("persisted = %q, want []", got)
	}
}

func TestCheckoutEmptyIsRejected(t *testing.T) {
	kv := newRecordingStore()
	a := &announcements{}
	sub := &stubSubmitter{}
	s := hydrated(kv, WithAnnouncer(a), WithOrderSubmitter(sub))
	notified := 0
	s.Subscribe(func(CartReader) { notified++ })

	result, err := s.Checkout(context.Background())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.Status != CheckoutRejected || result.Message != ErrMsgCartEmpty {
		t.Errorf("result = %+v, want rejected", result)
	}
	if kv.setCount() != 0 || notified != 0 || len(a.all()) != 0 || len(sub.orders) != 0 {
		t.Errorf("empty checkout had side effects: sets=%d notified=%d announced=%v orders=%d",
			kv.setCount(), notified, a.all(), len(sub.orders))
	}
}

func TestCheckoutConfirmed(t *testing.T) {
	ctx := context.Background()
	placed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a := &announcements{}
	sub := &stubSubmitter{}
	s := hydrated(newRecordingStore(),
		WithAnnouncer(a),
		WithOrderSubmitter(sub),
		WithOwner("visitor-1"),
		WithClock(func() time.Time { return placed }),
	)
	s.AddItem(ctx, "a", "A", 50, "")
	s.AddItem(ctx, "a", "A", 50, "")

	result, err := s.Checkout(ctx)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if result.RedirectTo != "/" || result.RedirectAfter != 500*time.Millisecond {
		t.Errorf("redirect = %s after %s, want / after 500ms", result.RedirectTo, result.RedirectAfter)
	}
	if len(sub.orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(sub.orders))
	}
	order := sub.orders[0]
	if order.ID != result.Order.ID || order.VisitorID != "visitor-1" || order.Total != 100 || order.ItemCount != 2 || !order.PlacedAt.Equal(placed) {
		t.Errorf("order = %+v", order)
	}
	if got := a.all(); got[len(got)-1] != DefaultCheckoutMessage {
		t.Errorf("last announcement = %q, want %q", got[len(got)-1], DefaultCheckoutMessage)
	}
}

func TestCheckoutSubmitFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingStore()
	sub := &stubSubmitter{err: errors.New("broker unavailable")}
	s := hydrated(kv, WithOrderSubmitter(sub))
	s.AddItem(ctx, "a", "A", 50, "")
	persisted := kv.persisted()

	if _, err := s.Checkout(ctx); err == nil {
		t.Fatal("expected checkout error")
	}
	if s.ItemCount() != 1 || kv.persisted() != persisted {
		t.Errorf("cart changed after failed checkout: %v / %s", s.Items(), kv.persisted())
	}
}

func TestCheckoutRetryAfterPersistFailureReusesOrder(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingStore()
	sub := &stubSubmitter{}
	s := hydrated(kv, WithOrderSubmitter(sub))
	s.AddItem(ctx, "a", "A", 50, "")

	kv.setFailing(true)
	if _, err := s.Checkout(ctx); err == nil {
		t.Fatal("expected checkout error")
	}
	if len(sub.orders) != 1 || s.ItemCount() != 1 {
		t.Fatalf("after failed persist: orders=%d items=%v", len(sub.orders), s.Items())
	}

	kv.setFailing(false)
	result, err := s.Checkout(ctx)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(sub.orders) != 1 {
		t.Errorf("orders = %d, want the first submission only", len(sub.orders))
	}
	if result.Order.ID != sub.orders[0].ID {
		t.Errorf("retry order = %s, want %s", result.Order.ID, sub.orders[0].ID)
	}
	if !s.IsEmpty() || kv.persisted() != "[]" {
		t.Errorf("cart after retry = %v / %s", s.Items(), kv.persisted())
	}
}

func TestCheckoutAfterCartChangeSubmitsNewOrder(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingStore()
	sub := &stubSubmitter{}
	s := hydrated(kv, WithOrderSubmitter(sub))
	s.AddItem(ctx, "a", "A", 50, "")

	kv.setFailing(true)
	if _, err := s.Checkout(ctx); err == nil {
		t.Fatal("expected checkout error")
	}
	kv.setFailing(false)
	s.AddItem(ctx, "b", "B", 20, "")

	result, err := s.Checkout(ctx)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(sub.orders) != 2 || result.Order.ID == sub.orders[0].ID {
		t.Fatalf("orders = %+v, want a fresh second order", sub.orders)
	}
	if result.Order.Total != 70 {
		t.Errorf("total = %d, want 70", result.Order.Total)
	}
}

func TestSubscribersInRegistrationOrder(t *testing.T) {
	ctx := context.Background()
	s := hydrated(newRecordingStore())

	var calls []string
	s.Subscribe(func(CartReader) { calls = append(calls, "header") })
	detach := s.Subscribe(func(CartReader) { calls = append(calls, "page") })
	s.Subscribe(func(CartReader) { calls = append(calls, "grid") })

	s.AddItem(ctx, "a", "A", 1, "")
	detach()
	s.RemoveItem(ctx, "a")

	want := []string{"header", "page", "grid", "header", "grid"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSubscriberSeesCommittedState(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingStore()
	s := hydrated(kv)

	var total int
	var persisted string
	s.Subscribe(func(c CartReader) {
		total = c.Total()
		persisted = kv.persisted()
	})
	s.AddItem(ctx, "a", "A", 25, "")

	if total != 25 {
		t.Errorf("subscriber saw total %d, want 25", total)
	}
	if persisted == "" || persisted == "[]" {
		t.Errorf("subscriber ran before persistence: %q", persisted)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := hydrated(newRecordingStore())
	s.AddItem(ctx, "a", "A", 25, "")

	items := s.Items()
	items[0].Quantity = 99

	if s.ItemCount() != 1 {
		t.Errorf("mutating Items() leaked into the store")
	}
}

func TestConcurrentAddsSerialize(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingStore()
	s := hydrated(kv)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddItem(ctx, "a", "A", 1, "")
		}()
	}
	wg.Wait()

	if s.ItemCount() != 50 {
		t.Errorf("count = %d, want 50", s.ItemCount())
	}
	fresh := hydrated(kv)
	if fresh.ItemCount() != 50 {
		t.Errorf("persisted count = %d, want 50", fresh.ItemCount())
	}
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	s := hydrated(newRecordingStore())
	if snap := s.Snapshot(); !snap.Empty || snap.Items == nil {
		t.Errorf("empty snapshot = %+v", snap)
	}

	s.AddItem(ctx, "a", "A", 20, "a.jpg")
	s.AddItem(ctx, "a", "A", 20, "a.jpg")

	want := models.CartSnapshot{
		Items:     []models.LineItem{{ID: "a", Title: "A", Price: 20, Image: "a.jpg", Quantity: 2}},
		Total:     40,
		ItemCount: 2,
	}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
