package qfield

import (
	"sync"
	"testing"
)

func burstAt(amp float32) Event {
	return BurstEvent("s", Vec2{X: 0.5, Y: 0.5}, amp, 0.1)
}

func TestQueueFIFO(t *testing.T) {
	var q eventQueue
	for i := 0; i < 10; i++ {
		q.push(burstAt(float32(i)))
	}
	got := q.drain(nil)
	if len(got) != 10 {
		t.Fatalf("drained %d events, want 10", len(got))
	}
	for i, ev := range got {
		if ev.Amplitude != float32(i) {
			t.Errorf("event %d has amplitude %v, want %v", i, ev.Amplitude, float32(i))
		}
	}
}

func TestQueueDrainAppendsToScratch(t *testing.T) {
	var q eventQueue
	q.push(burstAt(1))
	scratch := make([]Event, 0, 8)
	scratch = q.drain(scratch)
	if len(scratch) != 1 {
		t.Fatalf("first drain got %d events", len(scratch))
	}
	// Reuse after truncation, the way the tick loop does.
	q.push(burstAt(2))
	scratch = q.drain(scratch[:0])
	if len(scratch) != 1 || scratch[0].Amplitude != 2 {
		t.Fatalf("second drain = %+v", scratch)
	}
}

func TestQueueEmptyDrain(t *testing.T) {
	var q eventQueue
	if got := q.drain(nil); len(got) != 0 {
		t.Fatalf("empty queue drained %d events", len(got))
	}
}

func TestQueueOverflowKeepsNewest(t *testing.T) {
	var q eventQueue
	const total = 300
	for i := 0; i < total; i++ {
		q.push(burstAt(float32(i)))
	}
	got := q.drain(nil)
	if len(got) != eventQueueSize {
		t.Fatalf("drained %d events, want %d", len(got), eventQueueSize)
	}
	// The oldest events were overwritten; the survivors are contiguous and
	// end with the most recent push.
	first := got[0].Amplitude
	if first != float32(total-eventQueueSize) {
		t.Errorf("oldest survivor = %v, want %v", first, total-eventQueueSize)
	}
	if last := got[len(got)-1].Amplitude; last != float32(total-1) {
		t.Errorf("newest survivor = %v, want %v", last, total-1)
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	var q eventQueue
	const producers = 4
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.push(burstAt(float32(p*1000 + i)))
			}
		}(p)
	}
	wg.Wait()

	got := q.drain(nil)
	if len(got) != producers*perProducer {
		t.Fatalf("drained %d events, want %d", len(got), producers*perProducer)
	}
	// Each producer's events must appear in its own emission order.
	last := map[int]int{}
	for _, ev := range got {
		p := int(ev.Amplitude) / 1000
		i := int(ev.Amplitude) % 1000
		if prev, ok := last[p]; ok && i <= prev {
			t.Fatalf("producer %d events out of order: %d after %d", p, i, prev)
		}
		last[p] = i
	}
}
