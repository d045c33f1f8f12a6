package ids

import "testing"

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if len(id) != 26 {
			t.Fatalf("id %q length %d", id, len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestNewConcurrent(t *testing.T) {
	const workers = 8
	done := make(chan string, workers*100)
	for w := 0; w < workers; w++ {
		go func() {
			for i := 0; i < 100; i++ {
				done <- New()
			}
		}()
	}
	seen := make(map[string]bool)
	for i := 0; i < workers*100; i++ {
		id := <-done
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
