package sim

import (
	"testing"

	"github.com/milk9111/vrcam/host"
)

func TestHandleStoreLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var s handleStore
			hs := make([]host.Handle, 0, c.create)
			for i := 0; i < c.create; i++ {
				h := s.create()
				if !h.Valid() || !s.alive(h) {
					t.Fatalf("new handle %s not alive", h)
				}
				hs = append(hs, h)
			}
			if c.destroyIndex < 0 {
				return
			}
			h := hs[c.destroyIndex]
			if !s.destroy(h) {
				t.Fatalf("destroy should succeed for a live handle")
			}
			if s.alive(h) {
				t.Fatalf("handle alive after destroy")
			}
			if s.destroy(h) {
				t.Fatalf("second destroy should fail")
			}

			reused := s.create()
			if handleID(reused) != handleID(h) {
				t.Fatalf("slot %d not reused, got %d", handleID(h), handleID(reused))
			}
			if reused == h {
				t.Fatalf("reused slot returned the stale handle %s", reused)
			}
			if s.alive(h) {
				t.Fatalf("stale handle alive after slot reuse")
			}
		})
	}
}

func TestHandleStoreRejectsForeignHandles(t *testing.T) {
	var s handleStore
	s.create()
	for _, h := range []host.Handle{0, 2, makeHandle(1, 7)} {
		if s.alive(h) {
			t.Fatalf("handle %s should not be alive", h)
		}
	}
}
