package client

import "testing"

func TestMessageIDsAreSequential(t *testing.T) {
	var a messageIDAllocator
	for want := byte(1); want <= 5; want++ {
		if got := a.Next(); got != want {
			t.Fatalf("Next() = %d, want %d", got, want)
		}
	}
}

func TestMessageIDWrapsSkippingZero(t *testing.T) {
	var a messageIDAllocator
	for i := 0; i < 255; i++ {
		a.Next()
	}
	// 255 ids issued; the cycle ends at 0xFF and must restart at 1.
	if got := a.Next(); got != 1 {
		t.Fatalf("Next() after full cycle = %d, want 1", got)
	}
}

func TestMessageIDNeverZero(t *testing.T) {
	var a messageIDAllocator
	for i := 0; i < 600; i++ {
		if got := a.Next(); got == 0 {
			t.Fatalf("Next() issued 0 on iteration %d", i)
		}
	}
}
