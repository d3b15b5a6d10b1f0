package lanes

import (
	"testing"

	"github.com/legionsim/core/internal/idcode"
)

func TestLaunchStepOrdersByArrival(t *testing.T) {
	l := New()
	dst := idcode.MakeCoord(0, 0)
	src := idcode.MakeCoord(5, 0)

	l.Launch(Packet{Item: 1, Src: src, Dst: dst, Arrival: 10}, 0)
	l.Launch(Packet{Item: 2, Src: src, Dst: dst, Arrival: 5}, 0)
	l.Launch(Packet{Item: 3, Src: src, Dst: dst, Arrival: 8}, 0)

	due := l.Step(dst, 9)
	if len(due) != 2 {
		t.Fatalf("Step(now=9) returned %d packets, want 2", len(due))
	}
	if due[0].Item != 2 || due[1].Item != 3 {
		t.Fatalf("Step did not return packets in arrival order: %+v", due)
	}

	remaining := l.Pending(dst)
	if len(remaining) != 1 || remaining[0].Item != 1 {
		t.Fatalf("Pending after Step = %+v, want one packet with Item=1", remaining)
	}
}

func TestLaunchComputesArrivalFromTravel(t *testing.T) {
	l := New()
	src := idcode.MakeCoord(0, 0)
	dst := idcode.MakeCoord(10, 0)

	l.Launch(Packet{Item: 1, Src: src, Dst: dst, Speed: 2}, 100)

	due := l.Step(dst, 100+Travel(2, src, dst))
	if len(due) != 1 {
		t.Fatalf("expected packet to arrive by computed travel time, got %d due", len(due))
	}
}

func TestStepEmptyCoordReturnsNil(t *testing.T) {
	l := New()
	if due := l.Step(idcode.MakeCoord(1, 1), 100); due != nil {
		t.Fatalf("Step on empty coord = %v, want nil", due)
	}
}

func TestAllReturnsEveryInFlightPacket(t *testing.T) {
	l := New()
	a := idcode.MakeCoord(0, 0)
	b := idcode.MakeCoord(1, 0)

	l.Launch(Packet{Item: 1, Dst: a, Arrival: 5}, 0)
	l.Launch(Packet{Item: 2, Dst: b, Arrival: 5}, 0)
	l.Launch(Packet{Item: 3, Dst: b, Arrival: 6}, 0)

	all := l.All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d packets, want 3", len(all))
	}
	if got := l.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
}

func TestSectorDistTravelZeroSpeedTreatedAsOne(t *testing.T) {
	src := idcode.MakeCoord(0, 0)
	dst := idcode.MakeCoord(3, 4)
	if got, want := Travel(0, src, dst), Travel(1, src, dst); got != want {
		t.Fatalf("Travel(speed=0) = %d, want same as Travel(speed=1) = %d", got, want)
	}
}

// spec.md §8: for every in-flight packet, arrival_tick > now. A packet
// launched toward its own coordinate (dist == 0, e.g. a port with no
// Target) must still take at least one tick, or it would be dequeued by
// the very Step call that follows its own Launch within the same
// world.Step.
func TestTravelNeverReturnsZeroEvenAtZeroDistance(t *testing.T) {
	same := idcode.MakeCoord(7, 7)
	if got := Travel(5, same, same); got < 1 {
		t.Fatalf("Travel(same coord) = %d, want >= 1", got)
	}
}

// Sub-speed distances must round up, not truncate: a distance smaller
// than speed still costs a full tick rather than arriving instantly.
func TestTravelRoundsUpPartialTicks(t *testing.T) {
	src := idcode.MakeCoord(0, 0)
	dst := idcode.MakeCoord(3, 0)
	if got := Travel(10, src, dst); got != 1 {
		t.Fatalf("Travel(dist=3, speed=10) = %d, want 1 (ceil(3/10))", got)
	}
}

func TestLaunchedPacketArrivesAfterNow(t *testing.T) {
	l := New()
	coord := idcode.MakeCoord(2, 2)
	now := int64(50)

	l.Launch(Packet{Item: 1, Src: coord, Dst: coord, Speed: 3}, now)

	if due := l.Step(coord, now); due != nil {
		t.Fatalf("Step(now) delivered a packet launched at now: %+v", due)
	}
	if due := l.Step(coord, now+1); len(due) != 1 {
		t.Fatalf("Step(now+1) = %d due, want 1", len(due))
	}
}
