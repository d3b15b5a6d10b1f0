// Command legion-inspect opens a legion-sim save directory and prints a
// human-readable (or JSON) summary of the latest snapshot: seed, tick,
// star count and abundances, per-owner tech bits, and in-flight lane
// packets.
//
// Adapted from Voskan-arena-cache's cmd/arena-cache-inspect, trading its
// HTTP /debug/arena-cache/snapshot fetch for a direct pkg/persist
// badger read, since a save directory is a file on disk rather than a
// running process to query.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/legionsim/core/pkg/persist"
)

func main() {
	var (
		dir     = flag.String("dir", "", "badger save directory (required)")
		seq     = flag.Uint64("seq", 0, "specific sequence to inspect (0 = head)")
		jsonOut = flag.Bool("json", false, "emit JSON instead of a pretty summary")
	)
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "legion-inspect: -dir is required")
		os.Exit(2)
	}

	store, err := persist.Open(*dir)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	var body []byte
	if *seq == 0 {
		_, body, err = store.Head()
	} else {
		body, err = store.Load(*seq)
	}
	if err != nil {
		fatal(err)
	}
	if body == nil {
		fatal(fmt.Errorf("no snapshot found in %s", *dir))
	}

	snap, err := persist.Decode(body)
	if err != nil {
		fatal(err)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			fatal(err)
		}
		return
	}
	prettyPrint(snap)
}

func prettyPrint(snap persist.Snapshot) {
	fmt.Printf("Seed:  %d\n", snap.Seed)
	fmt.Printf("Tick:  %d\n", snap.Tick)
	fmt.Printf("Stars: %d\n", len(snap.Stars))
	for _, st := range snap.Stars {
		fmt.Printf("  coord=%d class=%d solar_units=%d abundance=%v\n",
			st.Coord, st.Class, st.SolarUnits, st.Abundance)
	}
	fmt.Printf("Tech:  %d owners\n", len(snap.Tech))
	for _, t := range snap.Tech {
		fmt.Printf("  owner=%d bits=%v\n", t.Owner, t.Bits)
	}
	fmt.Printf("Lanes: %d in flight\n", len(snap.Lanes))
	for _, p := range snap.Lanes {
		fmt.Printf("  kind=%d item=%d src=%d dst=%d arrival=%d\n",
			p.Kind, p.Item, p.Src, p.Dst, p.Arrival)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "legion-inspect:", err)
	os.Exit(1)
}
