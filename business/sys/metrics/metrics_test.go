package metrics_test

import (
	"expvar"
	"testing"

	"github.com/ardanlabs/powledger/business/sys/metrics"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_AddBlock(t *testing.T) {
	t.Log("Given the need to count mined blocks outside of a request.")
	{
		blocks := expvar.Get("blocks_mined").(*expvar.Int)
		before := blocks.Value()

		metrics.AddBlock(3)
		metrics.AddBlock(4)

		if got := blocks.Value() - before; got != 2 {
			t.Fatalf("\t%s\tShould count every block: got %d", failed, got)
		}
		t.Logf("\t%s\tShould count every block.", success)

		if got := expvar.Get("difficulty").(*expvar.Int).Value(); got != 4 {
			t.Fatalf("\t%s\tShould record the next difficulty: got %d", failed, got)
		}
		t.Logf("\t%s\tShould record the next difficulty.", success)
	}
}
