// Package respond renders the final natural-language summaries spoken to
// the user.
package respond

import (
	"fmt"
	"sort"
	"strings"

	"nextstop/internal/arrivals"
	"nextstop/internal/speech"
	"nextstop/internal/transloc"
)

const maxSpokenArrivals = 5

// ArrivalSummary renders the spoken arrival summary for a stop. Expired
// predictions are dropped, the rest are sorted soonest-first and at most
// five are spoken; the lead sentence counts the spoken arrivals.
func ArrivalSummary(from transloc.Stop, to *transloc.Stop, joined []arrivals.WithRoute, nowEpochSeconds int64) string {
	var upcoming []arrivals.WithRoute
	for _, a := range joined {
		if a.Timestamp > nowEpochSeconds {
			upcoming = append(upcoming, a)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Timestamp < upcoming[j].Timestamp
	})

	var predicate string
	if to == nil {
		predicate = fmt.Sprintf("arriving at %s", from.Name)
	} else {
		predicate = fmt.Sprintf("traveling from %s to %s", from.Name, to.Name)
	}

	if len(upcoming) == 0 {
		return fmt.Sprintf("There are no buses %s.", predicate)
	}

	spoken := upcoming
	if len(spoken) > maxSpokenArrivals {
		spoken = spoken[:maxSpokenArrivals]
	}

	entries := make([]string, len(spoken))
	for i, a := range spoken {
		d := speech.SimplifyDuration(float64(a.Timestamp - nowEpochSeconds))
		entries[i] = fmt.Sprintf("%s in %d %s", a.Route.LongName, d.Count, speech.PluralizeByCount(d.Unit, d.Count))
	}

	n := len(spoken)
	return fmt.Sprintf("The following %d %s %s %s. %s.",
		n, speech.PluralizeByCount("bus", n), speech.PluralizeDo(n), predicate,
		strings.Join(entries, "; "))
}
