package models

import (
	"fmt"
	"time"
)

// Criteria is the full filter state of the dashboard control surface:
// an inclusive calendar-date range, three categorical selections, and the
// time-bucket granularity for the revenue series.
//
// A zero Start or End leaves that side of the range unbounded. An empty
// selection slice means "match nothing", not "match everything"; callers
// that want the unfiltered dataset pass the full option universes.
type Criteria struct {
	Start          time.Time
	End            time.Time
	Cities         []string
	Products       []string
	PaymentMethods []string
	Granularity    Granularity
}

// Validate reports boundary errors: a reversed date range or an unknown
// granularity. The filter engine itself tolerates both (a reversed range
// simply matches nothing), but handlers reject them up front.
func (c Criteria) Validate() error {
	if !c.Start.IsZero() && !c.End.IsZero() && c.Start.After(c.End) {
		return fmt.Errorf("start date %s is after end date %s",
			c.Start.Format(DateLayout), c.End.Format(DateLayout))
	}
	if !c.Granularity.valid() {
		return fmt.Errorf("unknown granularity %q", string(c.Granularity))
	}
	return nil
}

// AllOptions returns the criteria that selects the entire dataset: full
// option universes and the dataset's own date bounds.
func AllOptions(opts FilterOptions, g Granularity) Criteria {
	return Criteria{
		Start:          opts.MinDate,
		End:            opts.MaxDate,
		Cities:         opts.Cities,
		Products:       opts.Products,
		PaymentMethods: opts.PaymentMethods,
		Granularity:    g,
	}
}
