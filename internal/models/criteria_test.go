package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriteria_Validate(t *testing.T) {
	jan := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		c       Criteria
		wantErr string
	}{
		{
			name: "well-formed",
			c:    Criteria{Start: jan, End: jun, Granularity: Monthly},
		},
		{
			name: "equal bounds",
			c:    Criteria{Start: jan, End: jan},
		},
		{
			name: "zero dates are unbounded",
			c:    Criteria{Granularity: Daily},
		},
		{
			name:    "reversed range",
			c:       Criteria{Start: jun, End: jan},
			wantErr: "after end date",
		},
		{
			name:    "unknown granularity",
			c:       Criteria{Start: jan, End: jun, Granularity: "weekly"},
			wantErr: "unknown granularity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAllOptions(t *testing.T) {
	opts := FilterOptions{
		Cities:         []string{"Lyon", "Paris"},
		Products:       []string{"A", "B"},
		PaymentMethods: []string{"card", "cash"},
		MinDate:        time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		MaxDate:        time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
	}

	c := AllOptions(opts, Monthly)

	assert.Equal(t, opts.MinDate, c.Start)
	assert.Equal(t, opts.MaxDate, c.End)
	assert.Equal(t, opts.Cities, c.Cities)
	assert.Equal(t, opts.Products, c.Products)
	assert.Equal(t, opts.PaymentMethods, c.PaymentMethods)
	assert.Equal(t, Monthly, c.Granularity)
	assert.NoError(t, c.Validate(), "the full-universe criteria is always valid")
}
