package dashboard

import (
	"strings"
	"testing"

	"github.com/savanna-accountancy/portal/internal/api"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	for _, amount := range []float64{0, 12.5, 250} {
		got := Money(amount)
		assert.True(t, strings.HasPrefix(got, "£"), got)
		assert.NotContains(t, got, "GBP")
	}
	assert.Contains(t, Money(12.5), "12.5")
}

func TestStatusLabel(t *testing.T) {
	cases := map[string]string{
		api.StatusDraft:          "Draft",
		api.StatusPendingPayment: "Pending Payment",
		api.StatusInProgress:     "In Progress",
		"":                       "-",
	}
	for in, want := range cases {
		assert.Equal(t, want, StatusLabel(in), in)
	}
}

func TestFormatDate(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2024-03-05T10:00:00Z", "5 Mar 2024"},
		{"2024-03-05T10:00:00.123456+01:00", "5 Mar 2024"},
		{"2024-12-31", "31 Dec 2024"},
		{"2024-12-31T08:15:00", "31 Dec 2024"},
		{"yesterday", "yesterday"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDate(tc.in), tc.in)
	}
}

func TestCountByStatus(t *testing.T) {
	counts := countByStatus([]api.ServiceRequest{
		{Status: api.StatusDraft}, {Status: api.StatusDraft}, {Status: api.StatusCompleted},
	})

	assert.Equal(t, 2, counts[api.StatusDraft])
	assert.Equal(t, 1, counts[api.StatusCompleted])
	assert.Zero(t, counts[api.StatusInProgress])
}
