//go:build unit

package depositcase_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"rental-ledger/internal/domain/depositcase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)

func newCase(t *testing.T, requested int64) *depositcase.DepositCase {
	t.Helper()
	c, err := depositcase.New(depositcase.NewParams{
		PaymentID:       uuid.New(),
		BookingID:       uuid.New(),
		HostID:          uuid.New(),
		RenterID:        uuid.New(),
		RequestedAmount: requested,
		Reason:          "  scratched bumper  ",
	}, now)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	c := newCase(t, 5000)
	assert.Equal(t, depositcase.StatusOpen, c.Status())
	assert.Equal(t, "scratched bumper", c.Reason())

	_, err := depositcase.New(depositcase.NewParams{RequestedAmount: 0, Reason: "x"}, now)
	assert.ErrorIs(t, err, depositcase.ErrInvalidAmount)
	_, err = depositcase.New(depositcase.NewParams{RequestedAmount: 10, Reason: " "}, now)
	assert.ErrorIs(t, err, depositcase.ErrReasonRequired)
}

func TestNewReasonLength(t *testing.T) {
	tests := []struct {
		name      string
		reason    string
		wantRunes int
		wantLast  rune
	}{
		{name: "上限以内のマルチバイトはそのまま", reason: "a" + strings.Repeat("傷", 1000), wantRunes: 1001, wantLast: '傷'},
		{name: "上限超過は文字単位で切り詰め", reason: "a" + strings.Repeat("傷", 2500), wantRunes: 2000, wantLast: '傷'},
		{name: "ASCIIの上限超過", reason: strings.Repeat("x", 2001), wantRunes: 2000, wantLast: 'x'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := depositcase.New(depositcase.NewParams{RequestedAmount: 100, Reason: tt.reason}, now)
			require.NoError(t, err)

			reason := c.Reason()
			assert.True(t, utf8.ValidString(reason))
			assert.Equal(t, tt.wantRunes, utf8.RuneCountInString(reason))
			last, _ := utf8.DecodeLastRuneInString(reason)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		decision     depositcase.Status
		amount       int64
		wantRetained int64
		errIs        error
	}{
		{name: "承認は請求額を全額保持", decision: depositcase.StatusApproved, wantRetained: 5000},
		{name: "承認で金額不一致NG", decision: depositcase.StatusApproved, amount: 4000, errIs: depositcase.ErrInvalidResolution},
		{name: "一部承認", decision: depositcase.StatusPartiallyApproved, amount: 2000, wantRetained: 2000},
		{name: "一部承認で全額NG", decision: depositcase.StatusPartiallyApproved, amount: 5000, errIs: depositcase.ErrInvalidResolution},
		{name: "却下", decision: depositcase.StatusRejected, wantRetained: 0},
		{name: "却下で金額指定NG", decision: depositcase.StatusRejected, amount: 1, errIs: depositcase.ErrInvalidResolution},
		{name: "不正な決定NG", decision: depositcase.StatusResolved, errIs: depositcase.ErrInvalidDecision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCase(t, 5000)
			retained, err := c.Decide(tt.decision, tt.amount, "reviewed", now)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				assert.True(t, c.Status().IsPending())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRetained, retained)
			assert.Equal(t, tt.decision, c.Status())
		})
	}
}

func TestLifecycle(t *testing.T) {
	c := newCase(t, 5000)

	changed, err := c.StartReview(now)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = c.StartReview(now)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = c.MarkResolved(now)
	assert.ErrorIs(t, err, depositcase.ErrCaseNotDecided)

	_, err = c.Decide(depositcase.StatusPartiallyApproved, 2500, "photos confirm damage", now)
	require.NoError(t, err)
	_, err = c.Decide(depositcase.StatusRejected, 0, "", now)
	assert.ErrorIs(t, err, depositcase.ErrCaseAlreadyDecided)

	changed, err = c.MarkResolved(now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, c.ResolvedAt())
	assert.Equal(t, int64(2500), c.ResolutionAmount())

	_, err = c.Decide(depositcase.StatusRejected, 0, "", now)
	assert.ErrorIs(t, err, depositcase.ErrCaseResolved)
	_, err = c.StartReview(now)
	assert.ErrorIs(t, err, depositcase.ErrCaseResolved)
}
