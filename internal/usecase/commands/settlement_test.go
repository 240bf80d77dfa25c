//go:build unit

package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/domain/webhook"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/usecase/commands"
	"rental-ledger/internal/usecase/shared"
	"rental-ledger/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func transientErr() error {
	return errs.Mark(errors.New("connection reset"), errs.ErrProviderTransient)
}

func permanentErr() error {
	return errs.Mark(errors.New("card_declined"), errs.ErrProviderPermanent)
}

func TestSweepCaptures(t *testing.T) {
	ctx := context.Background()

	t.Run("期限を過ぎた仮売上を確定する", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(73 * time.Hour))

		h.proc.EXPECT().CapturePayment(gomock.Any(), commands.CaptureParams{
			PaymentID:       p.ID,
			PaymentIntentID: "pi_seed",
			Amount:          50000,
			IdempotencyKey:  "capture:" + p.ID.String(),
		}).Return(&commands.CaptureResult{PaymentIntentID: "pi_seed", ChargeID: "ch_seed"}, nil)

		report, err := h.settlement().SweepCaptures(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Succeeded)
		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.CaptureCaptured, got.CaptureStatus)
		assert.Empty(t, got.LeaseOwner)
	})

	t.Run("期限前の仮売上は対象外", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(71 * time.Hour))

		report, err := h.settlement().SweepCaptures(ctx)

		require.NoError(t, err)
		assert.Equal(t, 0, report.Processed)
		assert.Equal(t, payment.CapturePending, h.store.Payment(p.ID).CaptureStatus)
	})

	t.Run("恒久エラーではオフセッション請求に切り替えて旧オーソリを取り消す", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(73 * time.Hour))

		gomock.InOrder(
			h.proc.EXPECT().CapturePayment(gomock.Any(), gomock.Any()).Return(nil, permanentErr()).Times(1),
			h.proc.EXPECT().ChargeOffSession(gomock.Any(), commands.OffSessionChargeParams{
				PaymentID:        p.ID,
				OriginalIntentID: "pi_seed",
				Amount:           50000,
				Currency:         "eur",
				IdempotencyKey:   "fallback:" + p.ID.String(),
			}).Return(&commands.CaptureResult{PaymentIntentID: "pi_fallback", ChargeID: "ch_fallback"}, nil),
			h.proc.EXPECT().CancelPayment(gomock.Any(), "pi_seed", "void:"+p.ID.String()).Return(nil),
		)

		report, err := h.settlement().SweepCaptures(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Succeeded)
		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.StrategyPlatformTransferFallback, got.Strategy)
		assert.Equal(t, payment.CaptureNotRequired, got.CaptureStatus)
		assert.Equal(t, "pi_fallback", got.PaymentIntentID)
		assert.Equal(t, "ch_fallback", got.ChargeID)
		assert.Equal(t, 1, got.CaptureAttempts)
		assert.Empty(t, h.store.Alerts())
	})

	t.Run("一時エラーが続く場合は失敗を記録してアラートを上げる", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(73 * time.Hour))
		h.proc.EXPECT().CapturePayment(gomock.Any(), gomock.Any()).Return(nil, transientErr()).Times(3)

		report, err := h.settlement().SweepCaptures(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Failed)
		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.CaptureFailed, got.CaptureStatus)
		assert.Equal(t, 3, got.CaptureAttempts)
		assert.Equal(t, payment.StrategyDestinationManualCapture, got.Strategy)

		alerts := h.store.Alerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, shared.AlertCaptureFailed, alerts[0].Kind)
	})

	t.Run("一時エラーが2回続いても3回目で成功すれば確定する", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(73 * time.Hour))
		gomock.InOrder(
			h.proc.EXPECT().CapturePayment(gomock.Any(), gomock.Any()).Return(nil, transientErr()).Times(2),
			h.proc.EXPECT().CapturePayment(gomock.Any(), gomock.Any()).
				Return(&commands.CaptureResult{PaymentIntentID: "pi_seed", ChargeID: "ch_seed"}, nil),
		)

		report, err := h.settlement().SweepCaptures(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Succeeded)
		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.CaptureCaptured, got.CaptureStatus)
		assert.Equal(t, payment.StrategyDestinationManualCapture, got.Strategy)
		assert.Empty(t, got.LeaseOwner)
		assert.Empty(t, h.store.Alerts())
	})

	t.Run("台帳の不変条件を壊す更新は保存せずアラートを上げる", func(t *testing.T) {
		h := newHarness(t)
		_, seeded := h.seedPaid(t, seedOpts{deposit: 30000})
		corrupt := h.store.Payment(seeded.ID)
		corrupt.RefundedAmount = corrupt.TotalCharge() + 1
		h.store.PutPayment(corrupt)
		h.clock.Set(builder.BaseTime.Add(73 * time.Hour))

		report, err := h.settlement().SweepCaptures(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Failed)
		got := h.store.Payment(seeded.ID)
		assert.Equal(t, corrupt.Version, got.Version)
		assert.Equal(t, payment.CapturePending, got.CaptureStatus)
		assert.Empty(t, got.LeaseOwner)

		alerts := h.store.Alerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, shared.AlertInvariantViolation, alerts[0].Kind)
		require.NotNil(t, alerts[0].PaymentID)
		assert.Equal(t, seeded.ID, *alerts[0].PaymentID)
	})
}

func TestSweepPayouts(t *testing.T) {
	ctx := context.Background()

	t.Run("解放時刻を過ぎた支払いをホストへ送金する", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(97 * time.Hour))

		var sent commands.TransferParams
		h.proc.EXPECT().Transfer(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params commands.TransferParams) (string, error) {
				sent = params
				return "tr_1", nil
			})

		eligible, err := h.settlement().SweepPayoutEligibility(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, eligible.Succeeded)
		assert.Equal(t, payment.PayoutEligible, h.store.Payment(p.ID).PayoutStatus)

		transfers, err := h.settlement().SweepTransfers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, transfers.Succeeded)

		want := commands.TransferParams{
			PaymentID:      p.ID,
			Destination:    hostAccount,
			Amount:         17000,
			Currency:       "eur",
			SourceChargeID: "ch_seed",
			TransferGroup:  p.BookingID.String(),
			IdempotencyKey: "transfer:" + p.ID.String(),
		}
		if diff := cmp.Diff(want, sent); diff != "" {
			t.Errorf("transfer params mismatch (-want +got):\n%s", diff)
		}

		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.PayoutTransferred, got.PayoutStatus)
		assert.Equal(t, "tr_1", got.StripeTransferID)
		assert.Equal(t, payment.DepositHeld, got.DepositStatus)
	})

	t.Run("解放時刻前は送金しない", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(95 * time.Hour))

		report, err := h.settlement().SweepPayoutEligibility(ctx)

		require.NoError(t, err)
		assert.Equal(t, 0, report.Processed)
		assert.Equal(t, payment.PayoutPending, h.store.Payment(p.ID).PayoutStatus)
	})

	t.Run("ホストの受取が無効な場合は対象にしない", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.store.AddVerification(shared.VerificationSnapshot{UserID: h.hostID, ConnectedAccountID: hostAccount})
		h.clock.Set(builder.BaseTime.Add(97 * time.Hour))

		report, err := h.settlement().SweepPayoutEligibility(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Skipped)
		assert.Equal(t, payment.PayoutPending, h.store.Payment(p.ID).PayoutStatus)
	})

	t.Run("送金失敗が上限に達すると振込を止めてアラートを上げる", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(97 * time.Hour))
		h.proc.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return("", permanentErr()).Times(3)

		_, err := h.settlement().SweepPayoutEligibility(ctx)
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			report, err := h.settlement().SweepTransfers(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, report.Failed)
			assert.Equal(t, i, h.store.Payment(p.ID).PayoutAttempts)
		}

		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.PayoutBlocked, got.PayoutStatus)
		assert.NotEmpty(t, got.LastError)

		alerts := h.store.Alerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, shared.AlertTransferBlocked, alerts[0].Kind)

		report, err := h.settlement().SweepTransfers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Processed)
	})

	t.Run("送金後の全額返金は送金を取り消す", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(97 * time.Hour))
		h.proc.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return("tr_1", nil)
		h.proc.EXPECT().ReverseTransfer(gomock.Any(), "tr_1", "reversal:"+p.ID.String()).Return("trr_1", nil)

		_, err := h.settlement().SweepPayoutEligibility(ctx)
		require.NoError(t, err)
		_, err = h.settlement().SweepTransfers(ctx)
		require.NoError(t, err)

		_, err = h.deliver(t, webhook.Event{
			ID:             "evt_refund",
			Type:           webhook.ChargeRefunded,
			PaymentID:      p.ID,
			AmountRefunded: 50000,
		})
		require.NoError(t, err)
		assert.Equal(t, payment.PayoutReversalPending, h.store.Payment(p.ID).PayoutStatus)

		report, err := h.settlement().SweepReversals(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Succeeded)
		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.StatusRefunded, got.Status)
		assert.Equal(t, payment.PayoutReversed, got.PayoutStatus)
		assert.Equal(t, "trr_1", got.StripeTransferReversalID)
	})

	t.Run("全体スイープで確定から送金まで進む", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(97 * time.Hour))
		gomock.InOrder(
			h.proc.EXPECT().CapturePayment(gomock.Any(), gomock.Any()).Return(&commands.CaptureResult{ChargeID: "ch_seed"}, nil),
			h.proc.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return("tr_1", nil),
		)

		reports, err := h.settlement().RunAll(ctx)

		require.NoError(t, err)
		require.Len(t, reports, 6)
		assert.Equal(t, commands.StepCapture, reports[0].Step)
		assert.Equal(t, commands.StepReversal, reports[5].Step)

		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.CaptureCaptured, got.CaptureStatus)
		assert.Equal(t, payment.PayoutTransferred, got.PayoutStatus)
	})
}

func TestTransferRaces(t *testing.T) {
	ctx := context.Background()

	eligibleAt := func(t *testing.T, h *harness) *payment.Payment {
		t.Helper()
		_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(97 * time.Hour))
		report, err := h.settlement().SweepPayoutEligibility(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, report.Succeeded)
		return p
	}

	worker := func(h *harness, id string) commands.SettlementCommands {
		settings := h.settings
		settings.WorkerID = id
		return commands.NewSettlementCommands(h.store, h.proc, h.clock, settings)
	}

	t.Run("二つのワーカーが同時に送金しても送金は一回だけ", func(t *testing.T) {
		h := newHarness(t)
		p := eligibleAt(t, h)
		h.proc.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return("tr_1", nil).Times(1)

		workers := []commands.SettlementCommands{worker(h, "worker-a"), worker(h, "worker-b")}
		reports := make([]*commands.SweepReport, len(workers))
		sweepErrs := make([]error, len(workers))
		var wg sync.WaitGroup
		for i, w := range workers {
			wg.Add(1)
			go func(i int, w commands.SettlementCommands) {
				defer wg.Done()
				reports[i], sweepErrs[i] = w.SweepTransfers(ctx)
			}(i, w)
		}
		wg.Wait()

		succeeded := 0
		for i := range workers {
			require.NoError(t, sweepErrs[i])
			assert.Zero(t, reports[i].Failed)
			succeeded += reports[i].Succeeded
		}
		assert.Equal(t, 1, succeeded)

		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.PayoutTransferred, got.PayoutStatus)
		assert.Equal(t, "tr_1", got.StripeTransferID)
	})

	t.Run("送金中は別ワーカーの対象にならない", func(t *testing.T) {
		h := newHarness(t)
		p := eligibleAt(t, h)
		other := worker(h, "worker-b")

		h.proc.EXPECT().Transfer(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, commands.TransferParams) (string, error) {
				report, err := other.SweepTransfers(ctx)
				require.NoError(t, err)
				assert.Zero(t, report.Processed)
				return "tr_1", nil
			}).Times(1)

		report, err := worker(h, "worker-a").SweepTransfers(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Succeeded)
		assert.Equal(t, payment.PayoutTransferred, h.store.Payment(p.ID).PayoutStatus)
	})

	t.Run("取得時の楽観ロック競合では送金せず次のワーカーに譲る", func(t *testing.T) {
		h := newHarness(t)
		p := eligibleAt(t, h)
		h.store.FailNextPaymentUpdates(1)

		lost, err := worker(h, "worker-a").SweepTransfers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, lost.Skipped)
		assert.Equal(t, payment.PayoutEligible, h.store.Payment(p.ID).PayoutStatus)

		h.proc.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return("tr_1", nil).Times(1)
		won, err := worker(h, "worker-b").SweepTransfers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, won.Succeeded)

		again, err := worker(h, "worker-a").SweepTransfers(ctx)
		require.NoError(t, err)
		assert.Zero(t, again.Processed)
		assert.Equal(t, payment.PayoutTransferred, h.store.Payment(p.ID).PayoutStatus)
	})

	t.Run("結果記録時の楽観ロック競合は再試行して二重送金しない", func(t *testing.T) {
		h := newHarness(t)
		p := eligibleAt(t, h)
		h.proc.EXPECT().Transfer(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, commands.TransferParams) (string, error) {
				h.store.FailNextPaymentUpdates(1)
				return "tr_1", nil
			}).Times(1)

		report, err := h.settlement().SweepTransfers(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Succeeded)
		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.PayoutTransferred, got.PayoutStatus)
		assert.Equal(t, "tr_1", got.StripeTransferID)
		assert.Empty(t, h.store.Alerts())
	})
}

func TestPayoutBlockedByDeposit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		block func(t *testing.T, h *harness, id uuid.UUID)
	}{
		{
			name: "保証金の請求中",
			block: func(t *testing.T, h *harness, id uuid.UUID) {
				_, err := h.fileClaim(id, 10000)
				require.NoError(t, err)
			},
		},
		{
			name: "キャンセル返金待ち",
			block: func(t *testing.T, h *harness, id uuid.UUID) {
				p := h.store.Payment(id)
				require.True(t, p.RequestCancellationRefund(h.clock.Now()))
				h.store.PutPayment(p)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name+"は送金に進まない", func(t *testing.T) {
			h := newHarness(t)
			_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
			h.clock.Set(builder.BaseTime.Add(97 * time.Hour))
			_, err := h.settlement().SweepPayoutEligibility(ctx)
			require.NoError(t, err)
			require.Equal(t, payment.PayoutEligible, h.store.Payment(p.ID).PayoutStatus)

			tt.block(t, h, p.ID)
			require.True(t, h.store.Payment(p.ID).DepositStatus.BlocksPayout())

			for _, sweep := range []func(context.Context) (*commands.SweepReport, error){
				h.settlement().SweepPayoutEligibility,
				h.settlement().SweepTransfers,
			} {
				_, err := sweep(ctx)
				require.NoError(t, err)
			}

			got := h.store.Payment(p.ID)
			assert.NotEqual(t, payment.PayoutTransferred, got.PayoutStatus)
			assert.NotEqual(t, payment.PayoutTransferring, got.PayoutStatus)
			assert.Empty(t, got.StripeTransferID)
		})
	}

	t.Run("送金中に保証金が保留になれば送金済みにせず取り戻す", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(97 * time.Hour))
		_, err := h.settlement().SweepPayoutEligibility(ctx)
		require.NoError(t, err)

		h.proc.EXPECT().Transfer(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, commands.TransferParams) (string, error) {
				inFlight := h.store.Payment(p.ID)
				require.True(t, inFlight.RequestCancellationRefund(h.clock.Now()))
				h.store.PutPayment(inFlight)
				return "tr_1", nil
			})

		_, err = h.settlement().SweepTransfers(ctx)
		require.NoError(t, err)

		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.PayoutReversalPending, got.PayoutStatus)
		assert.Equal(t, "tr_1", got.StripeTransferID)
	})
}

func TestSweepDepositWindows(t *testing.T) {
	ctx := context.Background()

	t.Run("請求期間を過ぎた保証金を全額返金する", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(193 * time.Hour))
		h.proc.EXPECT().Refund(gomock.Any(), commands.RefundParams{
			PaymentID:       p.ID,
			PaymentIntentID: "pi_seed",
			Amount:          30000,
			Reason:          "deposit_release",
			IdempotencyKey:  "deposit-refund:" + p.ID.String(),
		}).Return("re_1", nil)

		windows, err := h.settlement().SweepDepositWindows(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, windows.Succeeded)

		settled, err := h.settlement().SweepDepositSettlements(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, settled.Succeeded)

		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.DepositRefunded, got.DepositStatus)
		assert.Equal(t, int64(30000), got.DepositRefundAmount)
		assert.Equal(t, "re_1", got.DepositRefundID)
		assert.False(t, got.DepositSettlementDue())
	})

	t.Run("請求期間内の保証金はそのまま", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(191 * time.Hour))

		report, err := h.settlement().SweepDepositWindows(ctx)

		require.NoError(t, err)
		assert.Equal(t, 0, report.Processed)
		assert.Equal(t, payment.DepositHeld, h.store.Payment(p.ID).DepositStatus)
	})

	t.Run("返金に失敗した場合は次回のスイープで再試行する", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(193 * time.Hour))
		gomock.InOrder(
			h.proc.EXPECT().Refund(gomock.Any(), gomock.Any()).Return("", permanentErr()),
			h.proc.EXPECT().Refund(gomock.Any(), gomock.Any()).Return("re_1", nil),
		)

		_, err := h.settlement().SweepDepositWindows(ctx)
		require.NoError(t, err)

		first, err := h.settlement().SweepDepositSettlements(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Failed)
		assert.NotEmpty(t, h.store.Payment(p.ID).LastError)

		second, err := h.settlement().SweepDepositSettlements(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, second.Succeeded)
		assert.Equal(t, "re_1", h.store.Payment(p.ID).DepositRefundID)
	})

	t.Run("請求済みの保証金は請求期間を過ぎても返金しない", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(150 * time.Hour))
		_, err := h.fileClaim(p.ID, 10000)
		require.NoError(t, err)

		h.clock.Set(builder.BaseTime.Add(193 * time.Hour))
		windows, err := h.settlement().SweepDepositWindows(ctx)
		require.NoError(t, err)
		assert.Zero(t, windows.Succeeded)

		settled, err := h.settlement().SweepDepositSettlements(ctx)
		require.NoError(t, err)
		assert.Zero(t, settled.Processed)

		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.DepositCaseSubmitted, got.DepositStatus)
		assert.Zero(t, got.DepositRefundAmount)
		assert.Empty(t, got.DepositRefundID)
	})

	t.Run("他のワーカーがリース中の精算はリース期限まで対象外", func(t *testing.T) {
		h := newHarness(t)
		_, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(193 * time.Hour))
		_, err := h.settlement().SweepDepositWindows(ctx)
		require.NoError(t, err)

		leased := h.store.Payment(p.ID)
		require.NoError(t, leased.ClaimLease("worker-other", h.clock.Now(), time.Hour))
		h.store.PutPayment(leased)

		held, err := h.settlement().SweepDepositSettlements(ctx)
		require.NoError(t, err)
		assert.Zero(t, held.Processed)

		h.proc.EXPECT().Refund(gomock.Any(), gomock.Any()).Return("re_1", nil)
		h.clock.Add(2 * time.Hour)
		released, err := h.settlement().SweepDepositSettlements(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, released.Succeeded)
		assert.Equal(t, "re_1", h.store.Payment(p.ID).DepositRefundID)
	})
}
