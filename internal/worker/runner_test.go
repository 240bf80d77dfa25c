//go:build unit

package worker_test

import (
	"context"
	"errors"
	"testing"

	"rental-ledger/internal/pkg/config"
	"rental-ledger/internal/usecase/commands"
	"rental-ledger/internal/worker"
	commandsmock "rental-ledger/tests/mock/commands"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type fakeLocker struct {
	held     map[string]bool
	failWith error
	acquired []string
	released []string
}

func (l *fakeLocker) Acquire(_ context.Context, job string) (func(), bool, error) {
	if l.failWith != nil {
		return nil, false, l.failWith
	}
	if l.held[job] {
		return nil, false, nil
	}
	l.acquired = append(l.acquired, job)
	return func() { l.released = append(l.released, job) }, true, nil
}

func report(step string) *commands.SweepReport {
	return &commands.SweepReport{Step: step, Processed: 1, Succeeded: 1}
}

func expectAll(m *commandsmock.MockSettlementCommands) {
	m.EXPECT().SweepCaptures(gomock.Any()).Return(report(commands.StepCapture), nil)
	m.EXPECT().SweepDepositWindows(gomock.Any()).Return(report(commands.StepDepositWindow), nil)
	m.EXPECT().SweepDepositSettlements(gomock.Any()).Return(report(commands.StepDepositSettlement), nil)
	m.EXPECT().SweepPayoutEligibility(gomock.Any()).Return(report(commands.StepPayoutEligibility), nil)
	m.EXPECT().SweepTransfers(gomock.Any()).Return(report(commands.StepTransfer), nil)
	m.EXPECT().SweepReversals(gomock.Any()).Return(report(commands.StepReversal), nil)
}

func TestRunner_RunOnce(t *testing.T) {
	cfg := config.NewTestConfig().Scheduler
	wantOrder := []string{
		commands.StepCapture,
		commands.StepDepositWindow,
		commands.StepDepositSettlement,
		commands.StepPayoutEligibility,
		commands.StepTransfer,
		commands.StepReversal,
	}

	t.Run("全ジョブを依存順に実行しロックを解放する", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		settlement := commandsmock.NewMockSettlementCommands(ctrl)
		expectAll(settlement)
		locker := &fakeLocker{}

		reports := worker.NewRunner(settlement, locker, cfg).RunOnce(context.Background())

		steps := make([]string, 0, len(reports))
		for _, r := range reports {
			steps = append(steps, r.Step)
		}
		assert.Equal(t, wantOrder, steps)
		assert.Equal(t, wantOrder, locker.acquired)
		assert.Equal(t, wantOrder, locker.released)
	})

	t.Run("他ワーカーがロック中のジョブはスキップする", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		settlement := commandsmock.NewMockSettlementCommands(ctrl)
		settlement.EXPECT().SweepCaptures(gomock.Any()).Return(report(commands.StepCapture), nil)
		settlement.EXPECT().SweepDepositWindows(gomock.Any()).Return(report(commands.StepDepositWindow), nil)
		settlement.EXPECT().SweepDepositSettlements(gomock.Any()).Return(report(commands.StepDepositSettlement), nil)
		settlement.EXPECT().SweepPayoutEligibility(gomock.Any()).Return(report(commands.StepPayoutEligibility), nil)
		settlement.EXPECT().SweepReversals(gomock.Any()).Return(report(commands.StepReversal), nil)
		locker := &fakeLocker{held: map[string]bool{commands.StepTransfer: true}}

		reports := worker.NewRunner(settlement, locker, cfg).RunOnce(context.Background())

		assert.Len(t, reports, 5)
		assert.NotContains(t, locker.acquired, commands.StepTransfer)
	})

	t.Run("失敗やパニックしたジョブがあっても後続は実行される", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		settlement := commandsmock.NewMockSettlementCommands(ctrl)
		settlement.EXPECT().SweepCaptures(gomock.Any()).Return(nil, errors.New("db down"))
		settlement.EXPECT().SweepDepositWindows(gomock.Any()).DoAndReturn(func(context.Context) (*commands.SweepReport, error) {
			panic("boom")
		})
		settlement.EXPECT().SweepDepositSettlements(gomock.Any()).Return(report(commands.StepDepositSettlement), nil)
		settlement.EXPECT().SweepPayoutEligibility(gomock.Any()).Return(report(commands.StepPayoutEligibility), nil)
		settlement.EXPECT().SweepTransfers(gomock.Any()).Return(report(commands.StepTransfer), nil)
		settlement.EXPECT().SweepReversals(gomock.Any()).Return(report(commands.StepReversal), nil)
		locker := &fakeLocker{}

		reports := worker.NewRunner(settlement, locker, cfg).RunOnce(context.Background())

		assert.Len(t, reports, 4)
		// Locks are released even for the failed and panicking jobs.
		assert.Equal(t, wantOrder, locker.released)
	})

	t.Run("ロック取得エラー時はジョブを実行しない", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		settlement := commandsmock.NewMockSettlementCommands(ctrl)
		locker := &fakeLocker{failWith: errors.New("redis unavailable")}

		reports := worker.NewRunner(settlement, locker, cfg).RunOnce(context.Background())

		assert.Empty(t, reports)
	})
}

func TestNewScheduler(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := worker.NewRunner(commandsmock.NewMockSettlementCommands(ctrl), &fakeLocker{}, config.NewTestConfig().Scheduler)

	t.Run("秒精度のスケジュールを受け付ける", func(t *testing.T) {
		s, err := worker.NewScheduler(runner, "*/5 * * * * *")
		assert.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("不正なスケジュールはエラー", func(t *testing.T) {
		_, err := worker.NewScheduler(runner, "every five minutes")
		assert.Error(t, err)
	})
}
