package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clubModel "csesociety_backend/internals/features/clubs/model"
	eventModel "csesociety_backend/internals/features/events/model"
	"csesociety_backend/internals/features/finance/payments/gateway"
	"csesociety_backend/internals/features/finance/payments/model"
)

func initiate(t *testing.T, f *fixture, target Target) *InitiateResult {
	t.Helper()
	res, err := NewInitiator(f.db, f.gw, f.cfg).Initiate(context.Background(), f.user.ID, target)
	require.NoError(t, err)
	return res
}

func successInput(res *InitiateResult) CallbackInput {
	return CallbackInput{
		TargetType:    res.Target.Type,
		TargetID:      res.Target.ID.String(),
		TransactionID: res.TransactionID,
		ValID:         "VAL-" + res.Target.ID.String()[:8],
	}
}

func TestClubPaymentConfirmation(t *testing.T) {
	f := newFixture(t)
	res := initiate(t, f, Target{Type: model.TargetTypeClub, ID: f.club.ClubID})
	f.gw.validated(res.TransactionID, decimal.NewFromInt(100))

	h := NewCallbackHandler(f.db, f.gw, f.cfg)
	out, err := h.HandleSuccess(context.Background(), successInput(res))
	require.NoError(t, err)

	assert.Equal(t, StateConfirmed, out.State)
	assert.Equal(t, "https://app.test/payment/success?target_id="+f.club.ClubID.String()+"&target_type=club", out.RedirectURL)

	var jr clubModel.ClubJoinRequest
	require.NoError(t, f.db.First(&jr, "club_join_request_user_id = ? AND club_join_request_club_id = ?", f.user.ID, f.club.ClubID).Error)
	assert.Equal(t, clubModel.JoinRequestStatusPending, jr.ClubJoinRequestStatus)
	require.NotNil(t, jr.ClubJoinRequestPaymentTransactionID)
	assert.Equal(t, res.TransactionID, *jr.ClubJoinRequestPaymentTransactionID)

	var rec model.PaymentRecord
	require.NoError(t, f.db.First(&rec, "payment_record_transaction_id = ?", res.TransactionID).Error)
	assert.True(t, decimal.NewFromInt(100).Equal(rec.PaymentRecordAmount))
	assert.Equal(t, model.PaymentStatusPaid, rec.PaymentRecordStatus)
	assert.Equal(t, f.user.ID, rec.PaymentRecordUserID)
	assert.Equal(t, model.TargetTypeClub, rec.PaymentRecordTargetType)
	assert.Equal(t, f.club.ClubID, rec.PaymentRecordTargetID)
	assert.Equal(t, "fake", rec.PaymentRecordGateway)
	assert.Equal(t, "BANK123", rec.PaymentRecordMeta["bank_tran_id"])

	assert.Zero(t, f.pendingCount(t))
	// membership is not granted by payment alone
	assert.Zero(t, f.count(t, &clubModel.ClubMember{}, ""))
}

func TestReplayedSuccessIsNoop(t *testing.T) {
	f := newFixture(t)
	res := initiate(t, f, Target{Type: model.TargetTypeClub, ID: f.club.ClubID})
	f.gw.validated(res.TransactionID, decimal.NewFromInt(100))
	h := NewCallbackHandler(f.db, f.gw, f.cfg)

	_, err := h.HandleSuccess(context.Background(), successInput(res))
	require.NoError(t, err)

	out, err := h.HandleSuccess(context.Background(), successInput(res))
	assert.ErrorIs(t, err, ErrDuplicateCallback)
	assert.Equal(t, StateDuplicate, out.State)
	assert.True(t, strings.HasPrefix(out.RedirectURL, "https://app.test/payment/fail"))

	assert.EqualValues(t, 1, f.recordCount(t))
	assert.EqualValues(t, 1, f.count(t, &clubModel.ClubJoinRequest{}, ""))
	assert.Zero(t, f.pendingCount(t))
}

func TestFreeEventPaymentRegistersOnce(t *testing.T) {
	f := newFixture(t)
	res := initiate(t, f, Target{Type: model.TargetTypeEvent, ID: f.free.EventID})
	assert.True(t, res.Amount.IsZero())
	f.gw.validated(res.TransactionID, decimal.Zero)
	h := NewCallbackHandler(f.db, f.gw, f.cfg)

	out, err := h.HandleSuccess(context.Background(), successInput(res))
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, out.State)
	assert.True(t, out.Record.PaymentRecordAmount.IsZero())

	_, err = h.HandleSuccess(context.Background(), successInput(res))
	assert.ErrorIs(t, err, ErrDuplicateCallback)

	assert.EqualValues(t, 1, f.count(t, &eventModel.EventRegistration{},
		"event_registration_event_id = ? AND event_registration_user_id = ?", f.free.EventID, f.user.ID))
	assert.EqualValues(t, 1, f.recordCount(t))
}

func TestSecondPaidAttemptDoesNotDuplicateRegistration(t *testing.T) {
	f := newFixture(t)
	h := NewCallbackHandler(f.db, f.gw, f.cfg)

	for i := 0; i < 2; i++ {
		res := initiate(t, f, Target{Type: model.TargetTypeEvent, ID: f.event.EventID})
		f.gw.validated(res.TransactionID, decimal.NewFromInt(250))
		out, err := h.HandleSuccess(context.Background(), successInput(res))
		require.NoError(t, err)
		assert.Equal(t, StateConfirmed, out.State)
	}

	assert.EqualValues(t, 2, f.recordCount(t))
	assert.EqualValues(t, 1, f.count(t, &eventModel.EventRegistration{}, "event_registration_event_id = ?", f.event.EventID))
}

func TestGatewayReportedAmountIsRecorded(t *testing.T) {
	f := newFixture(t)
	res := initiate(t, f, Target{Type: model.TargetTypeEvent, ID: f.event.EventID})
	f.gw.validated(res.TransactionID, decimal.RequireFromString("249.50"))

	out, err := NewCallbackHandler(f.db, f.gw, f.cfg).HandleSuccess(context.Background(), successInput(res))
	require.NoError(t, err)

	var rec model.PaymentRecord
	require.NoError(t, f.db.First(&rec, "payment_record_id = ?", out.Record.PaymentRecordID).Error)
	assert.Equal(t, "249.50", rec.PaymentRecordAmount.StringFixed(2))
}

func TestNonValidVerificationCreatesNothing(t *testing.T) {
	for _, status := range []string{"FAILED", "CANCELLED", "INVALID_TRANSACTION", "valid", ""} {
		t.Run("status="+status, func(t *testing.T) {
			f := newFixture(t)
			res := initiate(t, f, Target{Type: model.TargetTypeClub, ID: f.club.ClubID})
			f.gw.validation = &gateway.Validation{Status: status, TransactionID: res.TransactionID, Amount: decimal.NewFromInt(100)}

			out, err := NewCallbackHandler(f.db, f.gw, f.cfg).HandleSuccess(context.Background(), successInput(res))
			assert.ErrorIs(t, err, ErrVerificationFailed)
			assert.Equal(t, StateRejected, out.State)
			assert.True(t, strings.HasPrefix(out.RedirectURL, "https://app.test/payment/fail"))

			assert.Zero(t, f.recordCount(t))
			assert.Zero(t, f.count(t, &clubModel.ClubJoinRequest{}, ""))
			assert.EqualValues(t, 1, f.pendingCount(t), "pending row stays for a legitimate retry")
		})
	}
}

func TestValidatorUnreachable(t *testing.T) {
	f := newFixture(t)
	res := initiate(t, f, Target{Type: model.TargetTypeEvent, ID: f.event.EventID})
	f.gw.validateErr = errors.New("dial tcp: i/o timeout")

	out, err := NewCallbackHandler(f.db, f.gw, f.cfg).HandleSuccess(context.Background(), successInput(res))
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Equal(t, StateRejected, out.State)
	assert.Zero(t, f.recordCount(t))
	assert.Zero(t, f.count(t, &eventModel.EventRegistration{}, ""))
	assert.EqualValues(t, 1, f.pendingCount(t))
}

func TestValidatedTransactionMustMatch(t *testing.T) {
	f := newFixture(t)
	res := initiate(t, f, Target{Type: model.TargetTypeClub, ID: f.club.ClubID})
	f.gw.validated("CLUB_someone_else", decimal.NewFromInt(100))

	_, err := NewCallbackHandler(f.db, f.gw, f.cfg).HandleSuccess(context.Background(), successInput(res))
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Zero(t, f.recordCount(t))
	assert.EqualValues(t, 1, f.pendingCount(t))
}

func TestCallbackTargetTypeMustMatch(t *testing.T) {
	f := newFixture(t)
	res := initiate(t, f, Target{Type: model.TargetTypeClub, ID: f.club.ClubID})
	f.gw.validated(res.TransactionID, decimal.NewFromInt(100))

	in := successInput(res)
	in.TargetType = model.TargetTypeEvent
	_, err := NewCallbackHandler(f.db, f.gw, f.cfg).HandleSuccess(context.Background(), in)
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Empty(t, f.gw.validations)
	assert.Zero(t, f.recordCount(t))
}

func TestOrphanedCallback(t *testing.T) {
	f := newFixture(t)
	h := NewCallbackHandler(f.db, f.gw, f.cfg)

	out, err := h.HandleSuccess(context.Background(), CallbackInput{
		TargetType:    model.TargetTypeClub,
		TargetID:      f.club.ClubID.String(),
		TransactionID: "CLUB_unknown",
		ValID:         "VAL1",
	})
	assert.ErrorIs(t, err, ErrOrphanedTransaction)
	assert.Equal(t, StateOrphaned, out.State)
	assert.Equal(t, "https://app.test/payment/fail?target_id="+f.club.ClubID.String()+"&target_type=club", out.RedirectURL)
	assert.Empty(t, f.gw.validations)

	out, err = h.HandleSuccess(context.Background(), CallbackInput{})
	assert.ErrorIs(t, err, ErrOrphanedTransaction)
	assert.Equal(t, "https://app.test/payment/fail", out.RedirectURL)

	assert.Zero(t, f.recordCount(t))
}

func TestConcurrentSuccessCallbacksConfirmOnce(t *testing.T) {
	f := newFixture(t)
	res := initiate(t, f, Target{Type: model.TargetTypeEvent, ID: f.event.EventID})
	f.gw.validated(res.TransactionID, decimal.NewFromInt(250))
	h := NewCallbackHandler(f.db, f.gw, f.cfg)

	const n = 6
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		states = map[State]int{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, _ := h.HandleSuccess(context.Background(), successInput(res))
			mu.Lock()
			states[out.State]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, states[StateConfirmed])
	assert.Equal(t, n-1, states[StateDuplicate])
	assert.EqualValues(t, 1, f.recordCount(t))
	assert.EqualValues(t, 1, f.count(t, &eventModel.EventRegistration{}, ""))
	assert.Zero(t, f.pendingCount(t))
}

func TestFailAndCancelLeaveLedgerAlone(t *testing.T) {
	f := newFixture(t)
	res := initiate(t, f, Target{Type: model.TargetTypeClub, ID: f.club.ClubID})
	h := NewCallbackHandler(f.db, f.gw, f.cfg)

	out := h.HandleFailure(context.Background(), successInput(res))
	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, "https://app.test/payment/fail?target_id="+f.club.ClubID.String()+"&target_type=club", out.RedirectURL)

	out = h.HandleCancel(context.Background(), successInput(res))
	assert.Equal(t, StateCancelled, out.State)
	assert.Equal(t, "https://app.test/payment/cancel?target_id="+f.club.ClubID.String()+"&target_type=club", out.RedirectURL)

	assert.Zero(t, f.recordCount(t))
	assert.EqualValues(t, 1, f.pendingCount(t))
	assert.Empty(t, f.gw.validations)
}

func TestClientURLDropsNonUUIDTarget(t *testing.T) {
	h := NewCallbackHandler(nil, nil, testPaymentConfig())
	assert.Equal(t, "https://app.test/payment/fail?target_type=event", h.clientURL(PageFail, model.TargetTypeEvent, "<script>"))
}

func TestDuplicateLookupFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Migrator().DropTable(&model.PaymentRecord{}))

	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	h := NewCallbackHandler(f.db, f.gw, f.cfg)
	out, err := h.HandleSuccess(context.Background(), CallbackInput{TargetType: model.TargetTypeClub, TransactionID: "CLUB_gone"})
	assert.ErrorIs(t, err, ErrOrphanedTransaction)
	assert.Equal(t, StateOrphaned, out.State)
	assert.Contains(t, logs.String(), "[ERROR] duplicate lookup tran_id=CLUB_gone")
}
