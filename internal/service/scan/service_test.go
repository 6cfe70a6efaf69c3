package scan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/btpass/backend/internal/domain"
	"github.com/btpass/backend/internal/token"
	"github.com/btpass/backend/pkg/ctxutil"
)

const testPassphrase = "scan-service-test-passphrase"

// newTestService creates a Service with a real codec, the given mocks and a
// default logger.
func newTestService(t *testing.T, store *localStoreMock, ledger *remoteLedgerMock, online bool) *Service {
	t.Helper()
	return &Service{
		codec:      token.New(testPassphrase),
		store:      store,
		ledger:     ledger,
		network:    &connectivityStub{online: online},
		log:        slog.Default(),
		attemptTTL: defaultAttemptTTL,
	}
}

// encodeToken produces raw QR text the test codec will accept.
func encodeToken(t *testing.T, invitationID uuid.UUID, guestName string) string {
	t.Helper()
	raw, err := token.New(testPassphrase).Encode(invitationID, guestName)
	if err != nil {
		t.Fatalf("encode token: %v", err)
	}
	return raw
}

func operatorCtx(operatorID uuid.UUID) context.Context {
	return ctxutil.WithOperatorID(context.Background(), operatorID)
}

func activeInvitation(id uuid.UUID, groupSize int) *domain.Invitation {
	return &domain.Invitation{
		ID:        id,
		GuestName: "Anna Petrova",
		GroupSize: groupSize,
		Status:    domain.InvitationStatusActive,
	}
}

// ---------------------------------------------------------------------------
// Begin
// ---------------------------------------------------------------------------

func TestBegin_Unauthorized(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &localStoreMock{}, &remoteLedgerMock{}, true)

	_, err := svc.Begin(context.Background(), encodeToken(t, uuid.New(), "x"))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("error: got %v, want ErrUnauthorized", err)
	}
}

func TestBegin_InvalidToken(t *testing.T) {
	t.Parallel()

	ledger := &remoteLedgerMock{}
	svc := newTestService(t, &localStoreMock{}, ledger, true)

	for _, raw := range []string{"", "not a token", "aGVsbG8gd29ybGQ"} {
		_, err := svc.Begin(operatorCtx(uuid.New()), raw)
		if !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("Begin(%q): got %v, want ErrInvalidToken", raw, err)
		}
	}
	if n := len(ledger.FetchInvitationCalls()); n != 0 {
		t.Errorf("FetchInvitation calls: got %d, want 0", n)
	}
}

func TestBegin_OnlineActive(t *testing.T) {
	t.Parallel()

	invID := uuid.New()
	ledger := &remoteLedgerMock{
		FetchInvitationFunc: func(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
			return activeInvitation(id, 4), nil
		},
	}
	svc := newTestService(t, &localStoreMock{}, ledger, true)

	res, err := svc.Begin(operatorCtx(uuid.New()), encodeToken(t, invID, "Anna Petrova"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Online {
		t.Error("result should be online")
	}
	if res.AlreadyUsed {
		t.Error("active invitation flagged as already used")
	}
	if res.Snapshot == nil {
		t.Fatal("snapshot missing for online lookup")
	}
	if res.Snapshot.GroupSize != 4 {
		t.Errorf("snapshot group size: got %d, want 4", res.Snapshot.GroupSize)
	}
	if calls := ledger.FetchInvitationCalls(); len(calls) != 1 || calls[0].ID != invID {
		t.Errorf("FetchInvitation calls: got %v", calls)
	}
}

func TestBegin_OnlineAlreadyUsed(t *testing.T) {
	t.Parallel()

	ledger := &remoteLedgerMock{
		FetchInvitationFunc: func(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
			inv := activeInvitation(id, 2)
			inv.Status = domain.InvitationStatusUsed
			inv.CheckedInCount = 2
			return inv, nil
		},
	}
	svc := newTestService(t, &localStoreMock{}, ledger, true)

	res, err := svc.Begin(operatorCtx(uuid.New()), encodeToken(t, uuid.New(), "x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.AlreadyUsed {
		t.Error("used invitation not flagged for re-admission confirmation")
	}
}

func TestBegin_OnlineNotFound(t *testing.T) {
	t.Parallel()

	ledger := &remoteLedgerMock{
		FetchInvitationFunc: func(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
			return nil, domain.ErrNotFound
		},
	}
	svc := newTestService(t, &localStoreMock{}, ledger, true)
	ctx := operatorCtx(uuid.New())

	_, err := svc.Begin(ctx, encodeToken(t, uuid.New(), "x"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error: got %v, want ErrNotFound", err)
	}

	// The failed attempt must not block the next scan.
	ledger.FetchInvitationFunc = func(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
		return activeInvitation(id, 1), nil
	}
	if _, err := svc.Begin(ctx, encodeToken(t, uuid.New(), "y")); err != nil {
		t.Fatalf("second Begin after not-found: %v", err)
	}
}

func TestBegin_LookupErrorDegradesOffline(t *testing.T) {
	t.Parallel()

	ledger := &remoteLedgerMock{
		FetchInvitationFunc: func(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	}
	svc := newTestService(t, &localStoreMock{}, ledger, true)

	res, err := svc.Begin(operatorCtx(uuid.New()), encodeToken(t, uuid.New(), "Boris Ivanov"))
	if err != nil {
		t.Fatalf("lookup failure must not fail the scan: %v", err)
	}
	if res.Online {
		t.Error("result should degrade to offline")
	}
	if res.Snapshot != nil {
		t.Error("snapshot should be nil when the ledger did not answer")
	}
	if res.Token.GuestName != "Boris Ivanov" {
		t.Errorf("token guest name: got %q", res.Token.GuestName)
	}
}

func TestBegin_OfflineSkipsLedger(t *testing.T) {
	t.Parallel()

	ledger := &remoteLedgerMock{}
	svc := newTestService(t, &localStoreMock{}, ledger, false)

	res, err := svc.Begin(operatorCtx(uuid.New()), encodeToken(t, uuid.New(), "x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Online {
		t.Error("result should be offline")
	}
	if res.Snapshot != nil {
		t.Error("snapshot should be nil offline")
	}
	if n := len(ledger.FetchInvitationCalls()); n != 0 {
		t.Errorf("FetchInvitation calls: got %d, want 0", n)
	}
}

func TestBegin_SecondAttemptRejectedWhilePending(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &localStoreMock{}, &remoteLedgerMock{}, false)
	ctx := operatorCtx(uuid.New())
	raw := encodeToken(t, uuid.New(), "x")

	if _, err := svc.Begin(ctx, raw); err != nil {
		t.Fatalf("first Begin: %v", err)
	}
	if _, err := svc.Begin(ctx, raw); !errors.Is(err, ErrAttemptPending) {
		t.Fatalf("second Begin: got %v, want ErrAttemptPending", err)
	}
}

func TestBegin_StaleAttemptDiscarded(t *testing.T) {
	t.Parallel()

	store := &localStoreMock{
		PutFunc: func(ctx context.Context, rec *domain.ScanRecord) error { return nil },
	}
	svc := newTestService(t, store, &remoteLedgerMock{}, false)
	svc.attemptTTL = 0 // every parked attempt is immediately stale
	ctx := operatorCtx(uuid.New())

	first, err := svc.Begin(ctx, encodeToken(t, uuid.New(), "walked away"))
	if err != nil {
		t.Fatalf("first Begin: %v", err)
	}

	second, err := svc.Begin(ctx, encodeToken(t, uuid.New(), "next guest"))
	if err != nil {
		t.Fatalf("Begin after stale attempt: got %v, want nil", err)
	}
	if second.AttemptID == first.AttemptID {
		t.Fatal("stale attempt was reused instead of discarded")
	}

	// The discarded attempt is gone; only the fresh one can be confirmed.
	if _, err := svc.Confirm(ctx, first.AttemptID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Confirm of discarded attempt: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Confirm(ctx, second.AttemptID); err != nil {
		t.Errorf("Confirm of fresh attempt: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Confirm
// ---------------------------------------------------------------------------

func TestConfirm_UnknownAttempt(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &localStoreMock{}, &remoteLedgerMock{}, false)

	_, err := svc.Confirm(operatorCtx(uuid.New()), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error: got %v, want ErrNotFound", err)
	}
}

func TestConfirm_Offline(t *testing.T) {
	t.Parallel()

	invID := uuid.New()
	operatorID := uuid.New()
	store := &localStoreMock{
		PutFunc: func(ctx context.Context, rec *domain.ScanRecord) error { return nil },
	}
	ledger := &remoteLedgerMock{}
	svc := newTestService(t, store, ledger, false)
	ctx := operatorCtx(operatorID)

	begin, err := svc.Begin(ctx, encodeToken(t, invID, "Carol Lin"))
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	res, err := svc.Confirm(ctx, begin.AttemptID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if !res.PendingSync {
		t.Error("offline admission must be pending sync")
	}
	rec := res.Record
	if rec.Mode != domain.ScanModeOffline {
		t.Errorf("mode: got %s, want OFFLINE", rec.Mode)
	}
	if rec.Decision != domain.ScanDecisionAdmit {
		t.Errorf("decision: got %s, want ADMIT", rec.Decision)
	}
	if rec.AdmitCount != 1 {
		t.Errorf("admit count without snapshot: got %d, want 1", rec.AdmitCount)
	}
	if rec.Synced {
		t.Error("offline record must not be synced")
	}
	if rec.OperatorID != operatorID {
		t.Errorf("operator id: got %s, want %s", rec.OperatorID, operatorID)
	}
	if rec.InvitationID == nil || *rec.InvitationID != invID {
		t.Errorf("invitation id: got %v, want %s", rec.InvitationID, invID)
	}
	if rec.GuestName != "Carol Lin" {
		t.Errorf("guest name: got %q", rec.GuestName)
	}
	if n := len(store.PutCalls()); n != 1 {
		t.Errorf("Put calls: got %d, want 1", n)
	}
	if n := len(ledger.InsertScanCalls()); n != 0 {
		t.Errorf("InsertScan calls: got %d, want 0", n)
	}
}

func TestConfirm_OnlineMirrors(t *testing.T) {
	t.Parallel()

	invID := uuid.New()
	store := &localStoreMock{
		PutFunc:        func(ctx context.Context, rec *domain.ScanRecord) error { return nil },
		MarkSyncedFunc: func(ctx context.Context, id uuid.UUID) error { return nil },
	}
	ledger := &remoteLedgerMock{
		FetchInvitationFunc: func(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
			inv := activeInvitation(id, 3)
			inv.CheckedInCount = 2
			return inv, nil
		},
		InsertScanFunc: func(ctx context.Context, rec *domain.ScanRecord) error { return nil },
		UpdateCheckInFunc: func(ctx context.Context, id uuid.UUID, status domain.InvitationStatus, checkedInCount int) error {
			return nil
		},
	}
	svc := newTestService(t, store, ledger, true)
	ctx := operatorCtx(uuid.New())

	begin, err := svc.Begin(ctx, encodeToken(t, invID, "x"))
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	res, err := svc.Confirm(ctx, begin.AttemptID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if res.PendingSync {
		t.Error("online admission with working ledger should not be pending")
	}
	rec := res.Record
	if rec.Mode != domain.ScanModeOnline {
		t.Errorf("mode: got %s, want ONLINE", rec.Mode)
	}
	if rec.AdmitCount != 3 {
		t.Errorf("admit count: got %d, want group size 3", rec.AdmitCount)
	}
	if !rec.Synced {
		t.Error("record should be synced after a successful mirror")
	}
	if n := len(ledger.InsertScanCalls()); n != 1 {
		t.Errorf("InsertScan calls: got %d, want 1", n)
	}
	updates := ledger.UpdateCheckInCalls()
	if len(updates) != 1 {
		t.Fatalf("UpdateCheckIn calls: got %d, want 1", len(updates))
	}
	if updates[0].Status != domain.InvitationStatusUsed {
		t.Errorf("status: got %s, want USED", updates[0].Status)
	}
	if updates[0].CheckedInCount != 5 {
		t.Errorf("checked-in count: got %d, want 2+3=5", updates[0].CheckedInCount)
	}
	if calls := store.MarkSyncedCalls(); len(calls) != 1 || calls[0].ID != rec.ID {
		t.Errorf("MarkSynced calls: got %v", calls)
	}
}

func TestConfirm_MirrorFailureDoesNotFailAdmission(t *testing.T) {
	t.Parallel()

	store := &localStoreMock{
		PutFunc: func(ctx context.Context, rec *domain.ScanRecord) error { return nil },
	}
	ledger := &remoteLedgerMock{
		FetchInvitationFunc: func(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
			return activeInvitation(id, 2), nil
		},
		InsertScanFunc: func(ctx context.Context, rec *domain.ScanRecord) error {
			return errors.New("write tcp: broken pipe")
		},
	}
	svc := newTestService(t, store, ledger, true)
	ctx := operatorCtx(uuid.New())

	begin, err := svc.Begin(ctx, encodeToken(t, uuid.New(), "x"))
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	res, err := svc.Confirm(ctx, begin.AttemptID)
	if err != nil {
		t.Fatalf("mirror failure must not fail Confirm: %v", err)
	}

	if !res.PendingSync {
		t.Error("failed mirror must leave the record pending sync")
	}
	if res.Record.Synced {
		t.Error("record must stay unsynced after a failed mirror")
	}
	if n := len(store.MarkSyncedCalls()); n != 0 {
		t.Errorf("MarkSynced calls: got %d, want 0", n)
	}
}

func TestConfirm_StoreFailure(t *testing.T) {
	t.Parallel()

	store := &localStoreMock{
		PutFunc: func(ctx context.Context, rec *domain.ScanRecord) error {
			return errors.New("disk I/O error")
		},
	}
	ledger := &remoteLedgerMock{}
	svc := newTestService(t, store, ledger, false)
	ctx := operatorCtx(uuid.New())

	begin, err := svc.Begin(ctx, encodeToken(t, uuid.New(), "x"))
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	_, err = svc.Confirm(ctx, begin.AttemptID)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("error: got %v, want ErrStoreUnavailable", err)
	}
	if n := len(ledger.InsertScanCalls()); n != 0 {
		t.Errorf("InsertScan calls after failed persist: got %d, want 0", n)
	}
}

func TestCancel_FreesTheAttempt(t *testing.T) {
	t.Parallel()

	store := &localStoreMock{}
	svc := newTestService(t, store, &remoteLedgerMock{}, false)
	ctx := operatorCtx(uuid.New())

	begin, err := svc.Begin(ctx, encodeToken(t, uuid.New(), "x"))
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	svc.Cancel(ctx, begin.AttemptID)

	if _, err := svc.Confirm(ctx, begin.AttemptID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Confirm after Cancel: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Begin(ctx, encodeToken(t, uuid.New(), "y")); err != nil {
		t.Fatalf("Begin after Cancel: %v", err)
	}
	if n := len(store.PutCalls()); n != 0 {
		t.Errorf("Put calls: got %d, want 0", n)
	}
}

// TestDuplicateDecodeCallbacks models a camera firing its success callback
// repeatedly for one physical scan: the extras are rejected and exactly one
// record is written.
func TestDuplicateDecodeCallbacks_OneRecord(t *testing.T) {
	t.Parallel()

	store := &localStoreMock{
		PutFunc: func(ctx context.Context, rec *domain.ScanRecord) error { return nil },
	}
	svc := newTestService(t, store, &remoteLedgerMock{}, false)
	ctx := operatorCtx(uuid.New())
	raw := encodeToken(t, uuid.New(), "x")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		attempts []uuid.UUID
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Begin(ctx, raw)
			if err != nil {
				return
			}
			mu.Lock()
			attempts = append(attempts, res.AttemptID)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(attempts) != 1 {
		t.Fatalf("accepted attempts: got %d, want 1", len(attempts))
	}
	if _, err := svc.Confirm(ctx, attempts[0]); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if n := len(store.PutCalls()); n != 1 {
		t.Errorf("Put calls: got %d, want 1", n)
	}
}

// ---------------------------------------------------------------------------
// Mirror
// ---------------------------------------------------------------------------

func TestMirror_InvitationGone(t *testing.T) {
	t.Parallel()

	store := &localStoreMock{
		MarkSyncedFunc: func(ctx context.Context, id uuid.UUID) error { return nil },
	}
	ledger := &remoteLedgerMock{
		InsertScanFunc: func(ctx context.Context, rec *domain.ScanRecord) error { return nil },
		FetchInvitationFunc: func(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
			return nil, domain.ErrNotFound
		},
	}
	svc := newTestService(t, store, ledger, true)

	invID := uuid.New()
	rec := &domain.ScanRecord{
		ID:           uuid.New(),
		InvitationID: &invID,
		OperatorID:   uuid.New(),
		AdmitCount:   2,
		Decision:     domain.ScanDecisionAdmit,
		Mode:         domain.ScanModeOffline,
		GuestName:    "x",
	}
	if err := svc.Mirror(context.Background(), rec); err != nil {
		t.Fatalf("vanished invitation must not fail the mirror: %v", err)
	}
	if !rec.Synced {
		t.Error("record should be synced")
	}
	if n := len(ledger.UpdateCheckInCalls()); n != 0 {
		t.Errorf("UpdateCheckIn calls: got %d, want 0", n)
	}
}

func TestMirror_NoInvitationID(t *testing.T) {
	t.Parallel()

	store := &localStoreMock{
		MarkSyncedFunc: func(ctx context.Context, id uuid.UUID) error { return nil },
	}
	ledger := &remoteLedgerMock{
		InsertScanFunc: func(ctx context.Context, rec *domain.ScanRecord) error { return nil },
	}
	svc := newTestService(t, store, ledger, true)

	rec := &domain.ScanRecord{
		ID:         uuid.New(),
		OperatorID: uuid.New(),
		AdmitCount: 1,
		Decision:   domain.ScanDecisionAdmit,
		Mode:       domain.ScanModeOffline,
		GuestName:  "x",
	}
	if err := svc.Mirror(context.Background(), rec); err != nil {
		t.Fatalf("Mirror: %v", err)
	}
	if n := len(ledger.FetchInvitationCalls()); n != 0 {
		t.Errorf("FetchInvitation calls: got %d, want 0", n)
	}
}

func TestMirror_UpdateFailureLeavesUnsynced(t *testing.T) {
	t.Parallel()

	store := &localStoreMock{}
	ledger := &remoteLedgerMock{
		InsertScanFunc: func(ctx context.Context, rec *domain.ScanRecord) error { return nil },
		FetchInvitationFunc: func(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
			return activeInvitation(id, 1), nil
		},
		UpdateCheckInFunc: func(ctx context.Context, id uuid.UUID, status domain.InvitationStatus, checkedInCount int) error {
			return errors.New("read tcp: connection reset")
		},
	}
	svc := newTestService(t, store, ledger, true)

	invID := uuid.New()
	rec := &domain.ScanRecord{
		ID:           uuid.New(),
		InvitationID: &invID,
		OperatorID:   uuid.New(),
		AdmitCount:   1,
		Decision:     domain.ScanDecisionAdmit,
		Mode:         domain.ScanModeOffline,
		GuestName:    "x",
	}
	if err := svc.Mirror(context.Background(), rec); err == nil {
		t.Fatal("expected error from failed invitation update")
	}
	if rec.Synced {
		t.Error("record must stay unsynced")
	}
	if n := len(store.MarkSyncedCalls()); n != 0 {
		t.Errorf("MarkSynced calls: got %d, want 0", n)
	}
}
