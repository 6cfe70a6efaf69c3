package scan

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/btpass/backend/internal/domain"
)

var _ localStore = &localStoreMock{}

type localStoreMock struct {
	PutFunc        func(ctx context.Context, rec *domain.ScanRecord) error
	MarkSyncedFunc func(ctx context.Context, id uuid.UUID) error

	calls struct {
		Put []struct {
			Rec *domain.ScanRecord
		}
		MarkSynced []struct {
			ID uuid.UUID
		}
	}
	lockPut        sync.RWMutex
	lockMarkSynced sync.RWMutex
}

func (mock *localStoreMock) Put(ctx context.Context, rec *domain.ScanRecord) error {
	if mock.PutFunc == nil {
		panic("localStoreMock.PutFunc: method is nil but localStore.Put was just called")
	}
	mock.lockPut.Lock()
	mock.calls.Put = append(mock.calls.Put, struct {
		Rec *domain.ScanRecord
	}{Rec: rec})
	mock.lockPut.Unlock()
	return mock.PutFunc(ctx, rec)
}

func (mock *localStoreMock) PutCalls() []struct {
	Rec *domain.ScanRecord
} {
	mock.lockPut.RLock()
	calls := mock.calls.Put
	mock.lockPut.RUnlock()
	return calls
}

func (mock *localStoreMock) MarkSynced(ctx context.Context, id uuid.UUID) error {
	if mock.MarkSyncedFunc == nil {
		panic("localStoreMock.MarkSyncedFunc: method is nil but localStore.MarkSynced was just called")
	}
	mock.lockMarkSynced.Lock()
	mock.calls.MarkSynced = append(mock.calls.MarkSynced, struct {
		ID uuid.UUID
	}{ID: id})
	mock.lockMarkSynced.Unlock()
	return mock.MarkSyncedFunc(ctx, id)
}

func (mock *localStoreMock) MarkSyncedCalls() []struct {
	ID uuid.UUID
} {
	mock.lockMarkSynced.RLock()
	calls := mock.calls.MarkSynced
	mock.lockMarkSynced.RUnlock()
	return calls
}

var _ remoteLedger = &remoteLedgerMock{}

type remoteLedgerMock struct {
	FetchInvitationFunc func(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)
	InsertScanFunc      func(ctx context.Context, rec *domain.ScanRecord) error
	UpdateCheckInFunc   func(ctx context.Context, id uuid.UUID, status domain.InvitationStatus, checkedInCount int) error

	calls struct {
		FetchInvitation []struct {
			ID uuid.UUID
		}
		InsertScan []struct {
			Rec *domain.ScanRecord
		}
		UpdateCheckIn []struct {
			ID             uuid.UUID
			Status         domain.InvitationStatus
			CheckedInCount int
		}
	}
	lockFetchInvitation sync.RWMutex
	lockInsertScan      sync.RWMutex
	lockUpdateCheckIn   sync.RWMutex
}

func (mock *remoteLedgerMock) FetchInvitation(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	if mock.FetchInvitationFunc == nil {
		panic("remoteLedgerMock.FetchInvitationFunc: method is nil but remoteLedger.FetchInvitation was just called")
	}
	mock.lockFetchInvitation.Lock()
	mock.calls.FetchInvitation = append(mock.calls.FetchInvitation, struct {
		ID uuid.UUID
	}{ID: id})
	mock.lockFetchInvitation.Unlock()
	return mock.FetchInvitationFunc(ctx, id)
}

func (mock *remoteLedgerMock) FetchInvitationCalls() []struct {
	ID uuid.UUID
} {
	mock.lockFetchInvitation.RLock()
	calls := mock.calls.FetchInvitation
	mock.lockFetchInvitation.RUnlock()
	return calls
}

func (mock *remoteLedgerMock) InsertScan(ctx context.Context, rec *domain.ScanRecord) error {
	if mock.InsertScanFunc == nil {
		panic("remoteLedgerMock.InsertScanFunc: method is nil but remoteLedger.InsertScan was just called")
	}
	mock.lockInsertScan.Lock()
	mock.calls.InsertScan = append(mock.calls.InsertScan, struct {
		Rec *domain.ScanRecord
	}{Rec: rec})
	mock.lockInsertScan.Unlock()
	return mock.InsertScanFunc(ctx, rec)
}

func (mock *remoteLedgerMock) InsertScanCalls() []struct {
	Rec *domain.ScanRecord
} {
	mock.lockInsertScan.RLock()
	calls := mock.calls.InsertScan
	mock.lockInsertScan.RUnlock()
	return calls
}

func (mock *remoteLedgerMock) UpdateCheckIn(ctx context.Context, id uuid.UUID, status domain.InvitationStatus, checkedInCount int) error {
	if mock.UpdateCheckInFunc == nil {
		panic("remoteLedgerMock.UpdateCheckInFunc: method is nil but remoteLedger.UpdateCheckIn was just called")
	}
	mock.lockUpdateCheckIn.Lock()
	mock.calls.UpdateCheckIn = append(mock.calls.UpdateCheckIn, struct {
		ID             uuid.UUID
		Status         domain.InvitationStatus
		CheckedInCount int
	}{ID: id, Status: status, CheckedInCount: checkedInCount})
	mock.lockUpdateCheckIn.Unlock()
	return mock.UpdateCheckInFunc(ctx, id, status, checkedInCount)
}

func (mock *remoteLedgerMock) UpdateCheckInCalls() []struct {
	ID             uuid.UUID
	Status         domain.InvitationStatus
	CheckedInCount int
} {
	mock.lockUpdateCheckIn.RLock()
	calls := mock.calls.UpdateCheckIn
	mock.lockUpdateCheckIn.RUnlock()
	return calls
}

var _ connectivity = &connectivityStub{}

// connectivityStub is a fixed-state stand-in for the monitor.
type connectivityStub struct {
	online bool
}

func (c *connectivityStub) Online() bool { return c.online }
