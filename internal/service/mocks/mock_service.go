package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/NicklasAaStadler/booking/internal/service"
)

// MockBookingService is a mock implementation of service.BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Catalog(ctx context.Context) *service.Catalog {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*service.Catalog)
}

func (m *MockBookingService) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockBookingService) CreateSession(ctx context.Context) (*service.SessionResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) GetSession(ctx context.Context, sessionID string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) SelectDate(ctx context.Context, sessionID, date string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) ChangeMonth(ctx context.Context, sessionID string, offset int) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) SelectFloor(ctx context.Context, sessionID, floor string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID, floor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) ToggleRoom(ctx context.Context, sessionID, room string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID, room)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) SelectTimeSlot(ctx context.Context, sessionID, slot string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) SetParticipantEmail(ctx context.Context, sessionID, email string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) AddParticipant(ctx context.Context, sessionID, email string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) RemoveParticipant(ctx context.Context, sessionID, email string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) Submit(ctx context.Context, sessionID string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) Confirm(ctx context.Context, sessionID string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) Cancel(ctx context.Context, sessionID string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) Dismiss(ctx context.Context, sessionID string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) DismissAlert(ctx context.Context, sessionID string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) PressDialogButton(ctx context.Context, sessionID, dialog string, index int) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID, dialog, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}

func (m *MockBookingService) CloseDialog(ctx context.Context, sessionID, dialog string) (*service.SessionResponse, error) {
	args := m.Called(ctx, sessionID, dialog)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResponse), args.Error(1)
}
