// Package testutils holds testify mocks of the collaborator services shared by
// the action, engine and adapter tests.
package testutils

import (
	"context"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/stretchr/testify/mock"
)

// MockStreams mocks ports.StreamService.
type MockStreams struct {
	mock.Mock
}

func (m *MockStreams) ListStreams(ctx context.Context) ([]domain.Stream, error) {
	args := m.Called(ctx)
	streams, _ := args.Get(0).([]domain.Stream)
	return streams, args.Error(1)
}

func (m *MockStreams) CreateStream(ctx context.Context, productID string, req domain.CreateStreamRequest) (domain.Stream, error) {
	args := m.Called(ctx, productID, req)
	return args.Get(0).(domain.Stream), args.Error(1)
}

func (m *MockStreams) DeleteStream(ctx context.Context, streamID string) (domain.DeleteStreamResult, error) {
	args := m.Called(ctx, streamID)
	return args.Get(0).(domain.DeleteStreamResult), args.Error(1)
}

// MockComments mocks ports.CommentService.
type MockComments struct {
	mock.Mock
}

func (m *MockComments) CreateComment(ctx context.Context, productID string, payload domain.CommentPayload) error {
	return m.Called(ctx, productID, payload).Error(0)
}

// MockDonations mocks ports.DonationService.
type MockDonations struct {
	mock.Mock
}

func (m *MockDonations) Donate(ctx context.Context, req domain.DonateRequest) (domain.DonateResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.DonateResult), args.Error(1)
}

// MockOrders mocks ports.OrderService.
type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) CreateOrder(ctx context.Context, productID string, req domain.OrderRequest) error {
	return m.Called(ctx, productID, req).Error(0)
}

// MockPayments mocks ports.PaymentService.
type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) CreatePayment(ctx context.Context, req domain.PaymentRequest) error {
	return m.Called(ctx, req).Error(0)
}

// MockProfile mocks ports.ProfileService.
type MockProfile struct {
	mock.Mock
}

func (m *MockProfile) Profile(ctx context.Context) (domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.User), args.Error(1)
}

// Mocks bundles one mock per service.
type Mocks struct {
	Streams   *MockStreams
	Comments  *MockComments
	Donations *MockDonations
	Orders    *MockOrders
	Payments  *MockPayments
	Profile   *MockProfile
}

// NewMocks returns fresh mocks with no expectations.
func NewMocks() *Mocks {
	return &Mocks{
		Streams:   new(MockStreams),
		Comments:  new(MockComments),
		Donations: new(MockDonations),
		Orders:    new(MockOrders),
		Payments:  new(MockPayments),
		Profile:   new(MockProfile),
	}
}

// Services exposes the mocks as ports.Services.
func (m *Mocks) Services() ports.Services {
	return ports.Services{
		Streams:   m.Streams,
		Comments:  m.Comments,
		Donations: m.Donations,
		Orders:    m.Orders,
		Payments:  m.Payments,
		Profile:   m.Profile,
	}
}

// AssertExpectations checks every mock.
func (m *Mocks) AssertExpectations(t mock.TestingT) {
	m.Streams.AssertExpectations(t)
	m.Comments.AssertExpectations(t)
	m.Donations.AssertExpectations(t)
	m.Orders.AssertExpectations(t)
	m.Payments.AssertExpectations(t)
	m.Profile.AssertExpectations(t)
}
