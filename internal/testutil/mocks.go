// Package testutil holds mocks of the platform collaborators shared by the
// server and application tests.
package testutil

import (
	"context"

	"github.com/dgellow/zoomapp-front/internal/appcontext"
	"github.com/dgellow/zoomapp-front/internal/zoomapi"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
)

type MockContextDecryptor struct {
	mock.Mock
}

func (m *MockContextDecryptor) Decrypt(headerValue string) (*appcontext.Claims, error) {
	args := m.Called(headerValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcontext.Claims), args.Error(1)
}

type MockTokenExchanger struct {
	mock.Mock
}

func (m *MockTokenExchanger) ExchangeCode(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	args := m.Called(ctx, code, verifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

type MockDeepLinker struct {
	mock.Mock
}

func (m *MockDeepLinker) DeepLink(ctx context.Context, token *oauth2.Token, action zoomapi.DeepLinkAction) (string, error) {
	args := m.Called(ctx, token, action)
	return args.String(0), args.Error(1)
}
