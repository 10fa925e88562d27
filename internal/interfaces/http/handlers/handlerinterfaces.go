package handlers

import (
	"context"

	appbilling "github.com/zevix-io/zevix/internal/application/billing"
	"github.com/zevix-io/zevix/internal/application/metering"
	userapp "github.com/zevix-io/zevix/internal/application/user"
)

// Use case interfaces consumed by the handlers. Keeping them here lets
// handler tests swap in mocks without touching the application layer.

type RegisterUseCase interface {
	Execute(ctx context.Context, cmd userapp.RegisterCommand) (*userapp.RegisterResult, error)
}

type LoginUseCase interface {
	Execute(ctx context.Context, cmd userapp.LoginCommand) (*userapp.LoginResult, error)
}

type ConsumeLeadsUseCase interface {
	Execute(ctx context.Context, cmd metering.ConsumeLeadsCommand) (*metering.ConsumeLeadsResult, error)
}

type SessionVerifier interface {
	Execute(ctx context.Context, sessionID string) (*appbilling.ApplyResult, error)
}

type CancellationApplier interface {
	ApplyCancellation(ctx context.Context, email string) error
}

type CustomerEmailResolver interface {
	CustomerEmail(ctx context.Context, customerID string) (string, error)
}

type MandateSender interface {
	SendMandateRequest(recipient, prospectEmail, company, message string) error
}
