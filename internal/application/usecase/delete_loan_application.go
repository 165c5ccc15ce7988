package usecase

import (
	"context"
	"fmt"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/port"
)

// DeleteLoanApplicationUseCase removes a loan application.
type DeleteLoanApplicationUseCase struct {
	appRepo port.LoanApplicationRepository
}

// NewDeleteLoanApplicationUseCase wires dependencies.
func NewDeleteLoanApplicationUseCase(appRepo port.LoanApplicationRepository) *DeleteLoanApplicationUseCase {
	return &DeleteLoanApplicationUseCase{appRepo: appRepo}
}

// Execute deletes the application, reporting model.ErrApplicationNotFound
// when it does not exist.
func (uc *DeleteLoanApplicationUseCase) Execute(ctx context.Context, req dto.DeleteApplicationRequest) error {
	if err := requireID(req.ApplicationID, model.ErrApplicationNotFound); err != nil {
		return err
	}
	if err := uc.appRepo.Delete(ctx, req.ApplicationID); err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return nil
}
