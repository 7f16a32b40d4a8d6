package providers

import (
	"context"
	"fmt"

	"github.com/peopledesk/backend/internal/domain/hr"
	"github.com/peopledesk/backend/internal/domain/printing"
	infra "github.com/peopledesk/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
)

// PayrollSummaryProvider implements DataProvider for the PAYROLL_SUMMARY
// document type. The documentID is the payroll run ID.
type PayrollSummaryProvider struct {
	payrollRepo  hr.PayrollRunRepository
	employeeRepo hr.EmployeeRepository
}

// NewPayrollSummaryProvider creates a new PayrollSummaryProvider.
func NewPayrollSummaryProvider(
	payrollRepo hr.PayrollRunRepository,
	employeeRepo hr.EmployeeRepository,
) *PayrollSummaryProvider {
	return &PayrollSummaryProvider{
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
	}
}

// GetDocType returns the document type this provider handles.
func (p *PayrollSummaryProvider) GetDocType() printing.DocType {
	return printing.DocTypePayrollSummary
}

// GetData retrieves payroll run summary data for rendering.
func (p *PayrollSummaryProvider) GetData(ctx context.Context, tenantID, documentID uuid.UUID) (*infra.DocumentData, error) {
	run, err := p.payrollRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payroll run: %w", err)
	}

	currency := string(run.Currency)
	period := run.PeriodLabel()

	docData := infra.NewDocumentData(printing.DocTypePayrollSummary, period)
	docData.Meta.Status = string(run.Status)
	docData.Meta.StatusText = infra.StatusTextValue(string(run.Status))
	docData.Meta.CreatedAt = run.CreatedAt
	docData.Meta.UpdatedAt = run.UpdatedAt

	lines := make([]infra.PayrollSummaryLineData, len(run.Payslips))
	for i, payslip := range run.Payslips {
		line := infra.PayrollSummaryLineData{
			Index:          i + 1,
			EmployeeID:     payslip.EmployeeID,
			Gross:          payslip.Gross,
			Allowances:     payslip.Allowances,
			Deductions:     payslip.Deductions,
			Tax:            payslip.Tax,
			Net:            payslip.Net,
			GrossFormatted: infra.FormatMoneyValue(payslip.Gross, currency),
			TaxFormatted:   infra.FormatMoneyValue(payslip.Tax, currency),
			NetFormatted:   infra.FormatMoneyValue(payslip.Net, currency),
		}
		// Enrich with employee identity where the record still exists
		if employee, err := p.employeeRepo.FindByIDForTenant(ctx, tenantID, payslip.EmployeeID); err == nil {
			line.StaffNumber = employee.StaffNumber
			line.EmployeeName = employee.FullName()
			line.Department = employee.Department
		}
		lines[i] = line
	}

	processedAtFormatted := ""
	if run.ProcessedAt != nil {
		processedAtFormatted = run.ProcessedAt.Format("2006-01-02")
	}
	paidAtFormatted := ""
	if run.PaidAt != nil {
		paidAtFormatted = run.PaidAt.Format("2006-01-02")
	}

	docData.Document = infra.PayrollSummaryData{
		ID:                   run.ID,
		Period:               period,
		Currency:             currency,
		Status:               string(run.Status),
		Lines:                lines,
		LineCount:            len(lines),
		TotalGross:           run.TotalGross,
		TotalTax:             run.TotalTax,
		TotalNet:             run.TotalNet,
		ProcessedAt:          run.ProcessedAt,
		PaidAt:               run.PaidAt,
		TotalGrossFormatted:  infra.FormatMoneyValue(run.TotalGross, currency),
		TotalTaxFormatted:    infra.FormatMoneyValue(run.TotalTax, currency),
		TotalNetFormatted:    infra.FormatMoneyValue(run.TotalNet, currency),
		ProcessedAtFormatted: processedAtFormatted,
		PaidAtFormatted:      paidAtFormatted,
	}

	return docData, nil
}
