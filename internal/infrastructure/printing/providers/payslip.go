package providers

import (
	"context"
	"fmt"

	"github.com/peopledesk/backend/internal/domain/hr"
	"github.com/peopledesk/backend/internal/domain/printing"
	infra "github.com/peopledesk/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
)

// PayslipProvider implements DataProvider for the PAYSLIP document type.
// The documentID is the payslip ID; the provider resolves the payroll run
// that contains it and the employee it belongs to.
type PayslipProvider struct {
	payrollRepo  hr.PayrollRunRepository
	employeeRepo hr.EmployeeRepository
}

// NewPayslipProvider creates a new PayslipProvider.
func NewPayslipProvider(
	payrollRepo hr.PayrollRunRepository,
	employeeRepo hr.EmployeeRepository,
) *PayslipProvider {
	return &PayslipProvider{
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
	}
}

// GetDocType returns the document type this provider handles.
func (p *PayslipProvider) GetDocType() printing.DocType {
	return printing.DocTypePayslip
}

// GetData retrieves payslip data for rendering.
func (p *PayslipProvider) GetData(ctx context.Context, tenantID, documentID uuid.UUID) (*infra.DocumentData, error) {
	run, err := p.payrollRepo.FindByPayslipID(ctx, tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payroll run: %w", err)
	}

	var payslip *hr.Payslip
	for i := range run.Payslips {
		if run.Payslips[i].ID == documentID {
			payslip = &run.Payslips[i]
			break
		}
	}
	if payslip == nil {
		return nil, fmt.Errorf("payslip %s not found in payroll run %s", documentID, run.ID)
	}

	employee, err := p.employeeRepo.FindByIDForTenant(ctx, tenantID, payslip.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}

	currency := string(run.Currency)
	period := run.PeriodLabel()

	docData := infra.NewDocumentData(printing.DocTypePayslip, fmt.Sprintf("%s/%s", period, employee.StaffNumber))
	docData.Meta.Status = string(run.Status)
	docData.Meta.StatusText = infra.StatusTextValue(string(run.Status))
	docData.Meta.CreatedAt = payslip.CreatedAt
	docData.Meta.UpdatedAt = payslip.UpdatedAt
	docData.Meta.Remark = payslip.Note

	paidAtFormatted := ""
	if run.PaidAt != nil {
		paidAtFormatted = run.PaidAt.Format("2006-01-02")
	}

	docData.Document = infra.PayslipData{
		ID:       payslip.ID,
		Period:   period,
		Employee: employeeInfo(employee),
		Currency: currency,

		Gross:      payslip.Gross,
		Allowances: payslip.Allowances,
		Deductions: payslip.Deductions,
		Tax:        payslip.Tax,
		Net:        payslip.Net,
		Note:       payslip.Note,
		PaidAt:     run.PaidAt,

		GrossFormatted:      infra.FormatMoneyValue(payslip.Gross, currency),
		AllowancesFormatted: infra.FormatMoneyValue(payslip.Allowances, currency),
		DeductionsFormatted: infra.FormatMoneyValue(payslip.Deductions, currency),
		TaxFormatted:        infra.FormatMoneyValue(payslip.Tax, currency),
		NetFormatted:        infra.FormatMoneyValue(payslip.Net, currency),
		NetInWords:          infra.AmountInWordsValue(payslip.Net),
		PaidAtFormatted:     paidAtFormatted,
	}

	return docData, nil
}

// employeeInfo maps an employee aggregate to the print-friendly shape
func employeeInfo(employee *hr.Employee) infra.EmployeeInfo {
	return infra.EmployeeInfo{
		ID:                employee.ID,
		StaffNumber:       employee.StaffNumber,
		Name:              employee.FullName(),
		Department:        employee.Department,
		JobTitle:          employee.JobTitle,
		Email:             employee.Email,
		HireDate:          employee.HireDate,
		HireDateFormatted: employee.HireDate.Format("2006-01-02"),
	}
}
