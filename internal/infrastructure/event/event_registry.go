package event

import (
	"github.com/peopledesk/backend/internal/domain/crm"
	"github.com/peopledesk/backend/internal/domain/featureflag"
	"github.com/peopledesk/backend/internal/domain/finance"
	"github.com/peopledesk/backend/internal/domain/hr"
	"github.com/peopledesk/backend/internal/domain/identity"
	"github.com/peopledesk/backend/internal/domain/mdm"
	"github.com/peopledesk/backend/internal/domain/printing"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/support"
)

// EventRegistrar registers event types for deserialization. Both the
// plain and the versioned serializer implement it.
type EventRegistrar interface {
	Register(eventType string, eventInstance shared.DomainEvent)
}

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer EventRegistrar) {
	// Identity domain - Tenant events
	serializer.Register(identity.EventTypeTenantCreated, &identity.TenantCreatedEvent{})
	serializer.Register(identity.EventTypeTenantUpdated, &identity.TenantUpdatedEvent{})
	serializer.Register(identity.EventTypeTenantStatusChanged, &identity.TenantStatusChangedEvent{})
	serializer.Register(identity.EventTypeTenantProfileUpdated, &identity.TenantProfileUpdatedEvent{})
	serializer.Register(identity.EventTypeTenantDeleted, &identity.TenantDeletedEvent{})

	// Identity domain - User events
	serializer.Register(identity.EventTypeUserCreated, &identity.UserCreatedEvent{})
	serializer.Register(identity.EventTypeUserDeactivated, &identity.UserDeactivatedEvent{})
	serializer.Register(identity.EventTypeUserPasswordChanged, &identity.UserPasswordChangedEvent{})
	serializer.Register(identity.EventTypeUserRoleAssigned, &identity.UserRoleAssignedEvent{})
	serializer.Register(identity.EventTypeUserRoleRemoved, &identity.UserRoleRemovedEvent{})
	serializer.Register(identity.EventTypeUserStatusChanged, &identity.UserStatusChangedEvent{})

	// Identity domain - Role events
	serializer.Register(identity.EventTypeRoleCreated, &identity.RoleCreatedEvent{})
	serializer.Register(identity.EventTypeRoleUpdated, &identity.RoleUpdatedEvent{})
	serializer.Register(identity.EventTypeRoleDeleted, &identity.RoleDeletedEvent{})
	serializer.Register(identity.EventTypeRoleEnabled, &identity.RoleEnabledEvent{})
	serializer.Register(identity.EventTypeRoleDisabled, &identity.RoleDisabledEvent{})
	serializer.Register(identity.EventTypeRolePermissionGranted, &identity.RolePermissionGrantedEvent{})
	serializer.Register(identity.EventTypeRolePermissionRevoked, &identity.RolePermissionRevokedEvent{})
	serializer.Register(identity.EventTypeRoleUsersChanged, &identity.RoleUsersChangedEvent{})

	// HR domain - Employee events
	serializer.Register(hr.EventTypeEmployeeCreated, &hr.EmployeeCreatedEvent{})
	serializer.Register(hr.EventTypeEmployeeUpdated, &hr.EmployeeUpdatedEvent{})
	serializer.Register(hr.EventTypeEmployeeTerminated, &hr.EmployeeTerminatedEvent{})
	serializer.Register(hr.EventTypeEmployeeDeleted, &hr.EmployeeDeletedEvent{})

	// HR domain - Leave events
	serializer.Register(hr.EventTypeLeaveRequested, &hr.LeaveRequestedEvent{})
	serializer.Register(hr.EventTypeLeaveDecided, &hr.LeaveDecidedEvent{})
	serializer.Register(hr.EventTypeLeaveCancelled, &hr.LeaveCancelledEvent{})

	// HR domain - Payroll events
	serializer.Register(hr.EventTypePayrollRunCreated, &hr.PayrollRunCreatedEvent{})
	serializer.Register(hr.EventTypePayrollCompleted, &hr.PayrollCompletedEvent{})
	serializer.Register(hr.EventTypePayrollPaid, &hr.PayrollPaidEvent{})

	// Finance domain - Ledger events
	serializer.Register(finance.EventTypeAccountCreated, &finance.AccountCreatedEvent{})
	serializer.Register(finance.EventTypeJournalEntryCreated, &finance.JournalEntryCreatedEvent{})
	serializer.Register(finance.EventTypeJournalEntryPosted, &finance.JournalEntryPostedEvent{})
	serializer.Register(finance.EventTypeJournalEntryReversed, &finance.JournalEntryReversedEvent{})

	// Finance domain - Invoice events
	serializer.Register(finance.EventTypeInvoiceCreated, &finance.InvoiceCreatedEvent{})
	serializer.Register(finance.EventTypeInvoiceSent, &finance.InvoiceSentEvent{})
	serializer.Register(finance.EventTypeInvoicePaymentRecorded, &finance.InvoicePaymentRecordedEvent{})
	serializer.Register(finance.EventTypeInvoicePaid, &finance.InvoicePaidEvent{})
	serializer.Register(finance.EventTypeInvoiceStatusChanged, &finance.InvoiceStatusChangedEvent{})
	serializer.Register(finance.EventTypeInvoiceDeleted, &finance.InvoiceDeletedEvent{})

	// Finance domain - Vendor events
	serializer.Register(finance.EventTypeVendorCreated, &finance.VendorCreatedEvent{})
	serializer.Register(finance.EventTypeVendorUpdated, &finance.VendorUpdatedEvent{})
	serializer.Register(finance.EventTypeVendorStatusChanged, &finance.VendorStatusChangedEvent{})
	serializer.Register(finance.EventTypeVendorDeleted, &finance.VendorDeletedEvent{})

	// CRM domain - Customer events
	serializer.Register(crm.EventTypeCustomerCreated, &crm.CustomerCreatedEvent{})
	serializer.Register(crm.EventTypeCustomerUpdated, &crm.CustomerUpdatedEvent{})
	serializer.Register(crm.EventTypeCustomerStatusChanged, &crm.CustomerStatusChangedEvent{})
	serializer.Register(crm.EventTypeCustomerDeleted, &crm.CustomerDeletedEvent{})

	// MDM domain - Device events
	serializer.Register(mdm.EventTypeDeviceEnrolled, &mdm.DeviceEnrolledEvent{})
	serializer.Register(mdm.EventTypeDeviceAssigned, &mdm.DeviceAssignedEvent{})
	serializer.Register(mdm.EventTypeDeviceStatusChanged, &mdm.DeviceStatusChangedEvent{})

	// Support domain - Ticket events
	serializer.Register(support.EventTypeTicketCreated, &support.TicketCreatedEvent{})
	serializer.Register(support.EventTypeTicketAssigned, &support.TicketAssignedEvent{})
	serializer.Register(support.EventTypeTicketStatusChanged, &support.TicketStatusChangedEvent{})

	// Printing domain - Template events
	serializer.Register(printing.EventTypePrintTemplateCreated, &printing.PrintTemplateCreatedEvent{})
	serializer.Register(printing.EventTypePrintTemplateUpdated, &printing.PrintTemplateUpdatedEvent{})
	serializer.Register(printing.EventTypePrintTemplateStatusChanged, &printing.PrintTemplateStatusChangedEvent{})
	serializer.Register(printing.EventTypePrintTemplateSetAsDefault, &printing.PrintTemplateSetAsDefaultEvent{})
	serializer.Register(printing.EventTypePrintTemplateDeleted, &printing.PrintTemplateDeletedEvent{})

	// Printing domain - Job events
	serializer.Register(printing.EventTypePrintJobCreated, &printing.PrintJobCreatedEvent{})
	serializer.Register(printing.EventTypePrintJobStatusChanged, &printing.PrintJobStatusChangedEvent{})
	serializer.Register(printing.EventTypePrintJobCompleted, &printing.PrintJobCompletedEvent{})
	serializer.Register(printing.EventTypePrintJobFailed, &printing.PrintJobFailedEvent{})

	// Feature flag domain events
	serializer.Register(featureflag.EventTypeFlagCreated, &featureflag.FlagCreatedEvent{})
	serializer.Register(featureflag.EventTypeFlagUpdated, &featureflag.FlagUpdatedEvent{})
	serializer.Register(featureflag.EventTypeFlagEnabled, &featureflag.FlagEnabledEvent{})
	serializer.Register(featureflag.EventTypeFlagDisabled, &featureflag.FlagDisabledEvent{})
	serializer.Register(featureflag.EventTypeFlagArchived, &featureflag.FlagArchivedEvent{})
	serializer.Register(featureflag.EventTypeOverrideCreated, &featureflag.OverrideCreatedEvent{})
	serializer.Register(featureflag.EventTypeOverrideRemoved, &featureflag.OverrideRemovedEvent{})
	serializer.Register(featureflag.EventTypeOverrideUpdated, &featureflag.OverrideUpdatedEvent{})
}
