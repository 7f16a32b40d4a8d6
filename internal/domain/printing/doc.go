// Package printing contains the domain model for document printing:
// print templates and print jobs for rendering business documents
// (invoices, payslips, statements) to PDF.
package printing
