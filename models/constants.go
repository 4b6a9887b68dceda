package models

// Expense types. STANDARD and TITHE drive the prediction math; other types
// are categorization only.
const (
	ExpenseTypeStandard = "STANDARD"
	ExpenseTypeTithe    = "TITHE"
)

// Resource types
const (
	ResourceMonths  = "months"
	ResourceReports = "reports"
	ResourceUsers   = "users"
	ResourceAll     = "all"
)

// Permission types
const (
	PermissionRead  = "read"
	PermissionWrite = "write"
	PermissionAdmin = "admin"
)

// Subscription statuses mirrored from the billing provider
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// Webhook sources
const (
	WebhookSourceIdentity = "identity"
	WebhookSourceBilling  = "billing"
)
