// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserNotFound       = "auth.user_not_found"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Products
	KeyProductCreated       = "product.created"
	KeyProductUpdated       = "product.updated"
	KeyProductDeleted       = "product.deleted"
	KeyProductNotFound      = "product.not_found"
	KeyProductNameNotFound  = "product.name_not_found"
	KeyProductNameTaken     = "product.name_taken"
	KeyProductStockAdjusted = "product.stock_adjusted"
	KeyProductLowStock      = "product.low_stock"

	// Inventory
	KeyStockInsufficient        = "stock.insufficient"
	KeyStockInsufficientGeneric = "stock.insufficient_generic"
	KeyStockUpdated             = "stock.updated"

	// Transactions
	KeyTransactionCreated  = "transaction.created"
	KeyTransactionNotFound = "transaction.not_found"
	KeyReceiptAttached     = "transaction.receipt_attached"

	// Payments
	KeyPaymentLinkCreated  = "payment.link_created"
	KeyPaymentNotFound     = "payment.not_found"
	KeyPaymentSettled      = "payment.settled"
	KeyPaymentExpired      = "payment.expired"
	KeyPaymentCancelled    = "payment.cancelled"
	KeyPaymentGatewayError = "payment.gateway_error"

	// Chats
	KeyChatNotFound = "chat.not_found"
	KeyChatDeleted  = "chat.deleted"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// System
	KeyRateLimitExceeded  = "system.rate_limit_exceeded"
	KeyInternalError      = "system.internal_error"
	KeyServiceUnavailable = "system.service_unavailable"
)
