package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The storefront maps these codes to localized messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized   = "AUTH_UNAUTHORIZED"
	AuthEmailRequired  = "AUTH_EMAIL_REQUIRED"
	AuthInvalidEmail   = "AUTH_INVALID_EMAIL"
	AuthSessionInvalid = "AUTH_SESSION_INVALID"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidCursor = "VALIDATION_INVALID_CURSOR"
	ValidationInvalidSort   = "VALIDATION_INVALID_SORT"
	ValidationInvalidLimit  = "VALIDATION_INVALID_LIMIT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catalog (CATALOG_) ====================
	ProductNotFound  = "CATALOG_PRODUCT_NOT_FOUND"
	CategoryNotFound = "CATALOG_CATEGORY_NOT_FOUND"
	CountryNotFound  = "CATALOG_COUNTRY_NOT_FOUND"

	// ==================== Cart (CART_) ====================
	CartNotFound        = "CART_NOT_FOUND"
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"

	// ==================== Order (ORDER_) ====================
	OrderNotFound  = "ORDER_NOT_FOUND"
	OrderEmptyCart = "ORDER_EMPTY_CART"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
