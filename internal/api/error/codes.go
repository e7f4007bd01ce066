package error

import "net/http"

type ErrorCode string

const (
	UnknownError            ErrorCode = "unknown_error"
	InternalServerError     ErrorCode = "internal_server_error"
	BadRequest              ErrorCode = "bad_request"
	ValidationError         ErrorCode = "validation_error"
	NotFound                ErrorCode = "not_found"
	MethodNotAllowed        ErrorCode = "method_not_allowed"
	TooManyRequests         ErrorCode = "too_many_requests"
	InvalidCredentials      ErrorCode = "invalid_credentials"
	AuthenticationRequired  ErrorCode = "authentication_required"
	InvalidAccessToken      ErrorCode = "invalid_access_token"
	ExpiredAccessToken      ErrorCode = "expired_access_token"
	RevokedAccessToken      ErrorCode = "revoked_access_token"
	InsufficientPermissions ErrorCode = "insufficient_permissions"
	WeakPassword            ErrorCode = "weak_password"
	InvalidPassword         ErrorCode = "invalid_password"
	EmailConflict           ErrorCode = "email_conflict"
	UsernameConflict        ErrorCode = "username_conflict"
	UserNotFound            ErrorCode = "user_not_found"
	RecipeNotFound          ErrorCode = "recipe_not_found"
	RecipeNotOwned          ErrorCode = "recipe_not_owned"
	IngredientNotFound      ErrorCode = "ingredient_not_found"
	TagNotFound             ErrorCode = "tag_not_found"
	LinkNotFound            ErrorCode = "link_not_found"
	InvalidImage            ErrorCode = "invalid_image"
	AlreadyFavorited        ErrorCode = "already_favorited"
	NotFavorited            ErrorCode = "not_favorited"
	AlreadyInCart           ErrorCode = "already_in_shopping_cart"
	NotInCart               ErrorCode = "not_in_shopping_cart"
	AlreadySubscribed       ErrorCode = "already_subscribed"
	NotSubscribed           ErrorCode = "not_subscribed"
	SelfSubscription        ErrorCode = "self_subscription"
	TagConflict             ErrorCode = "tag_conflict"
	IngredientConflict      ErrorCode = "ingredient_conflict"
)

var errorCodeToStatusCode = map[ErrorCode]int{
	UnknownError:            0, // No error code - unknown
	InternalServerError:     http.StatusInternalServerError,
	BadRequest:              http.StatusBadRequest,
	ValidationError:         http.StatusBadRequest,
	NotFound:                http.StatusNotFound,
	MethodNotAllowed:        http.StatusMethodNotAllowed,
	TooManyRequests:         http.StatusTooManyRequests,
	InvalidCredentials:      http.StatusBadRequest,
	AuthenticationRequired:  http.StatusUnauthorized,
	InvalidAccessToken:      http.StatusUnauthorized,
	ExpiredAccessToken:      http.StatusUnauthorized,
	RevokedAccessToken:      http.StatusUnauthorized,
	InsufficientPermissions: http.StatusForbidden,
	WeakPassword:            http.StatusBadRequest,
	InvalidPassword:         http.StatusBadRequest,
	EmailConflict:           http.StatusBadRequest,
	UsernameConflict:        http.StatusBadRequest,
	UserNotFound:            http.StatusNotFound,
	RecipeNotFound:          http.StatusNotFound,
	RecipeNotOwned:          http.StatusForbidden,
	IngredientNotFound:      http.StatusNotFound,
	TagNotFound:             http.StatusNotFound,
	LinkNotFound:            http.StatusNotFound,
	InvalidImage:            http.StatusBadRequest,
	AlreadyFavorited:        http.StatusBadRequest,
	NotFavorited:            http.StatusBadRequest,
	AlreadyInCart:           http.StatusBadRequest,
	NotInCart:               http.StatusBadRequest,
	AlreadySubscribed:       http.StatusBadRequest,
	NotSubscribed:           http.StatusBadRequest,
	SelfSubscription:        http.StatusBadRequest,
	TagConflict:             http.StatusConflict,
	IngredientConflict:      http.StatusConflict,
}

func (ec ErrorCode) StatusCode() int {
	return errorCodeToStatusCode[ec]
}

func (ec ErrorCode) String() string {
	return string(ec)
}
