package apns

// ErrorResponseCode shows error message of responses from apns
type ErrorResponseCode int

// https://developer.apple.com/documentation/usernotifications/handling-notification-responses-from-apns
// ErrorMessage const
const (
	BadCollapseId ErrorResponseCode = iota
	BadDeviceToken
	BadExpirationDate
	BadMessageId
	BadPriority
	BadTopic
	DeviceTokenNotForTopic
	DuplicateHeaders
	IdleTimeout
	InvalidPushType
	MissingDeviceToken
	MissingTopic
	PayloadEmpty
	TopicDisallowed
	BadCertificate
	BadCertificateEnvironment
	ExpiredProviderToken
	Forbidden
	InvalidProviderToken
	MissingProviderToken
	UnrelatedKeyIdInToken
	BadEnvironmentKeyIdInToken
	BadPath
	MethodNotAllowed
	ExpiredToken
	Unregistered
	PayloadTooLarge
	TooManyProviderTokenUpdates
	TooManyRequests
	InternalServerError
	ServiceUnavailable
	Shutdown
)

var errorResponseCodes = [...]struct {
	name   string
	status int
	desc   string
}{
	BadCollapseId:               {"BadCollapseId", 400, "The collapse identifier exceeds the maximum allowed size."},
	BadDeviceToken:              {"BadDeviceToken", 400, "The specified device token is invalid. Verify that the request contains a valid token and that the token matches the environment."},
	BadExpirationDate:           {"BadExpirationDate", 400, "The apns-expiration value is invalid."},
	BadMessageId:                {"BadMessageId", 400, "The apns-id value is invalid."},
	BadPriority:                 {"BadPriority", 400, "The apns-priority value is invalid."},
	BadTopic:                    {"BadTopic", 400, "The apns-topic value is invalid."},
	DeviceTokenNotForTopic:      {"DeviceTokenNotForTopic", 400, "The device token doesn't match the specified topic."},
	DuplicateHeaders:            {"DuplicateHeaders", 400, "One or more headers are repeated."},
	IdleTimeout:                 {"IdleTimeout", 400, "Idle timeout."},
	InvalidPushType:             {"InvalidPushType", 400, "The apns-push-type value is invalid."},
	MissingDeviceToken:          {"MissingDeviceToken", 400, "The device token isn't specified in the request :path."},
	MissingTopic:                {"MissingTopic", 400, "The apns-topic header of the request isn't specified and is required."},
	PayloadEmpty:                {"PayloadEmpty", 400, "The message payload is empty."},
	TopicDisallowed:             {"TopicDisallowed", 400, "Pushing to this topic is not allowed."},
	BadCertificate:              {"BadCertificate", 403, "The certificate is invalid."},
	BadCertificateEnvironment:   {"BadCertificateEnvironment", 403, "The client certificate is for the wrong environment."},
	ExpiredProviderToken:        {"ExpiredProviderToken", 403, "The provider token is stale and a new token should be generated."},
	Forbidden:                   {"Forbidden", 403, "The specified action is not allowed."},
	InvalidProviderToken:        {"InvalidProviderToken", 403, "The provider token is not valid, or the token signature can't be verified."},
	MissingProviderToken:        {"MissingProviderToken", 403, "No provider certificate was used to connect to APNs, and the authorization header is missing or no provider token is specified."},
	UnrelatedKeyIdInToken:       {"UnrelatedKeyIdInToken", 403, "The key ID in the provider token isn't related to the key ID of the token used in the first push of this connection."},
	BadEnvironmentKeyIdInToken:  {"BadEnvironmentKeyIdInToken", 403, "The key ID in the provider token is unrelated to this connection."},
	BadPath:                     {"BadPath", 404, "The request contained an invalid :path value."},
	MethodNotAllowed:            {"MethodNotAllowed", 405, "The specified :method value isn't POST."},
	ExpiredToken:                {"ExpiredToken", 410, "The device token has expired."},
	Unregistered:                {"Unregistered", 410, "The device token is inactive for the specified topic."},
	PayloadTooLarge:             {"PayloadTooLarge", 413, "The message payload is too large."},
	TooManyProviderTokenUpdates: {"TooManyProviderTokenUpdates", 429, "The provider's authentication token is being updated too often."},
	TooManyRequests:             {"TooManyRequests", 429, "Too many requests were made consecutively to the same device token."},
	InternalServerError:         {"InternalServerError", 500, "An internal server error occurred."},
	ServiceUnavailable:          {"ServiceUnavailable", 503, "The service is unavailable."},
	Shutdown:                    {"Shutdown", 503, "The APNs server is shutting down."},
}

func (c ErrorResponseCode) String() string {
	if c < 0 || int(c) >= len(errorResponseCodes) {
		return "ErrorResponseCode(?)"
	}
	return errorResponseCodes[c].name
}

// Status returns the HTTP status APNs answers with for the reason.
func (c ErrorResponseCode) Status() int {
	if c < 0 || int(c) >= len(errorResponseCodes) {
		return 0
	}
	return errorResponseCodes[c].status
}

// Description returns the documented meaning of the reason.
func (c ErrorResponseCode) Description() string {
	if c < 0 || int(c) >= len(errorResponseCodes) {
		return ""
	}
	return errorResponseCodes[c].desc
}

// LookupErrorResponseCode finds the code of a reason string in a response body.
func LookupErrorResponseCode(reason string) (ErrorResponseCode, bool) {
	for i, e := range errorResponseCodes {
		if e.name == reason {
			return ErrorResponseCode(i), true
		}
	}
	return 0, false
}
