package vws

// Success result codes.
const (
	ResultSuccess       = "Success"
	ResultTargetCreated = "TargetCreated"
)

// Body fragments the service returns outside its JSON envelope.
const (
	oopsMarker         = "Oops, an error occurred"
	integerRangeMarker = "Integer out of range"
)

var managementResultCodes = map[string]Kind{
	"AuthenticationFailure":  KindAuthenticationFailure,
	"BadImage":               KindBadImage,
	"BadRequest":             KindBadRequest,
	"DateRangeError":         KindDateRangeError,
	"Fail":                   KindFail,
	"ImageTooLarge":          KindImageTooLarge,
	"MetadataTooLarge":       KindMetadataTooLarge,
	"ProjectHasNoAPIAccess":  KindProjectHasNoAPIAccess,
	"ProjectInactive":        KindProjectInactive,
	"ProjectSuspended":       KindProjectSuspended,
	"RequestQuotaReached":    KindRequestQuotaReached,
	"RequestTimeTooSkewed":   KindRequestTimeTooSkewed,
	"TargetNameExist":        KindTargetNameExist,
	"TargetQuotaReached":     KindTargetQuotaReached,
	"TargetStatusNotSuccess": KindTargetStatusNotSuccess,
	"TargetStatusProcessing": KindTargetStatusProcessing,
	"UnknownTarget":          KindUnknownTarget,
}

var vumarkResultCodes = map[string]Kind{
	"AuthenticationFailure":  KindAuthenticationFailure,
	"BadRequest":             KindBadRequest,
	"DateRangeError":         KindDateRangeError,
	"Fail":                   KindFail,
	"InvalidAcceptHeader":    KindInvalidAcceptHeader,
	"InvalidInstanceId":      KindInvalidInstanceID,
	"InvalidTargetType":      KindInvalidTargetType,
	"RequestTimeTooSkewed":   KindRequestTimeTooSkewed,
	"TargetStatusNotSuccess": KindTargetStatusNotSuccess,
	"UnknownTarget":          KindUnknownTarget,
}

var cloudRecoResultCodes = map[string]Kind{
	"AuthenticationFailure": KindAuthenticationFailure,
	"BadImage":              KindBadImage,
	"InactiveProject":       KindInactiveProject,
	"RequestTimeTooSkewed":  KindRequestTimeTooSkewed,
}
