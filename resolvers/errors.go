package resolvers

const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeBadUserInput    = "BAD_USER_INPUT"
)

// Error is a resolver error whose code is reported in the GraphQL error extensions.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

func AuthenticationError() *Error {
	return &Error{Code: CodeUnauthenticated, Message: "You must be logged in"}
}

func ForbiddenError(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

func UserInputError(message string) *Error {
	return &Error{Code: CodeBadUserInput, Message: message}
}
