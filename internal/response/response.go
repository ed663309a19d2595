package response

// Message is the body of every error that is not a field-level failure.
type Message struct {
	Message string `json:"message"`
}

// Status is the body of the health endpoint.
type Status struct {
	Status string `json:"status"`
}

const (
	MsgUserNotFound  = "No User Found"
	MsgDiaryNotFound = "No Diary Found"
	MsgJSONRequired  = "JSON POST data required"
	MsgServerError   = "Server Error. Try again later."
)

func NotFound(msg string) Message {
	return Message{Message: msg}
}

func BadRequest(msg string) Message {
	return Message{Message: msg}
}

// InternalError never echoes the underlying error.
func InternalError() Message {
	return Message{Message: MsgServerError}
}

// Fields is a field name to messages map, returned as-is for 400s.
func Fields(fe map[string][]string) map[string][]string {
	if fe == nil {
		return map[string][]string{}
	}
	return fe
}

func OK() Status {
	return Status{Status: "ok"}
}
