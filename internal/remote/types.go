package remote

// SendRequest is the body of POST /emails/send.
type SendRequest struct {
	SessionID string `json:"session_id"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

type summarizeRequest struct {
	Texts []string `json:"texts"`
}

type summarizeResponse struct {
	Summaries []string `json:"summaries"`
}

type repliesRequest struct {
	Texts []string `json:"texts"`
	Count int      `json:"count"`
}

type repliesResponse struct {
	Replies [][]string `json:"replies"`
}

type chatRequest struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type exchangeRequest struct {
	Code string `json:"code"`
}

type exchangeResponse struct {
	SessionID string `json:"session_id"`
}

type meRequest struct {
	SessionID string `json:"session_id"`
}

// errorResponse matches FastAPI-style {"detail": "..."} error bodies.
type errorResponse struct {
	Detail any `json:"detail"`
}
