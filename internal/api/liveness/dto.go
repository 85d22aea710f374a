package liveness

type CreateSessionResponse struct {
	Token string `json:"token"`
}

type ResultResponse struct {
	IsLive         bool   `json:"is_live"`
	RedirectURL    string `json:"redirect_url,omitempty"`
	RemainingTries int    `json:"remaining_tries"`
}

type ErrorResponse struct {
	Message     string `json:"message"`
	Error       string `json:"error"`
	RedirectURL string `json:"redirect_url,omitempty"`
}
